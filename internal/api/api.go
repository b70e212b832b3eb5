// Package api serves the local pages that host the Google sign-in widget and
// receive its credential.
package api

import (
	"crypto/subtle"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Routes
const (
	PathGoogleLogin    = "/login/google"
	PathGoogleCallback = "/auth/google/callback"
	PathHealth         = "/healthz"
)

// csrfField is both the form field and the cookie Google Identity Services
// sets for the double-submit check
const csrfField = "g_csrf_token"

// Widget is the pending Google sign-in the callback resolves
type Widget interface {
	ClientID() string
	Complete(credential string, err error) bool
}

// GoogleHandler serves the widget page and its callback
type GoogleHandler struct {
	widget      Widget
	callbackURL string
	log         logrus.FieldLogger
}

// NewGoogleHandler creates a handler. callbackURL is the absolute URL of
// PathGoogleCallback as the browser will reach it.
func NewGoogleHandler(widget Widget, callbackURL string, log logrus.FieldLogger) *GoogleHandler {
	return &GoogleHandler{widget: widget, callbackURL: callbackURL, log: log.WithField("component", "api")}
}

// RegisterRoutes registers the widget routes and loads their templates
func (h *GoogleHandler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(pages)
	r.GET(PathGoogleLogin, h.LoginPage)
	r.POST(PathGoogleCallback, h.Callback)
	r.GET(PathHealth, HealthCheck)
}

// HealthCheck reports that the callback server is up
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// LoginPage renders the Google sign-in button
func (h *GoogleHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login", gin.H{
		"ClientID":    h.widget.ClientID(),
		"CallbackURL": h.callbackURL,
	})
}

// Callback receives the credential posted by Google Identity Services
func (h *GoogleHandler) Callback(c *gin.Context) {
	formToken := c.PostForm(csrfField)
	cookieToken, err := c.Cookie(csrfField)
	if err != nil || formToken == "" ||
		subtle.ConstantTimeCompare([]byte(formToken), []byte(cookieToken)) != 1 {
		h.log.Warn("rejected widget callback with a bad CSRF token")
		c.HTML(http.StatusBadRequest, "done", gin.H{
			"Title":   "Sign-in failed",
			"Message": "The sign-in request could not be verified. Please try again.",
		})
		return
	}

	if !h.widget.Complete(c.PostForm("credential"), nil) {
		c.HTML(http.StatusConflict, "done", gin.H{
			"Title":   "Nothing to sign in",
			"Message": "No sign-in is waiting for this response.",
		})
		return
	}
	c.HTML(http.StatusOK, "done", gin.H{
		"Title":   "Signed in",
		"Message": "You can close this window and return to the terminal.",
	})
}

var pages = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Sign in to Snap Top</title>
  <script src="https://accounts.google.com/gsi/client" async defer></script>
</head>
<body>
  <h1>Sign in to Snap Top</h1>
  <div id="g_id_onload"
       data-client_id="{{.ClientID}}"
       data-ux_mode="redirect"
       data-login_uri="{{.CallbackURL}}"
       data-auto_prompt="false"></div>
  <div class="g_id_signin" data-type="standard" data-text="continue_with"></div>
</body>
</html>`))

func init() {
	template.Must(pages.New("done").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
  <h1>{{.Title}}</h1>
  <p>{{.Message}}</p>
</body>
</html>`))
}
