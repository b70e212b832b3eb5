// Package server runs the local HTTP server that hosts the Google sign-in
// widget during a login.
package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/snaptop/client/internal/api"
	"github.com/pageza/snaptop/client/internal/middleware"
)

// CallbackServer serves the widget page and its credential callback on a
// loopback address
type CallbackServer struct {
	addr   string
	widget api.Widget
	log    logrus.FieldLogger

	mu       sync.Mutex
	router   *gin.Engine
	http     *http.Server
	listener net.Listener
}

// NewCallbackServer creates a server that will listen on addr. Port 0 picks a
// free port.
func NewCallbackServer(addr string, widget api.Widget, log logrus.FieldLogger) *CallbackServer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CallbackServer{addr: addr, widget: widget, log: log.WithField("component", "callback_server")}
}

// Start listens and serves in the background
func (s *CallbackServer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.http != nil {
		return errors.New("callback server already started")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.addr)
	}
	baseURL := "http://" + ln.Addr().String()

	router := gin.New()
	router.Use(middleware.Recovery(s.log), middleware.RequestLogger(s.log), middleware.CORS())
	api.NewGoogleHandler(s.widget, baseURL+api.PathGoogleCallback, s.log).RegisterRoutes(router)

	s.router = router
	s.listener = ln
	s.http = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("callback server stopped")
		}
	}()
	s.log.WithField("addr", ln.Addr().String()).Info("callback server listening")
	return nil
}

// URL returns the base URL, or "" before Start
func (s *CallbackServer) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return "http://" + s.listener.Addr().String()
}

// LoginURL is the page the user opens to sign in with Google
func (s *CallbackServer) LoginURL() string {
	return s.URL() + api.PathGoogleLogin
}

// Shutdown gracefully stops the server
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
