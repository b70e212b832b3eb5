package identity

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/snaptop/client/internal/models"
)

var (
	// ErrNoCredential is reported when the widget callback carries no credential
	ErrNoCredential = errors.New("no credential received from google")
	// ErrCredentialExpired is reported for an ID token past its exp claim
	ErrCredentialExpired = errors.New("google credential has expired")
	// ErrWrongAudience is reported for an ID token issued to another client
	ErrWrongAudience = errors.New("google credential was issued for a different client")
)

// GoogleClaims are the ID token claims the client looks at. The signature is
// verified by the backend, not here.
type GoogleClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	jwt.RegisteredClaims
}

// GoogleWidget is the Google Identity Services button hosted on the local
// callback server. SignIn waits for the widget to post its credential, which
// arrives through Complete.
type GoogleWidget struct {
	clientID string
	log      logrus.FieldLogger
	now      func() time.Time

	mu      sync.Mutex
	pending *pendingSignIn
}

type pendingSignIn struct {
	once   sync.Once
	result chan Outcome
}

func (p *pendingSignIn) resolve(o Outcome) bool {
	resolved := false
	p.once.Do(func() {
		p.result <- o
		resolved = true
	})
	return resolved
}

// NewGoogleWidget creates a widget for the OAuth client clientID
func NewGoogleWidget(clientID string, log logrus.FieldLogger) *GoogleWidget {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &GoogleWidget{
		clientID: clientID,
		log:      log.WithField("component", "google"),
		now:      time.Now,
	}
}

// Name returns the provider name
func (w *GoogleWidget) Name() string {
	return models.ProviderGoogle
}

// ClientID returns the OAuth client id rendered into the widget page
func (w *GoogleWidget) ClientID() string {
	return w.clientID
}

// Pending reports whether a sign-in is waiting for the widget
func (w *GoogleWidget) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending != nil
}

// SignIn waits for the widget callback. Cancelling ctx cancels the sign-in.
func (w *GoogleWidget) SignIn(ctx context.Context) Outcome {
	w.mu.Lock()
	if w.pending != nil {
		w.mu.Unlock()
		return Failure(ErrSignInInProgress)
	}
	p := &pendingSignIn{result: make(chan Outcome, 1)}
	w.pending = p
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		if w.pending == p {
			w.pending = nil
		}
		w.mu.Unlock()
	}()

	w.log.Debug("waiting for widget credential")
	select {
	case o := <-p.result:
		return o
	case <-ctx.Done():
		if p.resolve(Cancellation()) {
			w.log.Info("sign-in cancelled before the widget responded")
		}
		return <-p.result
	}
}

// Complete resolves the pending sign-in with the widget's response. It
// reports false when there was nothing to resolve: no sign-in pending, or
// the pending one already completed.
func (w *GoogleWidget) Complete(credential string, err error) bool {
	w.mu.Lock()
	p := w.pending
	w.mu.Unlock()
	if p == nil {
		w.log.Warn("widget callback with no pending sign-in")
		return false
	}

	var o Outcome
	switch {
	case err != nil:
		o = Failure(err)
	case credential == "":
		o = Failure(ErrNoCredential)
	default:
		if verr := w.inspect(credential); verr != nil {
			o = Failure(verr)
		} else {
			o = Success(&models.ProviderCredential{Provider: models.ProviderGoogle, Credential: credential})
		}
	}

	if !p.resolve(o) {
		w.log.Debug("ignoring repeated widget callback")
		return false
	}
	return true
}

// inspect reads the ID token claims without verifying the signature and
// rejects tokens that the backend would refuse anyway
func (w *GoogleWidget) inspect(credential string) error {
	claims := &GoogleClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(credential, claims); err != nil {
		return errors.Wrap(err, "malformed Google credential")
	}
	if claims.ExpiresAt != nil && w.now().After(claims.ExpiresAt.Time) {
		return ErrCredentialExpired
	}
	if w.clientID != "" && !slices.Contains([]string(claims.Audience), w.clientID) {
		return ErrWrongAudience
	}
	w.log.WithField("email", claims.Email).Debug("received Google credential")
	return nil
}
