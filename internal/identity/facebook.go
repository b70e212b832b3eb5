package identity

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/snaptop/client/internal/models"
)

// Graph API defaults
const (
	DefaultGraphURL   = "https://graph.facebook.com"
	DefaultAPIVersion = "v18.0"
)

// LoadState is the Facebook SDK lifecycle. It only moves forward.
type LoadState int

const (
	StateNotLoaded LoadState = iota
	StateLoading
	StateReady
	StateFailed
)

func (s LoadState) String() string {
	switch s {
	case StateNotLoaded:
		return "not_loaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FacebookConfig identifies the Facebook app
type FacebookConfig struct {
	AppID       string
	ClientToken string
	GraphURL    string
	APIVersion  string
}

func (c FacebookConfig) appToken() string {
	return c.AppID + "|" + c.ClientToken
}

// App is what the Graph API reports about the configured app
type App struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Loader initializes the Facebook SDK once. Concurrent Load calls share the
// single in-flight initialization.
type Loader struct {
	cfg   FacebookConfig
	graph *graphClient
	log   logrus.FieldLogger

	mu    sync.Mutex
	state LoadState
	app   *App
	err   error
	done  chan struct{}
	ready chan struct{}
}

// NewLoader creates a loader in StateNotLoaded
func NewLoader(cfg FacebookConfig, httpClient *http.Client, log logrus.FieldLogger) *Loader {
	if cfg.GraphURL == "" {
		cfg.GraphURL = DefaultGraphURL
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Loader{
		cfg:   cfg,
		graph: &graphClient{baseURL: cfg.GraphURL, version: cfg.APIVersion, httpClient: httpClient},
		log:   log.WithField("component", "facebook"),
		done:  make(chan struct{}),
		ready: make(chan struct{}),
	}
}

// Load initializes the SDK, or waits for the initialization already running.
// A failed load is final and keeps returning its error. Cancelling ctx stops
// this caller from waiting but not the load itself.
func (l *Loader) Load(ctx context.Context) error {
	l.mu.Lock()
	switch l.state {
	case StateReady:
		l.mu.Unlock()
		return nil
	case StateFailed:
		err := l.err
		l.mu.Unlock()
		return err
	case StateNotLoaded:
		l.state = StateLoading
		go l.initialize(context.WithoutCancel(ctx))
	}
	l.mu.Unlock()

	select {
	case <-l.done:
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loader) initialize(ctx context.Context) {
	l.log.Debug("loading Facebook SDK")
	app, err := l.verifyApp(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.state = StateFailed
		l.err = errors.Wrap(err, "failed to initialize Facebook SDK")
		l.log.WithError(err).Error("Facebook SDK failed to load")
	} else {
		l.state = StateReady
		l.app = app
		close(l.ready)
		l.log.WithField("app", app.Name).Info("Facebook SDK ready")
	}
	close(l.done)
}

// verifyApp confirms the app id and client token against the Graph API
func (l *Loader) verifyApp(ctx context.Context) (*App, error) {
	if l.cfg.AppID == "" || l.cfg.ClientToken == "" {
		return nil, errors.New("facebook app id and client token are required")
	}
	params := url.Values{
		"fields":       {"id,name"},
		"access_token": {l.cfg.appToken()},
	}
	var app App
	if err := l.graph.get(ctx, l.cfg.AppID, params, &app); err != nil {
		return nil, err
	}
	if app.ID != l.cfg.AppID {
		return nil, errors.Errorf("graph api returned app %q, expected %q", app.ID, l.cfg.AppID)
	}
	return &app, nil
}

// Ready is closed once the SDK is ready. It is never closed if loading fails.
func (l *Loader) Ready() <-chan struct{} {
	return l.ready
}

// IsReady reports whether the SDK is ready
func (l *Loader) IsReady() bool {
	return l.State() == StateReady
}

// State returns the current lifecycle state
func (l *Loader) State() LoadState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// App returns the verified app, or nil before the SDK is ready
func (l *Loader) App() *App {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.app
}

// DevicePrompt is what the user needs to authorize a device login
type DevicePrompt struct {
	UserCode        string
	VerificationURI string
	ExpiresIn       time.Duration
}

// Prompter shows the device login prompt to the user
type Prompter func(ctx context.Context, prompt DevicePrompt) error

// FacebookSDK signs in through Facebook device login once the loader is ready
type FacebookSDK struct {
	loader       *Loader
	prompt       Prompter
	log          logrus.FieldLogger
	pollInterval time.Duration
}

// FacebookOption configures a FacebookSDK
type FacebookOption func(*FacebookSDK)

// WithPollInterval overrides the interval the Graph API asks for
func WithPollInterval(d time.Duration) FacebookOption {
	return func(f *FacebookSDK) { f.pollInterval = d }
}

// NewFacebookSDK creates a provider on top of loader
func NewFacebookSDK(loader *Loader, prompt Prompter, opts ...FacebookOption) *FacebookSDK {
	f := &FacebookSDK{loader: loader, prompt: prompt, log: loader.log}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the provider name
func (f *FacebookSDK) Name() string {
	return models.ProviderFacebook
}

type deviceCode struct {
	Code            string `json:"code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
}

type deviceToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// SignIn runs a device login. It fails with ErrNotReady if the SDK has not
// finished loading.
func (f *FacebookSDK) SignIn(ctx context.Context) Outcome {
	if !f.loader.IsReady() {
		return Failure(ErrNotReady)
	}
	cfg := f.loader.cfg
	graph := f.loader.graph

	var code deviceCode
	err := graph.post(ctx, "device/login", url.Values{
		"access_token": {cfg.appToken()},
		"scope":        {"public_profile,email"},
	}, &code)
	if err != nil {
		return f.failure(ctx, errors.Wrap(err, "failed to start device login"))
	}

	prompt := DevicePrompt{
		UserCode:        code.UserCode,
		VerificationURI: code.VerificationURI,
		ExpiresIn:       time.Duration(code.ExpiresIn) * time.Second,
	}
	if f.prompt != nil {
		if err := f.prompt(ctx, prompt); err != nil {
			return f.failure(ctx, errors.Wrap(err, "failed to show login code"))
		}
	}

	token, o := f.poll(ctx, cfg, code)
	if token == nil {
		return o
	}

	var me struct {
		ID string `json:"id"`
	}
	err = graph.get(ctx, "me", url.Values{
		"fields":       {"id"},
		"access_token": {token.AccessToken},
	}, &me)
	if err != nil {
		return f.failure(ctx, errors.Wrap(err, "failed to fetch Facebook user"))
	}

	f.log.WithField("facebook_user_id", me.ID).Info("device login authorized")
	return Success(&models.ProviderCredential{
		Provider:    models.ProviderFacebook,
		AccessToken: token.AccessToken,
		UserID:      me.ID,
	})
}

// poll waits for the user to authorize the device code. A nil token comes
// with the outcome to report.
func (f *FacebookSDK) poll(ctx context.Context, cfg FacebookConfig, code deviceCode) (*deviceToken, Outcome) {
	interval := time.Duration(code.Interval) * time.Second
	if f.pollInterval > 0 {
		interval = f.pollInterval
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	deadline := time.Now().Add(time.Duration(code.ExpiresIn) * time.Second)
	if code.ExpiresIn <= 0 {
		deadline = time.Now().Add(10 * time.Minute)
	}

	for {
		select {
		case <-ctx.Done():
			f.log.Info("device login cancelled")
			return nil, Cancellation()
		case <-time.After(interval):
		}
		if time.Now().After(deadline) {
			f.log.Info("device login code expired")
			return nil, Cancellation()
		}

		var token deviceToken
		err := f.loader.graph.post(ctx, "device/login_status", url.Values{
			"access_token": {cfg.appToken()},
			"code":         {code.Code},
		}, &token)
		if err == nil && token.AccessToken != "" {
			return &token, Outcome{}
		}

		var gerr *GraphError
		switch {
		case err == nil:
			return nil, Failure(errors.New("device login returned no access token"))
		case errors.As(err, &gerr) && gerr.Subcode == subcodeAuthorizationPending:
			continue
		case errors.As(err, &gerr) && gerr.Subcode == subcodeSlowDown:
			interval += 5 * time.Second
			continue
		case errors.As(err, &gerr) && gerr.Subcode == subcodeCodeExpired:
			f.log.Info("device login code expired")
			return nil, Cancellation()
		case errors.As(err, &gerr) && gerr.declined():
			f.log.Info("device login declined")
			return nil, Cancellation()
		default:
			return nil, f.failure(ctx, errors.Wrap(err, "device login failed"))
		}
	}
}

// failure treats errors caused by a cancelled context as a cancellation
func (f *FacebookSDK) failure(ctx context.Context, err error) Outcome {
	if ctx.Err() != nil {
		return Cancellation()
	}
	f.log.WithError(err).Error("Facebook sign-in failed")
	return Failure(err)
}
