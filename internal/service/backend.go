package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/snaptop/client/internal/models"
	"github.com/pageza/snaptop/client/internal/types"
)

// Backend routes
const (
	pathHealth           = "/"
	pathGenerateRecipe   = "/api/recipes/generate"
	pathRegenerateRecipe = "/api/recipes/regenerate"
	pathModifyRecipe     = "/api/recipes/modify"
	pathAuthGoogle       = "/api/auth/google"
	pathAuthFacebook     = "/api/auth/facebook"
)

// Authorizer supplies the Authorization header for the current session.
// An empty string means no session.
type Authorizer interface {
	AuthorizationHeader() string
}

// BackendClient talks to the recipe backend over REST. It keeps no
// connection state between calls.
type BackendClient struct {
	baseURL    string
	httpClient *http.Client
	authorizer Authorizer
	log        logrus.FieldLogger
}

// Option configures a BackendClient
type Option func(*BackendClient)

// WithAuthorizer attaches session credentials to outgoing calls
func WithAuthorizer(a Authorizer) Option {
	return func(c *BackendClient) { c.authorizer = a }
}

// WithLogger overrides the logger
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *BackendClient) { c.log = log }
}

// NewBackendClient creates a client for the backend at baseURL. If httpClient
// is nil a client with a 120 second timeout is used; recipe generation
// includes image generation on the backend and is slow.
func NewBackendClient(baseURL string, httpClient *http.Client, opts ...Option) *BackendClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	c := &BackendClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "backend")
	return c
}

// GenerateRecipe asks the backend for a new recipe
func (c *BackendClient) GenerateRecipe(ctx context.Context, req *models.GenerateRecipeRequest) (*models.Recipe, error) {
	if req == nil {
		return nil, &ValidationError{Field: "description", Message: "is required"}
	}
	wire := toWireRequest(req)
	if err := validateRequest(wire); err != nil {
		return nil, err
	}
	return c.recipeCall(ctx, pathGenerateRecipe, wire)
}

// RegenerateRecipe asks the backend for a fresh take on an existing recipe.
// reason may be empty.
func (c *BackendClient) RegenerateRecipe(ctx context.Context, recipeID, reason string) (*models.Recipe, error) {
	wire := &types.RegenerateRecipeRequest{RecipeID: recipeID}
	if reason != "" {
		wire.RegenerationReason = &reason
	}
	if err := validateRequest(wire); err != nil {
		return nil, err
	}
	return c.recipeCall(ctx, pathRegenerateRecipe, wire)
}

// ModifyRecipe asks the backend to change an existing recipe
func (c *BackendClient) ModifyRecipe(ctx context.Context, recipeID, instructions string) (*models.Recipe, error) {
	wire := &types.ModifyRecipeRequest{RecipeID: recipeID, ModificationInstructions: instructions}
	if err := validateRequest(wire); err != nil {
		return nil, err
	}
	return c.recipeCall(ctx, pathModifyRecipe, wire)
}

func (c *BackendClient) recipeCall(ctx context.Context, path string, body interface{}) (*models.Recipe, error) {
	var out types.Recipe
	if err := c.do(ctx, http.MethodPost, path, body, &out, backendFailure); err != nil {
		return nil, err
	}
	return fromWireRecipe(&out), nil
}

// Health checks that the backend is up
func (c *BackendClient) Health(ctx context.Context) (*types.HealthResponse, error) {
	var out types.HealthResponse
	if err := c.do(ctx, http.MethodGet, pathHealth, nil, &out, backendFailure); err != nil {
		return nil, err
	}
	return &out, nil
}

// AuthenticateWithGoogle exchanges a Google ID token for a session
func (c *BackendClient) AuthenticateWithGoogle(ctx context.Context, credential string) (*models.AuthResponse, error) {
	wire := &types.GoogleAuthRequest{Credential: credential}
	if err := validateRequest(wire); err != nil {
		return nil, err
	}
	return c.authCall(ctx, models.ProviderGoogle, pathAuthGoogle, wire)
}

// AuthenticateWithFacebook exchanges a Facebook access token for a session
func (c *BackendClient) AuthenticateWithFacebook(ctx context.Context, accessToken, userID string) (*models.AuthResponse, error) {
	wire := &types.FacebookAuthRequest{AccessToken: accessToken, UserID: userID}
	if err := validateRequest(wire); err != nil {
		return nil, err
	}
	return c.authCall(ctx, models.ProviderFacebook, pathAuthFacebook, wire)
}

// Authenticate exchanges any normalized provider credential for a session
func (c *BackendClient) Authenticate(ctx context.Context, cred models.ProviderCredential) (*models.AuthResponse, error) {
	switch cred.Provider {
	case models.ProviderGoogle:
		return c.AuthenticateWithGoogle(ctx, cred.Credential)
	case models.ProviderFacebook:
		return c.AuthenticateWithFacebook(ctx, cred.AccessToken, cred.UserID)
	default:
		return nil, &ValidationError{Field: "provider", Message: "unsupported provider " + cred.Provider}
	}
}

func (c *BackendClient) authCall(ctx context.Context, provider, path string, body interface{}) (*models.AuthResponse, error) {
	var out types.AuthResponse
	fail := func(status int, body string) error {
		return &AuthenticationError{Provider: provider, StatusCode: status, Body: body}
	}
	if err := c.do(ctx, http.MethodPost, path, body, &out, fail); err != nil {
		return nil, err
	}
	if out.User == nil || out.Token == nil {
		return nil, &DecodeError{Err: errors.New("auth response is missing user or token")}
	}
	resp := fromWireAuth(&out)
	if !resp.User.Valid() || !resp.Token.Valid() {
		return nil, &DecodeError{Err: errors.New("auth response has an incomplete user or token")}
	}
	return resp, nil
}

func backendFailure(status int, body string) error {
	return &BackendError{StatusCode: status, Body: body}
}

// do performs one round trip. A non-2xx status is turned into an error by
// fail; a 2xx status must carry a JSON body that decodes into out.
func (c *BackendClient) do(ctx context.Context, method, path string, in, out interface{}, fail func(int, string) error) error {
	var reqBody io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "failed to marshal request")
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	requestID := uuid.New().String()
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.authorizer != nil {
		if auth := c.authorizer.AuthorizationHeader(); auth != "" {
			req.Header.Set("Authorization", auth)
		}
	}

	log := c.log.WithFields(logrus.Fields{"request_id": requestID, "method": method, "path": path})
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("request failed")
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Warn("failed to read response")
		return &NetworkError{Op: "reading response", Err: err}
	}
	log = log.WithFields(logrus.Fields{"status": resp.StatusCode, "duration": time.Since(start)})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithField("body", string(body)).Warn("backend returned an error status")
		return fail(resp.StatusCode, string(body))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		log.Warn("backend returned an empty body")
		return &EmptyResponseError{StatusCode: resp.StatusCode}
	}
	if err := json.Unmarshal(body, out); err != nil {
		log.WithError(err).Warn("failed to decode response")
		return &DecodeError{Body: string(body), Err: err}
	}
	log.Debug("request completed")
	return nil
}
