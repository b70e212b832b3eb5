package service

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/pageza/snaptop/client/internal/models"
)

var (
	// ErrEmptyResponse is returned when the backend answers 2xx with no body
	ErrEmptyResponse = errors.New("empty response from server")
	// ErrProviderCancelled is returned when the user dismisses a sign-in flow.
	// It is not a failure and is shown with neutral wording.
	ErrProviderCancelled = models.ErrSignInCancelled
	// ErrGenerationInFlight is returned when a generation is already running
	ErrGenerationInFlight = errors.New("a recipe is already being generated")
	// ErrStaleResult is returned when a generation finished after the view was reset
	ErrStaleResult = errors.New("generation result discarded after reset")
)

// ValidationError represents missing or malformed input caught before any
// network call
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NetworkError is a transport failure: no response was received
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// BackendError is a non-success HTTP status from the backend
type BackendError struct {
	StatusCode int
	Body       string
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.StatusCode, e.Body)
}

// EmptyResponseError is a success status carrying no body
type EmptyResponseError struct {
	StatusCode int
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, ErrEmptyResponse)
}

func (e *EmptyResponseError) Unwrap() error { return ErrEmptyResponse }

// DecodeError is a success status whose body does not match the wire contract
type DecodeError struct {
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// AuthenticationError is a provider exchange rejected by the backend
type AuthenticationError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s authentication failed with status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// UserMessage maps an error from a generation call to the single sentence
// shown to the user. Details belong in the log.
func UserMessage(err error) string {
	var (
		validation *ValidationError
		network    *NetworkError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &validation):
		if validation.Field == "description" {
			return "Please describe what you would like to cook."
		}
		return fmt.Sprintf("Please check the %s field.", strings.ReplaceAll(validation.Field, "_", " "))
	case errors.Is(err, ErrGenerationInFlight):
		return "A recipe is already being generated."
	case errors.As(err, &network):
		return "Could not reach the recipe service. Check your connection and try again."
	default:
		return "Failed to generate recipe. Please try again."
	}
}

// SignInMessage maps an error from a sign-in attempt to the message shown to
// the user. Cancellation gets neutral wording.
func SignInMessage(provider string, err error) string {
	name := providerTitle(provider)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrProviderCancelled):
		return fmt.Sprintf("%s login was cancelled.", name)
	case errors.Is(err, models.ErrProviderNotReady):
		return fmt.Sprintf("%s SDK not loaded. Please try again in a moment.", name)
	case isExchangeFailure(err):
		return fmt.Sprintf("Failed to authenticate with %s. Please try again.", name)
	default:
		return fmt.Sprintf("%s login failed. Please try again.", name)
	}
}

// isExchangeFailure reports whether err came from the backend exchange rather
// than from the provider sign-in itself
func isExchangeFailure(err error) bool {
	var (
		authErr    *AuthenticationError
		network    *NetworkError
		decode     *DecodeError
		validation *ValidationError
	)
	return errors.As(err, &authErr) || errors.As(err, &network) ||
		errors.As(err, &decode) || errors.As(err, &validation) ||
		errors.Is(err, ErrEmptyResponse)
}

func providerTitle(provider string) string {
	if provider == "" {
		return "Provider"
	}
	return strings.ToUpper(provider[:1]) + provider[1:]
}
