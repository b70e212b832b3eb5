// Package identity obtains credentials from third-party identity providers.
// Each sign-in attempt ends in exactly one Outcome: a credential, a
// cancellation, or a failure.
package identity

import (
	"context"

	"github.com/pkg/errors"

	"github.com/pageza/snaptop/client/internal/models"
)

var (
	// ErrCancelled is reported when the user abandons a sign-in
	ErrCancelled = models.ErrSignInCancelled
	// ErrNotReady is returned when a provider is used before its SDK loaded
	ErrNotReady = models.ErrProviderNotReady
	// ErrSignInInProgress is returned when a provider already has a pending sign-in
	ErrSignInInProgress = errors.New("a sign-in is already in progress")
)

// Outcome is the single result of a sign-in attempt
type Outcome struct {
	Credential *models.ProviderCredential
	Cancelled  bool
	Err        error
}

// Success wraps a credential
func Success(cred *models.ProviderCredential) Outcome {
	return Outcome{Credential: cred}
}

// Cancellation reports that the user backed out
func Cancellation() Outcome {
	return Outcome{Cancelled: true}
}

// Failure wraps a provider error
func Failure(err error) Outcome {
	return Outcome{Err: err}
}

// Result flattens the outcome. Cancellation becomes ErrCancelled.
func (o Outcome) Result() (*models.ProviderCredential, error) {
	switch {
	case o.Cancelled:
		return nil, ErrCancelled
	case o.Err != nil:
		return nil, o.Err
	case o.Credential == nil:
		return nil, errors.New("provider returned no credential")
	default:
		return o.Credential, nil
	}
}

// Provider is a third-party sign-in. SignIn blocks until the attempt ends.
type Provider interface {
	Name() string
	SignIn(ctx context.Context) Outcome
}

// Source adapts a Provider to the login service
type Source struct {
	Provider Provider
}

// Name returns the provider name
func (s Source) Name() string {
	return s.Provider.Name()
}

// Credential runs one sign-in attempt
func (s Source) Credential(ctx context.Context) (*models.ProviderCredential, error) {
	return s.Provider.SignIn(ctx).Result()
}
