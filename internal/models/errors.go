package models

import "github.com/pkg/errors"

// Sentinel errors shared across layers
var (
	// ErrNoImage is returned by Recipe.Image when the backend sent no image
	ErrNoImage = errors.New("recipe has no image")
	// ErrSignInCancelled means the user dismissed a third-party sign-in
	ErrSignInCancelled = errors.New("sign-in cancelled")
	// ErrProviderNotReady means a provider SDK was used before it finished loading
	ErrProviderNotReady = errors.New("provider sdk not loaded")
)
