package service

import (
	"context"

	"github.com/pageza/snaptop/client/internal/models"
	"github.com/pageza/snaptop/client/internal/types"
)

// RecipeClient generates recipes
type RecipeClient interface {
	GenerateRecipe(ctx context.Context, req *models.GenerateRecipeRequest) (*models.Recipe, error)
	RegenerateRecipe(ctx context.Context, recipeID, reason string) (*models.Recipe, error)
	ModifyRecipe(ctx context.Context, recipeID, instructions string) (*models.Recipe, error)
	Health(ctx context.Context) (*types.HealthResponse, error)
}

// CredentialExchanger trades a provider credential for a backend session
type CredentialExchanger interface {
	Authenticate(ctx context.Context, cred models.ProviderCredential) (*models.AuthResponse, error)
}

// SessionWriter records the outcome of a sign-in
type SessionWriter interface {
	Login(ctx context.Context, user models.User, token models.Token) error
	Logout(ctx context.Context) error
}

// CredentialSource is a third-party sign-in. Credential blocks until the user
// completes, cancels or fails the flow; cancellation is reported as
// models.ErrSignInCancelled.
type CredentialSource interface {
	Name() string
	Credential(ctx context.Context) (*models.ProviderCredential, error)
}

var (
	_ RecipeClient        = (*BackendClient)(nil)
	_ CredentialExchanger = (*BackendClient)(nil)
)
