package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/snaptop/client/internal/models"
	"github.com/pageza/snaptop/client/internal/types"
)

// MockRecipeClient is a mock implementation of service.RecipeClient
type MockRecipeClient struct {
	mock.Mock
}

func (m *MockRecipeClient) GenerateRecipe(ctx context.Context, req *models.GenerateRecipeRequest) (*models.Recipe, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeClient) RegenerateRecipe(ctx context.Context, recipeID, reason string) (*models.Recipe, error) {
	args := m.Called(ctx, recipeID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeClient) ModifyRecipe(ctx context.Context, recipeID, instructions string) (*models.Recipe, error) {
	args := m.Called(ctx, recipeID, instructions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeClient) Health(ctx context.Context) (*types.HealthResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.HealthResponse), args.Error(1)
}
