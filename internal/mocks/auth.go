package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/snaptop/client/internal/models"
)

// MockCredentialExchanger is a mock implementation of service.CredentialExchanger
type MockCredentialExchanger struct {
	mock.Mock
}

func (m *MockCredentialExchanger) Authenticate(ctx context.Context, cred models.ProviderCredential) (*models.AuthResponse, error) {
	args := m.Called(ctx, cred)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResponse), args.Error(1)
}

// MockSessionWriter is a mock implementation of service.SessionWriter
type MockSessionWriter struct {
	mock.Mock
}

func (m *MockSessionWriter) Login(ctx context.Context, user models.User, token models.Token) error {
	args := m.Called(ctx, user, token)
	return args.Error(0)
}

func (m *MockSessionWriter) Logout(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCredentialSource is a mock implementation of service.CredentialSource
type MockCredentialSource struct {
	mock.Mock
}

func (m *MockCredentialSource) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockCredentialSource) Credential(ctx context.Context) (*models.ProviderCredential, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProviderCredential), args.Error(1)
}
