package testhelpers

import (
	"github.com/pageza/snaptop/client/internal/models"
)

// TestUser returns a signed-in user as the backend would issue it
func TestUser() models.User {
	return models.User{
		UserID:   "user-123",
		Email:    "ada@example.com",
		Name:     "Ada Lovelace",
		Picture:  models.Ptr("https://example.com/ada.png"),
		Provider: models.ProviderGoogle,
	}
}

// TestToken returns a token matching TestUser
func TestToken() models.Token {
	return models.Token{AccessToken: "access-token-123", TokenType: "bearer"}
}
