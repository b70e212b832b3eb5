package types

// User is the wire form of models.User
type User struct {
	UserID   string  `json:"user_id"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Picture  *string `json:"picture,omitempty"`
	Provider string  `json:"provider"`
}

// Token is the wire form of models.Token
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthResponse is returned by both provider exchange endpoints
type AuthResponse struct {
	User  *User  `json:"user"`
	Token *Token `json:"token"`
}
