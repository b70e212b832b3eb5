package models

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Identity providers known to the backend. The set is open; the backend tags
// users with whatever provider issued them.
const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
)

// User represents the authenticated identity returned by the backend
type User struct {
	UserID   string  `json:"userId"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Picture  *string `json:"picture,omitempty"`
	Provider string  `json:"provider"`
}

// Valid reports whether the fields required for a session are present
func (u *User) Valid() bool {
	return u != nil && u.UserID != "" && u.Provider != ""
}

// Initials returns up to two upper-cased initials of the display name, used
// when the user has no picture.
func (u *User) Initials() string {
	var b strings.Builder
	for _, part := range strings.Fields(u.Name) {
		r, _ := utf8.DecodeRuneInString(part)
		b.WriteRune(unicode.ToUpper(r))
		if utf8.RuneCountInString(b.String()) == 2 {
			break
		}
	}
	return b.String()
}

// Token is the opaque session credential issued by the backend
type Token struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
}

// Valid reports whether the token carries an access token
func (t *Token) Valid() bool {
	return t != nil && t.AccessToken != ""
}

// AuthResponse is the result of exchanging a provider credential.
// Both fields are always populated together.
type AuthResponse struct {
	User  User  `json:"user"`
	Token Token `json:"token"`
}

// ProviderCredential is the normalized output of a third-party sign-in.
// Google fills Credential; Facebook fills AccessToken and UserID.
type ProviderCredential struct {
	Provider    string
	Credential  string
	AccessToken string
	UserID      string
}
