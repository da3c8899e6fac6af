// Package identity implements the multi-step authentication protocol: a
// challenge engine that walks a caller through credential collection,
// new-password challenges and multi-factor codes to a terminal
// success/failure state, against a pluggable backend provider.
package identity

import (
	"strings"

	"github.com/google/uuid"
)

// TokenKind distinguishes the tokens attached to an authenticated user.
type TokenKind string

const (
	IDToken      TokenKind = "ID_TOKEN"
	AccessToken  TokenKind = "ACCESS_TOKEN"
	RefreshToken TokenKind = "REFRESH_TOKEN"
)

// User is an authenticated identity. It replaces any prior user in the
// session store and is cleared on sign-out.
type User struct {
	ID         string
	Username   string
	Attributes map[string]string
	Tokens     map[TokenKind]string
}

func NewUser() *User {
	return &User{
		ID:         uuid.New().String(),
		Attributes: make(map[string]string),
		Tokens:     make(map[TokenKind]string),
	}
}

// DeriveUsername maps email-like input onto the backend user identifier.
// The substitution is a backend contract, not cosmetic; a different
// backend swaps this one function.
func DeriveUsername(emailAddr string) string {
	replaced := strings.ReplaceAll(emailAddr, "@", "_")
	return strings.ReplaceAll(replaced, ".", "_")
}
