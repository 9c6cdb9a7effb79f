package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims is the payload of an access token. The subject claim holds the user ID.
type TokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (c *TokenClaims) UserID() string {
	return c.Subject
}
