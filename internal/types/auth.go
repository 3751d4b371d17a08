package types

import "github.com/golang-jwt/jwt/v5"

// Claims are the custom claims carried by an access token.
type Claims struct {
	UserID               string `json:"uid"`
	Email                string `json:"eml"`
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt, Issuer, etc.
}
