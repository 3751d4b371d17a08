package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/profilehub/profilehub/config"
	"github.com/profilehub/profilehub/internal/types"
)

// TokenIssuer creates and verifies signed, time-limited access tokens.
// The signing key is injected at construction time; there is no ambient
// secret. Tokens are never persisted server-side, so a leaked token stays
// valid until its natural expiry.
type TokenIssuer struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenIssuer(cfg config.JWTConfig) *TokenIssuer {
	if cfg.SecretKey == "" {
		panic("JWT Secret Key cannot be empty")
	}
	return &TokenIssuer{
		secretKey: []byte(cfg.SecretKey),
		issuer:    cfg.Issuer,
		ttl:       cfg.TokenTTL,
		now:       time.Now,
	}
}

// Issue signs an HS256 token carrying the user's identity claims, expiring
// after the configured TTL.
func (t *TokenIssuer) Issue(user *types.User) (string, error) {
	now := t.now()
	claims := types.Claims{
		UserID: user.ID.String(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Verify checks signature integrity and expiry. Malformed, tampered and
// expired tokens all come back as ErrUnauthenticated; none of them is a
// server error.
func (t *TokenIssuer) Verify(tokenString string) (*types.Claims, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secretKey, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired token", types.ErrUnauthenticated)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: invalid token", types.ErrUnauthenticated)
	}
	if t.issuer != "" && claims.Issuer != t.issuer {
		return nil, fmt.Errorf("%w: invalid token issuer", types.ErrUnauthenticated)
	}
	return claims, nil
}
