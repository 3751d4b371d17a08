package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher is the one-way password hashing contract. Hash embeds a per-call
// random salt in its output, so hashing the same plaintext twice yields two
// different values that both verify.
type Hasher interface {
	Hash(plaintext string) (string, error)
	// Check reports whether plaintext matches hash. A malformed hash is
	// not an error, it simply does not match.
	Check(plaintext, hash string) bool
}

var _ Hasher = (*BcryptHasher)(nil)

// BcryptHasher implements Hasher with bcrypt at the default cost.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Check(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
