package types

import (
	"time"

	"github.com/google/uuid"
)

// User is the core account entity. PasswordHash is excluded from every JSON
// representation; only the hashing code ever reads it.
type User struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	ProfilePictureRef *string   `json:"profile_picture_ref,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// UpdateProfileParams carries a partial profile update. Nil means "leave the
// field untouched"; a present-but-empty username or email is rejected.
type UpdateProfileParams struct {
	Username          *string `json:"username,omitempty"`
	Email             *string `json:"email,omitempty"`
	Password          *string `json:"password,omitempty"`
	ProfilePictureRef *string `json:"profile_picture_ref,omitempty"`
}
