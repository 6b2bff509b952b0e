package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string `db:"id"`

	// Email is the user's email address (unique). Used for login and to
	// match contact transactions to a registered counterparty.
	Email string `db:"email"`

	// DisplayName is shown to other group members.
	DisplayName string `db:"display_name"`

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `db:"password_hash"`

	// CreatedAt and UpdatedAt are Unix timestamps.
	CreatedAt int64 `db:"created_at"`
	UpdatedAt int64 `db:"updated_at"`
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
