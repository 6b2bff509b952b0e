package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator registers users and checks their credentials. The ledger
// never sees credentials; it only receives the authenticated user ID.
type Authenticator interface {
	// Register creates a user account. Emails are matched case-insensitively.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the user whose credential matches.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	ValidateCredential(credential string) error
}
