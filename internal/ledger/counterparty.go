package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// ErrNoCounterparty means the contact is not a registered user, so there is
// nothing to mirror.
var ErrNoCounterparty = errors.New("contact is not a registered user")

// CounterpartyResolver finds the bank account that mirrors a contact
// transaction on the other side.
type CounterpartyResolver interface {
	// ResolveCounterparty returns the contact's primary bank account, or
	// ErrNoCounterparty when the contact has no account with us.
	ResolveCounterparty(ctx context.Context, contact models.ContactInfo) (*models.BankAccount, error)
}

// StoreResolver matches contacts to registered users by email.
type StoreResolver struct {
	store storage.Repository
}

func NewStoreResolver(store storage.Repository) *StoreResolver {
	return &StoreResolver{store: store}
}

func (r *StoreResolver) ResolveCounterparty(ctx context.Context, contact models.ContactInfo) (*models.BankAccount, error) {
	email := strings.TrimSpace(strings.ToLower(contact.Email))
	if email == "" {
		return nil, ErrNoCounterparty
	}

	user, err := r.store.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNoCounterparty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up counterparty: %w", err)
	}

	acct, err := r.store.GetPrimaryBankAccount(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("counterparty %s has no primary bank account: %w", user.ID, err)
	}
	return acct, nil
}
