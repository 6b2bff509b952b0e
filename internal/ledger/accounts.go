package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// CreateBankAccount registers an account for the actor. A user's first
// account is always primary.
func (l *Ledger) CreateBankAccount(ctx context.Context, actorID, name string, opening decimal.Decimal, primary bool) (*models.BankAccount, error) {
	v := &ValidationError{}
	name = strings.TrimSpace(name)
	if name == "" {
		v.Add("name", "is required")
	}
	if opening.IsNegative() {
		v.Add("openingBalance", "must not be negative")
	} else if !opening.Equal(opening.Round(2)) {
		v.Add("openingBalance", "must have at most two decimal places")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	acct := &models.BankAccount{
		OwnerID:        actorID,
		Name:           name,
		CurrentBalance: opening,
		IsPrimary:      primary,
	}
	err := l.store.InTx(ctx, func(r storage.Repository) error {
		existing, err := r.ListBankAccounts(ctx, actorID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			acct.IsPrimary = true
		}
		return r.CreateBankAccount(ctx, acct)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bank account: %w", err)
	}
	return acct, nil
}

func (l *Ledger) ListBankAccounts(ctx context.Context, actorID string) ([]*models.BankAccount, error) {
	accounts, err := l.store.ListBankAccounts(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	return accounts, nil
}

// SetPrimaryBankAccount makes accountID the actor's only primary account.
func (l *Ledger) SetPrimaryBankAccount(ctx context.Context, actorID, accountID string) (*models.BankAccount, error) {
	if _, err := l.accountOwnedBy(ctx, accountID, actorID); err != nil {
		return nil, err
	}

	err := l.store.InTx(ctx, func(r storage.Repository) error {
		return r.SetPrimaryBankAccount(ctx, actorID, accountID)
	})
	if err != nil {
		return nil, translate(err, "bank account", accountID)
	}

	acct, err := l.store.GetBankAccount(ctx, accountID)
	if err != nil {
		return nil, translate(err, "bank account", accountID)
	}
	return acct, nil
}
