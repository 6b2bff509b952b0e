package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const bankAccountColumns = `id, owner_id, name, balance_cents, is_primary, created_at, updated_at`

type bankAccountRow struct {
	ID           string `db:"id"`
	OwnerID      string `db:"owner_id"`
	Name         string `db:"name"`
	BalanceCents int64  `db:"balance_cents"`
	IsPrimary    bool   `db:"is_primary"`
	CreatedAt    int64  `db:"created_at"`
	UpdatedAt    int64  `db:"updated_at"`
}

func (r bankAccountRow) toModel() *models.BankAccount {
	return &models.BankAccount{
		ID:             r.ID,
		OwnerID:        r.OwnerID,
		Name:           r.Name,
		CurrentBalance: models.FromCents(r.BalanceCents),
		IsPrimary:      r.IsPrimary,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// CreateBankAccount persists a new account. A primary account takes the
// primary flag away from the owner's other accounts.
func (q *queries) CreateBankAccount(ctx context.Context, account *models.BankAccount) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if account.CreatedAt == 0 {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	row := bankAccountRow{
		ID:           account.ID,
		OwnerID:      account.OwnerID,
		Name:         account.Name,
		BalanceCents: models.Cents(account.CurrentBalance),
		IsPrimary:    account.IsPrimary,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}

	return q.atomic(ctx, func(q *queries) error {
		if row.IsPrimary {
			if err := q.unsetPrimary(ctx, row.OwnerID); err != nil {
				return err
			}
		}
		_, err := sqlx.NamedExecContext(ctx, q.ext, `
			INSERT INTO bank_accounts (id, owner_id, name, balance_cents, is_primary, created_at, updated_at)
			VALUES (:id, :owner_id, :name, :balance_cents, :is_primary, :created_at, :updated_at)`,
			row,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bank account: %w", err)
		}
		return nil
	})
}

// GetBankAccount retrieves an account by ID.
func (q *queries) GetBankAccount(ctx context.Context, id string) (*models.BankAccount, error) {
	var row bankAccountRow
	err := sqlx.GetContext(ctx, q.ext, &row, `SELECT `+bankAccountColumns+` FROM bank_accounts WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("bank account %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank account: %w", err)
	}
	return row.toModel(), nil
}

// ListBankAccounts retrieves the owner's accounts, primary first.
func (q *queries) ListBankAccounts(ctx context.Context, ownerID string) ([]*models.BankAccount, error) {
	var rows []bankAccountRow
	err := sqlx.SelectContext(ctx, q.ext, &rows,
		`SELECT `+bankAccountColumns+` FROM bank_accounts WHERE owner_id = ? ORDER BY is_primary DESC, created_at, id`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}

	accounts := make([]*models.BankAccount, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, row.toModel())
	}
	return accounts, nil
}

// GetPrimaryBankAccount retrieves the owner's primary account.
func (q *queries) GetPrimaryBankAccount(ctx context.Context, ownerID string) (*models.BankAccount, error) {
	var row bankAccountRow
	err := sqlx.GetContext(ctx, q.ext, &row,
		`SELECT `+bankAccountColumns+` FROM bank_accounts WHERE owner_id = ? AND is_primary = 1`, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("primary bank account of %s: %w", ownerID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get primary bank account: %w", err)
	}
	return row.toModel(), nil
}

// SetPrimaryBankAccount unsets all of the owner's primary flags, then sets one.
func (q *queries) SetPrimaryBankAccount(ctx context.Context, ownerID, accountID string) error {
	return q.atomic(ctx, func(q *queries) error {
		if err := q.unsetPrimary(ctx, ownerID); err != nil {
			return err
		}
		res, err := q.ext.ExecContext(ctx,
			"UPDATE bank_accounts SET is_primary = 1, updated_at = ? WHERE id = ? AND owner_id = ?",
			time.Now().Unix(), accountID, ownerID,
		)
		if err != nil {
			return fmt.Errorf("failed to set primary bank account: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("bank account %s: %w", accountID, storage.ErrNotFound)
		}
		return nil
	})
}

// AdjustBalance applies delta only if the result stays non-negative.
func (q *queries) AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (decimal.Decimal, error) {
	cents := models.Cents(delta)

	var balance int64
	err := sqlx.GetContext(ctx, q.ext, &balance, `
		UPDATE bank_accounts
		SET balance_cents = balance_cents + ?, updated_at = ?
		WHERE id = ? AND balance_cents + ? >= 0
		RETURNING balance_cents`,
		cents, time.Now().Unix(), accountID, cents,
	)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the account is gone or the debit is too large.
		if _, getErr := q.GetBankAccount(ctx, accountID); getErr != nil {
			return decimal.Zero, getErr
		}
		return decimal.Zero, fmt.Errorf("bank account %s: %w", accountID, storage.ErrInsufficientBalance)
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to adjust balance: %w", err)
	}

	return models.FromCents(balance), nil
}

func (q *queries) unsetPrimary(ctx context.Context, ownerID string) error {
	_, err := q.ext.ExecContext(ctx,
		"UPDATE bank_accounts SET is_primary = 0, updated_at = ? WHERE owner_id = ? AND is_primary = 1",
		time.Now().Unix(), ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to unset primary bank account: %w", err)
	}
	return nil
}
