package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const transactionColumns = `t.id, t.created_by, t.type, t.amount_cents, t.category, t.description, t.date,
	t.context_kind, t.group_id, t.contact_name, t.contact_email, t.contact_phone,
	t.payer_id, t.split_type, t.bank_account_id, t.created_at, t.updated_at`

type transactionRow struct {
	ID            string  `db:"id"`
	CreatedBy     string  `db:"created_by"`
	Type          string  `db:"type"`
	AmountCents   int64   `db:"amount_cents"`
	Category      string  `db:"category"`
	Description   string  `db:"description"`
	Date          int64   `db:"date"`
	ContextKind   string  `db:"context_kind"`
	GroupID       *string `db:"group_id"`
	ContactName   string  `db:"contact_name"`
	ContactEmail  string  `db:"contact_email"`
	ContactPhone  string  `db:"contact_phone"`
	PayerID       string  `db:"payer_id"`
	SplitType     string  `db:"split_type"`
	BankAccountID *string `db:"bank_account_id"`
	CreatedAt     int64   `db:"created_at"`
	UpdatedAt     int64   `db:"updated_at"`
}

type participantRow struct {
	TransactionID     string        `db:"transaction_id"`
	UserID            string        `db:"user_id"`
	Position          int           `db:"position"`
	CustomAmountCents sql.NullInt64 `db:"custom_amount_cents"`
}

func newTransactionRow(tx *models.Transaction) transactionRow {
	row := transactionRow{
		ID:            tx.ID,
		CreatedBy:     tx.CreatedBy,
		Type:          string(tx.Type),
		AmountCents:   models.Cents(tx.Amount),
		Category:      tx.Category,
		Description:   tx.Description,
		Date:          tx.Date,
		ContextKind:   string(tx.Context.Kind),
		GroupID:       nullable(tx.Context.GroupID),
		PayerID:       tx.PayerID,
		SplitType:     string(tx.SplitType),
		BankAccountID: nullable(tx.BankAccountID),
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}
	if c := tx.Context.Contact; c != nil {
		row.ContactName, row.ContactEmail, row.ContactPhone = c.Name, c.Email, c.Phone
	}
	return row
}

func (r transactionRow) toModel() *models.Transaction {
	tx := &models.Transaction{
		ID:            r.ID,
		CreatedBy:     r.CreatedBy,
		Type:          models.TransactionType(r.Type),
		Amount:        models.FromCents(r.AmountCents),
		Category:      r.Category,
		Description:   r.Description,
		Date:          r.Date,
		PayerID:       r.PayerID,
		SplitType:     models.SplitType(r.SplitType),
		BankAccountID: deref(r.BankAccountID),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
	switch models.ContextKind(r.ContextKind) {
	case models.ContextGroup:
		tx.Context = models.GroupContext(deref(r.GroupID))
	case models.ContextContact:
		tx.Context = models.ContactContext(models.ContactInfo{
			Name:  r.ContactName,
			Email: r.ContactEmail,
			Phone: r.ContactPhone,
		})
	default:
		tx.Context = models.PersonalContext()
	}
	return tx
}

// CreateTransaction persists a new transaction with participants and settlements.
func (q *queries) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if tx.CreatedAt == 0 {
		tx.CreatedAt = now
	}
	if tx.UpdatedAt == 0 {
		tx.UpdatedAt = tx.CreatedAt
	}
	if tx.Date == 0 {
		tx.Date = tx.CreatedAt
	}

	return q.atomic(ctx, func(q *queries) error {
		_, err := sqlx.NamedExecContext(ctx, q.ext, `
			INSERT INTO transactions (
				id, created_by, type, amount_cents, category, description, date,
				context_kind, group_id, contact_name, contact_email, contact_phone,
				payer_id, split_type, bank_account_id, created_at, updated_at
			) VALUES (
				:id, :created_by, :type, :amount_cents, :category, :description, :date,
				:context_kind, :group_id, :contact_name, :contact_email, :contact_phone,
				:payer_id, :split_type, :bank_account_id, :created_at, :updated_at
			)`,
			newTransactionRow(tx),
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}

		if err := q.insertParticipants(ctx, tx); err != nil {
			return err
		}

		for i := range tx.Settlements {
			s := &tx.Settlements[i]
			s.TransactionID = tx.ID
			if err := q.insertSettlement(ctx, s); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetTransaction retrieves a transaction by ID, including settlements and history.
func (q *queries) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var row transactionRow
	err := sqlx.GetContext(ctx, q.ext, &row, `SELECT `+transactionColumns+` FROM transactions t WHERE t.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	txs := []*models.Transaction{row.toModel()}
	if err := q.loadTransactionDetails(ctx, txs); err != nil {
		return nil, err
	}
	return txs[0], nil
}

// ListTransactions retrieves matching transactions, newest first.
func (q *queries) ListTransactions(ctx context.Context, filter storage.TransactionFilter) ([]*models.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if filter.GroupID != "" {
		where = append(where, "t.group_id = ?")
		args = append(args, filter.GroupID)
	}
	if filter.VisibleTo != "" {
		where = append(where, `(t.created_by = ? OR t.payer_id = ? OR EXISTS (
			SELECT 1 FROM transaction_participants p WHERE p.transaction_id = t.id AND p.user_id = ?))`)
		args = append(args, filter.VisibleTo, filter.VisibleTo, filter.VisibleTo)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions t`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.date DESC, t.created_at DESC, t.id"

	var rows []transactionRow
	if err := sqlx.SelectContext(ctx, q.ext, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txs := make([]*models.Transaction, 0, len(rows))
	for _, row := range rows {
		txs = append(txs, row.toModel())
	}
	if err := q.loadTransactionDetails(ctx, txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// UpdateTransaction rewrites the editable fields and custom amounts of a
// transaction. Settlements are left alone.
func (q *queries) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	tx.UpdatedAt = time.Now().Unix()

	return q.atomic(ctx, func(q *queries) error {
		res, err := q.ext.ExecContext(ctx, `
			UPDATE transactions
			SET amount_cents = ?, category = ?, description = ?, date = ?, split_type = ?, updated_at = ?
			WHERE id = ?`,
			models.Cents(tx.Amount), tx.Category, tx.Description, tx.Date, string(tx.SplitType), tx.UpdatedAt, tx.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		n, err := rowsAffected(res)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("transaction %s: %w", tx.ID, storage.ErrNotFound)
		}

		if _, err := q.ext.ExecContext(ctx, "DELETE FROM transaction_participants WHERE transaction_id = ?", tx.ID); err != nil {
			return fmt.Errorf("failed to clear participants: %w", err)
		}
		return q.insertParticipants(ctx, tx)
	})
}

// DeleteTransaction removes a transaction and everything it owns.
func (q *queries) DeleteTransaction(ctx context.Context, id string) error {
	res, err := q.ext.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

func (q *queries) insertParticipants(ctx context.Context, tx *models.Transaction) error {
	for i, p := range tx.Participants {
		row := participantRow{TransactionID: tx.ID, UserID: p, Position: i}
		if amt, ok := tx.CustomAmounts[p]; ok {
			row.CustomAmountCents = sql.NullInt64{Int64: models.Cents(amt), Valid: true}
		}
		_, err := sqlx.NamedExecContext(ctx, q.ext, `
			INSERT INTO transaction_participants (transaction_id, user_id, position, custom_amount_cents)
			VALUES (:transaction_id, :user_id, :position, :custom_amount_cents)`,
			row,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}
	return nil
}

// deleteSettlementsExcept drops the transaction's settlements of anyone not
// in participants. A dropped settlement must still be untouched pending.
func (q *queries) deleteSettlementsExcept(ctx context.Context, txID string, participants []string) error {
	where := "transaction_id = ?"
	args := []any{txID}
	if len(participants) > 0 {
		cond, inArgs, err := sqlx.In("participant NOT IN (?)", participants)
		if err != nil {
			return fmt.Errorf("failed to build settlement cleanup: %w", err)
		}
		where += " AND " + cond
		args = append(args, inArgs...)
	}

	var progressed int
	err := sqlx.GetContext(ctx, q.ext, &progressed, q.ext.Rebind(
		"SELECT COUNT(*) FROM settlements WHERE "+where+" AND (status != 'pending' OR paid_at != 0 OR rejected_at != 0)"),
		args...)
	if err != nil {
		return fmt.Errorf("failed to check settlements: %w", err)
	}
	if progressed > 0 {
		return fmt.Errorf("transaction %s: %w", txID, storage.ErrStaleSettlement)
	}

	if _, err := q.ext.ExecContext(ctx, q.ext.Rebind("DELETE FROM settlements WHERE "+where), args...); err != nil {
		return fmt.Errorf("failed to delete settlements: %w", err)
	}
	return nil
}

// loadTransactionDetails fills participants, custom amounts and settlements
// for a batch of transactions.
func (q *queries) loadTransactionDetails(ctx context.Context, txs []*models.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	byID := make(map[string]*models.Transaction, len(txs))
	ids := make([]string, 0, len(txs))
	for _, tx := range txs {
		byID[tx.ID] = tx
		ids = append(ids, tx.ID)
	}

	query, args, err := sqlx.In(`
		SELECT transaction_id, user_id, position, custom_amount_cents
		FROM transaction_participants
		WHERE transaction_id IN (?)
		ORDER BY transaction_id, position`, ids)
	if err != nil {
		return fmt.Errorf("failed to build participant query: %w", err)
	}
	var parts []participantRow
	if err := sqlx.SelectContext(ctx, q.ext, &parts, q.ext.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to get participants: %w", err)
	}
	for _, p := range parts {
		tx := byID[p.TransactionID]
		tx.Participants = append(tx.Participants, p.UserID)
		if p.CustomAmountCents.Valid {
			if tx.CustomAmounts == nil {
				tx.CustomAmounts = make(map[string]decimal.Decimal)
			}
			tx.CustomAmounts[p.UserID] = models.FromCents(p.CustomAmountCents.Int64)
		}
	}

	settlements, err := q.settlementsForTransactions(ctx, ids)
	if err != nil {
		return err
	}
	for _, s := range settlements {
		tx := byID[s.TransactionID]
		tx.Settlements = append(tx.Settlements, s)
	}
	return nil
}
