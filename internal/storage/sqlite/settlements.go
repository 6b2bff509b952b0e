package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const settlementColumns = `s.id, s.transaction_id, s.participant, s.amount_cents, s.status,
	s.paid_at, s.settled_by, s.confirmed_at, s.confirmed_by,
	s.rejected_at, s.rejected_by, s.rejection_reason`

type settlementRow struct {
	ID              string `db:"id"`
	TransactionID   string `db:"transaction_id"`
	Participant     string `db:"participant"`
	AmountCents     int64  `db:"amount_cents"`
	Status          string `db:"status"`
	PaidAt          int64  `db:"paid_at"`
	SettledBy       string `db:"settled_by"`
	ConfirmedAt     int64  `db:"confirmed_at"`
	ConfirmedBy     string `db:"confirmed_by"`
	RejectedAt      int64  `db:"rejected_at"`
	RejectedBy      string `db:"rejected_by"`
	RejectionReason string `db:"rejection_reason"`

	// Only set by queries that join the owning transaction.
	PayerID string `db:"payer_id"`
}

type historyRow struct {
	ID           string `db:"id"`
	SettlementID string `db:"settlement_id"`
	FromStatus   string `db:"from_status"`
	ToStatus     string `db:"to_status"`
	ActorID      string `db:"actor_id"`
	Reason       string `db:"reason"`
	At           int64  `db:"at"`
}

func newSettlementRow(s *models.Settlement) settlementRow {
	return settlementRow{
		ID:              s.ID,
		TransactionID:   s.TransactionID,
		Participant:     s.Participant,
		AmountCents:     models.Cents(s.Amount),
		Status:          string(s.Status),
		PaidAt:          s.PaidAt,
		SettledBy:       s.SettledBy,
		ConfirmedAt:     s.ConfirmedAt,
		ConfirmedBy:     s.ConfirmedBy,
		RejectedAt:      s.RejectedAt,
		RejectedBy:      s.RejectedBy,
		RejectionReason: s.RejectionReason,
	}
}

func (r settlementRow) toModel() models.Settlement {
	return models.Settlement{
		ID:              r.ID,
		TransactionID:   r.TransactionID,
		Participant:     r.Participant,
		Amount:          models.FromCents(r.AmountCents),
		Status:          models.SettlementStatus(r.Status),
		PaidAt:          r.PaidAt,
		SettledBy:       r.SettledBy,
		ConfirmedAt:     r.ConfirmedAt,
		ConfirmedBy:     r.ConfirmedBy,
		RejectedAt:      r.RejectedAt,
		RejectedBy:      r.RejectedBy,
		RejectionReason: r.RejectionReason,
	}
}

// ListSettlementsBetween retrieves what debtorID owes creditorID in a group.
func (q *queries) ListSettlementsBetween(ctx context.Context, groupID, debtorID, creditorID string) ([]storage.SettlementWithPayer, error) {
	var rows []settlementRow
	err := sqlx.SelectContext(ctx, q.ext, &rows, `
		SELECT `+settlementColumns+`, t.payer_id
		FROM settlements s
		JOIN transactions t ON t.id = s.transaction_id
		WHERE t.group_id = ? AND t.payer_id = ? AND s.participant = ?
		ORDER BY t.date, t.created_at, s.id`,
		groupID, creditorID, debtorID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}

	settlements := make([]models.Settlement, 0, len(rows))
	for _, row := range rows {
		settlements = append(settlements, row.toModel())
	}
	if err := q.attachHistory(ctx, settlements); err != nil {
		return nil, err
	}

	out := make([]storage.SettlementWithPayer, 0, len(rows))
	for i, row := range rows {
		out = append(out, storage.SettlementWithPayer{Settlement: settlements[i], PayerID: row.PayerID})
	}
	return out, nil
}

// UpdateSettlement writes after, guarded by the state before was read in.
func (q *queries) UpdateSettlement(ctx context.Context, before, after models.Settlement) error {
	row := newSettlementRow(&after)
	res, err := q.ext.ExecContext(ctx, `
		UPDATE settlements SET
			amount_cents = ?, status = ?,
			paid_at = ?, settled_by = ?,
			confirmed_at = ?, confirmed_by = ?,
			rejected_at = ?, rejected_by = ?, rejection_reason = ?
		WHERE id = ? AND status = ? AND paid_at = ? AND rejected_at = ?`,
		row.AmountCents, row.Status,
		row.PaidAt, row.SettledBy,
		row.ConfirmedAt, row.ConfirmedBy,
		row.RejectedAt, row.RejectedBy, row.RejectionReason,
		before.ID, string(before.Status), before.PaidAt, before.RejectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update settlement: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("settlement %s: %w", before.ID, storage.ErrStaleSettlement)
	}
	return nil
}

// AppendSettlementHistory adds one entry after the settlement's existing ones.
func (q *queries) AppendSettlementHistory(ctx context.Context, entry models.SettlementHistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	_, err := q.ext.ExecContext(ctx, `
		INSERT INTO settlement_history (id, settlement_id, from_status, to_status, actor_id, reason, at, seq)
		SELECT ?, ?, ?, ?, ?, ?, ?, COALESCE(MAX(seq), 0) + 1
		FROM settlement_history WHERE settlement_id = ?`,
		entry.ID, entry.SettlementID, string(entry.FromStatus), string(entry.ToStatus),
		entry.ActorID, entry.Reason, entry.At, entry.SettlementID,
	)
	if err != nil {
		return fmt.Errorf("failed to append settlement history: %w", err)
	}
	return nil
}

// CountUnresolvedSettlements counts pending and paid settlements in a group.
func (q *queries) CountUnresolvedSettlements(ctx context.Context, groupID, debtorID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM settlements s
		JOIN transactions t ON t.id = s.transaction_id
		WHERE t.group_id = ? AND s.status IN ('pending', 'paid')`
	args := []any{groupID}
	if debtorID != "" {
		query += " AND s.participant = ?"
		args = append(args, debtorID)
	}

	var n int
	if err := sqlx.GetContext(ctx, q.ext, &n, query, args...); err != nil {
		return 0, fmt.Errorf("failed to count settlements: %w", err)
	}
	return n, nil
}

// ReplacePendingSettlements rewrites the amounts of a transaction's
// settlements. Existing rows are only touched while still untouched pending;
// otherwise ErrStaleSettlement is returned and nothing should be committed.
func (q *queries) ReplacePendingSettlements(ctx context.Context, txID string, settlements []models.Settlement) error {
	return q.atomic(ctx, func(q *queries) error {
		keep := make([]string, 0, len(settlements))
		for i := range settlements {
			s := &settlements[i]
			s.TransactionID = txID
			if err := q.rewritePendingSettlement(ctx, s); err != nil {
				return err
			}
			keep = append(keep, s.Participant)
		}
		return q.deleteSettlementsExcept(ctx, txID, keep)
	})
}

func (q *queries) rewritePendingSettlement(ctx context.Context, s *models.Settlement) error {
	var id string
	err := sqlx.GetContext(ctx, q.ext, &id, `
		UPDATE settlements SET amount_cents = ?
		WHERE transaction_id = ? AND participant = ?
			AND status = 'pending' AND paid_at = 0 AND rejected_at = 0
		RETURNING id`,
		models.Cents(s.Amount), s.TransactionID, s.Participant,
	)
	if err == nil {
		s.ID = id
		s.Status = models.StatusPending
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to update settlement: %w", err)
	}

	var exists bool
	err = sqlx.GetContext(ctx, q.ext, &exists, `
		SELECT EXISTS (SELECT 1 FROM settlements WHERE transaction_id = ? AND participant = ?)`,
		s.TransactionID, s.Participant,
	)
	if err != nil {
		return fmt.Errorf("failed to check settlement: %w", err)
	}
	if exists {
		return fmt.Errorf("settlement of %s on %s: %w", s.Participant, s.TransactionID, storage.ErrStaleSettlement)
	}

	s.ID = ""
	s.Status = models.StatusPending
	return q.insertSettlement(ctx, s)
}

func (q *queries) insertSettlement(ctx context.Context, s *models.Settlement) error {
	if s.Status == "" {
		s.Status = models.StatusPending
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	_, err := sqlx.NamedExecContext(ctx, q.ext, `
		INSERT INTO settlements (
			id, transaction_id, participant, amount_cents, status,
			paid_at, settled_by, confirmed_at, confirmed_by,
			rejected_at, rejected_by, rejection_reason
		) VALUES (
			:id, :transaction_id, :participant, :amount_cents, :status,
			:paid_at, :settled_by, :confirmed_at, :confirmed_by,
			:rejected_at, :rejected_by, :rejection_reason
		)`,
		newSettlementRow(s),
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}
	return nil
}

func (q *queries) settlementsForTransactions(ctx context.Context, txIDs []string) ([]models.Settlement, error) {
	query, args, err := sqlx.In(`
		SELECT `+settlementColumns+`
		FROM settlements s
		JOIN transaction_participants p ON p.transaction_id = s.transaction_id AND p.user_id = s.participant
		WHERE s.transaction_id IN (?)
		ORDER BY s.transaction_id, p.position`, txIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build settlement query: %w", err)
	}

	var rows []settlementRow
	if err := sqlx.SelectContext(ctx, q.ext, &rows, q.ext.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get settlements: %w", err)
	}

	settlements := make([]models.Settlement, 0, len(rows))
	for _, row := range rows {
		settlements = append(settlements, row.toModel())
	}
	if err := q.attachHistory(ctx, settlements); err != nil {
		return nil, err
	}
	return settlements, nil
}

func (q *queries) attachHistory(ctx context.Context, settlements []models.Settlement) error {
	if len(settlements) == 0 {
		return nil
	}

	index := make(map[string]int, len(settlements))
	ids := make([]string, 0, len(settlements))
	for i, s := range settlements {
		index[s.ID] = i
		ids = append(ids, s.ID)
	}

	query, args, err := sqlx.In(`
		SELECT id, settlement_id, from_status, to_status, actor_id, reason, at
		FROM settlement_history
		WHERE settlement_id IN (?)
		ORDER BY settlement_id, seq`, ids)
	if err != nil {
		return fmt.Errorf("failed to build history query: %w", err)
	}

	var rows []historyRow
	if err := sqlx.SelectContext(ctx, q.ext, &rows, q.ext.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to get settlement history: %w", err)
	}
	for _, h := range rows {
		i := index[h.SettlementID]
		settlements[i].History = append(settlements[i].History, models.SettlementHistoryEntry{
			ID:           h.ID,
			SettlementID: h.SettlementID,
			FromStatus:   models.SettlementStatus(h.FromStatus),
			ToStatus:     models.SettlementStatus(h.ToStatus),
			ActorID:      h.ActorID,
			Reason:       h.Reason,
			At:           h.At,
		})
	}
	return nil
}
