package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/settlement"
	"github.com/mmynk/splitledger/internal/storage"
)

// InitiateSettlement marks every pending debt of debtorID toward creditorID
// in the group as paid. Only the debtor may initiate.
func (l *Ledger) InitiateSettlement(ctx context.Context, actorID, groupID, debtorID, creditorID string) ([]models.Settlement, error) {
	return l.transition(ctx, settlement.ActionInitiate, actorID, groupID, debtorID, creditorID, "")
}

// ConfirmOrRejectSettlement resolves every paid debt of debtorID toward
// creditorID. Confirming moves them to success; rejecting returns them to
// pending with the reason recorded. Only the creditor may respond.
func (l *Ledger) ConfirmOrRejectSettlement(ctx context.Context, actorID, groupID, debtorID, creditorID string, confirmed bool, reason string) ([]models.Settlement, error) {
	action := settlement.ActionReject
	if confirmed {
		action = settlement.ActionConfirm
	}
	return l.transition(ctx, action, actorID, groupID, debtorID, creditorID, reason)
}

// ResetRejectedSettlements moves rejected debts back to a clean pending state.
// Only the debtor may reset.
func (l *Ledger) ResetRejectedSettlements(ctx context.Context, actorID, groupID, debtorID, creditorID string) ([]models.Settlement, error) {
	return l.transition(ctx, settlement.ActionReset, actorID, groupID, debtorID, creditorID, "")
}

// GetSettlementHistory returns a transaction's settlements with their full history.
func (l *Ledger) GetSettlementHistory(ctx context.Context, actorID, txID string) ([]models.Settlement, error) {
	tx, err := l.GetTransaction(ctx, actorID, txID)
	if err != nil {
		return nil, err
	}
	return tx.Settlements, nil
}

// transition applies one action to all settlements between two members in a
// single store transaction. Every row update is conditional on the state it
// was read in, so a concurrent writer makes the whole batch fail instead of
// being overwritten.
func (l *Ledger) transition(ctx context.Context, action settlement.Action, actorID, groupID, debtorID, creditorID, reason string) ([]models.Settlement, error) {
	v := &ValidationError{}
	if debtorID == "" {
		v.Add("debtorId", "is required")
	}
	if creditorID == "" {
		v.Add("creditorId", "is required")
	}
	if debtorID != "" && debtorID == creditorID {
		v.Add("creditorId", "must differ from debtor")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	group, err := l.groupForMember(ctx, l.store, groupID, actorID)
	if err != nil {
		return nil, err
	}
	required := debtorID
	if action.Role() == settlement.RoleCreditor {
		required = creditorID
	}
	if actorID != required {
		return nil, forbidden("only the %s can %s a settlement", action.Role(), action)
	}

	now := l.now().Unix()
	var updated []models.Settlement
	err = l.store.InTx(ctx, func(r storage.Repository) error {
		updated = nil
		rows, err := r.ListSettlementsBetween(ctx, groupID, debtorID, creditorID)
		if err != nil {
			return err
		}

		for _, row := range rows {
			if !settlement.Selects(row.Settlement, action) {
				continue
			}
			tr, err := settlement.Apply(row.Settlement, row.PayerID, actorID, action, reason, now)
			if err != nil {
				return err
			}
			if err := r.UpdateSettlement(ctx, tr.Before, tr.After); err != nil {
				return err
			}
			if err := r.AppendSettlementHistory(ctx, tr.History); err != nil {
				return err
			}

			after := tr.After
			after.History = append(append([]models.SettlementHistoryEntry(nil), row.History...), tr.History)
			updated = append(updated, after)
		}
		if len(updated) == 0 {
			return ErrNoPendingSettlements
		}

		return l.updateSettleUpFlag(ctx, r, group, action, debtorID, now)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrNoPendingSettlements):
			return nil, err
		case errors.Is(err, settlement.ErrWrongActor):
			return nil, forbidden("%v", err)
		case errors.Is(err, storage.ErrStaleSettlement):
			return nil, translate(err, "settlement", "")
		}
		return nil, fmt.Errorf("failed to %s settlements: %w", action, err)
	}

	l.metrics.SettlementTransitions(string(action), len(updated))
	slog.Info("Settlements transitioned",
		"action", action,
		"group_id", groupID,
		"debtor_id", debtorID,
		"creditor_id", creditorID,
		"count", len(updated),
	)
	return updated, nil
}

// updateSettleUpFlag keeps the group's settle-up display flags in step: a
// debtor who initiates is no longer settled, and one whose last open debt is
// confirmed becomes settled.
func (l *Ledger) updateSettleUpFlag(ctx context.Context, r storage.Repository, group *models.Group, action settlement.Action, debtorID string, now int64) error {
	flag := models.SettleUpFlag{MemberID: debtorID}
	for _, f := range group.SettleUpMode {
		if f.MemberID == debtorID {
			flag = f
		}
	}

	switch action {
	case settlement.ActionInitiate:
		flag.IsSettled = false
	case settlement.ActionConfirm:
		open, err := r.CountUnresolvedSettlements(ctx, group.ID, debtorID)
		if err != nil {
			return err
		}
		if open > 0 {
			return nil
		}
		flag.IsSettled = true
		flag.LastSettlementDate = now
	default:
		return nil
	}
	return r.SetSettleUpFlag(ctx, group.ID, flag)
}
