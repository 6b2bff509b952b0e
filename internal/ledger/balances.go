package ledger

import (
	"context"
	"fmt"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// ComputeGroupBalances replays the group's transactions into per-member
// balances. The viewer must be a group member.
func (l *Ledger) ComputeGroupBalances(ctx context.Context, viewerID, groupID string) (*calculator.GroupBalances, error) {
	group, err := l.groupForMember(ctx, l.store, groupID, viewerID)
	if err != nil {
		return nil, err
	}

	txs, err := l.store.ListTransactions(ctx, storage.TransactionFilter{GroupID: groupID})
	if err != nil {
		return nil, fmt.Errorf("failed to list group transactions: %w", err)
	}

	balances, err := calculator.CalculateGroupBalances(group.Members, forBalance(txs))
	if err != nil {
		return nil, &ConsistencyError{Reason: err.Error()}
	}
	return balances, nil
}

// ComputeSimplifiedBalances nets the viewer's outstanding debts per member.
func (l *Ledger) ComputeSimplifiedBalances(ctx context.Context, viewerID, groupID string) (calculator.SimplifiedBalances, error) {
	balances, err := l.ComputeGroupBalances(ctx, viewerID, groupID)
	if err != nil {
		return calculator.SimplifiedBalances{}, err
	}
	return balances.Simplify(viewerID), nil
}

func forBalance(txs []*models.Transaction) []calculator.TransactionForBalance {
	out := make([]calculator.TransactionForBalance, 0, len(txs))
	for _, tx := range txs {
		if !tx.Context.IsGroup() {
			continue
		}
		statuses := make(map[string]models.SettlementStatus, len(tx.Settlements))
		for _, s := range tx.Settlements {
			statuses[s.Participant] = s.Status
		}
		out = append(out, calculator.TransactionForBalance{
			ID:            tx.ID,
			Amount:        tx.Amount,
			PayerID:       tx.PayerID,
			Participants:  tx.Participants,
			SplitType:     tx.SplitType,
			CustomAmounts: tx.CustomAmounts,
			Statuses:      statuses,
		})
	}
	return out
}
