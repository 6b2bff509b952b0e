package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// TransactionForBalance is a group transaction reduced to what balance math needs.
type TransactionForBalance struct {
	ID            string
	Amount        decimal.Decimal
	PayerID       string
	Participants  []string
	SplitType     models.SplitType
	CustomAmounts map[string]decimal.Decimal

	// Statuses maps each non-payer participant to its settlement status.
	Statuses map[string]models.SettlementStatus
}

// Outstanding reports whether the transaction still has a pending or paid settlement.
func (t TransactionForBalance) Outstanding() bool {
	for _, s := range t.Statuses {
		if s.Unresolved() {
			return true
		}
	}
	return false
}

// MemberBalance is one member's view of the group.
//
// TotalPaid and TotalShare count every transaction ever recorded. Balance,
// OwesTo and OwedBy count only settlements that are still pending.
type MemberBalance struct {
	MemberID   string
	TotalPaid  decimal.Decimal
	TotalShare decimal.Decimal
	Balance    decimal.Decimal // positive = owed money, negative = owes money

	OwesTo map[string]decimal.Decimal // creditor ID -> amount
	OwedBy map[string]decimal.Decimal // debtor ID -> amount
}

// DebtEdge is a suggested payment from one member to another.
type DebtEdge struct {
	From   string // person who owes
	To     string // person who is owed
	Amount decimal.Decimal
}

// GroupBalances is the aggregate result for one group.
type GroupBalances struct {
	Members            map[string]*MemberBalance
	TotalGroupSpending decimal.Decimal
	SuggestedTransfers []DebtEdge
}

// Counterparty is one entry of a simplified balance list.
type Counterparty struct {
	MemberID string
	Amount   decimal.Decimal
}

// SimplifiedBalances nets the viewer's debts per counterparty.
type SimplifiedBalances struct {
	YouOwe  []Counterparty
	OwesYou []Counterparty
}

func newMemberBalance(id string) *MemberBalance {
	return &MemberBalance{
		MemberID:   id,
		TotalPaid:  decimal.Zero,
		TotalShare: decimal.Zero,
		Balance:    decimal.Zero,
		OwesTo:     make(map[string]decimal.Decimal),
		OwedBy:     make(map[string]decimal.Decimal),
	}
}

// CalculateGroupBalances replays transactions into per-member balances.
//
// Algorithm:
//   - every transaction with a payer and participants counts toward lifetime
//     spending, the payer's TotalPaid and each non-payer's TotalShare
//   - for transactions with an unresolved settlement, each non-payer whose
//     settlement is pending owes their share to the payer
//   - net balance = owed to member - owed by member
//   - amounts are rounded to cents and entries under one cent are dropped
//
// Every roster member is present in the result, even with no activity.
func CalculateGroupBalances(members []string, txs []TransactionForBalance) (*GroupBalances, error) {
	result := &GroupBalances{
		Members:            make(map[string]*MemberBalance, len(members)),
		TotalGroupSpending: decimal.Zero,
	}
	get := func(id string) *MemberBalance {
		mb, ok := result.Members[id]
		if !ok {
			mb = newMemberBalance(id)
			result.Members[id] = mb
		}
		return mb
	}
	for _, m := range members {
		get(m)
	}

	for _, tx := range txs {
		// Skip records that can't carry a debt
		if tx.PayerID == "" || len(tx.Participants) == 0 {
			continue
		}

		shares, err := CalculateShares(tx.SplitType, tx.Amount, tx.Participants, tx.CustomAmounts)
		if err != nil {
			return nil, fmt.Errorf("failed to split transaction %s: %w", tx.ID, err)
		}

		result.TotalGroupSpending = result.TotalGroupSpending.Add(tx.Amount)
		payer := get(tx.PayerID)
		payer.TotalPaid = payer.TotalPaid.Add(tx.Amount)

		outstanding := tx.Outstanding()
		for _, share := range shares {
			if share.Participant == tx.PayerID {
				continue
			}
			debtor := get(share.Participant)
			debtor.TotalShare = debtor.TotalShare.Add(share.Amount)

			if !outstanding || tx.Statuses[share.Participant] != models.StatusPending {
				continue
			}
			debtor.OwesTo[tx.PayerID] = debtor.OwesTo[tx.PayerID].Add(share.Amount)
			payer.OwedBy[share.Participant] = payer.OwedBy[share.Participant].Add(share.Amount)
		}
	}

	for _, mb := range result.Members {
		owed := decimal.Zero
		for id, amt := range mb.OwedBy {
			owed = owed.Add(amt)
			mb.OwedBy[id] = RoundMoney(amt)
		}
		owes := decimal.Zero
		for id, amt := range mb.OwesTo {
			owes = owes.Add(amt)
			mb.OwesTo[id] = RoundMoney(amt)
		}
		dropDust(mb.OwedBy)
		dropDust(mb.OwesTo)

		mb.Balance = RoundMoney(owed.Sub(owes))
		if mb.Balance.Abs().LessThan(Epsilon) {
			mb.Balance = decimal.Zero
		}
		mb.TotalPaid = RoundMoney(mb.TotalPaid)
		mb.TotalShare = RoundMoney(mb.TotalShare)
	}
	result.TotalGroupSpending = RoundMoney(result.TotalGroupSpending)
	result.SuggestedTransfers = simplifyDebts(result.Members)

	return result, nil
}

// Simplify nets the viewer's outstanding debts against each other member.
func (g *GroupBalances) Simplify(viewerID string) SimplifiedBalances {
	out := SimplifiedBalances{YouOwe: []Counterparty{}, OwesYou: []Counterparty{}}
	viewer, ok := g.Members[viewerID]
	if !ok {
		return out
	}

	others := make(map[string]struct{})
	for id := range viewer.OwedBy {
		others[id] = struct{}{}
	}
	for id := range viewer.OwesTo {
		others[id] = struct{}{}
	}

	for id := range others {
		net := viewer.OwedBy[id].Sub(viewer.OwesTo[id])
		if net.Abs().LessThan(Epsilon) {
			continue
		}
		if net.IsPositive() {
			out.OwesYou = append(out.OwesYou, Counterparty{MemberID: id, Amount: net})
		} else {
			out.YouOwe = append(out.YouOwe, Counterparty{MemberID: id, Amount: net.Neg()})
		}
	}
	sortCounterparties(out.YouOwe)
	sortCounterparties(out.OwesYou)
	return out
}

// simplifyDebts matches debtors with creditors greedily, largest first, to
// minimize the number of transfers needed to clear outstanding balances.
func simplifyDebts(members map[string]*MemberBalance) []DebtEdge {
	var debtors, creditors []Counterparty
	for id, mb := range members {
		if mb.Balance.IsPositive() {
			creditors = append(creditors, Counterparty{MemberID: id, Amount: mb.Balance})
		} else if mb.Balance.IsNegative() {
			debtors = append(debtors, Counterparty{MemberID: id, Amount: mb.Balance.Neg()})
		}
	}
	sortCounterparties(debtors)
	sortCounterparties(creditors)

	edges := []DebtEdge{}
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := decimal.Min(debtors[i].Amount, creditors[j].Amount)
		if amount.GreaterThanOrEqual(Epsilon) {
			edges = append(edges, DebtEdge{
				From:   debtors[i].MemberID,
				To:     creditors[j].MemberID,
				Amount: amount,
			})
		}

		debtors[i].Amount = debtors[i].Amount.Sub(amount)
		creditors[j].Amount = creditors[j].Amount.Sub(amount)

		if debtors[i].Amount.LessThan(Epsilon) {
			i++
		}
		if creditors[j].Amount.LessThan(Epsilon) {
			j++
		}
	}
	return edges
}

func dropDust(m map[string]decimal.Decimal) {
	for id, amt := range m {
		if amt.Abs().LessThan(Epsilon) {
			delete(m, id)
		}
	}
}

// sortCounterparties orders by amount descending, then member ID.
func sortCounterparties(list []Counterparty) {
	sort.Slice(list, func(a, b int) bool {
		if c := list[a].Amount.Cmp(list[b].Amount); c != 0 {
			return c > 0
		}
		return list[a].MemberID < list[b].MemberID
	})
}
