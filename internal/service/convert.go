package service

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	out := &api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Members:   g.Members,
		CreatedBy: g.CreatedBy,
		CreatedAt: g.CreatedAt,
	}
	for _, f := range g.SettleUpMode {
		out.SettleUpMode = append(out.SettleUpMode, api.SettleUpFlag{
			MemberID:           f.MemberID,
			IsSettled:          f.IsSettled,
			LastSettlementDate: f.LastSettlementDate,
		})
	}
	return out
}

func toAPIAccount(a *models.BankAccount) *api.BankAccount {
	return &api.BankAccount{
		ID:             a.ID,
		Name:           a.Name,
		CurrentBalance: a.CurrentBalance,
		IsPrimary:      a.IsPrimary,
		CreatedAt:      a.CreatedAt,
	}
}

func toAPIContext(c models.TransactionContext) api.TransactionContext {
	out := api.TransactionContext{Kind: string(c.Kind), GroupID: c.GroupID}
	if c.Contact != nil {
		out.Contact = &api.Contact{Name: c.Contact.Name, Email: c.Contact.Email, Phone: c.Contact.Phone}
	}
	return out
}

func fromAPIContext(c api.TransactionContext) models.TransactionContext {
	out := models.TransactionContext{Kind: models.ContextKind(c.Kind), GroupID: c.GroupID}
	if c.Contact != nil {
		out.Contact = &models.ContactInfo{Name: c.Contact.Name, Email: c.Contact.Email, Phone: c.Contact.Phone}
	}
	return out
}

func toAPITransaction(tx *models.Transaction) *api.Transaction {
	return &api.Transaction{
		ID:            tx.ID,
		CreatedBy:     tx.CreatedBy,
		Type:          string(tx.Type),
		Amount:        tx.Amount,
		Category:      tx.Category,
		Description:   tx.Description,
		Date:          tx.Date,
		Context:       toAPIContext(tx.Context),
		PayerID:       tx.PayerID,
		Participants:  tx.Participants,
		SplitType:     string(tx.SplitType),
		CustomAmounts: tx.CustomAmounts,
		Settlements:   toAPISettlements(tx.Settlements),
		BankAccountID: tx.BankAccountID,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}
}

func toAPITransactions(txs []*models.Transaction) []*api.Transaction {
	out := make([]*api.Transaction, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toAPITransaction(tx))
	}
	return out
}

func toAPISettlements(list []models.Settlement) []api.Settlement {
	out := make([]api.Settlement, 0, len(list))
	for _, s := range list {
		as := api.Settlement{
			ID:              s.ID,
			TransactionID:   s.TransactionID,
			Participant:     s.Participant,
			Amount:          s.Amount,
			Status:          string(s.Status),
			PaidAt:          s.PaidAt,
			SettledBy:       s.SettledBy,
			ConfirmedAt:     s.ConfirmedAt,
			ConfirmedBy:     s.ConfirmedBy,
			RejectedAt:      s.RejectedAt,
			RejectedBy:      s.RejectedBy,
			RejectionReason: s.RejectionReason,
		}
		for _, h := range s.History {
			as.History = append(as.History, api.SettlementHistory{
				FromStatus: string(h.FromStatus),
				ToStatus:   string(h.ToStatus),
				ActorID:    h.ActorID,
				Reason:     h.Reason,
				At:         h.At,
			})
		}
		out = append(out, as)
	}
	return out
}

func toAPISoftFailures(list []ledger.SoftFailure) []api.SoftFailure {
	if len(list) == 0 {
		return nil
	}
	out := make([]api.SoftFailure, 0, len(list))
	for _, f := range list {
		out = append(out, api.SoftFailure{Step: f.Step, Message: f.Err.Error()})
	}
	return out
}

func toAPIBalances(b *calculator.GroupBalances) *api.GetGroupBalancesResponse {
	out := &api.GetGroupBalancesResponse{
		Members:            make(map[string]*api.MemberBalance, len(b.Members)),
		TotalGroupSpending: b.TotalGroupSpending,
		SuggestedTransfers: make([]api.Transfer, 0, len(b.SuggestedTransfers)),
	}
	for id, m := range b.Members {
		out.Members[id] = &api.MemberBalance{
			TotalPaid:  m.TotalPaid,
			TotalShare: m.TotalShare,
			Balance:    m.Balance,
			OwesTo:     m.OwesTo,
			OwedBy:     m.OwedBy,
		}
	}
	for _, e := range b.SuggestedTransfers {
		out.SuggestedTransfers = append(out.SuggestedTransfers, api.Transfer{From: e.From, To: e.To, Amount: e.Amount})
	}
	return out
}

func toAPICounterparties(list []calculator.Counterparty) []api.Counterparty {
	out := make([]api.Counterparty, 0, len(list))
	for _, c := range list {
		out = append(out, api.Counterparty{MemberID: c.MemberID, Amount: c.Amount})
	}
	return out
}

func amounts(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	if len(m) == 0 {
		return nil
	}
	return m
}
