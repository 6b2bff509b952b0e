package models

import "github.com/shopspring/decimal"

// SettlementStatus is the lifecycle state of one participant's debt.
type SettlementStatus string

const (
	StatusPending SettlementStatus = "pending"
	StatusPaid    SettlementStatus = "paid"
	StatusSuccess SettlementStatus = "success"
	StatusReject  SettlementStatus = "reject"
)

// Valid reports whether s is a known status.
func (s SettlementStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusSuccess, StatusReject:
		return true
	}
	return false
}

// Unresolved reports whether money is still outstanding or awaiting confirmation.
func (s SettlementStatus) Unresolved() bool {
	return s == StatusPending || s == StatusPaid
}

// Settlement is the debt of one non-payer participant toward the transaction's payer.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// TransactionID is the owning transaction.
	TransactionID string

	// Participant is the debtor.
	Participant string

	// Amount is the participant's share.
	Amount decimal.Decimal

	Status SettlementStatus

	// PaidAt and SettledBy are set when the debtor initiates settle-up.
	PaidAt    int64
	SettledBy string

	// ConfirmedAt and ConfirmedBy are set when the creditor confirms.
	ConfirmedAt int64
	ConfirmedBy string

	// RejectedAt, RejectedBy and RejectionReason are set when the creditor rejects.
	RejectedAt      int64
	RejectedBy      string
	RejectionReason string

	// History is the append-only audit trail, oldest first.
	History []SettlementHistoryEntry
}

// SettlementHistoryEntry records one status transition.
type SettlementHistoryEntry struct {
	ID           string
	SettlementID string
	FromStatus   SettlementStatus
	ToStatus     SettlementStatus
	ActorID      string
	Reason       string
	At           int64
}
