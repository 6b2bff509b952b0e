package models

import "github.com/shopspring/decimal"

// TransactionType is the money direction from the creator's point of view.
type TransactionType string

const (
	TypeExpense  TransactionType = "expense"
	TypeIncome   TransactionType = "income"
	TypeSent     TransactionType = "sent"
	TypeReceived TransactionType = "received"
)

// Debits reports whether the creator's bank account is debited.
func (t TransactionType) Debits() bool {
	return t == TypeExpense || t == TypeSent
}

// AllowedIn reports whether the type is valid for the given context kind.
func (t TransactionType) AllowedIn(kind ContextKind) bool {
	switch kind {
	case ContextPersonal:
		return t == TypeExpense || t == TypeIncome
	case ContextContact:
		return t == TypeSent || t == TypeReceived
	case ContextGroup:
		return t == TypeExpense
	}
	return false
}

// SplitType selects how a group expense is divided.
type SplitType string

const (
	SplitEven   SplitType = "even"
	SplitCustom SplitType = "custom"
)

// Transaction represents one expense event.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// CreatedBy is the user who submitted the transaction.
	CreatedBy string

	Type        TransactionType
	Amount      decimal.Decimal // positive, two decimal places
	Category    string
	Description string
	Date        int64 // Unix seconds of the expense itself

	Context TransactionContext

	// PayerID fronted the money. Required for group transactions; for the
	// other kinds it is the creator.
	PayerID string

	// Participants are the member IDs the expense is split across, in order.
	Participants []string

	SplitType SplitType

	// CustomAmounts maps participant ID to explicit share (custom split only).
	CustomAmounts map[string]decimal.Decimal

	// Settlements holds one entry per non-payer participant.
	Settlements []Settlement

	// BankAccountID is the account debited or credited on creation. Empty
	// means no bank effect.
	BankAccountID string

	CreatedAt int64
	UpdatedAt int64
}

// HasUnresolvedSettlement reports whether any settlement is still pending or paid.
func (t *Transaction) HasUnresolvedSettlement() bool {
	for _, s := range t.Settlements {
		if s.Status.Unresolved() {
			return true
		}
	}
	return false
}

// AllSettlementsPending reports whether no settlement has advanced yet.
func (t *Transaction) AllSettlementsPending() bool {
	for _, s := range t.Settlements {
		if s.Status != StatusPending || s.RejectedAt != 0 {
			return false
		}
	}
	return true
}

// IsParty reports whether userID created, paid for or takes part in the transaction.
func (t *Transaction) IsParty(userID string) bool {
	if t.CreatedBy == userID || t.PayerID == userID {
		return true
	}
	for _, p := range t.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// Cents converts a money amount to integer cents, rounding to two places.
func Cents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// FromCents converts integer cents to a money amount.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
