// Package api defines the wire messages of the splitledger.v1 services.
//
// Messages are plain structs encoded as JSON by the apiconnect codec. Money
// amounts are decimal strings with two fractional digits; timestamps are Unix
// seconds.
package api

import "github.com/shopspring/decimal"

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	CreatedAt   int64  `json:"createdAt"`
}

type Group struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Members      []string       `json:"members"`
	CreatedBy    string         `json:"createdBy"`
	SettleUpMode []SettleUpFlag `json:"isSettleUpMode,omitempty"`
	CreatedAt    int64          `json:"createdAt"`
}

type SettleUpFlag struct {
	MemberID           string `json:"memberId"`
	IsSettled          bool   `json:"isSettled"`
	LastSettlementDate int64  `json:"lastSettlementDate,omitempty"`
}

type BankAccount struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	CurrentBalance decimal.Decimal `json:"currentBalance"`
	IsPrimary      bool            `json:"isPrimary"`
	CreatedAt      int64           `json:"createdAt"`
}

// Contact identifies the other side of a contact transaction.
type Contact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// TransactionContext is "personal", "contact" or "group"; only the payload
// matching Kind may be set.
type TransactionContext struct {
	Kind    string   `json:"kind"`
	GroupID string   `json:"groupId,omitempty"`
	Contact *Contact `json:"contact,omitempty"`
}

type Transaction struct {
	ID            string                     `json:"id"`
	CreatedBy     string                     `json:"createdBy"`
	Type          string                     `json:"type"`
	Amount        decimal.Decimal            `json:"amount"`
	Category      string                     `json:"category,omitempty"`
	Description   string                     `json:"description,omitempty"`
	Date          int64                      `json:"date"`
	Context       TransactionContext         `json:"context"`
	PayerID       string                     `json:"payerId,omitempty"`
	Participants  []string                   `json:"participants,omitempty"`
	SplitType     string                     `json:"splitType,omitempty"`
	CustomAmounts map[string]decimal.Decimal `json:"customAmounts,omitempty"`
	Settlements   []Settlement               `json:"settlements,omitempty"`
	BankAccountID string                     `json:"bankAccountId,omitempty"`
	CreatedAt     int64                      `json:"createdAt"`
	UpdatedAt     int64                      `json:"updatedAt"`
}

type Settlement struct {
	ID              string              `json:"id"`
	TransactionID   string              `json:"transactionId"`
	Participant     string              `json:"participant"`
	Amount          decimal.Decimal     `json:"amount"`
	Status          string              `json:"status"`
	PaidAt          int64               `json:"paidAt,omitempty"`
	SettledBy       string              `json:"settledBy,omitempty"`
	ConfirmedAt     int64               `json:"confirmedAt,omitempty"`
	ConfirmedBy     string              `json:"confirmedBy,omitempty"`
	RejectedAt      int64               `json:"rejectedAt,omitempty"`
	RejectedBy      string              `json:"rejectedBy,omitempty"`
	RejectionReason string              `json:"rejectionReason,omitempty"`
	History         []SettlementHistory `json:"history,omitempty"`
}

type SettlementHistory struct {
	FromStatus string `json:"fromStatus"`
	ToStatus   string `json:"toStatus"`
	ActorID    string `json:"actorId"`
	Reason     string `json:"reason"`
	At         int64  `json:"at"`
}

type MemberBalance struct {
	TotalPaid  decimal.Decimal            `json:"totalPaid"`
	TotalShare decimal.Decimal            `json:"totalShare"`
	Balance    decimal.Decimal            `json:"balance"`
	OwesTo     map[string]decimal.Decimal `json:"owesTo"`
	OwedBy     map[string]decimal.Decimal `json:"owedBy"`
}

type Transfer struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

type Counterparty struct {
	MemberID string          `json:"memberId"`
	Amount   decimal.Decimal `json:"amount"`
}

// SoftFailure reports a best-effort side effect that did not apply.
type SoftFailure struct {
	Step    string `json:"step"`
	Message string `json:"message"`
}
