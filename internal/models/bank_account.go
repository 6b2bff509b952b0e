package models

import "github.com/shopspring/decimal"

// BankAccount is an external account whose balance the ledger adjusts.
type BankAccount struct {
	ID             string
	OwnerID        string
	Name           string
	CurrentBalance decimal.Decimal // never negative
	IsPrimary      bool            // at most one primary account per owner
	CreatedAt      int64
	UpdatedAt      int64
}
