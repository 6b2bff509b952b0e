// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("already exists")

	// ErrInsufficientBalance is returned when a debit would take a bank
	// account below zero. The balance is left untouched.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrStaleSettlement is returned when a settlement no longer has the
	// state it was read with.
	ErrStaleSettlement = errors.New("settlement was modified concurrently")
)

// Store defines the persistence surface of the ledger.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger or service layers.
type Store interface {
	Repository

	// InTx runs fn inside one database transaction. The transaction commits
	// when fn returns nil and rolls back otherwise. fn must only use the
	// Repository it is given.
	InTx(ctx context.Context, fn func(Repository) error) error

	// Ping checks that the database is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// Repository groups every record-level operation.
type Repository interface {
	UserStore
	GroupStore
	BankAccountStore
	TransactionStore
	SettlementStore
}

type UserStore interface {
	// CreateUser returns ErrDuplicate when the email is taken.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type GroupStore interface {
	// CreateGroup persists the group with its members and settle-up flags.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	ListGroupsForMember(ctx context.Context, userID string) ([]*models.Group, error)
	// AddGroupMembers ignores members already present.
	AddGroupMembers(ctx context.Context, groupID string, members []string) error
	DeleteGroup(ctx context.Context, id string) error
	// SetSettleUpFlag inserts or replaces the member's flag.
	SetSettleUpFlag(ctx context.Context, groupID string, flag models.SettleUpFlag) error
}

type BankAccountStore interface {
	CreateBankAccount(ctx context.Context, account *models.BankAccount) error
	GetBankAccount(ctx context.Context, id string) (*models.BankAccount, error)
	ListBankAccounts(ctx context.Context, ownerID string) ([]*models.BankAccount, error)
	GetPrimaryBankAccount(ctx context.Context, ownerID string) (*models.BankAccount, error)

	// SetPrimaryBankAccount unsets every primary flag of the owner, then sets
	// the given account. Call it inside InTx.
	SetPrimaryBankAccount(ctx context.Context, ownerID, accountID string) error

	// AdjustBalance adds delta to the account balance in a single conditional
	// update and returns the new balance. A change that would make the balance
	// negative returns ErrInsufficientBalance.
	AdjustBalance(ctx context.Context, accountID string, delta decimal.Decimal) (decimal.Decimal, error)
}

// TransactionFilter narrows ListTransactions. Empty fields match everything.
type TransactionFilter struct {
	// GroupID restricts to one group's transactions.
	GroupID string

	// VisibleTo restricts to records the user created, paid for or takes part in.
	VisibleTo string
}

type TransactionStore interface {
	// CreateTransaction persists the transaction with its participants,
	// custom amounts and settlements.
	CreateTransaction(ctx context.Context, tx *models.Transaction) error

	// GetTransaction loads the transaction with settlements and their history.
	GetTransaction(ctx context.Context, id string) (*models.Transaction, error)

	// ListTransactions returns matches newest first, settlements included.
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]*models.Transaction, error)

	// UpdateTransaction rewrites the editable fields and the custom amounts of
	// an existing transaction. Settlements are not touched.
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error

	// ReplacePendingSettlements re-derives a transaction's settlements. Every
	// row it changes or drops must still be untouched pending; otherwise it
	// returns ErrStaleSettlement.
	ReplacePendingSettlements(ctx context.Context, txID string, settlements []models.Settlement) error

	DeleteTransaction(ctx context.Context, id string) error
}

// SettlementWithPayer is a settlement together with the payer of its
// transaction, who is the creditor.
type SettlementWithPayer struct {
	models.Settlement
	PayerID string
}

type SettlementStore interface {
	// ListSettlementsBetween returns the settlements a debtor owes a creditor
	// across all transactions of a group, oldest transaction first.
	ListSettlementsBetween(ctx context.Context, groupID, debtorID, creditorID string) ([]SettlementWithPayer, error)

	// UpdateSettlement writes after over before, conditional on before's
	// status and timestamps still being current. Returns ErrStaleSettlement
	// when the row has moved on.
	UpdateSettlement(ctx context.Context, before, after models.Settlement) error

	AppendSettlementHistory(ctx context.Context, entry models.SettlementHistoryEntry) error

	// CountUnresolvedSettlements counts pending or paid settlements in a
	// group. An empty debtorID counts every member.
	CountUnresolvedSettlements(ctx context.Context, groupID, debtorID string) (int, error)
}
