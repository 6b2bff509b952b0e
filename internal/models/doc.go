// Package models defines the core domain models of the expense ledger.
//
// # Models
//
//   - Transaction: one expense event, scoped by a TransactionContext
//     (personal, contact, or group).
//   - Settlement: a per-participant debt attached to a group Transaction,
//     with an append-only history of status transitions.
//   - Group: a roster of members plus settle-up display flags.
//   - BankAccount: an external account whose balance is adjusted as a
//     side effect of transaction creation and deletion.
//   - User: a registered account; the acting user of every request.
//
// # Money
//
// Amounts are decimal.Decimal values with two fractional digits. Storage
// keeps them as integer cents; see Cents and FromCents.
//
// # Relationships
//
// Models reference each other by ID strings rather than pointers. Settlements
// are owned by their Transaction and are never shared.
package models
