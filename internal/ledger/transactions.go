package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Soft-failure steps of the counterparty mirror.
const (
	StepCounterpartyLookup = "counterparty_lookup"
	StepCounterpartyAdjust = "counterparty_adjust"
)

// NewTransaction is the input of CreateTransactionWithBalanceEffect.
type NewTransaction struct {
	Type        models.TransactionType
	Amount      decimal.Decimal
	Category    string
	Description string
	Date        int64
	Context     models.TransactionContext

	// Group transactions only.
	PayerID       string
	Participants  []string
	SplitType     models.SplitType
	CustomAmounts map[string]decimal.Decimal

	// BankAccountID is required unless a group member records an expense
	// someone else paid for.
	BankAccountID string
}

// TransactionUpdate holds the editable fields; nil means unchanged.
type TransactionUpdate struct {
	Description   *string
	Category      *string
	Amount        *decimal.Decimal
	CustomAmounts map[string]decimal.Decimal
}

// CreateTransactionWithBalanceEffect records a transaction and applies its
// bank-balance effect in one store transaction. For a contact transaction
// with a registered counterparty the mirrored effect runs afterwards as a
// best-effort step; its failures are reported in the Result.
func (l *Ledger) CreateTransactionWithBalanceEffect(ctx context.Context, actorID string, in NewTransaction) (Result[*models.Transaction], error) {
	var res Result[*models.Transaction]

	tx, err := l.buildTransaction(ctx, actorID, in)
	if err != nil {
		return res, err
	}

	var acct *models.BankAccount
	if tx.BankAccountID != "" {
		acct, err = l.accountOwnedBy(ctx, tx.BankAccountID, actorID)
		if err != nil {
			return res, err
		}
		if tx.Type.Debits() && acct.CurrentBalance.LessThan(tx.Amount) {
			return res, &InsufficientBalanceError{AccountID: acct.ID, Balance: acct.CurrentBalance, Requested: tx.Amount}
		}
	}

	err = l.store.InTx(ctx, func(r storage.Repository) error {
		if acct != nil {
			if err := l.adjust(ctx, r, acct, signedAmount(tx.Type, tx.Amount)); err != nil {
				return err
			}
		}
		return r.CreateTransaction(ctx, tx)
	})
	if err != nil {
		return res, l.writeError(err, "create transaction")
	}

	slog.Info("Transaction created",
		"transaction_id", tx.ID,
		"context", tx.Context.Kind,
		"type", tx.Type,
		"amount", tx.Amount.StringFixed(2),
		"user_id", actorID,
	)

	res.Value = tx
	if tx.Context.IsContact() && tx.BankAccountID != "" {
		l.mirrorToCounterparty(ctx, tx, &res)
	}
	return res, nil
}

// DeleteTransactionWithReversal deletes a transaction and credits back (or
// debits back) exactly the amount its creation moved on the creator's account.
// Counterparty effects are not reversed.
func (l *Ledger) DeleteTransactionWithReversal(ctx context.Context, actorID, txID string) error {
	tx, err := l.editableTransaction(ctx, actorID, txID)
	if err != nil {
		return err
	}

	err = l.store.InTx(ctx, func(r storage.Repository) error {
		if tx.BankAccountID != "" {
			acct, err := r.GetBankAccount(ctx, tx.BankAccountID)
			if err != nil {
				return translate(err, "bank account", tx.BankAccountID)
			}
			if err := l.adjust(ctx, r, acct, signedAmount(tx.Type, tx.Amount).Neg()); err != nil {
				return err
			}
		}
		if err := r.DeleteTransaction(ctx, tx.ID); err != nil {
			return translate(err, "transaction", tx.ID)
		}
		return nil
	})
	if err != nil {
		return l.writeError(err, "delete transaction")
	}

	slog.Info("Transaction deleted", "transaction_id", tx.ID, "user_id", actorID)
	return nil
}

// UpdateTransaction edits description, category and amount. An amount change
// moves the difference on the bank account and, for group transactions,
// re-derives the settlements; that is only allowed while no settlement has
// left the pending state. Other edits never touch settlements.
func (l *Ledger) UpdateTransaction(ctx context.Context, actorID, txID string, upd TransactionUpdate) (*models.Transaction, error) {
	snapshot, err := l.editableTransaction(ctx, actorID, txID)
	if err != nil {
		return nil, err
	}
	if upd.Amount != nil {
		if msg := checkMoney(*upd.Amount); msg != "" {
			return nil, invalid("amount", msg)
		}
	}
	if upd.CustomAmounts != nil && snapshot.SplitType != models.SplitCustom {
		return nil, invalid("customAmounts", "only valid for custom splits")
	}

	var tx *models.Transaction
	err = l.store.InTx(ctx, func(r storage.Repository) error {
		var err error
		tx, err = r.GetTransaction(ctx, txID)
		if err != nil {
			return translate(err, "transaction", txID)
		}

		oldAmount := tx.Amount
		amountChanged := upd.Amount != nil && !upd.Amount.Equal(oldAmount)
		if upd.Description != nil {
			tx.Description = *upd.Description
		}
		if upd.Category != nil {
			tx.Category = *upd.Category
		}
		if amountChanged {
			tx.Amount = *upd.Amount
		}
		if upd.CustomAmounts != nil {
			tx.CustomAmounts = upd.CustomAmounts
		}

		rederive := tx.Context.IsGroup() && (amountChanged || upd.CustomAmounts != nil)
		if rederive {
			if !tx.AllSettlementsPending() {
				return &ConsistencyError{
					Reason:   "settlements have progressed; the amount can no longer change",
					Expected: oldAmount,
					Actual:   tx.Amount,
				}
			}
			shares, err := calculator.CalculateShares(tx.SplitType, tx.Amount, tx.Participants, tx.CustomAmounts)
			if err != nil {
				return splitError(err)
			}
			tx.Settlements = settlementsFor(tx.PayerID, shares, tx.Settlements)
		}

		if amountChanged && tx.BankAccountID != "" {
			acct, err := r.GetBankAccount(ctx, tx.BankAccountID)
			if err != nil {
				return translate(err, "bank account", tx.BankAccountID)
			}
			if err := l.adjust(ctx, r, acct, signedAmount(tx.Type, tx.Amount.Sub(oldAmount))); err != nil {
				return err
			}
		}
		if err := r.UpdateTransaction(ctx, tx); err != nil {
			return translate(err, "transaction", tx.ID)
		}
		if rederive {
			if err := r.ReplacePendingSettlements(ctx, tx.ID, tx.Settlements); err != nil {
				return translate(err, "settlement", tx.ID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, l.writeError(err, "update transaction")
	}

	slog.Info("Transaction updated", "transaction_id", tx.ID, "user_id", actorID, "amount", tx.Amount.StringFixed(2))
	return tx, nil
}

// GetTransaction returns a transaction visible to the actor: one they are a
// party to, or any transaction of a group they belong to.
func (l *Ledger) GetTransaction(ctx context.Context, actorID, txID string) (*models.Transaction, error) {
	tx, err := l.store.GetTransaction(ctx, txID)
	if err != nil {
		return nil, translate(err, "transaction", txID)
	}
	if tx.IsParty(actorID) {
		return tx, nil
	}
	if tx.Context.IsGroup() {
		if _, err := l.groupForMember(ctx, l.store, tx.Context.GroupID, actorID); err == nil {
			return tx, nil
		}
	}
	return nil, &NotFoundError{Entity: "transaction", ID: txID}
}

// ListTransactions returns the actor's transactions newest first. With a
// group ID it returns every transaction of that group instead.
func (l *Ledger) ListTransactions(ctx context.Context, actorID, groupID string) ([]*models.Transaction, error) {
	filter := storage.TransactionFilter{VisibleTo: actorID}
	if groupID != "" {
		if _, err := l.groupForMember(ctx, l.store, groupID, actorID); err != nil {
			return nil, err
		}
		filter = storage.TransactionFilter{GroupID: groupID}
	}

	txs, err := l.store.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return txs, nil
}

// buildTransaction validates the input and derives settlements.
func (l *Ledger) buildTransaction(ctx context.Context, actorID string, in NewTransaction) (*models.Transaction, error) {
	v := &ValidationError{}
	if msg := checkMoney(in.Amount); msg != "" {
		v.Add("amount", msg)
	}
	if err := in.Context.Validate(); err != nil {
		v.Add("context", err.Error())
	} else if !in.Type.AllowedIn(in.Context.Kind) {
		v.Add("type", fmt.Sprintf("%q is not valid for a %s transaction", in.Type, in.Context.Kind))
	}

	tx := &models.Transaction{
		CreatedBy:     actorID,
		Type:          in.Type,
		Amount:        in.Amount,
		Category:      in.Category,
		Description:   in.Description,
		Date:          in.Date,
		Context:       in.Context,
		PayerID:       actorID,
		BankAccountID: in.BankAccountID,
	}

	if !in.Context.IsGroup() {
		if in.PayerID != "" && in.PayerID != actorID {
			v.Add("payerId", "must be the acting user outside groups")
		}
		if len(in.Participants) > 0 || len(in.CustomAmounts) > 0 {
			v.Add("participants", "only group transactions are split")
		}
		if in.BankAccountID == "" {
			v.Add("bankAccountId", "is required")
		}
		return tx, v.Err()
	}

	if in.PayerID == "" {
		v.Add("payerId", "is required for group transactions")
	}
	if len(in.Participants) == 0 {
		v.Add("participants", "must not be empty")
	}
	if in.PayerID != "" && in.PayerID == actorID && in.BankAccountID == "" {
		v.Add("bankAccountId", "is required when you paid")
	}
	if in.PayerID != actorID && in.BankAccountID != "" {
		v.Add("bankAccountId", "only the payer's own account can be debited")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	group, err := l.groupForMember(ctx, l.store, in.Context.GroupID, actorID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(in.PayerID) {
		v.Add("payerId", "is not a group member")
	}
	others := 0
	for _, p := range in.Participants {
		if !group.HasMember(p) {
			v.Add("participants", fmt.Sprintf("%s is not a group member", p))
		}
		if p != in.PayerID {
			others++
		}
	}
	if others == 0 {
		v.Add("participants", "must include someone other than the payer")
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	splitType := in.SplitType
	if splitType == "" {
		splitType = models.SplitEven
	}
	shares, err := calculator.CalculateShares(splitType, in.Amount, in.Participants, in.CustomAmounts)
	if err != nil {
		return nil, splitError(err)
	}

	tx.PayerID = in.PayerID
	tx.Participants = append([]string(nil), in.Participants...)
	tx.SplitType = splitType
	if splitType == models.SplitCustom {
		tx.CustomAmounts = in.CustomAmounts
	}
	tx.Settlements = settlementsFor(in.PayerID, shares, nil)
	return tx, nil
}

// settlementsFor creates one pending settlement per non-payer share, reusing
// the IDs of existing settlements of the same participant.
func settlementsFor(payerID string, shares []calculator.Share, existing []models.Settlement) []models.Settlement {
	ids := make(map[string]string, len(existing))
	for _, s := range existing {
		ids[s.Participant] = s.ID
	}

	var out []models.Settlement
	for _, share := range shares {
		if share.Participant == payerID {
			continue
		}
		out = append(out, models.Settlement{
			ID:          ids[share.Participant],
			Participant: share.Participant,
			Amount:      share.Amount,
			Status:      models.StatusPending,
		})
	}
	return out
}

// editableTransaction loads a transaction the actor may change: its creator,
// or the payer of a group transaction.
func (l *Ledger) editableTransaction(ctx context.Context, actorID, txID string) (*models.Transaction, error) {
	tx, err := l.GetTransaction(ctx, actorID, txID)
	if err != nil {
		return nil, err
	}
	if tx.CreatedBy != actorID && !(tx.Context.IsGroup() && tx.PayerID == actorID) {
		return nil, forbidden("only the creator or payer can change transaction %s", txID)
	}
	return tx, nil
}

// accountOwnedBy loads a bank account and checks its owner.
func (l *Ledger) accountOwnedBy(ctx context.Context, accountID, ownerID string) (*models.BankAccount, error) {
	acct, err := l.store.GetBankAccount(ctx, accountID)
	if err != nil {
		return nil, translate(err, "bank account", accountID)
	}
	if acct.OwnerID != ownerID {
		return nil, forbidden("bank account %s belongs to another user", accountID)
	}
	return acct, nil
}

// adjust applies delta to acct, translating a refused debit.
func (l *Ledger) adjust(ctx context.Context, r storage.Repository, acct *models.BankAccount, delta decimal.Decimal) error {
	if delta.IsZero() {
		return nil
	}
	if _, err := r.AdjustBalance(ctx, acct.ID, delta); err != nil {
		if errors.Is(err, storage.ErrInsufficientBalance) {
			return &InsufficientBalanceError{AccountID: acct.ID, Balance: acct.CurrentBalance, Requested: delta.Neg()}
		}
		return err
	}
	l.metrics.BankAdjustment(direction(delta))
	return nil
}

// mirrorToCounterparty applies the opposite side of a contact transaction to
// the counterparty's primary account. Failures are recorded, never returned.
func (l *Ledger) mirrorToCounterparty(ctx context.Context, tx *models.Transaction, res *Result[*models.Transaction]) {
	acct, err := l.resolver.ResolveCounterparty(ctx, *tx.Context.Contact)
	if errors.Is(err, ErrNoCounterparty) {
		return
	}
	if err != nil {
		res.softFail(l.metrics, StepCounterpartyLookup, err, "transaction_id", tx.ID)
		return
	}
	if acct.OwnerID == tx.CreatedBy {
		return
	}

	// The counterparty sees the opposite direction.
	delta := signedAmount(tx.Type, tx.Amount).Neg()
	if _, err := l.store.AdjustBalance(ctx, acct.ID, delta); err != nil {
		res.softFail(l.metrics, StepCounterpartyAdjust, err, "transaction_id", tx.ID, "account_id", acct.ID)
		return
	}
	l.metrics.BankAdjustment(direction(delta))
}

// writeError passes taxonomy errors through and wraps the rest.
func (l *Ledger) writeError(err error, op string) error {
	if isTaxonomy(err) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// signedAmount is the change to the creator's balance: negative for debits.
func signedAmount(t models.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t.Debits() {
		return amount.Neg()
	}
	return amount
}

func direction(delta decimal.Decimal) string {
	if delta.IsNegative() {
		return "debit"
	}
	return "credit"
}

// checkMoney returns a problem with a positive amount, or "".
func checkMoney(d decimal.Decimal) string {
	if !d.IsPositive() {
		return "must be positive"
	}
	if !d.Equal(calculator.RoundMoney(d)) {
		return "must have at most two decimal places"
	}
	return ""
}

func splitError(err error) error {
	var mismatch *calculator.SumMismatchError
	var share *calculator.InvalidShareError
	switch {
	case errors.As(err, &mismatch):
		return invalid("customAmounts", err.Error())
	case errors.As(err, &share):
		return invalid("customAmounts", err.Error())
	case errors.Is(err, calculator.ErrUnknownSplitType):
		return invalid("splitType", err.Error())
	}
	return invalid("participants", err.Error())
}
