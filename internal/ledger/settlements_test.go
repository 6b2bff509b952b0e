package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/settlement"
)

func TestExampleScenario(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	acct := f.account(t, a, "1000")
	g := f.group(t, a, b)

	tx := f.groupExpense(t, g, a, acct, "100", a, b)
	require.Len(t, tx.Settlements, 1)
	assert.Equal(t, b, tx.Settlements[0].Participant)
	assert.Equal(t, "50.00", tx.Settlements[0].Amount.StringFixed(2))
	assert.Equal(t, models.StatusPending, tx.Settlements[0].Status)
	assert.Equal(t, "900.00", f.balance(t, acct.ID), "payer's account is debited the full amount")

	balances, err := f.ledger.ComputeGroupBalances(f.ctx, a, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", balances.Members[a].Balance.StringFixed(2))
	assert.Equal(t, "-50.00", balances.Members[b].Balance.StringFixed(2))

	paid, err := f.ledger.InitiateSettlement(f.ctx, b, g.ID, b, a)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, models.StatusPaid, paid[0].Status)
	assert.Equal(t, b, paid[0].SettledBy)
	assert.Equal(t, testNow.Unix(), paid[0].PaidAt)

	done, err := f.ledger.ConfirmOrRejectSettlement(f.ctx, a, g.ID, b, a, true, "")
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, models.StatusSuccess, done[0].Status)
	assert.Equal(t, a, done[0].ConfirmedBy)
	require.Len(t, done[0].History, 2)
	assert.Equal(t, settlement.ReasonInitiated, done[0].History[0].Reason)
	assert.Equal(t, settlement.ReasonConfirmed, done[0].History[1].Reason)

	balances, err = f.ledger.ComputeGroupBalances(f.ctx, b, g.ID)
	require.NoError(t, err)
	assert.True(t, balances.Members[a].Balance.IsZero())
	assert.True(t, balances.Members[b].Balance.IsZero())
	assert.Equal(t, "100.00", balances.Members[a].TotalPaid.StringFixed(2))
	assert.Equal(t, "100.00", balances.TotalGroupSpending.StringFixed(2))

	group, err := f.ledger.GetGroup(f.ctx, a, g.ID)
	require.NoError(t, err)
	require.Len(t, group.SettleUpMode, 1)
	assert.Equal(t, b, group.SettleUpMode[0].MemberID)
	assert.True(t, group.SettleUpMode[0].IsSettled)
	assert.Equal(t, testNow.Unix(), group.SettleUpMode[0].LastSettlementDate)
}

func TestConfirm_IsNotRepeatable(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	g := f.group(t, a, b)
	f.groupExpense(t, g, a, f.account(t, a, "100"), "10", a, b)

	_, err := f.ledger.InitiateSettlement(f.ctx, b, g.ID, b, a)
	require.NoError(t, err)
	_, err = f.ledger.ConfirmOrRejectSettlement(f.ctx, a, g.ID, b, a, true, "")
	require.NoError(t, err)

	_, err = f.ledger.ConfirmOrRejectSettlement(f.ctx, a, g.ID, b, a, true, "")
	assert.ErrorIs(t, err, ErrNoPendingSettlements)
	_, err = f.ledger.InitiateSettlement(f.ctx, b, g.ID, b, a)
	assert.ErrorIs(t, err, ErrNoPendingSettlements, "success is terminal")
}

func TestInitiate_BatchesAllTransactionsBetweenPair(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	c := f.user(t, "c@example.com")
	g := f.group(t, a, b, c)
	acct := f.account(t, a, "1000")
	f.groupExpense(t, g, a, acct, "30", a, b, c)
	f.groupExpense(t, g, a, acct, "20", a, b)

	updated, err := f.ledger.InitiateSettlement(f.ctx, b, g.ID, b, a)
	require.NoError(t, err)
	assert.Len(t, updated, 2)
	for _, s := range updated {
		assert.Equal(t, b, s.Participant)
		assert.Equal(t, models.StatusPaid, s.Status)
	}

	// C's debt toward A is untouched.
	simplified, err := f.ledger.ComputeSimplifiedBalances(f.ctx, a, g.ID)
	require.NoError(t, err)
	require.Len(t, simplified.OwesYou, 1)
	assert.Equal(t, c, simplified.OwesYou[0].MemberID)
	assert.Equal(t, "10.00", simplified.OwesYou[0].Amount.StringFixed(2))

	group, err := f.ledger.GetGroup(f.ctx, a, g.ID)
	require.NoError(t, err)
	require.Len(t, group.SettleUpMode, 1)
	assert.False(t, group.SettleUpMode[0].IsSettled)
}

func TestRejectThenReset(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	g := f.group(t, a, b)
	tx := f.groupExpense(t, g, a, f.account(t, a, "100"), "40", a, b)

	_, err := f.ledger.InitiateSettlement(f.ctx, b, g.ID, b, a)
	require.NoError(t, err)

	rejected, err := f.ledger.ConfirmOrRejectSettlement(f.ctx, a, g.ID, b, a, false, "not received")
	require.NoError(t, err)
	require.Len(t, rejected, 1)
	s := rejected[0]
	assert.Equal(t, models.StatusPending, s.Status)
	assert.Zero(t, s.PaidAt)
	assert.Empty(t, s.SettledBy)
	assert.Equal(t, a, s.RejectedBy)
	assert.Equal(t, "not received", s.RejectionReason)
	assert.Equal(t, "Settlement rejected: not received", s.History[len(s.History)-1].Reason)

	// A rejected debt is owed again.
	balances, err := f.ledger.ComputeGroupBalances(f.ctx, a, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "-20.00", balances.Members[b].Balance.StringFixed(2))

	reset, err := f.ledger.ResetRejectedSettlements(f.ctx, b, g.ID, b, a)
	require.NoError(t, err)
	require.Len(t, reset, 1)
	assert.Equal(t, models.StatusPending, reset[0].Status)
	assert.Zero(t, reset[0].RejectedAt)
	assert.Empty(t, reset[0].RejectionReason)

	history, err := f.ledger.GetSettlementHistory(f.ctx, b, tx.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Len(t, history[0].History, 3)
	assert.Equal(t, settlement.ReasonReset, history[0].History[2].Reason)
	assert.Equal(t, models.StatusPending, history[0].History[2].FromStatus)

	_, err = f.ledger.ResetRejectedSettlements(f.ctx, b, g.ID, b, a)
	assert.ErrorIs(t, err, ErrNoPendingSettlements)
}

func TestTransition_RoleChecks(t *testing.T) {
	f := newFixture(t)
	a := f.user(t, "a@example.com")
	b := f.user(t, "b@example.com")
	outsider := f.user(t, "x@example.com")
	g := f.group(t, a, b)
	f.groupExpense(t, g, a, f.account(t, a, "100"), "10", a, b)

	var authErr *AuthorizationError

	_, err := f.ledger.InitiateSettlement(f.ctx, a, g.ID, b, a)
	assert.ErrorAs(t, err, &authErr, "creditor cannot initiate for the debtor")

	_, err = f.ledger.InitiateSettlement(f.ctx, outsider, g.ID, outsider, a)
	assert.ErrorAs(t, err, &authErr, "non-member")

	_, err = f.ledger.InitiateSettlement(f.ctx, b, g.ID, b, a)
	require.NoError(t, err)
	_, err = f.ledger.ConfirmOrRejectSettlement(f.ctx, b, g.ID, b, a, true, "")
	assert.ErrorAs(t, err, &authErr, "debtor cannot confirm their own payment")

	// Reversed direction: A owes B nothing.
	_, err = f.ledger.InitiateSettlement(f.ctx, a, g.ID, a, b)
	assert.ErrorIs(t, err, ErrNoPendingSettlements)

	var valErr *ValidationError
	_, err = f.ledger.InitiateSettlement(f.ctx, b, g.ID, b, b)
	assert.ErrorAs(t, err, &valErr)

	var nf *NotFoundError
	_, err = f.ledger.InitiateSettlement(f.ctx, b, "missing", b, a)
	assert.ErrorAs(t, err, &nf)
}
