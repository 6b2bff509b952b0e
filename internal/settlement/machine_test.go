package settlement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

const (
	debtor   = "bob"
	creditor = "alice"
	now      = int64(1_700_000_000)
)

func settlementIn(status models.SettlementStatus) models.Settlement {
	return models.Settlement{ID: "s1", TransactionID: "t1", Participant: debtor, Status: status}
}

func TestApply_HappyPath(t *testing.T) {
	s := settlementIn(models.StatusPending)

	paid, err := Apply(s, creditor, debtor, ActionInitiate, "", now)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, paid.After.Status)
	assert.Equal(t, now, paid.After.PaidAt)
	assert.Equal(t, debtor, paid.After.SettledBy)
	assert.Equal(t, models.StatusPending, paid.History.FromStatus)
	assert.Equal(t, models.StatusPaid, paid.History.ToStatus)
	assert.Equal(t, ReasonInitiated, paid.History.Reason)
	assert.Equal(t, debtor, paid.History.ActorID)
	assert.NotEmpty(t, paid.History.ID)

	done, err := Apply(paid.After, creditor, creditor, ActionConfirm, "", now+10)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSuccess, done.After.Status)
	assert.Equal(t, now+10, done.After.ConfirmedAt)
	assert.Equal(t, creditor, done.After.ConfirmedBy)
	assert.Equal(t, now, done.After.PaidAt, "confirm keeps paid marks")
}

func TestApply_RejectReturnsToPending(t *testing.T) {
	paid, err := Apply(settlementIn(models.StatusPending), creditor, debtor, ActionInitiate, "", now)
	require.NoError(t, err)

	rejected, err := Apply(paid.After, creditor, creditor, ActionReject, "never arrived", now+5)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, rejected.After.Status)
	assert.Zero(t, rejected.After.PaidAt)
	assert.Empty(t, rejected.After.SettledBy)
	assert.Equal(t, now+5, rejected.After.RejectedAt)
	assert.Equal(t, creditor, rejected.After.RejectedBy)
	assert.Equal(t, "never arrived", rejected.After.RejectionReason)
	assert.Equal(t, "Settlement rejected: never arrived", rejected.History.Reason)

	// A rejected settlement can be initiated again.
	again, err := Apply(rejected.After, creditor, debtor, ActionInitiate, "", now+6)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, again.After.Status)
}

func TestApply_Reset(t *testing.T) {
	t.Run("from reject status", func(t *testing.T) {
		s := settlementIn(models.StatusReject)
		s.RejectedAt, s.RejectedBy, s.RejectionReason = now, creditor, "wrong amount"

		reset, err := Apply(s, creditor, debtor, ActionReset, "", now+1)
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, reset.After.Status)
		assert.Zero(t, reset.After.RejectedAt)
		assert.Empty(t, reset.After.RejectedBy)
		assert.Empty(t, reset.After.RejectionReason)
		assert.Equal(t, models.StatusReject, reset.History.FromStatus)
		assert.Equal(t, ReasonReset, reset.History.Reason)
	})

	t.Run("pending with rejection marks", func(t *testing.T) {
		s := settlementIn(models.StatusPending)
		s.RejectedAt = now
		assert.True(t, Selects(s, ActionReset))

		reset, err := Apply(s, creditor, debtor, ActionReset, "", now+1)
		require.NoError(t, err)
		assert.Zero(t, reset.After.RejectedAt)
	})

	t.Run("plain pending is not selected", func(t *testing.T) {
		_, err := Apply(settlementIn(models.StatusPending), creditor, debtor, ActionReset, "", now)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestApply_WrongActor(t *testing.T) {
	tests := []struct {
		name   string
		status models.SettlementStatus
		actor  string
		action Action
	}{
		{"creditor cannot initiate", models.StatusPending, creditor, ActionInitiate},
		{"debtor cannot confirm", models.StatusPaid, debtor, ActionConfirm},
		{"debtor cannot reject", models.StatusPaid, debtor, ActionReject},
		{"stranger cannot reset", models.StatusReject, "mallory", ActionReset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(settlementIn(tt.status), creditor, tt.actor, tt.action, "", now)
			assert.ErrorIs(t, err, ErrWrongActor)
		})
	}
}

func TestApply_InvalidTransitions(t *testing.T) {
	tests := []struct {
		status models.SettlementStatus
		actor  string
		action Action
	}{
		{models.StatusPaid, debtor, ActionInitiate},
		{models.StatusSuccess, debtor, ActionInitiate},
		{models.StatusPending, creditor, ActionConfirm},
		{models.StatusSuccess, creditor, ActionConfirm},
		{models.StatusPending, creditor, ActionReject},
		{models.StatusSuccess, creditor, ActionReject},
		{models.StatusSuccess, debtor, ActionReset},
	}
	for _, tt := range tests {
		t.Run(string(tt.action)+"/"+string(tt.status), func(t *testing.T) {
			_, err := Apply(settlementIn(tt.status), creditor, tt.actor, tt.action, "", now)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		})
	}
}

func TestActionMetadata(t *testing.T) {
	assert.Equal(t, RoleDebtor, ActionInitiate.Role())
	assert.Equal(t, RoleDebtor, ActionReset.Role())
	assert.Equal(t, RoleCreditor, ActionConfirm.Role())
	assert.Equal(t, RoleCreditor, ActionReject.Role())

	assert.Equal(t, models.StatusPaid, ActionInitiate.Target())
	assert.Equal(t, models.StatusSuccess, ActionConfirm.Target())
	assert.Equal(t, models.StatusPending, ActionReject.Target())
	assert.Equal(t, models.StatusPending, ActionReset.Target())

	assert.Equal(t, []models.SettlementStatus{models.StatusPaid}, ActionConfirm.SourceStatuses())
	assert.Nil(t, Action("bogus").SourceStatuses())
}
