package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionContext_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ctx     TransactionContext
		wantErr bool
	}{
		{"personal", PersonalContext(), false},
		{"group", GroupContext("g1"), false},
		{"contact", ContactContext(ContactInfo{Email: "c@example.com"}), false},
		{"group without id", GroupContext(""), true},
		{"contact without details", ContactContext(ContactInfo{}), true},
		{"personal with group", TransactionContext{Kind: ContextPersonal, GroupID: "g1"}, true},
		{"group with contact", TransactionContext{Kind: ContextGroup, GroupID: "g1", Contact: &ContactInfo{Name: "x"}}, true},
		{"unknown kind", TransactionContext{Kind: "shared"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ctx.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransactionType(t *testing.T) {
	assert.True(t, TypeExpense.AllowedIn(ContextPersonal))
	assert.True(t, TypeIncome.AllowedIn(ContextPersonal))
	assert.True(t, TypeSent.AllowedIn(ContextContact))
	assert.True(t, TypeReceived.AllowedIn(ContextContact))
	assert.True(t, TypeExpense.AllowedIn(ContextGroup))
	assert.False(t, TypeIncome.AllowedIn(ContextGroup))
	assert.False(t, TypeExpense.AllowedIn(ContextContact))

	assert.True(t, TypeExpense.Debits())
	assert.True(t, TypeSent.Debits())
	assert.False(t, TypeIncome.Debits())
	assert.False(t, TypeReceived.Debits())
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(1234), Cents(decimal.RequireFromString("12.34")))
	assert.Equal(t, int64(1235), Cents(decimal.RequireFromString("12.345")))
	assert.Equal(t, "12.34", FromCents(1234).StringFixed(2))
	assert.Equal(t, "-0.05", FromCents(-5).StringFixed(2))
}

func TestTransaction_SettlementState(t *testing.T) {
	tx := &Transaction{Settlements: []Settlement{{Status: StatusPending}, {Status: StatusSuccess}}}
	assert.True(t, tx.HasUnresolvedSettlement())
	assert.False(t, tx.AllSettlementsPending())

	tx.Settlements[1].Status = StatusPending
	assert.True(t, tx.AllSettlementsPending())

	tx.Settlements[1].RejectedAt = 1
	assert.False(t, tx.AllSettlementsPending(), "a rejected-then-pending settlement has moved")
}
