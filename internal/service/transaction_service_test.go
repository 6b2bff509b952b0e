package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/pkg/api"
)

func TestGroupExpenseLifecycle(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice := c.user(t, "alice@example.com")
	bob := c.user(t, "bob@example.com")
	acct := c.account(t, alice, "1000")
	g := c.group(t, alice, bob)

	created, err := c.transactions.CreateTransaction(ctx, as(alice, &api.CreateTransactionRequest{
		Type:          "expense",
		Amount:        dec("100"),
		Description:   "Groceries",
		Context:       api.TransactionContext{Kind: "group", GroupID: g.ID},
		PayerID:       alice,
		Participants:  []string{alice, bob},
		BankAccountID: acct.ID,
	}))
	require.NoError(t, err)
	tx := created.Msg.Transaction
	assert.Empty(t, created.Msg.SoftFailures)
	require.Len(t, tx.Settlements, 1)
	assert.Equal(t, "50.00", tx.Settlements[0].Amount.StringFixed(2))
	assert.Equal(t, "pending", tx.Settlements[0].Status)

	accounts, err := c.accounts.ListBankAccounts(ctx, as(alice, &api.ListBankAccountsRequest{}))
	require.NoError(t, err)
	require.Len(t, accounts.Msg.Accounts, 1)
	assert.Equal(t, "900.00", accounts.Msg.Accounts[0].CurrentBalance.StringFixed(2))

	balances, err := c.balances.GetGroupBalances(ctx, as(bob, &api.GetGroupBalancesRequest{GroupID: g.ID}))
	require.NoError(t, err)
	assert.Equal(t, "-50.00", balances.Msg.Members[bob].Balance.StringFixed(2))
	assert.Equal(t, "50.00", balances.Msg.Members[bob].OwesTo[alice].StringFixed(2))
	require.Len(t, balances.Msg.SuggestedTransfers, 1)
	assert.Equal(t, bob, balances.Msg.SuggestedTransfers[0].From)

	simplified, err := c.balances.GetSimplifiedBalances(ctx, as(bob, &api.GetSimplifiedBalancesRequest{GroupID: g.ID}))
	require.NoError(t, err)
	require.Len(t, simplified.Msg.YouOwe, 1)
	assert.Equal(t, alice, simplified.Msg.YouOwe[0].MemberID)

	_, err = c.settlements.InitiateSettlement(ctx, as(bob, &api.InitiateSettlementRequest{
		GroupID: g.ID, DebtorID: bob, CreditorID: alice,
	}))
	require.NoError(t, err)

	confirmed, err := c.settlements.RespondToSettlement(ctx, as(alice, &api.RespondToSettlementRequest{
		GroupID: g.ID, DebtorID: bob, CreditorID: alice, Confirmed: true,
	}))
	require.NoError(t, err)
	require.Len(t, confirmed.Msg.Settlements, 1)
	assert.Equal(t, "success", confirmed.Msg.Settlements[0].Status)

	history, err := c.settlements.GetSettlementHistory(ctx, as(bob, &api.GetSettlementHistoryRequest{TransactionID: tx.ID}))
	require.NoError(t, err)
	require.Len(t, history.Msg.Settlements, 1)
	require.Len(t, history.Msg.Settlements[0].History, 2)
	assert.Equal(t, "Settlement confirmed", history.Msg.Settlements[0].History[1].Reason)

	group, err := c.groups.GetGroup(ctx, as(alice, &api.GetGroupRequest{GroupID: g.ID}))
	require.NoError(t, err)
	require.Len(t, group.Msg.Group.SettleUpMode, 1)
	assert.True(t, group.Msg.Group.SettleUpMode[0].IsSettled)
}

func TestErrorCodes(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice := c.user(t, "alice@example.com")
	bob := c.user(t, "bob@example.com")
	carol := c.user(t, "carol@example.com")
	acct := c.account(t, alice, "50")
	g := c.group(t, alice, bob)

	_, err := c.transactions.CreateTransaction(ctx, connect.NewRequest(&api.CreateTransactionRequest{}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

	_, err = c.transactions.CreateTransaction(ctx, as(alice, &api.CreateTransactionRequest{
		Type: "expense", Amount: decimal.Zero, Context: api.TransactionContext{Kind: "personal"},
	}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	var cerr *connect.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "amount,bankAccountId", cerr.Meta().Get(invalidFieldsHeader))

	_, err = c.transactions.CreateTransaction(ctx, as(alice, &api.CreateTransactionRequest{
		Type: "expense", Amount: dec("80"), Context: api.TransactionContext{Kind: "personal"}, BankAccountID: acct.ID,
	}))
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	_, err = c.groups.GetGroup(ctx, as(carol, &api.GetGroupRequest{GroupID: g.ID}))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	_, err = c.transactions.GetTransaction(ctx, as(alice, &api.GetTransactionRequest{TransactionID: "missing"}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = c.settlements.InitiateSettlement(ctx, as(bob, &api.InitiateSettlementRequest{
		GroupID: g.ID, DebtorID: bob, CreditorID: alice,
	}))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err), "nothing pending")

	created, err := c.transactions.CreateTransaction(ctx, as(alice, &api.CreateTransactionRequest{
		Type: "expense", Amount: dec("20"), Context: api.TransactionContext{Kind: "group", GroupID: g.ID},
		PayerID: alice, Participants: []string{alice, bob}, BankAccountID: acct.ID,
	}))
	require.NoError(t, err)
	_, err = c.settlements.InitiateSettlement(ctx, as(bob, &api.InitiateSettlementRequest{
		GroupID: g.ID, DebtorID: bob, CreditorID: alice,
	}))
	require.NoError(t, err)

	amount := dec("30")
	_, err = c.transactions.UpdateTransaction(ctx, as(alice, &api.UpdateTransactionRequest{
		TransactionID: created.Msg.Transaction.ID, Amount: &amount,
	}))
	assert.Equal(t, connect.CodeAborted, connect.CodeOf(err))
}

func TestContactTransactionSoftFailure(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice := c.user(t, "alice@example.com")
	bob := c.user(t, "bob@example.com")
	mine := c.account(t, alice, "0")
	c.account(t, bob, "10")

	resp, err := c.transactions.CreateTransaction(ctx, as(alice, &api.CreateTransactionRequest{
		Type:          "received",
		Amount:        dec("25"),
		Context:       api.TransactionContext{Kind: "contact", Contact: &api.Contact{Name: "Bob", Email: "bob@example.com"}},
		BankAccountID: mine.ID,
	}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.SoftFailures, 1)
	assert.Equal(t, "counterparty_adjust", resp.Msg.SoftFailures[0].Step)

	list, err := c.transactions.ListTransactions(ctx, as(alice, &api.ListTransactionsRequest{}))
	require.NoError(t, err)
	require.Len(t, list.Msg.Transactions, 1)
	assert.Equal(t, "contact", list.Msg.Transactions[0].Context.Kind)
	assert.Equal(t, "bob@example.com", list.Msg.Transactions[0].Context.Contact.Email)

	_, err = c.transactions.DeleteTransaction(ctx, as(alice, &api.DeleteTransactionRequest{TransactionID: resp.Msg.Transaction.ID}))
	require.NoError(t, err)

	accounts, err := c.accounts.ListBankAccounts(ctx, as(alice, &api.ListBankAccountsRequest{}))
	require.NoError(t, err)
	assert.True(t, accounts.Msg.Accounts[0].CurrentBalance.IsZero())
}
