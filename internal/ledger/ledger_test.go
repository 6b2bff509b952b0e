package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

var testNow = time.Unix(1_700_000_000, 0)

type fixture struct {
	ctx    context.Context
	store  *sqlite.Store
	ledger *Ledger
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store, err := sqlite.New(config.DBConfig{Path: filepath.Join(t.TempDir(), "ledger.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return &fixture{
		ctx:    context.Background(),
		store:  store,
		ledger: New(store, opts...),
	}
}

func (f *fixture) user(t *testing.T, email string) string {
	t.Helper()
	u := models.NewUser(email, email, "hash")
	require.NoError(t, f.store.CreateUser(f.ctx, u))
	return u.ID
}

func (f *fixture) account(t *testing.T, owner, balance string) *models.BankAccount {
	t.Helper()
	acct, err := f.ledger.CreateBankAccount(f.ctx, owner, "Checking", dec(balance), false)
	require.NoError(t, err)
	return acct
}

func (f *fixture) group(t *testing.T, creator string, members ...string) *models.Group {
	t.Helper()
	g, err := f.ledger.CreateGroup(f.ctx, creator, "Group", members)
	require.NoError(t, err)
	return g
}

// balance returns the account balance formatted with two decimals.
func (f *fixture) balance(t *testing.T, accountID string) string {
	t.Helper()
	acct, err := f.store.GetBankAccount(f.ctx, accountID)
	require.NoError(t, err)
	return acct.CurrentBalance.StringFixed(2)
}

// groupExpense creates an even-split expense paid by payer from acct.
func (f *fixture) groupExpense(t *testing.T, g *models.Group, payer string, acct *models.BankAccount, amount string, participants ...string) *models.Transaction {
	t.Helper()
	in := NewTransaction{
		Type:         models.TypeExpense,
		Amount:       dec(amount),
		Context:      models.GroupContext(g.ID),
		PayerID:      payer,
		Participants: participants,
		SplitType:    models.SplitEven,
	}
	if acct != nil {
		in.BankAccountID = acct.ID
	}
	res, err := f.ledger.CreateTransactionWithBalanceEffect(f.ctx, payer, in)
	require.NoError(t, err)
	require.Empty(t, res.SoftFailures)
	return res.Value
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) ResolveCounterparty(ctx context.Context, contact models.ContactInfo) (*models.BankAccount, error) {
	args := m.Called(ctx, contact)
	acct, _ := args.Get(0).(*models.BankAccount)
	return acct, args.Error(1)
}
