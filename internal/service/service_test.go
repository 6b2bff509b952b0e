package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

const testUserHeader = "X-Test-User"

// testIdentityInterceptor trusts the user ID sent in testUserHeader.
func testIdentityInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if id := req.Header().Get(testUserHeader); id != "" {
				ctx = middleware.WithUser(ctx, id, "")
			}
			return next(ctx, req)
		}
	}
}

type clients struct {
	store        *sqlite.Store
	auth         apiconnect.AuthServiceClient
	groups       apiconnect.GroupServiceClient
	balances     apiconnect.BalanceServiceClient
	transactions apiconnect.TransactionServiceClient
	settlements  apiconnect.SettlementServiceClient
	accounts     apiconnect.BankAccountServiceClient
}

func setupTestServer(t *testing.T) *clients {
	t.Helper()

	store, err := sqlite.New(config.DBConfig{Path: filepath.Join(t.TempDir(), "service.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	l := ledger.New(store)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	interceptors := connect.WithInterceptors(testIdentityInterceptor())
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, logger), interceptors))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(l), interceptors))
	mux.Handle(apiconnect.NewBalanceServiceHandler(NewBalanceService(l), interceptors))
	mux.Handle(apiconnect.NewTransactionServiceHandler(NewTransactionService(l), interceptors))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(l), interceptors))
	mux.Handle(apiconnect.NewBankAccountServiceHandler(NewBankAccountService(l), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	hc := server.Client()
	return &clients{
		store:        store,
		auth:         apiconnect.NewAuthServiceClient(hc, server.URL),
		groups:       apiconnect.NewGroupServiceClient(hc, server.URL),
		balances:     apiconnect.NewBalanceServiceClient(hc, server.URL),
		transactions: apiconnect.NewTransactionServiceClient(hc, server.URL),
		settlements:  apiconnect.NewSettlementServiceClient(hc, server.URL),
		accounts:     apiconnect.NewBankAccountServiceClient(hc, server.URL),
	}
}

// as builds a request made by userID.
func as[T any](userID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set(testUserHeader, userID)
	return req
}

func (c *clients) user(t *testing.T, email string) string {
	t.Helper()
	u := models.NewUser(email, email, "hash")
	require.NoError(t, c.store.CreateUser(context.Background(), u))
	return u.ID
}

func (c *clients) account(t *testing.T, owner, balance string) *api.BankAccount {
	t.Helper()
	resp, err := c.accounts.CreateBankAccount(context.Background(), as(owner, &api.CreateBankAccountRequest{
		Name:           "Checking",
		OpeningBalance: decimal.RequireFromString(balance),
	}))
	require.NoError(t, err)
	return resp.Msg.Account
}

func (c *clients) group(t *testing.T, creator string, members ...string) *api.Group {
	t.Helper()
	resp, err := c.groups.CreateGroup(context.Background(), as(creator, &api.CreateGroupRequest{
		Name:    "Roommates",
		Members: members,
	}))
	require.NoError(t, err)
	return resp.Msg.Group
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
