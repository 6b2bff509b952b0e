package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// BankAccountService manages the caller's bank accounts.
type BankAccountService struct {
	apiconnect.UnimplementedBankAccountServiceHandler
	ledger *ledger.Ledger
}

func NewBankAccountService(l *ledger.Ledger) *BankAccountService {
	return &BankAccountService{ledger: l}
}

func (s *BankAccountService) CreateBankAccount(ctx context.Context, req *connect.Request[api.CreateBankAccountRequest]) (*connect.Response[api.CreateBankAccountResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateBankAccount request received", "name", req.Msg.Name, "is_primary", req.Msg.IsPrimary)

	acct, err := s.ledger.CreateBankAccount(ctx, userID, req.Msg.Name, req.Msg.OpeningBalance, req.Msg.IsPrimary)
	if err != nil {
		return nil, toConnectError("CreateBankAccount", err)
	}
	return connect.NewResponse(&api.CreateBankAccountResponse{Account: toAPIAccount(acct)}), nil
}

func (s *BankAccountService) ListBankAccounts(ctx context.Context, req *connect.Request[api.ListBankAccountsRequest]) (*connect.Response[api.ListBankAccountsResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	accounts, err := s.ledger.ListBankAccounts(ctx, userID)
	if err != nil {
		return nil, toConnectError("ListBankAccounts", err)
	}
	out := make([]*api.BankAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAPIAccount(a))
	}
	return connect.NewResponse(&api.ListBankAccountsResponse{Accounts: out}), nil
}

// SetPrimaryBankAccount makes the account the caller's primary one.
func (s *BankAccountService) SetPrimaryBankAccount(ctx context.Context, req *connect.Request[api.SetPrimaryBankAccountRequest]) (*connect.Response[api.SetPrimaryBankAccountResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	acct, err := s.ledger.SetPrimaryBankAccount(ctx, userID, req.Msg.AccountID)
	if err != nil {
		return nil, toConnectError("SetPrimaryBankAccount", err)
	}
	return connect.NewResponse(&api.SetPrimaryBankAccountResponse{Account: toAPIAccount(acct)}), nil
}
