package service

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// BalanceService serves the read-only balance views of a group.
type BalanceService struct {
	apiconnect.UnimplementedBalanceServiceHandler
	ledger *ledger.Ledger
}

func NewBalanceService(l *ledger.Ledger) *BalanceService {
	return &BalanceService{ledger: l}
}

func (s *BalanceService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	balances, err := s.ledger.ComputeGroupBalances(ctx, userID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetGroupBalances", err)
	}
	return connect.NewResponse(toAPIBalances(balances)), nil
}

// GetSimplifiedBalances returns who the caller owes and who owes the caller.
func (s *BalanceService) GetSimplifiedBalances(ctx context.Context, req *connect.Request[api.GetSimplifiedBalancesRequest]) (*connect.Response[api.GetSimplifiedBalancesResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	simplified, err := s.ledger.ComputeSimplifiedBalances(ctx, userID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("GetSimplifiedBalances", err)
	}
	return connect.NewResponse(&api.GetSimplifiedBalancesResponse{
		YouOwe:  toAPICounterparties(simplified.YouOwe),
		OwesYou: toAPICounterparties(simplified.OwesYou),
	}), nil
}
