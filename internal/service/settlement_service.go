package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// SettlementService drives the settle-up workflow between two group members.
type SettlementService struct {
	apiconnect.UnimplementedSettlementServiceHandler
	ledger *ledger.Ledger
}

func NewSettlementService(l *ledger.Ledger) *SettlementService {
	return &SettlementService{ledger: l}
}

// InitiateSettlement marks every pending debt of the debtor toward the
// creditor as paid. Only the debtor may call it.
func (s *SettlementService) InitiateSettlement(ctx context.Context, req *connect.Request[api.InitiateSettlementRequest]) (*connect.Response[api.InitiateSettlementResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("InitiateSettlement request received", "group_id", msg.GroupID, "debtor_id", msg.DebtorID, "creditor_id", msg.CreditorID)

	updated, err := s.ledger.InitiateSettlement(ctx, userID, msg.GroupID, msg.DebtorID, msg.CreditorID)
	if err != nil {
		return nil, toConnectError("InitiateSettlement", err)
	}
	return connect.NewResponse(&api.InitiateSettlementResponse{Settlements: toAPISettlements(updated)}), nil
}

// RespondToSettlement confirms or rejects paid settlements. Only the
// creditor may call it.
func (s *SettlementService) RespondToSettlement(ctx context.Context, req *connect.Request[api.RespondToSettlementRequest]) (*connect.Response[api.RespondToSettlementResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("RespondToSettlement request received",
		"group_id", msg.GroupID,
		"debtor_id", msg.DebtorID,
		"creditor_id", msg.CreditorID,
		"confirmed", msg.Confirmed,
	)

	updated, err := s.ledger.ConfirmOrRejectSettlement(ctx, userID, msg.GroupID, msg.DebtorID, msg.CreditorID, msg.Confirmed, msg.Reason)
	if err != nil {
		return nil, toConnectError("RespondToSettlement", err)
	}
	return connect.NewResponse(&api.RespondToSettlementResponse{Settlements: toAPISettlements(updated)}), nil
}

func (s *SettlementService) ResetRejectedSettlements(ctx context.Context, req *connect.Request[api.ResetRejectedSettlementsRequest]) (*connect.Response[api.ResetRejectedSettlementsResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg

	updated, err := s.ledger.ResetRejectedSettlements(ctx, userID, msg.GroupID, msg.DebtorID, msg.CreditorID)
	if err != nil {
		return nil, toConnectError("ResetRejectedSettlements", err)
	}
	return connect.NewResponse(&api.ResetRejectedSettlementsResponse{Settlements: toAPISettlements(updated)}), nil
}

func (s *SettlementService) GetSettlementHistory(ctx context.Context, req *connect.Request[api.GetSettlementHistoryRequest]) (*connect.Response[api.GetSettlementHistoryResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	settlements, err := s.ledger.GetSettlementHistory(ctx, userID, req.Msg.TransactionID)
	if err != nil {
		return nil, toConnectError("GetSettlementHistory", err)
	}
	return connect.NewResponse(&api.GetSettlementHistoryResponse{Settlements: toAPISettlements(settlements)}), nil
}
