package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// TransactionService implements the Connect TransactionService.
type TransactionService struct {
	apiconnect.UnimplementedTransactionServiceHandler
	ledger *ledger.Ledger
}

func NewTransactionService(l *ledger.Ledger) *TransactionService {
	return &TransactionService{ledger: l}
}

// CreateTransaction records a transaction and applies its bank-balance effect.
// Counterparty side effects that could not be applied come back as soft
// failures next to the created transaction.
func (s *TransactionService) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.CreateTransactionResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("CreateTransaction request received",
		"context", msg.Context.Kind,
		"type", msg.Type,
		"participants_count", len(msg.Participants),
	)

	res, err := s.ledger.CreateTransactionWithBalanceEffect(ctx, userID, ledger.NewTransaction{
		Type:          models.TransactionType(msg.Type),
		Amount:        msg.Amount,
		Category:      msg.Category,
		Description:   msg.Description,
		Date:          msg.Date,
		Context:       fromAPIContext(msg.Context),
		PayerID:       msg.PayerID,
		Participants:  msg.Participants,
		SplitType:     models.SplitType(msg.SplitType),
		CustomAmounts: amounts(msg.CustomAmounts),
		BankAccountID: msg.BankAccountID,
	})
	if err != nil {
		return nil, toConnectError("CreateTransaction", err)
	}

	return connect.NewResponse(&api.CreateTransactionResponse{
		Transaction:  toAPITransaction(res.Value),
		SoftFailures: toAPISoftFailures(res.SoftFailures),
	}), nil
}

func (s *TransactionService) GetTransaction(ctx context.Context, req *connect.Request[api.GetTransactionRequest]) (*connect.Response[api.GetTransactionResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.ledger.GetTransaction(ctx, userID, req.Msg.TransactionID)
	if err != nil {
		return nil, toConnectError("GetTransaction", err)
	}
	return connect.NewResponse(&api.GetTransactionResponse{Transaction: toAPITransaction(tx)}), nil
}

// ListTransactions lists the caller's transactions, or a whole group's when
// a group ID is given.
func (s *TransactionService) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.ledger.ListTransactions(ctx, userID, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("ListTransactions", err)
	}
	slog.Info("ListTransactions successful", "group_id", req.Msg.GroupID, "count", len(txs))
	return connect.NewResponse(&api.ListTransactionsResponse{Transactions: toAPITransactions(txs)}), nil
}

func (s *TransactionService) UpdateTransaction(ctx context.Context, req *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.UpdateTransactionResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateTransaction request received", "transaction_id", req.Msg.TransactionID)

	tx, err := s.ledger.UpdateTransaction(ctx, userID, req.Msg.TransactionID, ledger.TransactionUpdate{
		Description:   req.Msg.Description,
		Category:      req.Msg.Category,
		Amount:        req.Msg.Amount,
		CustomAmounts: amounts(req.Msg.CustomAmounts),
	})
	if err != nil {
		return nil, toConnectError("UpdateTransaction", err)
	}
	return connect.NewResponse(&api.UpdateTransactionResponse{Transaction: toAPITransaction(tx)}), nil
}

// DeleteTransaction deletes a transaction and reverses its bank-balance effect.
func (s *TransactionService) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error) {
	userID, err := actor(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteTransaction request received", "transaction_id", req.Msg.TransactionID)

	if err := s.ledger.DeleteTransactionWithReversal(ctx, userID, req.Msg.TransactionID); err != nil {
		return nil, toConnectError("DeleteTransaction", err)
	}
	return connect.NewResponse(&api.DeleteTransactionResponse{}), nil
}
