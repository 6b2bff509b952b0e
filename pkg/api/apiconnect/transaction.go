package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// TransactionServiceName is the fully-qualified name of the TransactionService.
const TransactionServiceName = Package + ".TransactionService"

const (
	TransactionServiceCreateTransactionProcedure = "/" + TransactionServiceName + "/CreateTransaction"
	TransactionServiceGetTransactionProcedure    = "/" + TransactionServiceName + "/GetTransaction"
	TransactionServiceListTransactionsProcedure  = "/" + TransactionServiceName + "/ListTransactions"
	TransactionServiceUpdateTransactionProcedure = "/" + TransactionServiceName + "/UpdateTransaction"
	TransactionServiceDeleteTransactionProcedure = "/" + TransactionServiceName + "/DeleteTransaction"
)

// TransactionServiceClient is a client for the TransactionService.
type TransactionServiceClient interface {
	CreateTransaction(context.Context, *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.CreateTransactionResponse], error)
	GetTransaction(context.Context, *connect.Request[api.GetTransactionRequest]) (*connect.Response[api.GetTransactionResponse], error)
	ListTransactions(context.Context, *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error)
	UpdateTransaction(context.Context, *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.UpdateTransactionResponse], error)
	DeleteTransaction(context.Context, *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error)
}

// NewTransactionServiceClient returns a client for the TransactionService served at baseURL.
func NewTransactionServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) TransactionServiceClient {
	return &transactionServiceClient{
		createTransaction: newClient[api.CreateTransactionRequest, api.CreateTransactionResponse](httpClient, baseURL, TransactionServiceCreateTransactionProcedure, opts),
		getTransaction:    newClient[api.GetTransactionRequest, api.GetTransactionResponse](httpClient, baseURL, TransactionServiceGetTransactionProcedure, opts),
		listTransactions:  newClient[api.ListTransactionsRequest, api.ListTransactionsResponse](httpClient, baseURL, TransactionServiceListTransactionsProcedure, opts),
		updateTransaction: newClient[api.UpdateTransactionRequest, api.UpdateTransactionResponse](httpClient, baseURL, TransactionServiceUpdateTransactionProcedure, opts),
		deleteTransaction: newClient[api.DeleteTransactionRequest, api.DeleteTransactionResponse](httpClient, baseURL, TransactionServiceDeleteTransactionProcedure, opts),
	}
}

type transactionServiceClient struct {
	createTransaction *connect.Client[api.CreateTransactionRequest, api.CreateTransactionResponse]
	getTransaction    *connect.Client[api.GetTransactionRequest, api.GetTransactionResponse]
	listTransactions  *connect.Client[api.ListTransactionsRequest, api.ListTransactionsResponse]
	updateTransaction *connect.Client[api.UpdateTransactionRequest, api.UpdateTransactionResponse]
	deleteTransaction *connect.Client[api.DeleteTransactionRequest, api.DeleteTransactionResponse]
}

func (c *transactionServiceClient) CreateTransaction(ctx context.Context, req *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.CreateTransactionResponse], error) {
	return c.createTransaction.CallUnary(ctx, req)
}

func (c *transactionServiceClient) GetTransaction(ctx context.Context, req *connect.Request[api.GetTransactionRequest]) (*connect.Response[api.GetTransactionResponse], error) {
	return c.getTransaction.CallUnary(ctx, req)
}

func (c *transactionServiceClient) ListTransactions(ctx context.Context, req *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	return c.listTransactions.CallUnary(ctx, req)
}

func (c *transactionServiceClient) UpdateTransaction(ctx context.Context, req *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.UpdateTransactionResponse], error) {
	return c.updateTransaction.CallUnary(ctx, req)
}

func (c *transactionServiceClient) DeleteTransaction(ctx context.Context, req *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error) {
	return c.deleteTransaction.CallUnary(ctx, req)
}

// TransactionServiceHandler is implemented by the server side of the TransactionService.
type TransactionServiceHandler interface {
	CreateTransaction(context.Context, *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.CreateTransactionResponse], error)
	GetTransaction(context.Context, *connect.Request[api.GetTransactionRequest]) (*connect.Response[api.GetTransactionResponse], error)
	ListTransactions(context.Context, *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error)
	UpdateTransaction(context.Context, *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.UpdateTransactionResponse], error)
	DeleteTransaction(context.Context, *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error)
}

// NewTransactionServiceHandler returns the mount path and handler for svc.
func NewTransactionServiceHandler(svc TransactionServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	s := newServiceMux(opts)
	handle(s, TransactionServiceCreateTransactionProcedure, svc.CreateTransaction)
	handle(s, TransactionServiceGetTransactionProcedure, svc.GetTransaction)
	handle(s, TransactionServiceListTransactionsProcedure, svc.ListTransactions)
	handle(s, TransactionServiceUpdateTransactionProcedure, svc.UpdateTransaction)
	handle(s, TransactionServiceDeleteTransactionProcedure, svc.DeleteTransaction)
	return "/" + TransactionServiceName + "/", s.mux
}

// UnimplementedTransactionServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedTransactionServiceHandler struct{}

func (UnimplementedTransactionServiceHandler) CreateTransaction(context.Context, *connect.Request[api.CreateTransactionRequest]) (*connect.Response[api.CreateTransactionResponse], error) {
	return nil, unimplemented(TransactionServiceCreateTransactionProcedure)
}

func (UnimplementedTransactionServiceHandler) GetTransaction(context.Context, *connect.Request[api.GetTransactionRequest]) (*connect.Response[api.GetTransactionResponse], error) {
	return nil, unimplemented(TransactionServiceGetTransactionProcedure)
}

func (UnimplementedTransactionServiceHandler) ListTransactions(context.Context, *connect.Request[api.ListTransactionsRequest]) (*connect.Response[api.ListTransactionsResponse], error) {
	return nil, unimplemented(TransactionServiceListTransactionsProcedure)
}

func (UnimplementedTransactionServiceHandler) UpdateTransaction(context.Context, *connect.Request[api.UpdateTransactionRequest]) (*connect.Response[api.UpdateTransactionResponse], error) {
	return nil, unimplemented(TransactionServiceUpdateTransactionProcedure)
}

func (UnimplementedTransactionServiceHandler) DeleteTransaction(context.Context, *connect.Request[api.DeleteTransactionRequest]) (*connect.Response[api.DeleteTransactionResponse], error) {
	return nil, unimplemented(TransactionServiceDeleteTransactionProcedure)
}
