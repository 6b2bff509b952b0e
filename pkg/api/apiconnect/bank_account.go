package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// BankAccountServiceName is the fully-qualified name of the BankAccountService.
const BankAccountServiceName = Package + ".BankAccountService"

const (
	BankAccountServiceCreateBankAccountProcedure     = "/" + BankAccountServiceName + "/CreateBankAccount"
	BankAccountServiceListBankAccountsProcedure      = "/" + BankAccountServiceName + "/ListBankAccounts"
	BankAccountServiceSetPrimaryBankAccountProcedure = "/" + BankAccountServiceName + "/SetPrimaryBankAccount"
)

// BankAccountServiceClient is a client for the BankAccountService.
type BankAccountServiceClient interface {
	CreateBankAccount(context.Context, *connect.Request[api.CreateBankAccountRequest]) (*connect.Response[api.CreateBankAccountResponse], error)
	ListBankAccounts(context.Context, *connect.Request[api.ListBankAccountsRequest]) (*connect.Response[api.ListBankAccountsResponse], error)
	SetPrimaryBankAccount(context.Context, *connect.Request[api.SetPrimaryBankAccountRequest]) (*connect.Response[api.SetPrimaryBankAccountResponse], error)
}

// NewBankAccountServiceClient returns a client for the BankAccountService served at baseURL.
func NewBankAccountServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BankAccountServiceClient {
	return &bankAccountServiceClient{
		createBankAccount:     newClient[api.CreateBankAccountRequest, api.CreateBankAccountResponse](httpClient, baseURL, BankAccountServiceCreateBankAccountProcedure, opts),
		listBankAccounts:      newClient[api.ListBankAccountsRequest, api.ListBankAccountsResponse](httpClient, baseURL, BankAccountServiceListBankAccountsProcedure, opts),
		setPrimaryBankAccount: newClient[api.SetPrimaryBankAccountRequest, api.SetPrimaryBankAccountResponse](httpClient, baseURL, BankAccountServiceSetPrimaryBankAccountProcedure, opts),
	}
}

type bankAccountServiceClient struct {
	createBankAccount     *connect.Client[api.CreateBankAccountRequest, api.CreateBankAccountResponse]
	listBankAccounts      *connect.Client[api.ListBankAccountsRequest, api.ListBankAccountsResponse]
	setPrimaryBankAccount *connect.Client[api.SetPrimaryBankAccountRequest, api.SetPrimaryBankAccountResponse]
}

func (c *bankAccountServiceClient) CreateBankAccount(ctx context.Context, req *connect.Request[api.CreateBankAccountRequest]) (*connect.Response[api.CreateBankAccountResponse], error) {
	return c.createBankAccount.CallUnary(ctx, req)
}

func (c *bankAccountServiceClient) ListBankAccounts(ctx context.Context, req *connect.Request[api.ListBankAccountsRequest]) (*connect.Response[api.ListBankAccountsResponse], error) {
	return c.listBankAccounts.CallUnary(ctx, req)
}

func (c *bankAccountServiceClient) SetPrimaryBankAccount(ctx context.Context, req *connect.Request[api.SetPrimaryBankAccountRequest]) (*connect.Response[api.SetPrimaryBankAccountResponse], error) {
	return c.setPrimaryBankAccount.CallUnary(ctx, req)
}

// BankAccountServiceHandler is implemented by the server side of the BankAccountService.
type BankAccountServiceHandler interface {
	CreateBankAccount(context.Context, *connect.Request[api.CreateBankAccountRequest]) (*connect.Response[api.CreateBankAccountResponse], error)
	ListBankAccounts(context.Context, *connect.Request[api.ListBankAccountsRequest]) (*connect.Response[api.ListBankAccountsResponse], error)
	SetPrimaryBankAccount(context.Context, *connect.Request[api.SetPrimaryBankAccountRequest]) (*connect.Response[api.SetPrimaryBankAccountResponse], error)
}

// NewBankAccountServiceHandler returns the mount path and handler for svc.
func NewBankAccountServiceHandler(svc BankAccountServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	s := newServiceMux(opts)
	handle(s, BankAccountServiceCreateBankAccountProcedure, svc.CreateBankAccount)
	handle(s, BankAccountServiceListBankAccountsProcedure, svc.ListBankAccounts)
	handle(s, BankAccountServiceSetPrimaryBankAccountProcedure, svc.SetPrimaryBankAccount)
	return "/" + BankAccountServiceName + "/", s.mux
}

// UnimplementedBankAccountServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedBankAccountServiceHandler struct{}

func (UnimplementedBankAccountServiceHandler) CreateBankAccount(context.Context, *connect.Request[api.CreateBankAccountRequest]) (*connect.Response[api.CreateBankAccountResponse], error) {
	return nil, unimplemented(BankAccountServiceCreateBankAccountProcedure)
}

func (UnimplementedBankAccountServiceHandler) ListBankAccounts(context.Context, *connect.Request[api.ListBankAccountsRequest]) (*connect.Response[api.ListBankAccountsResponse], error) {
	return nil, unimplemented(BankAccountServiceListBankAccountsProcedure)
}

func (UnimplementedBankAccountServiceHandler) SetPrimaryBankAccount(context.Context, *connect.Request[api.SetPrimaryBankAccountRequest]) (*connect.Response[api.SetPrimaryBankAccountResponse], error) {
	return nil, unimplemented(BankAccountServiceSetPrimaryBankAccountProcedure)
}
