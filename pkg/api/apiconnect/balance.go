package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// BalanceServiceName is the fully-qualified name of the BalanceService.
const BalanceServiceName = Package + ".BalanceService"

const (
	BalanceServiceGetGroupBalancesProcedure      = "/" + BalanceServiceName + "/GetGroupBalances"
	BalanceServiceGetSimplifiedBalancesProcedure = "/" + BalanceServiceName + "/GetSimplifiedBalances"
)

// BalanceServiceClient is a client for the BalanceService.
type BalanceServiceClient interface {
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	GetSimplifiedBalances(context.Context, *connect.Request[api.GetSimplifiedBalancesRequest]) (*connect.Response[api.GetSimplifiedBalancesResponse], error)
}

// NewBalanceServiceClient returns a client for the BalanceService served at baseURL.
func NewBalanceServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BalanceServiceClient {
	return &balanceServiceClient{
		getGroupBalances:      newClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL, BalanceServiceGetGroupBalancesProcedure, opts),
		getSimplifiedBalances: newClient[api.GetSimplifiedBalancesRequest, api.GetSimplifiedBalancesResponse](httpClient, baseURL, BalanceServiceGetSimplifiedBalancesProcedure, opts),
	}
}

type balanceServiceClient struct {
	getGroupBalances      *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
	getSimplifiedBalances *connect.Client[api.GetSimplifiedBalancesRequest, api.GetSimplifiedBalancesResponse]
}

func (c *balanceServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *balanceServiceClient) GetSimplifiedBalances(ctx context.Context, req *connect.Request[api.GetSimplifiedBalancesRequest]) (*connect.Response[api.GetSimplifiedBalancesResponse], error) {
	return c.getSimplifiedBalances.CallUnary(ctx, req)
}

// BalanceServiceHandler is implemented by the server side of the BalanceService.
type BalanceServiceHandler interface {
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	GetSimplifiedBalances(context.Context, *connect.Request[api.GetSimplifiedBalancesRequest]) (*connect.Response[api.GetSimplifiedBalancesResponse], error)
}

// NewBalanceServiceHandler returns the mount path and handler for svc.
func NewBalanceServiceHandler(svc BalanceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	s := newServiceMux(opts)
	handle(s, BalanceServiceGetGroupBalancesProcedure, svc.GetGroupBalances)
	handle(s, BalanceServiceGetSimplifiedBalancesProcedure, svc.GetSimplifiedBalances)
	return "/" + BalanceServiceName + "/", s.mux
}

// UnimplementedBalanceServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedBalanceServiceHandler struct{}

func (UnimplementedBalanceServiceHandler) GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return nil, unimplemented(BalanceServiceGetGroupBalancesProcedure)
}

func (UnimplementedBalanceServiceHandler) GetSimplifiedBalances(context.Context, *connect.Request[api.GetSimplifiedBalancesRequest]) (*connect.Response[api.GetSimplifiedBalancesResponse], error) {
	return nil, unimplemented(BalanceServiceGetSimplifiedBalancesProcedure)
}
