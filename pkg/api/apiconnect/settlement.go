package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

// SettlementServiceName is the fully-qualified name of the SettlementService.
const SettlementServiceName = Package + ".SettlementService"

const (
	SettlementServiceInitiateSettlementProcedure       = "/" + SettlementServiceName + "/InitiateSettlement"
	SettlementServiceRespondToSettlementProcedure      = "/" + SettlementServiceName + "/RespondToSettlement"
	SettlementServiceResetRejectedSettlementsProcedure = "/" + SettlementServiceName + "/ResetRejectedSettlements"
	SettlementServiceGetSettlementHistoryProcedure     = "/" + SettlementServiceName + "/GetSettlementHistory"
)

// SettlementServiceClient is a client for the SettlementService.
type SettlementServiceClient interface {
	InitiateSettlement(context.Context, *connect.Request[api.InitiateSettlementRequest]) (*connect.Response[api.InitiateSettlementResponse], error)
	RespondToSettlement(context.Context, *connect.Request[api.RespondToSettlementRequest]) (*connect.Response[api.RespondToSettlementResponse], error)
	ResetRejectedSettlements(context.Context, *connect.Request[api.ResetRejectedSettlementsRequest]) (*connect.Response[api.ResetRejectedSettlementsResponse], error)
	GetSettlementHistory(context.Context, *connect.Request[api.GetSettlementHistoryRequest]) (*connect.Response[api.GetSettlementHistoryResponse], error)
}

// NewSettlementServiceClient returns a client for the SettlementService served at baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) SettlementServiceClient {
	return &settlementServiceClient{
		initiateSettlement:       newClient[api.InitiateSettlementRequest, api.InitiateSettlementResponse](httpClient, baseURL, SettlementServiceInitiateSettlementProcedure, opts),
		respondToSettlement:      newClient[api.RespondToSettlementRequest, api.RespondToSettlementResponse](httpClient, baseURL, SettlementServiceRespondToSettlementProcedure, opts),
		resetRejectedSettlements: newClient[api.ResetRejectedSettlementsRequest, api.ResetRejectedSettlementsResponse](httpClient, baseURL, SettlementServiceResetRejectedSettlementsProcedure, opts),
		getSettlementHistory:     newClient[api.GetSettlementHistoryRequest, api.GetSettlementHistoryResponse](httpClient, baseURL, SettlementServiceGetSettlementHistoryProcedure, opts),
	}
}

type settlementServiceClient struct {
	initiateSettlement       *connect.Client[api.InitiateSettlementRequest, api.InitiateSettlementResponse]
	respondToSettlement      *connect.Client[api.RespondToSettlementRequest, api.RespondToSettlementResponse]
	resetRejectedSettlements *connect.Client[api.ResetRejectedSettlementsRequest, api.ResetRejectedSettlementsResponse]
	getSettlementHistory     *connect.Client[api.GetSettlementHistoryRequest, api.GetSettlementHistoryResponse]
}

func (c *settlementServiceClient) InitiateSettlement(ctx context.Context, req *connect.Request[api.InitiateSettlementRequest]) (*connect.Response[api.InitiateSettlementResponse], error) {
	return c.initiateSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) RespondToSettlement(ctx context.Context, req *connect.Request[api.RespondToSettlementRequest]) (*connect.Response[api.RespondToSettlementResponse], error) {
	return c.respondToSettlement.CallUnary(ctx, req)
}

func (c *settlementServiceClient) ResetRejectedSettlements(ctx context.Context, req *connect.Request[api.ResetRejectedSettlementsRequest]) (*connect.Response[api.ResetRejectedSettlementsResponse], error) {
	return c.resetRejectedSettlements.CallUnary(ctx, req)
}

func (c *settlementServiceClient) GetSettlementHistory(ctx context.Context, req *connect.Request[api.GetSettlementHistoryRequest]) (*connect.Response[api.GetSettlementHistoryResponse], error) {
	return c.getSettlementHistory.CallUnary(ctx, req)
}

// SettlementServiceHandler is implemented by the server side of the SettlementService.
type SettlementServiceHandler interface {
	InitiateSettlement(context.Context, *connect.Request[api.InitiateSettlementRequest]) (*connect.Response[api.InitiateSettlementResponse], error)
	RespondToSettlement(context.Context, *connect.Request[api.RespondToSettlementRequest]) (*connect.Response[api.RespondToSettlementResponse], error)
	ResetRejectedSettlements(context.Context, *connect.Request[api.ResetRejectedSettlementsRequest]) (*connect.Response[api.ResetRejectedSettlementsResponse], error)
	GetSettlementHistory(context.Context, *connect.Request[api.GetSettlementHistoryRequest]) (*connect.Response[api.GetSettlementHistoryResponse], error)
}

// NewSettlementServiceHandler returns the mount path and handler for svc.
func NewSettlementServiceHandler(svc SettlementServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	s := newServiceMux(opts)
	handle(s, SettlementServiceInitiateSettlementProcedure, svc.InitiateSettlement)
	handle(s, SettlementServiceRespondToSettlementProcedure, svc.RespondToSettlement)
	handle(s, SettlementServiceResetRejectedSettlementsProcedure, svc.ResetRejectedSettlements)
	handle(s, SettlementServiceGetSettlementHistoryProcedure, svc.GetSettlementHistory)
	return "/" + SettlementServiceName + "/", s.mux
}

// UnimplementedSettlementServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedSettlementServiceHandler struct{}

func (UnimplementedSettlementServiceHandler) InitiateSettlement(context.Context, *connect.Request[api.InitiateSettlementRequest]) (*connect.Response[api.InitiateSettlementResponse], error) {
	return nil, unimplemented(SettlementServiceInitiateSettlementProcedure)
}

func (UnimplementedSettlementServiceHandler) RespondToSettlement(context.Context, *connect.Request[api.RespondToSettlementRequest]) (*connect.Response[api.RespondToSettlementResponse], error) {
	return nil, unimplemented(SettlementServiceRespondToSettlementProcedure)
}

func (UnimplementedSettlementServiceHandler) ResetRejectedSettlements(context.Context, *connect.Request[api.ResetRejectedSettlementsRequest]) (*connect.Response[api.ResetRejectedSettlementsResponse], error) {
	return nil, unimplemented(SettlementServiceResetRejectedSettlementsProcedure)
}

func (UnimplementedSettlementServiceHandler) GetSettlementHistory(context.Context, *connect.Request[api.GetSettlementHistoryRequest]) (*connect.Response[api.GetSettlementHistoryResponse], error) {
	return nil, unimplemented(SettlementServiceGetSettlementHistoryProcedure)
}
