// Package apiconnect wires the api messages to Connect handlers and clients.
//
// Every service uses the JSON codec registered under the name "json", so the
// Connect protocol carries requests as application/json over HTTP/1.1 or h2c.
package apiconnect

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// Package is the package prefix of every procedure.
const Package = "splitledger.v1"

// Codec marshals api messages as JSON.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

func newClient[Req, Res any](httpClient connect.HTTPClient, baseURL, procedure string, opts []connect.ClientOption) *connect.Client[Req, Res] {
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return connect.NewClient[Req, Res](httpClient, strings.TrimRight(baseURL, "/")+procedure, opts...)
}

// serviceMux routes the procedures of one service.
type serviceMux struct {
	mux  *http.ServeMux
	opts []connect.HandlerOption
}

func newServiceMux(opts []connect.HandlerOption) *serviceMux {
	return &serviceMux{
		mux:  http.NewServeMux(),
		opts: append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...),
	}
}

func handle[Req, Res any](s *serviceMux, procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error)) {
	s.mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, s.opts...))
}

func unimplemented(procedure string) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New(procedure+" is not implemented"))
}
