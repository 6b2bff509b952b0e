package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
)

// invalidFieldsHeader lists the fields of a ValidationError in the error metadata.
const invalidFieldsHeader = "Ledger-Invalid-Fields"

// actor returns the authenticated user ID set by the auth interceptor.
func actor(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}
	return userID, nil
}

// toConnectError maps ledger errors onto Connect codes. Anything outside the
// taxonomy is logged and reported as internal.
func toConnectError(op string, err error) error {
	var (
		validation   *ledger.ValidationError
		notFound     *ledger.NotFoundError
		forbidden    *ledger.AuthorizationError
		insufficient *ledger.InsufficientBalanceError
		consistency  *ledger.ConsistencyError
	)
	switch {
	case errors.As(err, &validation):
		cerr := connect.NewError(connect.CodeInvalidArgument, err)
		fields := make([]string, 0, len(validation.Fields))
		for _, f := range validation.Fields {
			fields = append(fields, f.Field)
		}
		cerr.Meta().Set(invalidFieldsHeader, strings.Join(fields, ","))
		return cerr
	case errors.As(err, &notFound), errors.Is(err, ledger.ErrNoPendingSettlements):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.As(err, &forbidden):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.As(err, &insufficient):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.As(err, &consistency):
		return connect.NewError(connect.CodeAborted, err)
	}

	slog.Error(op+" failed", "error", err)
	return connect.NewError(connect.CodeInternal, errors.New("internal error"))
}
