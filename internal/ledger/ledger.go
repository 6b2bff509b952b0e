// Package ledger implements the operations of the group expense ledger on top
// of a storage.Store: balance queries, the settle-up workflow, and
// transaction writes with their bank-balance side effects.
//
// Every operation takes the acting user's ID. Errors are one of the types in
// errors.go, or a wrapped storage failure.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ledger coordinates the store, the calculator and the settlement state machine.
type Ledger struct {
	store    storage.Store
	resolver CounterpartyResolver
	metrics  *metrics.Metrics
	now      func() time.Time
}

type Option func(*Ledger)

// WithCounterpartyResolver replaces the store-backed counterparty lookup.
func WithCounterpartyResolver(r CounterpartyResolver) Option {
	return func(l *Ledger) { l.resolver = r }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(store storage.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		resolver: NewStoreResolver(store),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SoftFailure is a best-effort side effect that failed after the primary
// write committed.
type SoftFailure struct {
	Step string
	Err  error
}

func (f SoftFailure) Error() string {
	return f.Step + ": " + f.Err.Error()
}

// Result carries a committed value together with any soft failures.
type Result[T any] struct {
	Value        T
	SoftFailures []SoftFailure
}

func (r *Result[T]) softFail(m *metrics.Metrics, step string, err error, attrs ...any) {
	r.SoftFailures = append(r.SoftFailures, SoftFailure{Step: step, Err: err})
	m.SoftFailure(step)
	slog.Warn("Side effect failed", append([]any{"step", step, "error", err}, attrs...)...)
}

// groupForMember loads a group and checks that userID belongs to it.
func (l *Ledger) groupForMember(ctx context.Context, r storage.Repository, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, invalid("groupId", "is required")
	}
	group, err := r.GetGroup(ctx, groupID)
	if err != nil {
		return nil, translate(err, "group", groupID)
	}
	if !group.HasMember(userID) {
		return nil, forbidden("user is not a member of group %s", groupID)
	}
	return group, nil
}

// translate maps store sentinels onto the ledger error taxonomy.
func translate(err error, entity, id string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	if errors.Is(err, storage.ErrStaleSettlement) {
		return &ConsistencyError{Reason: "settlement changed while updating; reload and retry"}
	}
	return fmt.Errorf("%s %s: %w", entity, id, err)
}

// isTaxonomy reports whether err already is one of the ledger error types.
func isTaxonomy(err error) bool {
	var (
		v  *ValidationError
		nf *NotFoundError
		az *AuthorizationError
		ib *InsufficientBalanceError
		ce *ConsistencyError
	)
	return errors.As(err, &v) || errors.As(err, &nf) || errors.As(err, &az) ||
		errors.As(err, &ib) || errors.As(err, &ce) || errors.Is(err, ErrNoPendingSettlements)
}
