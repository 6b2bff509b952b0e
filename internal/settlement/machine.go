// Package settlement implements the settlement lifecycle:
//
//	pending --initiate(debtor)--> paid --confirm(creditor)--> success
//	                               paid --reject(creditor)---> pending
//	reject  --reset(debtor)-----> pending
//
// success is terminal. Apply is pure; callers persist the result.
package settlement

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
)

// Action is a user operation on a settlement.
type Action string

const (
	ActionInitiate Action = "initiate"
	ActionConfirm  Action = "confirm"
	ActionReject   Action = "reject"
	ActionReset    Action = "reset"
)

// Role is the side of the debt an actor must hold to perform an action.
type Role string

const (
	RoleDebtor   Role = "debtor"
	RoleCreditor Role = "creditor"
)

// History reasons.
const (
	ReasonInitiated = "Settle Up initiated"
	ReasonConfirmed = "Settlement confirmed"
	ReasonRejected  = "Settlement rejected"
	ReasonReset     = "moved back to pending after rejection"
)

var (
	ErrInvalidTransition = errors.New("invalid settlement transition")
	ErrWrongActor        = errors.New("actor does not hold the required role")
	ErrUnknownAction     = errors.New("unknown settlement action")
)

// Role returns who may perform the action.
func (a Action) Role() Role {
	if a == ActionConfirm || a == ActionReject {
		return RoleCreditor
	}
	return RoleDebtor
}

// SourceStatuses lists the statuses the action selects.
func (a Action) SourceStatuses() []models.SettlementStatus {
	switch a {
	case ActionInitiate:
		return []models.SettlementStatus{models.StatusPending}
	case ActionConfirm, ActionReject:
		return []models.SettlementStatus{models.StatusPaid}
	case ActionReset:
		return []models.SettlementStatus{models.StatusReject, models.StatusPending}
	}
	return nil
}

// Target is the status the action moves a settlement to.
func (a Action) Target() models.SettlementStatus {
	switch a {
	case ActionInitiate:
		return models.StatusPaid
	case ActionConfirm:
		return models.StatusSuccess
	}
	return models.StatusPending
}

// Selects reports whether the action applies to a settlement in its current
// state. Reset picks up settlements in reject status and pending ones that
// still carry rejection marks.
func Selects(s models.Settlement, a Action) bool {
	switch a {
	case ActionInitiate:
		return s.Status == models.StatusPending
	case ActionConfirm, ActionReject:
		return s.Status == models.StatusPaid
	case ActionReset:
		return s.Status == models.StatusReject || (s.Status == models.StatusPending && s.RejectedAt != 0)
	}
	return false
}

// Transition is the outcome of applying an action to one settlement.
type Transition struct {
	Before  models.Settlement
	After   models.Settlement
	History models.SettlementHistoryEntry
}

// Apply validates the actor and state and returns the updated settlement.
// creditorID is the payer of the owning transaction.
func Apply(s models.Settlement, creditorID, actorID string, a Action, reason string, now int64) (Transition, error) {
	switch a.Role() {
	case RoleDebtor:
		if actorID != s.Participant {
			return Transition{}, fmt.Errorf("%w: %s must be performed by the debtor", ErrWrongActor, a)
		}
	case RoleCreditor:
		if actorID != creditorID {
			return Transition{}, fmt.Errorf("%w: %s must be performed by the creditor", ErrWrongActor, a)
		}
	}
	if !Selects(s, a) {
		return Transition{}, fmt.Errorf("%w: cannot %s a %s settlement", ErrInvalidTransition, a, s.Status)
	}

	next := s
	next.History = nil
	next.Status = a.Target()
	msg := ""

	switch a {
	case ActionInitiate:
		next.PaidAt = now
		next.SettledBy = actorID
		msg = ReasonInitiated
	case ActionConfirm:
		next.ConfirmedAt = now
		next.ConfirmedBy = actorID
		msg = ReasonConfirmed
	case ActionReject:
		next.PaidAt = 0
		next.SettledBy = ""
		next.RejectedAt = now
		next.RejectedBy = actorID
		next.RejectionReason = reason
		msg = ReasonRejected
		if reason != "" {
			msg = ReasonRejected + ": " + reason
		}
	case ActionReset:
		next.PaidAt = 0
		next.SettledBy = ""
		next.ConfirmedAt = 0
		next.ConfirmedBy = ""
		next.RejectedAt = 0
		next.RejectedBy = ""
		next.RejectionReason = ""
		msg = ReasonReset
	default:
		return Transition{}, fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}

	return Transition{
		Before: s,
		After:  next,
		History: models.SettlementHistoryEntry{
			ID:           uuid.New().String(),
			SettlementID: s.ID,
			FromStatus:   s.Status,
			ToStatus:     next.Status,
			ActorID:      actorID,
			Reason:       msg,
			At:           now,
		},
	}, nil
}
