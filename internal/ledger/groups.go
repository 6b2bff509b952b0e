package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/splitledger/internal/models"
)

// CreateGroup creates a group. The creator is always its first member.
func (l *Ledger) CreateGroup(ctx context.Context, actorID, name string, members []string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "is required")
	}

	roster := []string{actorID}
	for _, m := range members {
		if m != "" && !contains(roster, m) {
			roster = append(roster, m)
		}
	}
	if err := l.requireUsers(ctx, roster[1:]); err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:      name,
		Members:   roster,
		CreatedBy: actorID,
		CreatedAt: l.now().Unix(),
	}
	if err := l.store.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	slog.Info("Group created", "group_id", group.ID, "members", len(roster), "user_id", actorID)
	return group, nil
}

// GetGroup returns a group the actor belongs to.
func (l *Ledger) GetGroup(ctx context.Context, actorID, groupID string) (*models.Group, error) {
	return l.groupForMember(ctx, l.store, groupID, actorID)
}

// ListGroups returns the groups the actor belongs to.
func (l *Ledger) ListGroups(ctx context.Context, actorID string) ([]*models.Group, error) {
	groups, err := l.store.ListGroupsForMember(ctx, actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	return groups, nil
}

// AddGroupMembers adds registered users to a group the actor belongs to.
func (l *Ledger) AddGroupMembers(ctx context.Context, actorID, groupID string, members []string) (*models.Group, error) {
	if len(members) == 0 {
		return nil, invalid("members", "must not be empty")
	}
	if _, err := l.groupForMember(ctx, l.store, groupID, actorID); err != nil {
		return nil, err
	}
	if err := l.requireUsers(ctx, members); err != nil {
		return nil, err
	}

	if err := l.store.AddGroupMembers(ctx, groupID, members); err != nil {
		return nil, translate(err, "group", groupID)
	}
	return l.GetGroup(ctx, actorID, groupID)
}

// DeleteGroup removes a group and its transactions. Only the creator may
// delete, and only once every settlement in it is resolved.
func (l *Ledger) DeleteGroup(ctx context.Context, actorID, groupID string) error {
	group, err := l.groupForMember(ctx, l.store, groupID, actorID)
	if err != nil {
		return err
	}
	if group.CreatedBy != actorID {
		return forbidden("only the creator can delete group %s", groupID)
	}

	open, err := l.store.CountUnresolvedSettlements(ctx, groupID, "")
	if err != nil {
		return fmt.Errorf("failed to check group settlements: %w", err)
	}
	if open > 0 {
		return &ConsistencyError{Reason: fmt.Sprintf("group has %d unresolved settlements", open)}
	}

	if err := l.store.DeleteGroup(ctx, groupID); err != nil {
		return translate(err, "group", groupID)
	}
	slog.Info("Group deleted", "group_id", groupID, "user_id", actorID)
	return nil
}

func (l *Ledger) requireUsers(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := l.store.GetUserByID(ctx, id); err != nil {
			return translate(err, "user", id)
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
