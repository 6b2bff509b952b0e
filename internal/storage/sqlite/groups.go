package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

type groupRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	CreatedBy string `db:"created_by"`
	CreatedAt int64  `db:"created_at"`
}

type settleUpFlagRow struct {
	MemberID           string `db:"member_id"`
	IsSettled          bool   `db:"is_settled"`
	LastSettlementDate int64  `db:"last_settlement_date"`
}

// CreateGroup persists a new group with its members and settle-up flags.
func (q *queries) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	return q.atomic(ctx, func(q *queries) error {
		_, err := sqlx.NamedExecContext(ctx, q.ext,
			`INSERT INTO groups (id, name, created_by, created_at) VALUES (:id, :name, :created_by, :created_at)`,
			groupRow{ID: group.ID, Name: group.Name, CreatedBy: group.CreatedBy, CreatedAt: group.CreatedAt},
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		for i, member := range group.Members {
			_, err = q.ext.ExecContext(ctx,
				"INSERT INTO group_members (group_id, user_id, position) VALUES (?, ?, ?)",
				group.ID, member, i,
			)
			if err != nil {
				return fmt.Errorf("failed to insert group member: %w", err)
			}
		}

		for _, flag := range group.SettleUpMode {
			if err := q.SetSettleUpFlag(ctx, group.ID, flag); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetGroup retrieves a group by ID, including members and settle-up flags.
func (q *queries) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	var row groupRow
	err := sqlx.GetContext(ctx, q.ext, &row, "SELECT id, name, created_by, created_at FROM groups WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return q.loadGroup(ctx, row)
}

// ListGroupsForMember retrieves every group the user belongs to, newest first.
func (q *queries) ListGroupsForMember(ctx context.Context, userID string) ([]*models.Group, error) {
	var rows []groupRow
	err := sqlx.SelectContext(ctx, q.ext, &rows, `
		SELECT g.id, g.name, g.created_by, g.created_at
		FROM groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE m.user_id = ?
		ORDER BY g.created_at DESC, g.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	groups := make([]*models.Group, 0, len(rows))
	for _, row := range rows {
		group, err := q.loadGroup(ctx, row)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// AddGroupMembers appends members after the existing ones.
func (q *queries) AddGroupMembers(ctx context.Context, groupID string, members []string) error {
	return q.atomic(ctx, func(q *queries) error {
		var next sql.NullInt64
		err := sqlx.GetContext(ctx, q.ext, &next,
			"SELECT MAX(position) + 1 FROM group_members WHERE group_id = ?", groupID)
		if err != nil {
			return fmt.Errorf("failed to read member positions: %w", err)
		}
		if !next.Valid {
			if _, err := q.GetGroup(ctx, groupID); err != nil {
				return err
			}
		}

		pos := next.Int64
		for _, member := range members {
			res, err := q.ext.ExecContext(ctx,
				"INSERT INTO group_members (group_id, user_id, position) VALUES (?, ?, ?) ON CONFLICT DO NOTHING",
				groupID, member, pos,
			)
			if err != nil {
				return fmt.Errorf("failed to add group member: %w", err)
			}
			n, err := rowsAffected(res)
			if err != nil {
				return err
			}
			pos += n
		}
		return nil
	})
}

// DeleteGroup removes a group and, by cascade, its transactions.
func (q *queries) DeleteGroup(ctx context.Context, id string) error {
	res, err := q.ext.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// SetSettleUpFlag inserts or replaces one member's settle-up flag.
func (q *queries) SetSettleUpFlag(ctx context.Context, groupID string, flag models.SettleUpFlag) error {
	_, err := q.ext.ExecContext(ctx, `
		INSERT INTO settle_up_flags (group_id, member_id, is_settled, last_settlement_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (group_id, member_id) DO UPDATE SET
			is_settled = excluded.is_settled,
			last_settlement_date = excluded.last_settlement_date`,
		groupID, flag.MemberID, flag.IsSettled, flag.LastSettlementDate,
	)
	if err != nil {
		return fmt.Errorf("failed to set settle-up flag: %w", err)
	}
	return nil
}

func (q *queries) loadGroup(ctx context.Context, row groupRow) (*models.Group, error) {
	group := &models.Group{
		ID:        row.ID,
		Name:      row.Name,
		CreatedBy: row.CreatedBy,
		CreatedAt: row.CreatedAt,
	}

	if err := sqlx.SelectContext(ctx, q.ext, &group.Members,
		"SELECT user_id FROM group_members WHERE group_id = ? ORDER BY position", row.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}

	var flags []settleUpFlagRow
	if err := sqlx.SelectContext(ctx, q.ext, &flags,
		"SELECT member_id, is_settled, last_settlement_date FROM settle_up_flags WHERE group_id = ? ORDER BY member_id",
		row.ID,
	); err != nil {
		return nil, fmt.Errorf("failed to get settle-up flags: %w", err)
	}
	for _, f := range flags {
		group.SettleUpMode = append(group.SettleUpMode, models.SettleUpFlag(f))
	}

	return group, nil
}
