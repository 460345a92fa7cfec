package db

import (
	"context"
	"fmt"

	"github.com/habit-king/habitking/internal/domain"
)

// ─── Accounts ───────────────────────────────────────────────────────────────

type accountRow struct {
	ID          string `db:"id"`
	DisplayName string `db:"display_name"`
	TimeZone    string `db:"time_zone"`
	Exempt      bool   `db:"exempt"`
	JoinedAt    int64  `db:"joined_at"`
}

func (r accountRow) toDomain() domain.Account {
	return domain.Account{
		ID:          r.ID,
		DisplayName: r.DisplayName,
		TimeZone:    r.TimeZone,
		Exempt:      r.Exempt,
		JoinedAt:    fromUnix(r.JoinedAt),
	}
}

const accountCols = `id, display_name, time_zone, exempt, joined_at`

// UpsertAccount inserts or refreshes an account from the identity collaborator.
func (d *DB) UpsertAccount(ctx context.Context, a domain.Account) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO accounts (`+accountCols+`) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET
		   display_name = excluded.display_name,
		   time_zone = excluded.time_zone,
		   exempt = excluded.exempt`,
		a.ID, a.DisplayName, a.TimeZone, a.Exempt, unix(a.JoinedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert account %s: %w", a.ID, err)
	}
	return nil
}

// GetAccount loads an account.
func (d *DB) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	var row accountRow
	err := d.db.GetContext(ctx, &row, `SELECT `+accountCols+` FROM accounts WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err, domain.ErrAccountNotFound)
	}
	a := row.toDomain()
	return &a, nil
}

// ─── Groups ─────────────────────────────────────────────────────────────────

type groupRow struct {
	ID         string `db:"id"`
	Name       string `db:"name"`
	InviteCode string `db:"invite_code"`
	CreatorID  string `db:"creator_id"`
	CreatedAt  int64  `db:"created_at"`
}

func (r groupRow) toDomain() domain.Group {
	return domain.Group{
		ID:         r.ID,
		Name:       r.Name,
		InviteCode: r.InviteCode,
		CreatorID:  r.CreatorID,
		CreatedAt:  fromUnix(r.CreatedAt),
	}
}

type memberRow struct {
	GroupID  string `db:"group_id"`
	UserID   string `db:"user_id"`
	Role     string `db:"role"`
	JoinedAt int64  `db:"joined_at"`
}

const groupCols = `id, name, invite_code, creator_id, created_at`

// CreateGroup inserts a group and its creator membership.
func (d *DB) CreateGroup(ctx context.Context, g domain.Group) error {
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO habit_groups (`+groupCols+`) VALUES ($1, $2, $3, $4, $5)`,
		g.ID, g.Name, g.InviteCode, g.CreatorID, unix(g.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert group %s: %w", g.ID, err)
	}
	return d.AddMember(ctx, domain.GroupMember{
		GroupID:  g.ID,
		UserID:   g.CreatorID,
		Role:     domain.RoleCreator,
		JoinedAt: g.CreatedAt,
	})
}

// GetGroup loads a group.
func (d *DB) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	var row groupRow
	err := d.db.GetContext(ctx, &row, `SELECT `+groupCols+` FROM habit_groups WHERE id = $1`, id)
	if err != nil {
		return nil, notFound(err, domain.ErrGroupNotFound)
	}
	g := row.toDomain()
	return &g, nil
}

// ListGroups returns every group, oldest first.
func (d *DB) ListGroups(ctx context.Context) ([]domain.Group, error) {
	var rows []groupRow
	if err := d.db.SelectContext(ctx, &rows,
		`SELECT `+groupCols+` FROM habit_groups ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	out := make([]domain.Group, len(rows))
	for i, r := range rows {
		out[i] = r.toDomain()
	}
	return out, nil
}

// AddMember adds a user to a group; re-adding is a no-op.
func (d *DB) AddMember(ctx context.Context, m domain.GroupMember) error {
	role := m.Role
	if role == "" {
		role = domain.RoleMember
	}
	_, err := d.db.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (group_id, user_id) DO NOTHING`,
		m.GroupID, m.UserID, string(role), unix(m.JoinedAt),
	)
	if err != nil {
		return fmt.Errorf("add member %s to %s: %w", m.UserID, m.GroupID, err)
	}
	return nil
}

// ListMembers returns a group's members, earliest joined first.
func (d *DB) ListMembers(ctx context.Context, groupID string) ([]domain.GroupMember, error) {
	var rows []memberRow
	if err := d.db.SelectContext(ctx, &rows,
		`SELECT group_id, user_id, role, joined_at FROM group_members
		 WHERE group_id = $1 ORDER BY joined_at, user_id`, groupID); err != nil {
		return nil, fmt.Errorf("list members of %s: %w", groupID, err)
	}
	out := make([]domain.GroupMember, len(rows))
	for i, r := range rows {
		out[i] = domain.GroupMember{
			GroupID:  r.GroupID,
			UserID:   r.UserID,
			Role:     domain.MemberRole(r.Role),
			JoinedAt: fromUnix(r.JoinedAt),
		}
	}
	return out, nil
}
