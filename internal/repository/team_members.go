package repository

import (
	"context"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
)

const teamMemberColumns = `id, name, position, email, phone, avatar_url, status, user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeamMember(row rowScanner) (*domain.TeamMember, error) {
	m := &domain.TeamMember{}
	dst := []any{&m.ID, &m.Name, &m.Position, &m.Email, &m.Phone, &m.AvatarURL, &m.Status, &m.UserID}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Repository) GetAllTeamMembers(ctx context.Context) ([]*domain.TeamMember, error) {
	query := `SELECT ` + teamMemberColumns + ` FROM team_members ORDER BY id`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*domain.TeamMember, 0)
	for rows.Next() {
		m, err := scanTeamMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return members, nil
}

func (r *Repository) GetTeamMemberByID(ctx context.Context, id int64) (*domain.TeamMember, error) {
	query := `SELECT ` + teamMemberColumns + ` FROM team_members WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	m, err := scanTeamMember(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}

	return m, nil
}

func (r *Repository) CreateTeamMember(ctx context.Context, m *domain.TeamMember) error {
	query := `
		INSERT INTO team_members (name, position, email, phone, avatar_url, status, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	if m.Status == "" {
		m.Status = domain.StatusActive
	}

	args := []any{m.Name, m.Position, m.Email, m.Phone, m.AvatarURL, m.Status, m.UserID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&m.ID); err != nil {
		return translateError(err)
	}

	return nil
}

func (r *Repository) UpdateTeamMember(ctx context.Context, id int64, patch *domain.TeamMemberPatch) (*domain.TeamMember, error) {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + teamMemberColumns + ` FROM team_members WHERE id = $1 FOR UPDATE`
	m, err := scanTeamMember(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}

	patch.Apply(m)

	query = `
		UPDATE team_members
		SET
			name = $1,
			position = $2,
			email = $3,
			phone = $4,
			avatar_url = $5,
			status = $6,
			user_id = $7
		WHERE id = $8
	`
	args := []any{m.Name, m.Position, m.Email, m.Phone, m.AvatarURL, m.Status, m.UserID, id}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return m, nil
}

func (r *Repository) DeleteTeamMember(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return deleteByID(ctx, r.dbpool, "team_members", id)
}
