package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
)

const shiftColumns = `id, date, team_member_id, shift_type_id, notes, needs_coverage, created_at`

func scanShift(row rowScanner) (*domain.Shift, error) {
	s := &domain.Shift{}
	var date time.Time
	dst := []any{&s.ID, &date, &s.TeamMemberID, &s.ShiftTypeID, &s.Notes, &s.NeedsCoverage, &s.CreatedAt}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	s.Date = domain.DateOf(date)
	return s, nil
}

func (r *Repository) queryShifts(ctx context.Context, query string, args ...any) ([]*domain.Shift, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}

func (r *Repository) GetAllShifts(ctx context.Context) ([]*domain.Shift, error) {
	return r.queryShifts(ctx, `SELECT `+shiftColumns+` FROM shifts ORDER BY id`)
}

func (r *Repository) GetShiftsBetween(ctx context.Context, from, to domain.Date) ([]*domain.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE date BETWEEN $1 AND $2
		ORDER BY date, id
	`
	return r.queryShifts(ctx, query, from.Time(), to.Time())
}

func (r *Repository) GetShiftByID(ctx context.Context, id int64) (*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	s, err := scanShift(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}

	return s, nil
}

func (r *Repository) CreateShift(ctx context.Context, s *domain.Shift) error {
	query := `
		INSERT INTO shifts (date, team_member_id, shift_type_id, notes, needs_coverage)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{s.Date.Time(), s.TeamMemberID, s.ShiftTypeID, s.Notes, s.NeedsCoverage}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.CreatedAt); err != nil {
		return translateError(err)
	}

	return nil
}

func (r *Repository) UpdateShift(ctx context.Context, id int64, patch *domain.ShiftPatch) (*domain.Shift, error) {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1 FOR UPDATE`
	s, err := scanShift(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}

	patch.Apply(s)

	// created_at 创建后不可修改，因此不在 SET 中
	query = `
		UPDATE shifts
		SET
			date = $1,
			team_member_id = $2,
			shift_type_id = $3,
			notes = $4,
			needs_coverage = $5
		WHERE id = $6
	`
	args := []any{s.Date.Time(), s.TeamMemberID, s.ShiftTypeID, s.Notes, s.NeedsCoverage, id}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s, nil
}

func (r *Repository) DeleteShift(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return deleteByID(ctx, r.dbpool, "shifts", id)
}
