package repository

import (
	"context"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
)

// TIME 列经 pgx 读出时带微秒，这里统一格式化成 HH:MM:SS
const shiftTypeColumns = `
	id,
	name,
	to_char(start_time, 'HH24:MI:SS'),
	to_char(end_time, 'HH24:MI:SS'),
	color,
	description
`

func scanShiftType(row rowScanner) (*domain.ShiftType, error) {
	st := &domain.ShiftType{}
	dst := []any{&st.ID, &st.Name, &st.StartTime, &st.EndTime, &st.Color, &st.Description}
	if err := row.Scan(dst...); err != nil {
		return nil, err
	}
	return st, nil
}

func (r *Repository) GetAllShiftTypes(ctx context.Context) ([]*domain.ShiftType, error) {
	query := `SELECT ` + shiftTypeColumns + ` FROM shift_types ORDER BY id`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sts := make([]*domain.ShiftType, 0)
	for rows.Next() {
		st, err := scanShiftType(rows)
		if err != nil {
			return nil, err
		}
		sts = append(sts, st)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sts, nil
}

func (r *Repository) GetShiftTypeByID(ctx context.Context, id int64) (*domain.ShiftType, error) {
	query := `SELECT ` + shiftTypeColumns + ` FROM shift_types WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	st, err := scanShiftType(r.dbpool.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}

	return st, nil
}

func (r *Repository) CreateShiftType(ctx context.Context, st *domain.ShiftType) error {
	query := `
		INSERT INTO shift_types (name, start_time, end_time, color, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	if st.Color == "" {
		st.Color = domain.DefaultShiftTypeColor
	}

	args := []any{st.Name, st.StartTime, st.EndTime, st.Color, st.Description}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&st.ID); err != nil {
		return translateError(err)
	}

	return nil
}

func (r *Repository) UpdateShiftType(ctx context.Context, id int64, patch *domain.ShiftTypePatch) (*domain.ShiftType, error) {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `SELECT ` + shiftTypeColumns + ` FROM shift_types WHERE id = $1 FOR UPDATE`
	st, err := scanShiftType(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err)
	}

	patch.Apply(st)

	query = `
		UPDATE shift_types
		SET
			name = $1,
			start_time = $2,
			end_time = $3,
			color = $4,
			description = $5
		WHERE id = $6
	`
	args := []any{st.Name, st.StartTime, st.EndTime, st.Color, st.Description, id}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return st, nil
}

func (r *Repository) DeleteShiftType(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return deleteByID(ctx, r.dbpool, "shift_types", id)
}
