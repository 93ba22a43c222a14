package repository

import (
	"context"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
)

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT username, password FROM users WHERE id = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	user := &domain.User{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&user.Username, &user.Password); err != nil {
		return nil, translateError(err)
	}

	return user, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT id, password FROM users WHERE username = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	user := &domain.User{
		Username: username,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(&user.ID, &user.Password); err != nil {
		return nil, translateError(err)
	}

	return user, nil
}

func (r *Repository) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT id, username, password FROM users ORDER BY id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		if err := rows.Scan(&user.ID, &user.Username, &user.Password); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (username, password)
		VALUES ($1, $2)
		RETURNING id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, user.Username, user.Password).Scan(&user.ID); err != nil {
		return translateError(err)
	}

	return nil
}

func (r *Repository) UpdateUser(ctx context.Context, id int64, patch *domain.UserPatch) (*domain.User, error) {
	ctx, cancel := r.txContext(ctx)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	user := &domain.User{ID: id}
	query := `SELECT username, password FROM users WHERE id = $1 FOR UPDATE`
	if err := tx.QueryRowContext(ctx, query, id).Scan(&user.Username, &user.Password); err != nil {
		return nil, translateError(err)
	}

	patch.Apply(user)

	query = `UPDATE users SET username = $1, password = $2 WHERE id = $3`
	if _, err := tx.ExecContext(ctx, query, user.Username, user.Password, id); err != nil {
		return nil, translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) DeleteUser(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return deleteByID(ctx, r.dbpool, "users", id)
}
