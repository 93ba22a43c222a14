package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/config"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
)

// ErrRecordNotFound 由 Get 和 Update 在目标记录不存在时返回；Delete 则通过返回 false 表示
var ErrRecordNotFound = errors.New("record not found")

type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

// Store 是所有存储后端共同实现的接口。Create 方法会就地填充 ID 等由服务端生成的字段。
// 存储层不做外键检查，Shift 指向的成员或班次类型可能已被删除。
type Store interface {
	GetAllUsers(ctx context.Context) ([]*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) error
	UpdateUser(ctx context.Context, id int64, patch *domain.UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) (bool, error)

	GetAllTeamMembers(ctx context.Context) ([]*domain.TeamMember, error)
	GetTeamMemberByID(ctx context.Context, id int64) (*domain.TeamMember, error)
	CreateTeamMember(ctx context.Context, member *domain.TeamMember) error
	UpdateTeamMember(ctx context.Context, id int64, patch *domain.TeamMemberPatch) (*domain.TeamMember, error)
	DeleteTeamMember(ctx context.Context, id int64) (bool, error)

	GetAllShiftTypes(ctx context.Context) ([]*domain.ShiftType, error)
	GetShiftTypeByID(ctx context.Context, id int64) (*domain.ShiftType, error)
	CreateShiftType(ctx context.Context, st *domain.ShiftType) error
	UpdateShiftType(ctx context.Context, id int64, patch *domain.ShiftTypePatch) (*domain.ShiftType, error)
	DeleteShiftType(ctx context.Context, id int64) (bool, error)

	GetAllShifts(ctx context.Context) ([]*domain.Shift, error)
	GetShiftByID(ctx context.Context, id int64) (*domain.Shift, error)
	CreateShift(ctx context.Context, shift *domain.Shift) error
	UpdateShift(ctx context.Context, id int64, patch *domain.ShiftPatch) (*domain.Shift, error)
	DeleteShift(ctx context.Context, id int64) (bool, error)

	// GetShiftsBetween 返回日期落在 [from, to] 闭区间内的班次，按日期、ID 排序
	GetShiftsBetween(ctx context.Context, from, to domain.Date) ([]*domain.Shift, error)
}

var (
	_ Store = (*Repository)(nil)
	_ Store = (*MemoryStore)(nil)
	_ Store = (*MongoStore)(nil)
)

//go:embed schema.sql
var schemaSQL string

// Repository 是基于 PostgreSQL 的 Store 实现
type Repository struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewRepository(cfg *config.Config, dbpool *sql.DB) *Repository {
	return &Repository{
		cfg:    cfg,
		dbpool: dbpool,
	}
}

// Migrate 创建所需的表，可重复执行
func (r *Repository) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.TransactionTimeout())
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	return nil
}

func (r *Repository) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.cfg.QueryTimeout())
}

func (r *Repository) txContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.cfg.TransactionTimeout())
}

const pgUniqueViolation = "23505"

// 唯一约束名到字段名的映射，和 schema.sql 保持一致
var uniqueConstraintFields = map[string]string{
	"users_username_key":     "username",
	"team_members_email_key": "email",
}

// translateError 把驱动层的错误转换为 repository 包定义的错误
func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrRecordNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		if field, ok := uniqueConstraintFields[pgErr.ConstraintName]; ok {
			return &DuplicateError{Field: field}
		}
	}

	return err
}

func deleteByID(ctx context.Context, db *sql.DB, table string, id int64) (bool, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n > 0, nil
}
