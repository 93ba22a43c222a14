package seed

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// EnsureInitialAdmin 确保存在初始管理员账号。password 为空时跳过；账号已存在时不会覆盖其密码。
func EnsureInitialAdmin(ctx context.Context, store repository.Store, username, password string) error {
	if password == "" {
		slog.Info("未配置初始管理员密码，跳过创建初始管理员")
		return nil
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &domain.User{
		Username: username,
		Password: string(passwordHash),
	}
	if err := store.CreateUser(ctx, admin); err != nil {
		var dup *repository.DuplicateError
		if errors.As(err, &dup) {
			// 说明已经存在初始管理员，不处理
			return nil
		}
		return err
	}

	slog.Info("已创建初始管理员", "username", username)
	return nil
}
