package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/config"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/repository"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/seed"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/utils"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机成员及其账号, 2: 插入默认班次类型, 3: 插入本周演示数据)")
	flag.IntVar(&n, "n", 5, "要插入的成员数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("当前为内存存储，插入的数据会在进程退出后丢失")
	}

	ctx := context.Background()

	store, closeStore, err := repository.Open(ctx, cfg)
	if err != nil {
		logger.Error("无法连接存储后端", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的成员数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			member := utils.GenerateRandomTeamMember(cfg.Seed.EmailDomain)

			user, err := utils.GenerateUserForTeamMember(member, cfg.Seed.UserPassword)
			if err != nil {
				slog.Error("无法生成账号", slog.String("error", err.Error()))
				continue
			}
			if err := store.CreateUser(ctx, user); err != nil {
				slog.Error("无法插入账号", slog.String("username", user.Username), slog.String("error", err.Error()))
				continue
			}

			member.UserID = &user.ID
			if err := store.CreateTeamMember(ctx, member); err != nil {
				slog.Error("无法插入成员", slog.String("email", member.Email), slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入成员成功", slog.Int("count", cnt))
	case 2:
		sts, err := seed.SeedDefaultShiftTypes(ctx, store)
		if err != nil {
			slog.Error("无法插入班次类型", slog.String("error", err.Error()))
			return
		}

		slog.Info("插入班次类型成功", slog.Int("count", len(sts)))
	case 3:
		// Validate 已经检查过时区
		loc, _ := cfg.Location()
		if err := seed.SeedDemoData(ctx, store, time.Now(), loc); err != nil {
			slog.Error("无法插入演示数据", slog.String("error", err.Error()))
			return
		}
	default:
		slog.Error("指定的操作非法")
	}
}
