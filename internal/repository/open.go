package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Open 按 STORAGE_DRIVER 创建存储后端，返回的 close 函数在进程退出前调用
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return NewMemoryStore(), func() {}, nil
	case config.StoragePostgres:
		return openPostgres(ctx, cfg)
	case config.StorageMongo:
		return openMongo(ctx, cfg)
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(pingCtx); err != nil {
		dbpool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	repo := NewRepository(cfg, dbpool)

	if cfg.Database.AutoMigrate {
		if err := repo.Migrate(ctx); err != nil {
			dbpool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		slog.Info("数据库迁移完成")
	}

	return repo, func() { dbpool.Close() }, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.Mongo.ConnectTimeout)*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	disconnect := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Mongo.ConnectTimeout)*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			slog.Error("断开 mongo 连接失败", "error", err)
		}
	}

	// Connect 不会真正建立连接
	if err := client.Ping(connectCtx, nil); err != nil {
		disconnect()
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	store := NewMongoStore(cfg, client)
	if err := store.EnsureIndexes(connectCtx); err != nil {
		disconnect()
		return nil, nil, fmt.Errorf("ensure mongo indexes: %w", err)
	}

	return store, disconnect, nil
}
