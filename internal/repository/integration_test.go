package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 10
	cfg.Database.TransactionTimeout = 20
	cfg.Mongo.QueryTimeout = 10
	return cfg
}

// 需要一个可以随意清空的 PostgreSQL 数据库
func TestRepositoryPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	_, err = db.ExecContext(ctx, `DROP TABLE IF EXISTS shifts, shift_types, team_members, users`)
	require.NoError(t, err)

	repo := NewRepository(testConfig(), db)
	require.NoError(t, repo.Migrate(ctx))
	// 迁移可重复执行
	require.NoError(t, repo.Migrate(ctx))

	testStore(t, repo)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	cfg := testConfig()
	cfg.Mongo.Database = fmt.Sprintf("team_schedule_test_%d", time.Now().UnixNano())
	t.Cleanup(func() { _ = client.Database(cfg.Mongo.Database).Drop(context.Background()) })

	store := NewMongoStore(cfg, client)
	require.NoError(t, store.EnsureIndexes(ctx))

	testStore(t, store)
}
