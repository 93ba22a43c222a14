package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
)

func TestNopNeverHits(t *testing.T) {
	ctx := context.Background()
	var c WeekCache = Nop{}

	require.NoError(t, c.Set(ctx, 0, domain.NewDate(2025, time.March, 9), &domain.WeekSchedule{}))
	ws, _, ok, err := c.Get(ctx, domain.NewDate(2025, time.March, 9))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ws)
	assert.NoError(t, c.Invalidate(ctx))
}

func TestWeekKey(t *testing.T) {
	assert.Equal(t, "week_schedule:3:2025-03-09", weekKey(3, domain.NewDate(2025, time.March, 9)))
}

// 需要一个可以随意写入的 Redis 实例，例如 TEST_REDIS_ADDR=localhost:6379
func newTestRedisCache(t *testing.T) *RedisWeekCache {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.FlushDB(context.Background()).Err())

	return NewRedisWeekCache(rdb, time.Minute, 2*time.Second)
}

func testWeek(sunday domain.Date) *domain.WeekSchedule {
	start := sunday.In(time.UTC)
	return &domain.WeekSchedule{
		Start: start,
		End:   start.AddDate(0, 0, 7).Add(-time.Millisecond),
		Days:  []domain.DaySchedule{{Date: sunday, Shifts: []*domain.ShiftWithDetails{}}},
	}
}

func TestRedisWeekCache(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()
	sunday := domain.NewDate(2025, time.March, 9)

	_, gen, ok, err := c.Get(ctx, sunday)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, gen)

	ws := testWeek(sunday)
	require.NoError(t, c.Set(ctx, gen, sunday, ws))

	got, _, ok, err := c.Get(ctx, sunday)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Start.Equal(ws.Start))
	require.Len(t, got.Days, 1)
	assert.True(t, got.Days[0].Date.Equal(sunday))

	require.NoError(t, c.Invalidate(ctx))
	_, gen, ok, err = c.Get(ctx, sunday)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(1), gen)
}

func TestRedisWeekCacheSetAfterInvalidate(t *testing.T) {
	c := newTestRedisCache(t)
	ctx := context.Background()
	sunday := domain.NewDate(2025, time.March, 9)

	_, gen, ok, err := c.Get(ctx, sunday)
	require.NoError(t, err)
	require.False(t, ok)

	// 聚合期间发生了写操作
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, gen, sunday, testWeek(sunday)))

	_, newGen, ok, err := c.Get(ctx, sunday)
	require.NoError(t, err)
	assert.False(t, ok, "a result built before the write must not be served")
	assert.Equal(t, gen+1, newGen)
}
