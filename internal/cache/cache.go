package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
)

// WeekCache 缓存按周聚合后的排班表，键为该周周日的日期。
// Get 同时返回读取时观察到的代数，调用方重新聚合后必须把同一代数传给 Set，
// 这样在两者之间发生的 Invalidate 会让这次写入落在已失效的代上
type WeekCache interface {
	Get(ctx context.Context, weekStart domain.Date) (ws *domain.WeekSchedule, gen int64, ok bool, err error)
	Set(ctx context.Context, gen int64, weekStart domain.Date, ws *domain.WeekSchedule) error
	// Invalidate 使所有已缓存的周失效
	Invalidate(ctx context.Context) error
}

type Nop struct{}

func (Nop) Get(context.Context, domain.Date) (*domain.WeekSchedule, int64, bool, error) {
	return nil, 0, false, nil
}

func (Nop) Set(context.Context, int64, domain.Date, *domain.WeekSchedule) error { return nil }

func (Nop) Invalidate(context.Context) error { return nil }

const generationKey = "week_schedule:gen"

// RedisWeekCache 通过代数计数器实现整体失效：写操作只需 INCR 一次，
// 旧代的键不再被读取，由 TTL 自然清理
type RedisWeekCache struct {
	rdb       *redis.Client
	ttl       time.Duration
	opTimeout time.Duration
}

func NewRedisWeekCache(rdb *redis.Client, ttl, opTimeout time.Duration) *RedisWeekCache {
	return &RedisWeekCache{
		rdb:       rdb,
		ttl:       ttl,
		opTimeout: opTimeout,
	}
}

func (c *RedisWeekCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func weekKey(gen int64, weekStart domain.Date) string {
	return fmt.Sprintf("week_schedule:%d:%s", gen, weekStart)
}

func (c *RedisWeekCache) Get(ctx context.Context, weekStart domain.Date) (*domain.WeekSchedule, int64, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	gen, err := c.generation(ctx)
	if err != nil {
		return nil, 0, false, err
	}

	data, err := c.rdb.Get(ctx, weekKey(gen, weekStart)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, gen, false, nil
		}
		return nil, gen, false, err
	}

	ws := &domain.WeekSchedule{}
	if err := json.Unmarshal(data, ws); err != nil {
		return nil, gen, false, fmt.Errorf("decode cached week %s: %w", weekStart, err)
	}

	return ws, gen, true, nil
}

// Set 写入 gen 代下的键，不再重新读取当前代数
func (c *RedisWeekCache) Set(ctx context.Context, gen int64, weekStart domain.Date, ws *domain.WeekSchedule) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	data, err := json.Marshal(ws)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, weekKey(gen, weekStart), data, c.ttl).Err()
}

func (c *RedisWeekCache) Invalidate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	return c.rdb.Incr(ctx, generationKey).Err()
}
