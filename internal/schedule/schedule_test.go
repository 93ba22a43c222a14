package schedule_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/repository"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/schedule"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/seed"
)

func TestWeekBounds(t *testing.T) {
	loc := time.UTC
	refs := []time.Time{
		time.Date(2025, time.March, 9, 0, 0, 0, 0, loc),    // 周日零点
		time.Date(2025, time.March, 12, 13, 45, 0, 0, loc), // 周三
		time.Date(2025, time.March, 15, 23, 59, 59, 0, loc),
	}

	wantStart := time.Date(2025, time.March, 9, 0, 0, 0, 0, loc)
	wantEnd := time.Date(2025, time.March, 15, 23, 59, 59, int(999*time.Millisecond), loc)

	for _, ref := range refs {
		start, end := schedule.WeekBounds(ref, loc)
		assert.True(t, start.Equal(wantStart), ref)
		assert.True(t, end.Equal(wantEnd), ref)
		assert.Equal(t, time.Sunday, start.Weekday())

		// 对 start 再求一次得到同一周
		again, _ := schedule.WeekBounds(start, loc)
		assert.True(t, again.Equal(start))
	}
}

func TestWeekBoundsAcrossMonthAndTimezone(t *testing.T) {
	start, end := schedule.WeekBounds(time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, "2024-12-29", start.Format(domain.DateLayout))
	assert.Equal(t, "2025-01-04", end.Format(domain.DateLayout))

	// UTC 周六晚上在 UTC+8 已经是下一周的周日
	loc := time.FixedZone("UTC+8", 8*3600)
	start, _ = schedule.WeekBounds(time.Date(2025, time.March, 15, 20, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, "2025-03-16", start.Format(domain.DateLayout))
	assert.Equal(t, loc, start.Location())
}

func seededAggregator(t *testing.T, ref time.Time) (*repository.MemoryStore, *schedule.Aggregator) {
	t.Helper()
	store := repository.NewMemoryStore()
	require.NoError(t, seed.SeedDemoData(context.Background(), store, ref, time.UTC))
	return store, schedule.NewAggregator(store, nil, time.UTC)
}

func TestWeekScheduleDemoWeek(t *testing.T) {
	ref := time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)
	_, agg := seededAggregator(t, ref)

	ws, err := agg.WeekSchedule(context.Background(), ref)
	require.NoError(t, err)
	require.Len(t, ws.Days, 7)
	assert.Equal(t, time.Sunday, ws.Start.Weekday())

	for i, day := range ws.Days {
		assert.Equal(t, domain.NewDate(2025, time.March, 9+i), day.Date)
		assert.Len(t, day.Shifts, 3, day.Date.String())
		for _, s := range day.Shifts {
			assert.True(t, s.Date.Equal(day.Date))
			require.NotNil(t, s.TeamMember)
			require.NotNil(t, s.ShiftType)
		}
	}

	wednesday := ws.Days[3]
	var night *domain.ShiftWithDetails
	for _, s := range wednesday.Shifts {
		if s.ShiftType.Name == "Night Shift" {
			night = s
		}
	}
	require.NotNil(t, night)
	assert.True(t, night.NeedsCoverage)
	assert.False(t, night.IsAssigned())
	assert.Equal(t, "Unassigned", night.TeamMember.Name)
	assert.Equal(t, domain.PlaceholderID, night.TeamMember.ID)
	assert.Equal(t, "Urgent coverage needed", *night.Notes)

	// 相同输入得到相同结果
	again, err := agg.WeekSchedule(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, ws, again)
}

func TestWeekScheduleEmptyDays(t *testing.T) {
	agg := schedule.NewAggregator(repository.NewMemoryStore(), nil, time.UTC)

	ws, err := agg.WeekSchedule(context.Background(), time.Date(2030, time.June, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, ws.Days, 7)
	for _, day := range ws.Days {
		assert.NotNil(t, day.Shifts)
		assert.Empty(t, day.Shifts)
	}
}

func TestShiftsByDateRangePlaceholders(t *testing.T) {
	ctx := context.Background()
	ref := time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)
	store, agg := seededAggregator(t, ref)

	members, err := store.GetAllTeamMembers(ctx)
	require.NoError(t, err)
	sarah := members[0]
	sts, err := store.GetAllShiftTypes(ctx)
	require.NoError(t, err)
	morning := sts[0]

	ok, err := store.DeleteTeamMember(ctx, sarah.ID)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = store.DeleteShiftType(ctx, morning.ID)
	require.NoError(t, err)
	require.True(t, ok)

	sunday := time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC)
	details, err := agg.ShiftsByDateRange(ctx, sunday, sunday.Add(24*time.Hour-time.Millisecond))
	require.NoError(t, err)
	require.Len(t, details, 3)

	morningShift := details[0]
	require.NotNil(t, morningShift.TeamMemberID, "the raw reference is kept")
	assert.Equal(t, sarah.ID, *morningShift.TeamMemberID)
	assert.Equal(t, domain.PlaceholderID, morningShift.TeamMember.ID)
	assert.Equal(t, "Unknown Shift", morningShift.ShiftType.Name)
	assert.Equal(t, "#cccccc", morningShift.ShiftType.Color)
}

// countingCache 模拟 Redis 实现的代数失效
type countingCache struct {
	gen        int64
	stored     map[string]*domain.WeekSchedule
	gets, sets int
	getErr     error
}

func newCountingCache() *countingCache {
	return &countingCache{stored: make(map[string]*domain.WeekSchedule)}
}

func cacheKey(gen int64, d domain.Date) string {
	return fmt.Sprintf("%d:%s", gen, d)
}

func (c *countingCache) Get(_ context.Context, d domain.Date) (*domain.WeekSchedule, int64, bool, error) {
	c.gets++
	if c.getErr != nil {
		return nil, 0, false, c.getErr
	}
	ws, ok := c.stored[cacheKey(c.gen, d)]
	return ws, c.gen, ok, nil
}

func (c *countingCache) Set(_ context.Context, gen int64, d domain.Date, ws *domain.WeekSchedule) error {
	c.sets++
	c.stored[cacheKey(gen, d)] = ws
	return nil
}

func (c *countingCache) Invalidate(context.Context) error {
	c.gen++
	return nil
}

func TestWeekScheduleUsesCache(t *testing.T) {
	ctx := context.Background()
	ref := time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)
	store := repository.NewMemoryStore()
	require.NoError(t, seed.SeedDemoData(ctx, store, ref, time.UTC))

	wc := newCountingCache()
	agg := schedule.NewAggregator(store, wc, time.UTC)

	first, err := agg.WeekSchedule(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 1, wc.sets)

	second, err := agg.WeekSchedule(ctx, ref.Add(48*time.Hour))
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, wc.sets)

	agg.Invalidate(ctx)
	_, err = agg.WeekSchedule(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, 2, wc.sets)
}

func TestWeekScheduleCacheFailureIsIgnored(t *testing.T) {
	ref := time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)
	store := repository.NewMemoryStore()
	require.NoError(t, seed.SeedDemoData(context.Background(), store, ref, time.UTC))

	wc := newCountingCache()
	wc.getErr = errors.New("connection refused")
	agg := schedule.NewAggregator(store, wc, time.UTC)

	ws, err := agg.WeekSchedule(context.Background(), ref)
	require.NoError(t, err)
	assert.Len(t, ws.Days, 7)
	assert.Zero(t, wc.sets)
}

// writeDuringRead 在第一次读取班次之后插入一个班次并使缓存失效，
// 模拟聚合期间并发发生的写操作
type writeDuringRead struct {
	*repository.MemoryStore
	agg   *schedule.Aggregator
	extra *domain.Shift
	fired bool
}

func (s *writeDuringRead) GetShiftsBetween(ctx context.Context, from, to domain.Date) ([]*domain.Shift, error) {
	shifts, err := s.MemoryStore.GetShiftsBetween(ctx, from, to)
	if err != nil || s.fired {
		return shifts, err
	}
	s.fired = true

	if err := s.MemoryStore.CreateShift(ctx, s.extra); err != nil {
		return nil, err
	}
	s.agg.Invalidate(ctx)

	return shifts, nil
}

func TestWeekScheduleWriteDuringAggregation(t *testing.T) {
	ctx := context.Background()
	ref := time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)
	store := repository.NewMemoryStore()
	require.NoError(t, seed.SeedDemoData(ctx, store, ref, time.UTC))

	sts, err := store.GetAllShiftTypes(ctx)
	require.NoError(t, err)

	notes := "added while the week was being built"
	src := &writeDuringRead{
		MemoryStore: store,
		extra: &domain.Shift{
			Date:        domain.NewDate(2025, time.March, 12),
			ShiftTypeID: sts[0].ID,
			Notes:       &notes,
		},
	}
	wc := newCountingCache()
	agg := schedule.NewAggregator(src, wc, time.UTC)
	src.agg = agg

	stale, err := agg.WeekSchedule(ctx, ref)
	require.NoError(t, err)
	assert.Len(t, stale.Days[3].Shifts, 3)

	// 上一次的结果写在了已失效的代上，这次必须重新聚合
	fresh, err := agg.WeekSchedule(ctx, ref)
	require.NoError(t, err)
	assert.NotSame(t, stale, fresh)
	require.Len(t, fresh.Days[3].Shifts, 4)
	assert.Equal(t, 2, wc.sets)
}
