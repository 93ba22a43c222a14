package schedule

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/cache"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/repository"
)

const DaysPerWeek = 7

// Source 是聚合周排班表所需的最小存储能力，repository.Store 的所有实现都满足
type Source interface {
	GetShiftsBetween(ctx context.Context, from, to domain.Date) ([]*domain.Shift, error)
	GetTeamMemberByID(ctx context.Context, id int64) (*domain.TeamMember, error)
	GetShiftTypeByID(ctx context.Context, id int64) (*domain.ShiftType, error)
}

type Aggregator struct {
	source Source
	cache  cache.WeekCache
	loc    *time.Location
}

// NewAggregator 的 wc 可以为 nil，表示不使用缓存
func NewAggregator(source Source, wc cache.WeekCache, loc *time.Location) *Aggregator {
	if wc == nil {
		wc = cache.Nop{}
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Aggregator{
		source: source,
		cache:  wc,
		loc:    loc,
	}
}

func (a *Aggregator) Location() *time.Location {
	return a.loc
}

// WeekBounds 返回 ref 所在周（周日开始）在 loc 时区下的第一毫秒和最后一毫秒
func WeekBounds(ref time.Time, loc *time.Location) (time.Time, time.Time) {
	t := ref.In(loc)
	offset := int(t.Weekday())

	start := time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, loc)
	end := time.Date(start.Year(), start.Month(), start.Day()+DaysPerWeek-1, 23, 59, 59, int(999*time.Millisecond), loc)

	return start, end
}

// lookup 在一次聚合内缓存成员和班次类型的查询结果，nil 表示记录不存在
type lookup struct {
	source  Source
	members map[int64]*domain.TeamMember
	types   map[int64]*domain.ShiftType
}

func (l *lookup) member(ctx context.Context, shift *domain.Shift) (*domain.TeamMember, error) {
	if shift.TeamMemberID == nil {
		return domain.PlaceholderTeamMember(), nil
	}

	id := *shift.TeamMemberID
	m, ok := l.members[id]
	if !ok {
		found, err := l.source.GetTeamMemberByID(ctx, id)
		switch {
		case err == nil:
			m = found
		case errors.Is(err, repository.ErrRecordNotFound):
			m = nil
		default:
			return nil, err
		}
		l.members[id] = m
	}

	if m == nil {
		slog.Warn("班次引用的成员不存在", "shiftID", shift.ID, "teamMemberID", id)
		return domain.PlaceholderTeamMember(), nil
	}
	return m, nil
}

func (l *lookup) shiftType(ctx context.Context, shift *domain.Shift) (*domain.ShiftType, error) {
	id := shift.ShiftTypeID
	st, ok := l.types[id]
	if !ok {
		found, err := l.source.GetShiftTypeByID(ctx, id)
		switch {
		case err == nil:
			st = found
		case errors.Is(err, repository.ErrRecordNotFound):
			st = nil
		default:
			return nil, err
		}
		l.types[id] = st
	}

	if st == nil {
		slog.Warn("班次引用的班次类型不存在", "shiftID", shift.ID, "shiftTypeID", id)
		return domain.PlaceholderShiftType(), nil
	}
	return st, nil
}

// ShiftsByDateRange 返回日期落在 [start, end] 内的班次，并补全成员和班次类型。
// 引用缺失时使用占位实体，因此结果中的 TeamMember 和 ShiftType 永远不为 nil。
func (a *Aggregator) ShiftsByDateRange(ctx context.Context, start, end time.Time) ([]*domain.ShiftWithDetails, error) {
	from := domain.DateOf(start.In(a.loc))
	to := domain.DateOf(end.In(a.loc))

	shifts, err := a.source.GetShiftsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	l := &lookup{
		source:  a.source,
		members: make(map[int64]*domain.TeamMember),
		types:   make(map[int64]*domain.ShiftType),
	}

	details := make([]*domain.ShiftWithDetails, 0, len(shifts))
	for _, shift := range shifts {
		m, err := l.member(ctx, shift)
		if err != nil {
			return nil, err
		}
		st, err := l.shiftType(ctx, shift)
		if err != nil {
			return nil, err
		}

		details = append(details, &domain.ShiftWithDetails{
			Shift:      *shift,
			TeamMember: m,
			ShiftType:  st,
		})
	}

	return details, nil
}

// WeekSchedule 返回 ref 所在周的排班表，Days 固定 7 项，没有班次的日期为空切片
func (a *Aggregator) WeekSchedule(ctx context.Context, ref time.Time) (*domain.WeekSchedule, error) {
	start, end := WeekBounds(ref, a.loc)
	first := domain.DateOf(start)

	// gen 必须在读取班次之前取得，聚合期间的写操作会使这次结果直接作废
	cached, gen, ok, cacheErr := a.cache.Get(ctx, first)
	if cacheErr != nil {
		slog.Warn("读取周排班缓存失败", "week", first.String(), "error", cacheErr)
	} else if ok {
		return cached, nil
	}

	details, err := a.ShiftsByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}

	ws := &domain.WeekSchedule{
		Start: start,
		End:   end,
		Days:  make([]domain.DaySchedule, DaysPerWeek),
	}
	for i := range ws.Days {
		ws.Days[i] = domain.DaySchedule{
			Date:   first.AddDays(i),
			Shifts: make([]*domain.ShiftWithDetails, 0),
		}
	}

	for _, d := range details {
		for i := range ws.Days {
			if ws.Days[i].Date.Equal(d.Date) {
				ws.Days[i].Shifts = append(ws.Days[i].Shifts, d)
				break
			}
		}
	}

	if cacheErr != nil {
		// 读取失败时不知道当前代数，不写入缓存
		return ws, nil
	}
	if err := a.cache.Set(ctx, gen, first, ws); err != nil {
		slog.Warn("写入周排班缓存失败", "week", first.String(), "error", err)
	}

	return ws, nil
}

// Invalidate 在任何影响排班表的写操作之后调用
func (a *Aggregator) Invalidate(ctx context.Context) {
	if err := a.cache.Invalidate(ctx); err != nil {
		slog.Warn("清除周排班缓存失败", "error", err)
	}
}
