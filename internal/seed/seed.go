package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/repository"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/schedule"
)

func strPtr(s string) *string {
	return &s
}

// DefaultShiftTypes 返回 SOC 团队的早、中、夜三个班次，夜班跨过零点
func DefaultShiftTypes() []*domain.ShiftType {
	return []*domain.ShiftType{
		{
			Name:        "Morning Shift",
			StartTime:   "06:00:00",
			EndTime:     "14:00:00",
			Color:       "#4CAF50",
			Description: strPtr("Early morning shift for the SOC team"),
		},
		{
			Name:        "Afternoon Shift",
			StartTime:   "14:00:00",
			EndTime:     "22:00:00",
			Color:       "#F59E0B",
			Description: strPtr("Afternoon coverage for the SOC team"),
		},
		{
			Name:        "Night Shift",
			StartTime:   "22:00:00",
			EndTime:     "06:00:00",
			Color:       "#6366F1",
			Description: strPtr("Overnight coverage for the SOC team"),
		},
	}
}

func DefaultTeamMembers() []*domain.TeamMember {
	return []*domain.TeamMember{
		{
			Name:     "Sarah Chen",
			Position: "Security Analyst",
			Email:    "sarah.chen@vilcomnetworks.com",
			Phone:    strPtr("555-123-4567"),
			Status:   domain.StatusActive,
		},
		{
			Name:     "John Maxwell",
			Position: "SOC Lead",
			Email:    "john.maxwell@vilcomnetworks.com",
			Phone:    strPtr("555-234-5678"),
			Status:   domain.StatusActive,
		},
		{
			Name:     "Emily Parker",
			Position: "Security Engineer",
			Email:    "emily.parker@vilcomnetworks.com",
			Phone:    strPtr("555-345-6789"),
			Status:   domain.StatusPTOSoon,
		},
		{
			Name:     "Michael Scott",
			Position: "Threat Hunter",
			Email:    "michael.scott@vilcomnetworks.com",
			Phone:    strPtr("555-456-7890"),
			Status:   domain.StatusActive,
		},
		{
			Name:     "David Kim",
			Position: "Incident Responder",
			Email:    "david.kim@vilcomnetworks.com",
			Phone:    strPtr("555-567-8901"),
			Status:   domain.StatusActive,
		},
	}
}

// SeedDefaultShiftTypes 插入默认班次类型，返回插入后的记录（已带 ID）
func SeedDefaultShiftTypes(ctx context.Context, store repository.Store) ([]*domain.ShiftType, error) {
	sts := DefaultShiftTypes()
	for _, st := range sts {
		if err := store.CreateShiftType(ctx, st); err != nil {
			return nil, fmt.Errorf("create shift type %q: %w", st.Name, err)
		}
	}
	return sts, nil
}

// SeedDemoData 插入演示数据：三个班次类型、五名成员，以及 ref 所在周每天的早中夜班。
// 周三的夜班没有安排人员并标记为需要顶班。
func SeedDemoData(ctx context.Context, store repository.Store, ref time.Time, loc *time.Location) error {
	sts, err := SeedDefaultShiftTypes(ctx, store)
	if err != nil {
		return err
	}
	morning, afternoon, night := sts[0], sts[1], sts[2]

	members := DefaultTeamMembers()
	for _, m := range members {
		if err := store.CreateTeamMember(ctx, m); err != nil {
			return fmt.Errorf("create team member %q: %w", m.Name, err)
		}
	}
	sarah, john, emily, michael, david := members[0], members[1], members[2], members[3], members[4]

	start, _ := schedule.WeekBounds(ref, loc)
	sunday := domain.DateOf(start)

	pick := func(i int, even, odd *domain.TeamMember) *int64 {
		id := odd.ID
		if i%2 == 0 {
			id = even.ID
		}
		return &id
	}

	for i := 0; i < schedule.DaysPerWeek; i++ {
		date := sunday.AddDays(i)

		shifts := []*domain.Shift{
			{Date: date, TeamMemberID: pick(i, sarah, john), ShiftTypeID: morning.ID},
			{Date: date, TeamMemberID: pick(i, emily, david), ShiftTypeID: afternoon.ID},
		}

		if date.Weekday() == time.Wednesday {
			shifts = append(shifts, &domain.Shift{
				Date:          date,
				ShiftTypeID:   night.ID,
				Notes:         strPtr("Urgent coverage needed"),
				NeedsCoverage: true,
			})
		} else {
			shifts = append(shifts, &domain.Shift{Date: date, TeamMemberID: pick(i, michael, david), ShiftTypeID: night.ID})
		}

		for _, s := range shifts {
			if err := store.CreateShift(ctx, s); err != nil {
				return fmt.Errorf("create shift on %s: %w", date, err)
			}
		}
	}

	slog.Info("演示数据插入完成", "week", sunday.String(), "teamMembers", len(members), "shiftTypes", len(sts))
	return nil
}
