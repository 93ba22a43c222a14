package domain

import "time"

type DaySchedule struct {
	Date   Date                `json:"date"`
	Shifts []*ShiftWithDetails `json:"shifts"`
}

// 从周日 00:00:00.000 到周六 23:59:59.999，Days 固定为 7 项
type WeekSchedule struct {
	Start time.Time     `json:"start"`
	End   time.Time     `json:"end"`
	Days  []DaySchedule `json:"days"`
}
