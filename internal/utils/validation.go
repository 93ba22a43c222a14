package utils

import (
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
)

// IsWallClock 检查 s 是否为 HH:MM:SS 格式的时刻
func IsWallClock(s string) bool {
	if len(s) != len(domain.ClockLayout) {
		return false
	}
	_, err := time.Parse(domain.ClockLayout, s)
	return err == nil
}

// IsCivilDate 检查 s 是否为 YYYY-MM-DD 格式的合法日期
func IsCivilDate(s string) bool {
	if len(s) != len(domain.DateLayout) {
		return false
	}
	_, err := domain.ParseDate(s)
	return err == nil
}

// LocalDateTimeLayout 是不带时区的 ISO 8601 时间
const LocalDateTimeLayout = "2006-01-02T15:04:05"

var ErrInvalidReferenceDate = errors.New("date must be YYYY-MM-DD, YYYY-MM-DDTHH:MM:SS or an RFC 3339 timestamp")

// ParseReferenceTime 解析周视图的 date 参数。
// 纯日期按 loc 时区的零点解释，不带时区的时间按 loc 解释，带时区的时间戳保持原样。
func ParseReferenceTime(s string, loc *time.Location) (time.Time, error) {
	if d, err := domain.ParseDate(s); err == nil {
		return d.In(loc), nil
	}

	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}

	if t, err := time.ParseInLocation(LocalDateTimeLayout, s, loc); err == nil {
		return t, nil
	}

	return time.Time{}, ErrInvalidReferenceDate
}
