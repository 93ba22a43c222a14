package domain

const (
	DefaultShiftTypeColor = "#3A86FF"
	ClockLayout           = "15:04:05"
)

// 夜班的 StartTime 可以晚于 EndTime（跨过零点）
type ShiftType struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
	Color       string  `json:"color"`
	Description *string `json:"description"`
}

type ShiftTypePatch struct {
	Name        *string
	StartTime   *string
	EndTime     *string
	Color       *string
	Description Optional[string]
}

func (p *ShiftTypePatch) IsEmpty() bool {
	return p.Name == nil && p.StartTime == nil && p.EndTime == nil && p.Color == nil && !p.Description.Set
}

func (p *ShiftTypePatch) Apply(st *ShiftType) {
	if p.Name != nil {
		st.Name = *p.Name
	}
	if p.StartTime != nil {
		st.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		st.EndTime = *p.EndTime
	}
	if p.Color != nil {
		st.Color = *p.Color
	}
	p.Description.ApplyTo(&st.Description)
}
