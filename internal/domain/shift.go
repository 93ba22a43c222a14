package domain

import "time"

type Shift struct {
	ID            int64     `json:"id"`
	Date          Date      `json:"date"`
	TeamMemberID  *int64    `json:"teamMemberId"` // nil 表示未分配
	ShiftTypeID   int64     `json:"shiftTypeId"`
	Notes         *string   `json:"notes"`
	NeedsCoverage bool      `json:"needsCoverage"`
	CreatedAt     time.Time `json:"createdAt"`
}

type ShiftPatch struct {
	Date          *Date
	TeamMemberID  Optional[int64]
	ShiftTypeID   *int64
	Notes         Optional[string]
	NeedsCoverage *bool
}

func (p *ShiftPatch) IsEmpty() bool {
	return p.Date == nil && !p.TeamMemberID.Set && p.ShiftTypeID == nil && !p.Notes.Set && p.NeedsCoverage == nil
}

// ID 和 CreatedAt 不允许被修改
func (p *ShiftPatch) Apply(s *Shift) {
	if p.Date != nil {
		s.Date = *p.Date
	}
	p.TeamMemberID.ApplyTo(&s.TeamMemberID)
	if p.ShiftTypeID != nil {
		s.ShiftTypeID = *p.ShiftTypeID
	}
	p.Notes.ApplyTo(&s.Notes)
	if p.NeedsCoverage != nil {
		s.NeedsCoverage = *p.NeedsCoverage
	}
}

// TeamMember 和 ShiftType 永远不为 nil，引用缺失时使用占位实体
type ShiftWithDetails struct {
	Shift
	TeamMember *TeamMember `json:"teamMember"`
	ShiftType  *ShiftType  `json:"shiftType"`
}

// 占位实体的 ID，数据库中不存在该记录
const PlaceholderID int64 = -1

func PlaceholderTeamMember() *TeamMember {
	return &TeamMember{
		ID:       PlaceholderID,
		Name:     "Unassigned",
		Position: "N/A",
		Email:    "unassigned@example.com",
		Status:   StatusUnavailable,
	}
}

func PlaceholderShiftType() *ShiftType {
	return &ShiftType{
		ID:        PlaceholderID,
		Name:      "Unknown Shift",
		StartTime: "00:00:00",
		EndTime:   "00:00:00",
		Color:     "#cccccc",
	}
}

func (s *ShiftWithDetails) IsAssigned() bool {
	return s.TeamMember != nil && s.TeamMember.ID != PlaceholderID
}
