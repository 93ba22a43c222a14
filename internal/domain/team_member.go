package domain

type TeamMemberStatus string

const (
	StatusActive      TeamMemberStatus = "active"
	StatusPTOSoon     TeamMemberStatus = "pto_soon"
	StatusPTO         TeamMemberStatus = "pto"
	StatusUnavailable TeamMemberStatus = "unavailable"
	StatusInactive    TeamMemberStatus = "inactive"
)

// 系统中唯一合法的状态集合，不再兼容 on-leave 等旧取值
var TeamMemberStatuses = []TeamMemberStatus{
	StatusActive,
	StatusPTOSoon,
	StatusPTO,
	StatusUnavailable,
	StatusInactive,
}

func (s TeamMemberStatus) Valid() bool {
	for _, v := range TeamMemberStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type TeamMember struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Position  string           `json:"position"`
	Email     string           `json:"email"`
	Phone     *string          `json:"phone"`
	AvatarURL *string          `json:"avatarUrl"`
	Status    TeamMemberStatus `json:"status"`
	UserID    *int64           `json:"userId"`
}

type TeamMemberPatch struct {
	Name      *string
	Position  *string
	Email     *string
	Phone     Optional[string]
	AvatarURL Optional[string]
	Status    *TeamMemberStatus
	UserID    Optional[int64]
}

func (p *TeamMemberPatch) IsEmpty() bool {
	return p.Name == nil && p.Position == nil && p.Email == nil && !p.Phone.Set &&
		!p.AvatarURL.Set && p.Status == nil && !p.UserID.Set
}

func (p *TeamMemberPatch) Apply(m *TeamMember) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Position != nil {
		m.Position = *p.Position
	}
	if p.Email != nil {
		m.Email = *p.Email
	}
	p.Phone.ApplyTo(&m.Phone)
	p.AvatarURL.ApplyTo(&m.AvatarURL)
	if p.Status != nil {
		m.Status = *p.Status
	}
	p.UserID.ApplyTo(&m.UserID)
}
