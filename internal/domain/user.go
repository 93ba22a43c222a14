package domain

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
}

type UserPatch struct {
	Username *string
	Password *string
}

func (p *UserPatch) IsEmpty() bool {
	return p.Username == nil && p.Password == nil
}

func (p *UserPatch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
}
