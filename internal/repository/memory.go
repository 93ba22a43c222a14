package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
)

// MemoryStore 把所有数据保存在进程内存中，重启后数据丢失。
// 每类实体的 ID 从 1 开始递增，删除后不会被复用。
type MemoryStore struct {
	mu sync.RWMutex

	users       map[int64]*domain.User
	teamMembers map[int64]*domain.TeamMember
	shiftTypes  map[int64]*domain.ShiftType
	shifts      map[int64]*domain.Shift

	nextUserID       int64
	nextTeamMemberID int64
	nextShiftTypeID  int64
	nextShiftID      int64

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:            make(map[int64]*domain.User),
		teamMembers:      make(map[int64]*domain.TeamMember),
		shiftTypes:       make(map[int64]*domain.ShiftType),
		shifts:           make(map[int64]*domain.Shift),
		nextUserID:       1,
		nextTeamMemberID: 1,
		nextShiftTypeID:  1,
		nextShiftID:      1,
		now:              time.Now,
	}
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func cloneTeamMember(m *domain.TeamMember) *domain.TeamMember {
	c := *m
	c.Phone = clonePtr(m.Phone)
	c.AvatarURL = clonePtr(m.AvatarURL)
	c.UserID = clonePtr(m.UserID)
	return &c
}

func cloneShiftType(st *domain.ShiftType) *domain.ShiftType {
	c := *st
	c.Description = clonePtr(st.Description)
	return &c
}

func cloneShift(s *domain.Shift) *domain.Shift {
	c := *s
	c.TeamMemberID = clonePtr(s.TeamMemberID)
	c.Notes = clonePtr(s.Notes)
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// sortedValues 按 ID 升序返回 map 中所有值的拷贝
func sortedValues[T any](m map[int64]*T, clone func(*T) *T) []*T {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		out = append(out, clone(m[id]))
	}
	return out
}

/*** users ***/

func (s *MemoryStore) GetAllUsers(ctx context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.users, cloneUser), nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return cloneUser(u), nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, ErrRecordNotFound
}

func (s *MemoryStore) usernameTaken(username string, exceptID int64) bool {
	for id, u := range s.users {
		if id != exceptID && u.Username == username {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.usernameTaken(user.Username, 0) {
		return &DuplicateError{Field: "username"}
	}

	user.ID = s.nextUserID
	s.nextUserID++
	s.users[user.ID] = cloneUser(user)

	return nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, id int64, patch *domain.UserPatch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	updated := cloneUser(existing)
	patch.Apply(updated)
	if s.usernameTaken(updated.Username, id) {
		return nil, &DuplicateError{Field: "username"}
	}

	s.users[id] = updated
	return cloneUser(updated), nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

/*** team members ***/

func (s *MemoryStore) GetAllTeamMembers(ctx context.Context) ([]*domain.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.teamMembers, cloneTeamMember), nil
}

func (s *MemoryStore) GetTeamMemberByID(ctx context.Context, id int64) (*domain.TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.teamMembers[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return cloneTeamMember(m), nil
}

func (s *MemoryStore) emailTaken(email string, exceptID int64) bool {
	for id, m := range s.teamMembers {
		if id != exceptID && m.Email == email {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateTeamMember(ctx context.Context, member *domain.TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(member.Email, 0) {
		return &DuplicateError{Field: "email"}
	}

	if member.Status == "" {
		member.Status = domain.StatusActive
	}

	member.ID = s.nextTeamMemberID
	s.nextTeamMemberID++
	s.teamMembers[member.ID] = cloneTeamMember(member)

	return nil
}

func (s *MemoryStore) UpdateTeamMember(ctx context.Context, id int64, patch *domain.TeamMemberPatch) (*domain.TeamMember, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.teamMembers[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	updated := cloneTeamMember(existing)
	patch.Apply(updated)
	if s.emailTaken(updated.Email, id) {
		return nil, &DuplicateError{Field: "email"}
	}

	s.teamMembers[id] = updated
	return cloneTeamMember(updated), nil
}

func (s *MemoryStore) DeleteTeamMember(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teamMembers[id]; !ok {
		return false, nil
	}
	delete(s.teamMembers, id)
	return true, nil
}

/*** shift types ***/

func (s *MemoryStore) GetAllShiftTypes(ctx context.Context) ([]*domain.ShiftType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.shiftTypes, cloneShiftType), nil
}

func (s *MemoryStore) GetShiftTypeByID(ctx context.Context, id int64) (*domain.ShiftType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.shiftTypes[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return cloneShiftType(st), nil
}

func (s *MemoryStore) CreateShiftType(ctx context.Context, st *domain.ShiftType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.Color == "" {
		st.Color = domain.DefaultShiftTypeColor
	}

	st.ID = s.nextShiftTypeID
	s.nextShiftTypeID++
	s.shiftTypes[st.ID] = cloneShiftType(st)

	return nil
}

func (s *MemoryStore) UpdateShiftType(ctx context.Context, id int64, patch *domain.ShiftTypePatch) (*domain.ShiftType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.shiftTypes[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	updated := cloneShiftType(existing)
	patch.Apply(updated)
	s.shiftTypes[id] = updated

	return cloneShiftType(updated), nil
}

func (s *MemoryStore) DeleteShiftType(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shiftTypes[id]; !ok {
		return false, nil
	}
	delete(s.shiftTypes, id)
	return true, nil
}

/*** shifts ***/

func (s *MemoryStore) GetAllShifts(ctx context.Context) ([]*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.shifts, cloneShift), nil
}

func (s *MemoryStore) GetShiftsBetween(ctx context.Context, from, to domain.Date) ([]*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Shift, 0)
	for _, sh := range sortedValues(s.shifts, cloneShift) {
		if sh.Date.Before(from) || sh.Date.After(to) {
			continue
		}
		out = append(out, sh)
	}

	slices.SortStableFunc(out, func(a, b *domain.Shift) int {
		switch {
		case a.Date.Before(b.Date):
			return -1
		case a.Date.After(b.Date):
			return 1
		}
		return 0
	})

	return out, nil
}

func (s *MemoryStore) GetShiftByID(ctx context.Context, id int64) (*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sh, ok := s.shifts[id]
	if !ok {
		return nil, ErrRecordNotFound
	}
	return cloneShift(sh), nil
}

func (s *MemoryStore) CreateShift(ctx context.Context, shift *domain.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift.ID = s.nextShiftID
	s.nextShiftID++
	shift.CreatedAt = s.now().UTC()
	s.shifts[shift.ID] = cloneShift(shift)

	return nil
}

func (s *MemoryStore) UpdateShift(ctx context.Context, id int64, patch *domain.ShiftPatch) (*domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.shifts[id]
	if !ok {
		return nil, ErrRecordNotFound
	}

	updated := cloneShift(existing)
	patch.Apply(updated)
	s.shifts[id] = updated

	return cloneShift(updated), nil
}

func (s *MemoryStore) DeleteShift(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shifts[id]; !ok {
		return false, nil
	}
	delete(s.shifts, id)
	return true, nil
}
