package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/config"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
)

func ptr[T any](v T) *T {
	return &v
}

// testStore 对任意 Store 实现运行同一组行为检查，store 必须为空
func testStore(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		u := &domain.User{Username: "alice", Password: "hash"}
		require.NoError(t, store.CreateUser(ctx, u))
		require.NotZero(t, u.ID)

		err := store.CreateUser(ctx, &domain.User{Username: "alice", Password: "x"})
		var dup *DuplicateError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "username", dup.Field)

		got, err := store.GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		updated, err := store.UpdateUser(ctx, u.ID, &domain.UserPatch{Password: ptr("new")})
		require.NoError(t, err)
		assert.Equal(t, "alice", updated.Username)
		assert.Equal(t, "new", updated.Password)

		ok, err := store.DeleteUser(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = store.GetUserByID(ctx, u.ID)
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("team members", func(t *testing.T) {
		a := &domain.TeamMember{Name: "Sarah Chen", Position: "Security Analyst", Email: "sarah@example.com", Phone: ptr("555-0101")}
		b := &domain.TeamMember{Name: "John Maxwell", Position: "SOC Lead", Email: "john@example.com", Status: domain.StatusPTOSoon}
		require.NoError(t, store.CreateTeamMember(ctx, a))
		require.NoError(t, store.CreateTeamMember(ctx, b))
		assert.Equal(t, domain.StatusActive, a.Status)
		assert.Greater(t, b.ID, a.ID)

		all, err := store.GetAllTeamMembers(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, a.ID, all[0].ID)
		assert.Equal(t, "555-0101", *all[0].Phone)
		assert.Nil(t, all[1].Phone)

		var dup *DuplicateError
		_, err = store.UpdateTeamMember(ctx, b.ID, &domain.TeamMemberPatch{Email: ptr("sarah@example.com")})
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "email", dup.Field)

		updated, err := store.UpdateTeamMember(ctx, a.ID, &domain.TeamMemberPatch{
			Phone:  domain.Null[string](),
			Status: ptr(domain.StatusPTO),
		})
		require.NoError(t, err)
		assert.Nil(t, updated.Phone)
		assert.Equal(t, domain.StatusPTO, updated.Status)
		assert.Equal(t, "Sarah Chen", updated.Name)

		_, err = store.UpdateTeamMember(ctx, 9999, &domain.TeamMemberPatch{Name: ptr("x")})
		assert.ErrorIs(t, err, ErrRecordNotFound)

		ok, err := store.DeleteTeamMember(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = store.DeleteTeamMember(ctx, b.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		// 删除后的 ID 不会被复用
		c := &domain.TeamMember{Name: "Emily Parker", Position: "Security Engineer", Email: "emily@example.com"}
		require.NoError(t, store.CreateTeamMember(ctx, c))
		assert.Greater(t, c.ID, b.ID)
	})

	t.Run("shift types", func(t *testing.T) {
		st := &domain.ShiftType{Name: "Night", StartTime: "22:00:00", EndTime: "06:00:00"}
		require.NoError(t, store.CreateShiftType(ctx, st))
		assert.Equal(t, domain.DefaultShiftTypeColor, st.Color)

		got, err := store.GetShiftTypeByID(ctx, st.ID)
		require.NoError(t, err)
		assert.Equal(t, "22:00:00", got.StartTime)
		assert.Equal(t, "06:00:00", got.EndTime)
		assert.Nil(t, got.Description)

		updated, err := store.UpdateShiftType(ctx, st.ID, &domain.ShiftTypePatch{
			Color:       ptr("#6366F1"),
			Description: domain.Some("overnight"),
		})
		require.NoError(t, err)
		assert.Equal(t, "#6366F1", updated.Color)
		assert.Equal(t, "overnight", *updated.Description)
		assert.Equal(t, "Night", updated.Name)

		ok, err := store.DeleteShiftType(ctx, st.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("shifts", func(t *testing.T) {
		mon := domain.NewDate(2025, time.March, 10)
		wed := domain.NewDate(2025, time.March, 12)
		next := domain.NewDate(2025, time.March, 17)

		member := int64(1)
		s1 := &domain.Shift{Date: wed, TeamMemberID: &member, ShiftTypeID: 1}
		s2 := &domain.Shift{Date: mon, ShiftTypeID: 2, Notes: ptr("Urgent coverage needed"), NeedsCoverage: true}
		s3 := &domain.Shift{Date: next, TeamMemberID: &member, ShiftTypeID: 1}
		for _, s := range []*domain.Shift{s1, s2, s3} {
			require.NoError(t, store.CreateShift(ctx, s))
			assert.False(t, s.CreatedAt.IsZero())
		}

		between, err := store.GetShiftsBetween(ctx, domain.NewDate(2025, time.March, 9), domain.NewDate(2025, time.March, 15))
		require.NoError(t, err)
		require.Len(t, between, 2)
		assert.Equal(t, s2.ID, between[0].ID, "ordered by date first")
		assert.Equal(t, s1.ID, between[1].ID)
		assert.True(t, between[1].Date.Equal(wed))
		assert.Nil(t, between[0].TeamMemberID)

		// 边界是闭区间
		edge, err := store.GetShiftsBetween(ctx, wed, wed)
		require.NoError(t, err)
		require.Len(t, edge, 1)

		created := s2.CreatedAt
		updated, err := store.UpdateShift(ctx, s2.ID, &domain.ShiftPatch{
			TeamMemberID:  domain.Some(member),
			NeedsCoverage: ptr(false),
			Notes:         domain.Null[string](),
		})
		require.NoError(t, err)
		assert.Equal(t, member, *updated.TeamMemberID)
		assert.False(t, updated.NeedsCoverage)
		assert.Nil(t, updated.Notes)
		assert.WithinDuration(t, created, updated.CreatedAt, time.Millisecond)

		ok, err := store.DeleteShift(ctx, s3.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = store.GetShiftByID(ctx, s3.ID)
		assert.True(t, errors.Is(err, ErrRecordNotFound))
	})
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	m := &domain.TeamMember{Name: "David Kim", Position: "Incident Responder", Email: "david@example.com", Phone: ptr("555-0105")}
	require.NoError(t, store.CreateTeamMember(ctx, m))

	*m.Phone = "mutated"
	got, err := store.GetTeamMemberByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "555-0105", *got.Phone)

	got.Name = "changed"
	again, err := store.GetTeamMemberByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "David Kim", again.Name)
}

func TestMemoryStoreShiftCreatedAt(t *testing.T) {
	store := NewMemoryStore()
	fixed := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	s := &domain.Shift{Date: domain.NewDate(2025, time.March, 10), ShiftTypeID: 1, CreatedAt: time.Unix(0, 0)}
	require.NoError(t, store.CreateShift(context.Background(), s))
	assert.Equal(t, fixed, s.CreatedAt)
}

func TestOpenMemory(t *testing.T) {
	cfg := testConfig()
	cfg.StorageDriver = config.StorageMemory

	store, closeFn, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &MemoryStore{}, store)

	cfg.StorageDriver = "sqlite"
	_, _, err = Open(context.Background(), cfg)
	assert.Error(t, err)
}
