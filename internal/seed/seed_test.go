package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func TestSeedDemoData(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	ref := time.Date(2025, time.March, 13, 15, 0, 0, 0, time.UTC) // 周四

	require.NoError(t, SeedDemoData(ctx, store, ref, time.UTC))

	members, err := store.GetAllTeamMembers(ctx)
	require.NoError(t, err)
	require.Len(t, members, 5)
	assert.Equal(t, domain.StatusPTOSoon, members[2].Status)

	sts, err := store.GetAllShiftTypes(ctx)
	require.NoError(t, err)
	require.Len(t, sts, 3)
	assert.Equal(t, "22:00:00", sts[2].StartTime)

	shifts, err := store.GetShiftsBetween(ctx, domain.NewDate(2025, time.March, 9), domain.NewDate(2025, time.March, 15))
	require.NoError(t, err)
	assert.Len(t, shifts, 21)

	var uncovered []*domain.Shift
	for _, s := range shifts {
		if s.TeamMemberID == nil {
			uncovered = append(uncovered, s)
		}
	}
	require.Len(t, uncovered, 1)
	assert.Equal(t, "2025-03-12", uncovered[0].Date.String())
	assert.True(t, uncovered[0].NeedsCoverage)
	assert.Equal(t, "Urgent coverage needed", *uncovered[0].Notes)
	assert.Equal(t, sts[2].ID, uncovered[0].ShiftTypeID)
}

func TestEnsureInitialAdmin(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()

	require.NoError(t, EnsureInitialAdmin(ctx, store, "admin", ""))
	users, err := store.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, EnsureInitialAdmin(ctx, store, "admin", "first"))
	// 再次执行不会报错，也不会覆盖原密码
	require.NoError(t, EnsureInitialAdmin(ctx, store, "admin", "second"))

	users, err = store.GetAllUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].Password), []byte("first")))
}
