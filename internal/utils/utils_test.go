package utils

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateRandomTeamMember(t *testing.T) {
	usernamePattern := regexp.MustCompile(`^[a-z]+[0-9]{1,3}$`)

	for i := 0; i < 20; i++ {
		m := GenerateRandomTeamMember("example.com")
		require.True(t, strings.HasSuffix(m.Email, "@example.com"), m.Email)
		local := strings.TrimSuffix(m.Email, "@example.com")
		assert.Regexp(t, usernamePattern, local)
		assert.True(t, m.Status.Valid())
		assert.NotEmpty(t, m.Position)
		require.NotNil(t, m.Phone)
		assert.Regexp(t, `^555-\d{3}-\d{4}$`, *m.Phone)
	}
}

func TestGenerateUserForTeamMember(t *testing.T) {
	m := GenerateRandomTeamMember("example.com")

	u, err := GenerateUserForTeamMember(m, "changeme")
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSuffix(m.Email, "@example.com"), u.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte("changeme")))
}

func TestIsWallClock(t *testing.T) {
	assert.True(t, IsWallClock("06:00:00"))
	assert.True(t, IsWallClock("23:59:59"))
	assert.False(t, IsWallClock("24:00:00"))
	assert.False(t, IsWallClock("6:00:00"))
	assert.False(t, IsWallClock("06:00"))
}

func TestIsCivilDate(t *testing.T) {
	assert.True(t, IsCivilDate("2025-03-12"))
	assert.False(t, IsCivilDate("2025-02-30"))
	assert.False(t, IsCivilDate("2025-3-12"))
	assert.False(t, IsCivilDate("not-a-date"))
}

func TestParseReferenceTime(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)

	got, err := ParseReferenceTime("2025-03-12", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, time.March, 12, 0, 0, 0, 0, loc)))

	got, err = ParseReferenceTime("2025-03-12T10:00:00Z", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, time.March, 12, 10, 0, 0, 0, time.UTC)))

	// 不带时区的时间按 loc 解释：UTC+8 的周日凌晨在 UTC 仍是周六
	got, err = ParseReferenceTime("2025-03-16T01:30:00", loc)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, time.March, 16, 1, 30, 0, 0, loc)))
	assert.Equal(t, time.Saturday, got.UTC().Weekday())

	_, err = ParseReferenceTime("2025-03-12T10:00", loc)
	assert.ErrorIs(t, err, ErrInvalidReferenceDate)

	_, err = ParseReferenceTime("not-a-date", loc)
	assert.ErrorIs(t, err, ErrInvalidReferenceDate)
}
