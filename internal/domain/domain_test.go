package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	d := NewDate(2025, time.March, 12)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-12"`, string(b))

	var got Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-12"`), &got))
	assert.True(t, got.Equal(d))
	assert.Equal(t, time.Wednesday, got.Weekday())

	assert.Error(t, json.Unmarshal([]byte(`"12/03/2025"`), &got))
	assert.Error(t, json.Unmarshal([]byte(`20250312`), &got))
}

func TestDateOfIgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	late := time.Date(2025, time.March, 12, 23, 59, 59, 0, loc)

	assert.Equal(t, NewDate(2025, time.March, 12), DateOf(late))
	assert.Equal(t, "2025-03-13", DateOf(late).AddDays(1).String())
	assert.Equal(t, "2025-03-01", NewDate(2025, time.February, 28).AddDays(1).String())
}

func TestTeamMemberStatusValid(t *testing.T) {
	for _, s := range TeamMemberStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, TeamMemberStatus("on-leave").Valid())
	assert.False(t, TeamMemberStatus("").Valid())
}

func TestShiftPatchApply(t *testing.T) {
	member := int64(3)
	notes := "original"
	created := time.Date(2025, time.January, 1, 8, 0, 0, 0, time.UTC)
	s := Shift{
		ID:            7,
		Date:          NewDate(2025, time.March, 12),
		TeamMemberID:  &member,
		ShiftTypeID:   2,
		Notes:         &notes,
		NeedsCoverage: false,
		CreatedAt:     created,
	}

	patch := ShiftPatch{Notes: Some("updated")}
	require.False(t, patch.IsEmpty())
	patch.Apply(&s)

	require.NotNil(t, s.Notes)
	assert.Equal(t, "updated", *s.Notes)
	assert.Equal(t, "original", notes, "patch must not write through the old pointer")
	assert.Equal(t, int64(3), *s.TeamMemberID)
	assert.Equal(t, int64(2), s.ShiftTypeID)
	assert.Equal(t, created, s.CreatedAt)

	unassign := ShiftPatch{TeamMemberID: Null[int64]()}
	unassign.Apply(&s)
	assert.Nil(t, s.TeamMemberID)

	assert.True(t, (&ShiftPatch{}).IsEmpty())
}

func TestPlaceholders(t *testing.T) {
	d := ShiftWithDetails{TeamMember: PlaceholderTeamMember(), ShiftType: PlaceholderShiftType()}
	assert.False(t, d.IsAssigned())
	assert.Equal(t, PlaceholderID, d.ShiftType.ID)

	d.TeamMember = &TeamMember{ID: 1}
	assert.True(t, d.IsAssigned())
}
