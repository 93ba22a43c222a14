package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

func marshal(t *testing.T, msg *domain.MailMessage) []byte {
	t.Helper()
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	return b
}

func TestBuildCoverageNeededMessage(t *testing.T) {
	notes := "Urgent coverage needed"
	body := marshal(t, &domain.MailMessage{
		Type: domain.MailTypeCoverageNeeded,
		To:   "soc-leads@example.com",
		Data: domain.CoverageNeededMailData{
			ShiftID:       12,
			Date:          "2025-03-12",
			ShiftTypeName: "Night Shift",
			StartTime:     "22:00:00",
			EndTime:       "06:00:00",
			Notes:         &notes,
		},
	})

	m, err := buildMessage("noreply@example.com", body)
	require.NoError(t, err)

	assert.Equal(t, []string{"Team Schedule - coverage needed on 2025-03-12"}, m.GetGenHeader(mail.HeaderSubject))
	to, err := m.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"soc-leads@example.com"}, to)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.NotZero(t, buf.Len())
}

func TestCoverageNeededTemplate(t *testing.T) {
	var buf bytes.Buffer
	err := templates.ExecuteTemplate(&buf, "coverage_needed.html", domain.CoverageNeededMailData{
		ShiftID:       3,
		Date:          "2025-03-09",
		ShiftTypeName: "Night <Shift>",
		StartTime:     "22:00:00",
		EndTime:       "06:00:00",
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "2025-03-09")
	assert.Contains(t, html, "22:00:00 - 06:00:00")
	assert.Contains(t, html, "Night &lt;Shift&gt;")
	assert.NotContains(t, html, "Notes")
}

func TestBuildMessageRejectsBadInput(t *testing.T) {
	tests := map[string][]byte{
		"非法 JSON": []byte(`{"type":`),
		"未知类型":    marshal(t, &domain.MailMessage{Type: "create_user", To: "a@example.com"}),
		"非法收件人":   marshal(t, &domain.MailMessage{Type: domain.MailTypeCoverageNeeded, To: "not an address"}),
		"数据类型错误":  []byte(`{"type":"coverage_needed","to":"a@example.com","data":{"shiftID":"x"}}`),
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := buildMessage("noreply@example.com", body)
			assert.Error(t, err)
		})
	}
}
