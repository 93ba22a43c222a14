package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// 与 domain.MailMessage 相同，但 Data 延迟到确定类型之后再解析
type mailEnvelope struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// buildMessage 把队列中的消息构建为邮件，返回的错误都是无法通过重试解决的
func buildMessage(from string, body []byte) (*mail.Msg, error) {
	var env mailEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode mail message: %w", err)
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("set from: %w", err)
	}
	if err := m.To(env.To); err != nil {
		return nil, fmt.Errorf("set to: %w", err)
	}

	// 根据邮件类型解析数据
	switch env.Type {
	case domain.MailTypeCoverageNeeded:
		var data domain.CoverageNeededMailData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("decode %s data: %w", env.Type, err)
		}
		if err := m.SetBodyHTMLTemplate(templates.Lookup("coverage_needed.html"), data); err != nil {
			return nil, fmt.Errorf("render %s: %w", env.Type, err)
		}
		m.Subject(fmt.Sprintf("Team Schedule - coverage needed on %s", data.Date))
	default:
		return nil, fmt.Errorf("unsupported mail type %q", env.Type)
	}

	return m, nil
}
