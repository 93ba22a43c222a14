package domain

const MailTypeCoverageNeeded = "coverage_needed"

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type CoverageNeededMailData struct {
	ShiftID       int64   `json:"shiftID"`
	Date          string  `json:"date"`
	ShiftTypeName string  `json:"shiftTypeName"`
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	Notes         *string `json:"notes"`
}
