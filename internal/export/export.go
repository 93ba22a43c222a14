package export

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/sysu-ecnc-dev/team-schedule/backend/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	GridSheet   = "Week"
	DetailSheet = "Shifts"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// FileName 返回下载时使用的文件名
func FileName(ws *domain.WeekSchedule) string {
	return fmt.Sprintf("schedule-%s.xlsx", domain.DateOf(ws.Start))
}

// WriteWeekSchedule 把一周的排班表写成 xlsx。
// Week 表每行一个班次类型、每列一天；Shifts 表逐条列出班次。
func WriteWeekSchedule(w io.Writer, ws *domain.WeekSchedule) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", GridSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(DetailSheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	if err := writeGrid(f, ws, headerStyle); err != nil {
		return fmt.Errorf("write %s sheet: %w", GridSheet, err)
	}
	if err := writeDetails(f, ws, headerStyle); err != nil {
		return fmt.Errorf("write %s sheet: %w", DetailSheet, err)
	}

	f.SetActiveSheet(0)
	return f.Write(w)
}

// 占位班次类型统一归到 ID -1 这一行
func shiftTypeRows(ws *domain.WeekSchedule) []*domain.ShiftType {
	seen := make(map[int64]*domain.ShiftType)
	for _, day := range ws.Days {
		for _, s := range day.Shifts {
			if _, ok := seen[s.ShiftType.ID]; !ok {
				seen[s.ShiftType.ID] = s.ShiftType
			}
		}
	}

	rows := make([]*domain.ShiftType, 0, len(seen))
	for _, st := range seen {
		rows = append(rows, st)
	}

	slices.SortFunc(rows, func(a, b *domain.ShiftType) int {
		if c := strings.Compare(a.StartTime, b.StartTime); c != 0 {
			return c
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	return rows
}

func describe(s *domain.ShiftWithDetails) string {
	name := s.TeamMember.Name
	if s.NeedsCoverage {
		name += " (needs coverage)"
	}
	return name
}

func writeGrid(f *excelize.File, ws *domain.WeekSchedule, headerStyle int) error {
	header := []any{"Shift"}
	for _, day := range ws.Days {
		header = append(header, fmt.Sprintf("%s %s", day.Date.Weekday().String()[:3], day.Date))
	}
	if err := f.SetSheetRow(GridSheet, "A1", &header); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(GridSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	for i, st := range shiftTypeRows(ws) {
		rowNum := i + 2

		row := []any{fmt.Sprintf("%s\n%s-%s", st.Name, st.StartTime, st.EndTime)}
		for _, day := range ws.Days {
			names := make([]string, 0)
			for _, s := range day.Shifts {
				if s.ShiftType.ID == st.ID {
					names = append(names, describe(s))
				}
			}
			row = append(row, strings.Join(names, "\n"))
		}

		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(GridSheet, cell, &row); err != nil {
			return err
		}

		last, err := excelize.CoordinatesToCellName(len(row), rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(GridSheet, cell, last, wrap); err != nil {
			return err
		}

		if len(st.Color) == len("#RRGGBB") {
			fill, err := f.NewStyle(&excelize.Style{
				Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
				Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{st.Color}},
				Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
			})
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(GridSheet, cell, cell, fill); err != nil {
				return err
			}
		}
	}

	return f.SetColWidth(GridSheet, "A", lastCol, 24)
}

func writeDetails(f *excelize.File, ws *domain.WeekSchedule, headerStyle int) error {
	header := []any{"ID", "Date", "Shift", "Start", "End", "Team Member", "Position", "Needs Coverage", "Notes"}
	if err := f.SetSheetRow(DetailSheet, "A1", &header); err != nil {
		return err
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(DetailSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	rowNum := 2
	for _, day := range ws.Days {
		for _, s := range day.Shifts {
			notes := ""
			if s.Notes != nil {
				notes = *s.Notes
			}

			row := []any{
				s.ID,
				s.Date.String(),
				s.ShiftType.Name,
				s.ShiftType.StartTime,
				s.ShiftType.EndTime,
				s.TeamMember.Name,
				s.TeamMember.Position,
				s.NeedsCoverage,
				notes,
			}

			cell, err := excelize.CoordinatesToCellName(1, rowNum)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(DetailSheet, cell, &row); err != nil {
				return err
			}
			rowNum++
		}
	}

	return f.SetColWidth(DetailSheet, "A", lastCol, 18)
}
