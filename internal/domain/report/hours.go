package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/attendance"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/schedule"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/validator"
)

// InProgressLabel is emitted instead of a duration when a day has no exit.
const InProgressLabel = "in_progress"

// Hours is the worked duration of a day record. InProgress days carry no
// duration at all, never a zero one.
type Hours struct {
	Minutes    int
	Label      string
	InProgress bool
}

func (h Hours) MarshalJSON() ([]byte, error) {
	if h.InProgress {
		return json.Marshal(InProgressLabel)
	}
	return json.Marshal(struct {
		Minutes int    `json:"minutes"`
		Label   string `json:"label"`
	}{h.Minutes, h.Label})
}

// ComputeHours returns exit - entry, minus the break when both break
// timestamps exist, truncated to whole minutes.
func ComputeHours(rec *attendance.DayRecord) Hours {
	if rec == nil || rec.Entry == nil || rec.Exit == nil {
		return Hours{Label: InProgressLabel, InProgress: true}
	}

	worked := rec.Exit.Sub(*rec.Entry)
	if rec.BreakStart != nil && rec.BreakEnd != nil {
		worked -= rec.BreakEnd.Sub(*rec.BreakStart)
	}

	minutes := int(worked / time.Minute)
	return Hours{Minutes: minutes, Label: FormatMinutes(minutes)}
}

// FormatMinutes renders minutes as H:MM, prefixed with "-" when negative.
func FormatMinutes(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%d:%02d", sign, minutes/60, minutes%60)
}

// ScheduledMinutes is end - start, minus the planned break.
func ScheduledMinutes(ws schedule.WorkSchedule) int {
	start, _ := validator.ParseClock(ws.StartTime)
	end, _ := validator.ParseClock(ws.EndTime)
	total := end - start

	if ws.BreakStart != nil && ws.BreakEnd != nil {
		bs, okStart := validator.ParseClock(*ws.BreakStart)
		be, okEnd := validator.ParseClock(*ws.BreakEnd)
		if okStart && okEnd {
			total -= be - bs
		}
	}
	return total
}
