package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/attendance"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/schedule"
)

func ts(hour, min int) *time.Time {
	t := time.Date(2024, 3, 4, hour, min, 0, 0, time.UTC)
	return &t
}

func strPtr(s string) *string { return &s }

func TestComputeHours(t *testing.T) {
	tests := []struct {
		name       string
		rec        *attendance.DayRecord
		wantLabel  string
		wantMin    int
		inProgress bool
	}{
		{
			name:      "full day with break",
			rec:       &attendance.DayRecord{Entry: ts(9, 0), BreakStart: ts(12, 0), BreakEnd: ts(13, 0), Exit: ts(18, 0)},
			wantLabel: "8:00",
			wantMin:   480,
		},
		{
			name:      "no break",
			rec:       &attendance.DayRecord{Entry: ts(8, 15), Exit: ts(12, 0)},
			wantLabel: "3:45",
			wantMin:   225,
		},
		{
			name:      "open break is not deducted",
			rec:       &attendance.DayRecord{Entry: ts(9, 0), BreakStart: ts(12, 0), Exit: ts(17, 0)},
			wantLabel: "8:00",
			wantMin:   480,
		},
		{
			name:       "no exit",
			rec:        &attendance.DayRecord{Entry: ts(9, 0), BreakStart: ts(12, 0), BreakEnd: ts(13, 0)},
			wantLabel:  InProgressLabel,
			inProgress: true,
		},
		{
			name:       "exit without entry",
			rec:        &attendance.DayRecord{Exit: ts(18, 0)},
			wantLabel:  InProgressLabel,
			inProgress: true,
		},
		{
			name:       "nil record",
			wantLabel:  InProgressLabel,
			inProgress: true,
		},
		{
			name:      "out of order admin edit",
			rec:       &attendance.DayRecord{Entry: ts(18, 0), Exit: ts(9, 30)},
			wantLabel: "-8:30",
			wantMin:   -510,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := ComputeHours(tt.rec)
			assert.Equal(t, tt.inProgress, h.InProgress)
			assert.Equal(t, tt.wantLabel, h.Label)
			assert.Equal(t, tt.wantMin, h.Minutes)
		})
	}
}

func TestComputeHours_TruncatesSeconds(t *testing.T) {
	entry := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	exit := entry.Add(2*time.Hour + 59*time.Second)
	h := ComputeHours(&attendance.DayRecord{Entry: &entry, Exit: &exit})
	assert.Equal(t, 120, h.Minutes)
	assert.Equal(t, "2:00", h.Label)
}

func TestHours_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Hours{InProgress: true, Label: InProgressLabel})
	assert.NoError(t, err)
	assert.Equal(t, `"in_progress"`, string(b))

	b, err = json.Marshal(Hours{Minutes: 480, Label: "8:00"})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"minutes":480,"label":"8:00"}`, string(b))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0:00", FormatMinutes(0))
	assert.Equal(t, "0:05", FormatMinutes(5))
	assert.Equal(t, "10:30", FormatMinutes(630))
	assert.Equal(t, "-1:15", FormatMinutes(-75))
}

func TestScheduledMinutes(t *testing.T) {
	ws := schedule.WorkSchedule{StartTime: "09:00", EndTime: "18:00", BreakStart: strPtr("12:00"), BreakEnd: strPtr("13:00")}
	assert.Equal(t, 480, ScheduledMinutes(ws))

	ws = schedule.WorkSchedule{StartTime: "08:00", EndTime: "12:30"}
	assert.Equal(t, 270, ScheduledMinutes(ws))
}
