package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igorgomez/ponto-seguro-1/internal/pkg/validator"
)

func strPtr(s string) *string { return &s }

func TestReplaceScheduleRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		rows      []ScheduleRow
		wantField string
	}{
		{
			name: "valid with break",
			rows: []ScheduleRow{{Weekday: 1, StartTime: "09:00", EndTime: "18:00", BreakStart: strPtr("12:00"), BreakEnd: strPtr("13:00")}},
		},
		{
			name: "valid without break",
			rows: []ScheduleRow{{Weekday: 7, StartTime: "08:00", EndTime: "12:00"}},
		},
		{
			name: "empty list clears schedule",
		},
		{
			name:      "weekday out of range",
			rows:      []ScheduleRow{{Weekday: 0, StartTime: "09:00", EndTime: "18:00"}},
			wantField: "schedules[0].weekday",
		},
		{
			name:      "bad clock",
			rows:      []ScheduleRow{{Weekday: 1, StartTime: "9h", EndTime: "18:00"}},
			wantField: "schedules[0].start_time",
		},
		{
			name:      "end before start",
			rows:      []ScheduleRow{{Weekday: 1, StartTime: "18:00", EndTime: "09:00"}},
			wantField: "schedules[0].end_time",
		},
		{
			name:      "half break",
			rows:      []ScheduleRow{{Weekday: 2, StartTime: "09:00", EndTime: "18:00", BreakStart: strPtr("12:00")}},
			wantField: "schedules[0].break_end",
		},
		{
			name:      "break outside shift",
			rows:      []ScheduleRow{{Weekday: 3, StartTime: "09:00", EndTime: "18:00", BreakStart: strPtr("08:00"), BreakEnd: strPtr("08:30")}},
			wantField: "schedules[0].break_start",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := ReplaceScheduleRequest{EmployeeID: 1, Schedules: tt.rows}
			err := req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs.ToMap(), tt.wantField)
		})
	}
}

func TestReplaceScheduleRequest_ToEntitiesDropsEmptyBreak(t *testing.T) {
	req := ReplaceScheduleRequest{
		EmployeeID: 4,
		Schedules: []ScheduleRow{
			{Weekday: 1, StartTime: "09:00", EndTime: "18:00", BreakStart: strPtr(""), BreakEnd: strPtr("")},
		},
	}
	rows := req.ToEntities()
	require.Len(t, rows, 1)
	assert.Equal(t, int64(4), rows[0].EmployeeID)
	assert.Nil(t, rows[0].BreakStart)
	assert.Nil(t, rows[0].BreakEnd)
}

func TestLatestByWeekday(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := []WorkSchedule{
		{ID: 1, Weekday: 1, StartTime: "09:00", CreatedAt: base},
		{ID: 2, Weekday: 1, StartTime: "08:00", CreatedAt: base.Add(time.Hour)},
		{ID: 3, Weekday: 2, StartTime: "10:00", CreatedAt: base},
		{ID: 4, Weekday: 2, StartTime: "11:00", CreatedAt: base},
	}
	latest := LatestByWeekday(rows)
	assert.Equal(t, "08:00", latest[1].StartTime)
	assert.Equal(t, "11:00", latest[2].StartTime)
	_, ok := latest[3]
	assert.False(t, ok)
}

func TestWeekday(t *testing.T) {
	assert.Equal(t, 1, Weekday(time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))) // Monday
	assert.Equal(t, 7, Weekday(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
}
