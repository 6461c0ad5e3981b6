package schedule

import "time"

// WorkSchedule is one planned shift for an employee on a weekday. Several rows
// may exist for the same weekday; readers take the most recently created one.
type WorkSchedule struct {
	ID         int64
	EmployeeID int64
	Weekday    int    // 1=Monday, ..., 7=Sunday
	StartTime  string // HH:MM
	EndTime    string // HH:MM
	BreakStart *string
	BreakEnd   *string
	CreatedAt  time.Time
}

// Weekday maps a date to the 1=Monday..7=Sunday numbering.
func Weekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// LatestByWeekday keeps the most recently created row per weekday. Ties on
// CreatedAt fall back to the higher id.
func LatestByWeekday(rows []WorkSchedule) map[int]WorkSchedule {
	latest := make(map[int]WorkSchedule, 7)
	for _, row := range rows {
		cur, ok := latest[row.Weekday]
		if !ok || row.CreatedAt.After(cur.CreatedAt) || (row.CreatedAt.Equal(cur.CreatedAt) && row.ID > cur.ID) {
			latest[row.Weekday] = row
		}
	}
	return latest
}
