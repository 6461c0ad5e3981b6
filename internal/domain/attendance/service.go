package attendance

import (
	"context"
	"time"
)

// AttendanceService registers punches and serves day records
type AttendanceService interface {
	// RegisterPunch applies a punch to today's record of the employee
	RegisterPunch(ctx context.Context, req PunchRequest) (DayRecordResponse, error)

	// EditDayRecord is the privileged correction path. No sequence validation.
	EditDayRecord(ctx context.Context, req EditDayRecordRequest) (DayRecordResponse, error)

	// GetToday returns nil when the employee has not punched today
	GetToday(ctx context.Context, employeeID int64) (*DayRecordResponse, error)

	GetHistory(ctx context.Context, employeeID int64) ([]DayRecordResponse, error)
	GetAllForDate(ctx context.Context, date time.Time) ([]DayRecordResponse, error)
	GetRecent(ctx context.Context, limit int) ([]DayRecordResponse, error)
	GetAll(ctx context.Context) ([]DayRecordResponse, error)
	GetDayRecord(ctx context.Context, id int64) (DayRecordResponse, error)

	// RecentActivities summarises the latest punch of recently touched records
	RecentActivities(ctx context.Context, limit int) ([]ActivityResponse, error)
}
