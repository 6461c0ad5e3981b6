package schedule

import "context"

type ScheduleRepository interface {
	// ListSchedules returns the employee's rows ordered by weekday, then creation.
	ListSchedules(ctx context.Context, employeeID int64) ([]WorkSchedule, error)
	CreateSchedule(ctx context.Context, s WorkSchedule) (WorkSchedule, error)
	DeleteSchedulesForEmployee(ctx context.Context, employeeID int64) error
}
