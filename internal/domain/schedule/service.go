package schedule

import "context"

type ScheduleService interface {
	List(ctx context.Context, employeeID int64) ([]WorkScheduleResponse, error)

	// Replace deletes every row of the employee and creates the given ones.
	// Atomic only where the storage backend supports transactions.
	Replace(ctx context.Context, req ReplaceScheduleRequest) ([]WorkScheduleResponse, error)
}
