package attendance

import (
	"context"
	"time"
)

// MutateFunc decides a transition on the current record. Returning an error
// aborts the write. Backends using optimistic concurrency may call it more
// than once, each time with a fresh copy.
type MutateFunc func(rec *DayRecord) error

// DayRecordRepository returns list results with the Employee view attached.
// Single lookups return (nil, nil) when nothing matches.
type DayRecordRepository interface {
	GetDayRecord(ctx context.Context, id int64) (*DayRecord, error)
	GetDayRecordByEmployeeAndDate(ctx context.Context, employeeID int64, date time.Time) (*DayRecord, error)

	GetDayRecordsForDate(ctx context.Context, date time.Time) ([]DayRecord, error)
	// GetDayRecordsForEmployee is ordered by date, most recent first.
	GetDayRecordsForEmployee(ctx context.Context, employeeID int64) ([]DayRecord, error)
	// GetDayRecordsForEmployeeBetween is inclusive on both ends, ordered by date ascending.
	GetDayRecordsForEmployeeBetween(ctx context.Context, employeeID int64, from, to time.Time) ([]DayRecord, error)
	GetAllDayRecords(ctx context.Context) ([]DayRecord, error)
	// GetRecentDayRecords is ordered by last update, most recent first.
	GetRecentDayRecords(ctx context.Context, limit int) ([]DayRecord, error)

	// CreateDayRecord returns ErrDayRecordExists if (employee, date) is taken.
	CreateDayRecord(ctx context.Context, employeeID int64, date time.Time) (DayRecord, error)
	// UpdateDayRecord returns ErrDayRecordNotFound if id is absent.
	UpdateDayRecord(ctx context.Context, id int64, patch Patch) (DayRecord, error)

	// MutateDayRecord serialises read-modify-write on the (employee, date)
	// record, creating it first if absent. Nothing is persisted when fn fails.
	MutateDayRecord(ctx context.Context, employeeID int64, date time.Time, fn MutateFunc) (DayRecord, error)
}
