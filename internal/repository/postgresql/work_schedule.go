package postgresql

import (
	"context"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/schedule"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/database"
)

type workScheduleRepositoryImpl struct {
	db *database.DB
}

func NewWorkScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &workScheduleRepositoryImpl{db: db}
}

// ListSchedules implements schedule.ScheduleRepository.
func (w *workScheduleRepositoryImpl) ListSchedules(ctx context.Context, employeeID int64) ([]schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, w.db)

	query := `
		SELECT id, employee_id, weekday,
			   to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'),
			   to_char(break_start, 'HH24:MI'), to_char(break_end, 'HH24:MI'),
			   created_at
		FROM work_schedules
		WHERE employee_id = $1
		ORDER BY weekday, id
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, storage.Wrap("list schedules", err)
	}
	defer rows.Close()

	schedules := []schedule.WorkSchedule{}
	for rows.Next() {
		var ws schedule.WorkSchedule
		if err := rows.Scan(
			&ws.ID, &ws.EmployeeID, &ws.Weekday,
			&ws.StartTime, &ws.EndTime,
			&ws.BreakStart, &ws.BreakEnd,
			&ws.CreatedAt,
		); err != nil {
			return nil, storage.Wrap("list schedules", err)
		}
		schedules = append(schedules, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Wrap("list schedules", err)
	}
	return schedules, nil
}

// CreateSchedule implements schedule.ScheduleRepository.
func (w *workScheduleRepositoryImpl) CreateSchedule(ctx context.Context, ws schedule.WorkSchedule) (schedule.WorkSchedule, error) {
	q := GetQuerier(ctx, w.db)

	query := `
		INSERT INTO work_schedules (employee_id, weekday, start_time, end_time, break_start, break_end)
		VALUES ($1, $2, $3::text::time, $4::text::time, $5::text::time, $6::text::time)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		ws.EmployeeID,
		ws.Weekday,
		ws.StartTime,
		ws.EndTime,
		ws.BreakStart,
		ws.BreakEnd,
	).Scan(&ws.ID, &ws.CreatedAt)

	if err != nil {
		if pgErrorCode(err) == foreignKeyViolation {
			return schedule.WorkSchedule{}, identity.ErrIdentityNotFound
		}
		return schedule.WorkSchedule{}, storage.Wrap("create schedule", err)
	}
	return ws, nil
}

// DeleteSchedulesForEmployee implements schedule.ScheduleRepository.
func (w *workScheduleRepositoryImpl) DeleteSchedulesForEmployee(ctx context.Context, employeeID int64) error {
	q := GetQuerier(ctx, w.db)

	if _, err := q.Exec(ctx, `DELETE FROM work_schedules WHERE employee_id = $1`, employeeID); err != nil {
		return storage.Wrap("delete schedules", err)
	}
	return nil
}
