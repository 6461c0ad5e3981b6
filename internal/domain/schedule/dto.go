package schedule

import (
	"fmt"
	"time"

	"github.com/igorgomez/ponto-seguro-1/internal/pkg/validator"
)

type ScheduleRow struct {
	Weekday    int     `json:"weekday"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	BreakStart *string `json:"break_start,omitempty"`
	BreakEnd   *string `json:"break_end,omitempty"`
}

type ReplaceScheduleRequest struct {
	EmployeeID int64         `json:"-"`
	Schedules  []ScheduleRow `json:"schedules"`
}

func (r *ReplaceScheduleRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	for i, row := range r.Schedules {
		field := fmt.Sprintf("schedules[%d]", i)

		if row.Weekday < 1 || row.Weekday > 7 {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".weekday",
				Message: "weekday must be between 1 (Monday) and 7 (Sunday)",
			})
		}

		start, okStart := validator.ParseClock(row.StartTime)
		if !okStart {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".start_time",
				Message: "start_time must be in HH:MM format",
			})
		}
		end, okEnd := validator.ParseClock(row.EndTime)
		if !okEnd {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".end_time",
				Message: "end_time must be in HH:MM format",
			})
		}
		if okStart && okEnd && end <= start {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".end_time",
				Message: "end_time must be after start_time",
			})
		}

		hasBreakStart := row.BreakStart != nil && *row.BreakStart != ""
		hasBreakEnd := row.BreakEnd != nil && *row.BreakEnd != ""
		if hasBreakStart != hasBreakEnd {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".break_end",
				Message: "break_start and break_end must be provided together",
			})
			continue
		}
		if !hasBreakStart {
			continue
		}

		bs, okBS := validator.ParseClock(*row.BreakStart)
		if !okBS {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".break_start",
				Message: "break_start must be in HH:MM format",
			})
		}
		be, okBE := validator.ParseClock(*row.BreakEnd)
		if !okBE {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".break_end",
				Message: "break_end must be in HH:MM format",
			})
		}
		if okBS && okBE && be <= bs {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".break_end",
				Message: "break_end must be after break_start",
			})
		}
		if okStart && okEnd && okBS && okBE && (bs < start || be > end) {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".break_start",
				Message: "break must fall within the shift",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToEntities normalises empty break strings to nil.
func (r *ReplaceScheduleRequest) ToEntities() []WorkSchedule {
	rows := make([]WorkSchedule, 0, len(r.Schedules))
	for _, row := range r.Schedules {
		ws := WorkSchedule{
			EmployeeID: r.EmployeeID,
			Weekday:    row.Weekday,
			StartTime:  row.StartTime,
			EndTime:    row.EndTime,
		}
		if row.BreakStart != nil && *row.BreakStart != "" {
			ws.BreakStart = row.BreakStart
			ws.BreakEnd = row.BreakEnd
		}
		rows = append(rows, ws)
	}
	return rows
}

type WorkScheduleResponse struct {
	ID         int64   `json:"id"`
	EmployeeID int64   `json:"employee_id"`
	Weekday    int     `json:"weekday"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	BreakStart *string `json:"break_start,omitempty"`
	BreakEnd   *string `json:"break_end,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

func NewWorkScheduleResponse(ws WorkSchedule) WorkScheduleResponse {
	return WorkScheduleResponse{
		ID:         ws.ID,
		EmployeeID: ws.EmployeeID,
		Weekday:    ws.Weekday,
		StartTime:  ws.StartTime,
		EndTime:    ws.EndTime,
		BreakStart: ws.BreakStart,
		BreakEnd:   ws.BreakEnd,
		CreatedAt:  ws.CreatedAt.Format(time.RFC3339),
	}
}
