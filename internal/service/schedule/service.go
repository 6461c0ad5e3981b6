package schedule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/schedule"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
)

type ScheduleServiceImpl struct {
	gateway storage.Gateway
}

func NewScheduleService(gateway storage.Gateway) schedule.ScheduleService {
	return &ScheduleServiceImpl{gateway: gateway}
}

// List implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) List(ctx context.Context, employeeID int64) ([]schedule.WorkScheduleResponse, error) {
	if employeeID <= 0 {
		return nil, schedule.ErrEmployeeIDRequired
	}

	rows, err := s.gateway.ListSchedules(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work schedules: %w", err)
	}
	return toResponses(rows), nil
}

// Replace implements schedule.ScheduleService.
func (s *ScheduleServiceImpl) Replace(ctx context.Context, req schedule.ReplaceScheduleRequest) ([]schedule.WorkScheduleResponse, error) {
	if req.EmployeeID <= 0 {
		return nil, schedule.ErrEmployeeIDRequired
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	emp, err := s.gateway.GetIdentity(ctx, req.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	if emp == nil {
		return nil, identity.ErrIdentityNotFound
	}

	var created []schedule.WorkSchedule
	err = s.gateway.WithinTransaction(ctx, func(txCtx context.Context) error {
		created = created[:0]
		if err := s.gateway.DeleteSchedulesForEmployee(txCtx, req.EmployeeID); err != nil {
			return fmt.Errorf("failed to delete work schedules: %w", err)
		}
		for _, row := range req.ToEntities() {
			ws, err := s.gateway.CreateSchedule(txCtx, row)
			if err != nil {
				return fmt.Errorf("failed to create work schedule: %w", err)
			}
			created = append(created, ws)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Replaced work schedule", "employee_id", req.EmployeeID, "rows", len(created))
	return toResponses(created), nil
}

func toResponses(rows []schedule.WorkSchedule) []schedule.WorkScheduleResponse {
	out := make([]schedule.WorkScheduleResponse, 0, len(rows))
	for _, ws := range rows {
		out = append(out, schedule.NewWorkScheduleResponse(ws))
	}
	return out
}
