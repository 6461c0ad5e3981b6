package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/attendance"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/report"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/schedule"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
)

type ReportServiceImpl struct {
	gateway    storage.Gateway
	reconciler report.Reconciler
	location   *time.Location
	now        func() time.Time
}

// NewReportService wires the read-side calculators. tolerance is the grace
// period after the scheduled start before an entry counts as late.
func NewReportService(gateway storage.Gateway, tolerance time.Duration, location *time.Location) report.ReportService {
	if location == nil {
		location = time.UTC
	}
	return &ReportServiceImpl{
		gateway:    gateway,
		reconciler: report.Reconciler{Tolerance: tolerance, Location: location},
		location:   location,
		now:        time.Now,
	}
}

func (s *ReportServiceImpl) today() time.Time {
	return attendance.DateOf(s.now().In(s.location))
}

// Hours implements report.ReportService.
func (s *ReportServiceImpl) Hours(ctx context.Context, recordID int64) (report.HoursResponse, error) {
	rec, err := s.gateway.GetDayRecord(ctx, recordID)
	if err != nil {
		return report.HoursResponse{}, fmt.Errorf("failed to get day record: %w", err)
	}
	if rec == nil {
		return report.HoursResponse{}, attendance.ErrDayRecordNotFound
	}

	schedules, err := s.gateway.ListSchedules(ctx, rec.EmployeeID)
	if err != nil {
		return report.HoursResponse{}, fmt.Errorf("failed to list work schedules: %w", err)
	}

	resp := report.HoursResponse{
		RecordID:   rec.ID,
		EmployeeID: rec.EmployeeID,
		Date:       rec.Date.Format("2006-01-02"),
		Worked:     report.ComputeHours(rec),
	}

	if ws, ok := schedule.LatestByWeekday(schedules)[schedule.Weekday(rec.Date)]; ok {
		scheduled := report.ScheduledMinutes(ws)
		resp.ScheduledMinutes = &scheduled
		if !resp.Worked.InProgress {
			delta := resp.Worked.Minutes - scheduled
			label := report.FormatMinutes(delta)
			resp.DeltaMinutes = &delta
			resp.DeltaLabel = &label
		}
	}
	return resp, nil
}

// periodData loads everything a period report needs for one employee.
func (s *ReportServiceImpl) periodData(ctx context.Context, req report.PeriodRequest) (from, to time.Time, records []attendance.DayRecord, schedules []schedule.WorkSchedule, err error) {
	if err = req.Validate(); err != nil {
		return
	}

	emp, err := s.gateway.GetIdentity(ctx, req.EmployeeID)
	if err != nil {
		err = fmt.Errorf("failed to get employee: %w", err)
		return
	}
	if emp == nil {
		err = identity.ErrIdentityNotFound
		return
	}

	from, to = req.Resolve(s.today())
	if err = report.CheckSpan(from, to); err != nil {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.gateway.GetDayRecordsForEmployeeBetween(gctx, req.EmployeeID, from, to)
		if err != nil {
			return fmt.Errorf("failed to get day records: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		schedules, err = s.gateway.ListSchedules(gctx, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to list work schedules: %w", err)
		}
		return nil
	})
	err = g.Wait()
	return
}

// Reconcile implements report.ReportService.
func (s *ReportServiceImpl) Reconcile(ctx context.Context, req report.PeriodRequest) (report.ReconcileResponse, error) {
	from, to, records, schedules, err := s.periodData(ctx, req)
	if err != nil {
		return report.ReconcileResponse{}, err
	}

	result := s.reconciler.Reconcile(records, schedules, from, to, s.today())
	return report.NewReconcileResponse(req.EmployeeID, from, to, result), nil
}

// BankBalance implements report.ReportService.
func (s *ReportServiceImpl) BankBalance(ctx context.Context, req report.PeriodRequest) (report.BankBalanceResponse, error) {
	from, to, records, schedules, err := s.periodData(ctx, req)
	if err != nil {
		return report.BankBalanceResponse{}, err
	}

	return report.NewBankBalanceResponse(req.EmployeeID, from, to, report.BankBalance(records, schedules)), nil
}

// Dashboard implements report.ReportService.
func (s *ReportServiceImpl) Dashboard(ctx context.Context) (report.DashboardResponse, error) {
	today := s.today()

	var (
		employees []identity.Identity
		records   []attendance.DayRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		employees, err = s.gateway.ListEmployees(gctx)
		if err != nil {
			return fmt.Errorf("failed to list employees: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = s.gateway.GetDayRecordsForDate(gctx, today)
		if err != nil {
			return fmt.Errorf("failed to get today's records: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return report.DashboardResponse{}, err
	}

	states := make(map[int64]attendance.State, len(records))
	for i := range records {
		states[records[i].EmployeeID] = records[i].State()
	}

	resp := report.DashboardResponse{Date: today.Format("2006-01-02")}
	for _, e := range employees {
		if !e.Active {
			continue
		}
		resp.ActiveEmployees++
		switch states[e.ID] {
		case attendance.StateWorking, attendance.StateReturned:
			resp.Working++
		case attendance.StateOnBreak:
			resp.OnBreak++
		case attendance.StateCompleted:
			resp.Completed++
		default:
			resp.Absent++
		}
	}
	return resp, nil
}
