package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/attendance"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
)

const defaultRecentLimit = 10

type AttendanceServiceImpl struct {
	records    attendance.DayRecordRepository
	identities identity.IdentityRepository
	location   *time.Location
	now        func() time.Time
}

// NewAttendanceService builds the punch service. location decides which
// calendar day a punch belongs to and anchors admin edits.
func NewAttendanceService(records attendance.DayRecordRepository, identities identity.IdentityRepository, location *time.Location) attendance.AttendanceService {
	if location == nil {
		location = time.UTC
	}
	return &AttendanceServiceImpl{
		records:    records,
		identities: identities,
		location:   location,
		now:        time.Now,
	}
}

func (s *AttendanceServiceImpl) today() time.Time {
	return attendance.DateOf(s.now().In(s.location))
}

// RegisterPunch implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RegisterPunch(ctx context.Context, req attendance.PunchRequest) (attendance.DayRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayRecordResponse{}, err
	}

	emp, err := s.identities.GetIdentity(ctx, req.EmployeeID)
	if err != nil {
		return attendance.DayRecordResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if emp == nil {
		return attendance.DayRecordResponse{}, identity.ErrIdentityNotFound
	}
	if !emp.Active {
		return attendance.DayRecordResponse{}, identity.ErrIdentityInactive
	}

	at := s.now().In(s.location).Truncate(time.Second)
	rec, err := s.records.MutateDayRecord(ctx, req.EmployeeID, attendance.DateOf(at), func(r *attendance.DayRecord) error {
		return attendance.ApplyPunch(r, req.Type, at, req.Location)
	})
	if err != nil {
		var seqErr *attendance.SequenceError
		if errors.As(err, &seqErr) {
			return attendance.DayRecordResponse{}, err
		}
		return attendance.DayRecordResponse{}, fmt.Errorf("failed to register %s punch: %w", req.Type, err)
	}

	slog.Info("Registered punch", "employee_id", req.EmployeeID, "type", req.Type, "record_id", rec.ID, "state", rec.State())
	return attendance.NewDayRecordResponse(rec), nil
}

// EditDayRecord implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) EditDayRecord(ctx context.Context, req attendance.EditDayRecordRequest) (attendance.DayRecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DayRecordResponse{}, err
	}

	existing, err := s.records.GetDayRecord(ctx, req.ID)
	if err != nil {
		return attendance.DayRecordResponse{}, fmt.Errorf("failed to get day record: %w", err)
	}
	if existing == nil {
		return attendance.DayRecordResponse{}, attendance.ErrDayRecordNotFound
	}

	updated, err := s.records.UpdateDayRecord(ctx, req.ID, req.ToPatch(existing.Date, s.location))
	if err != nil {
		if errors.Is(err, attendance.ErrDayRecordNotFound) {
			return attendance.DayRecordResponse{}, err
		}
		return attendance.DayRecordResponse{}, fmt.Errorf("failed to update day record: %w", err)
	}

	slog.Info("Edited day record", "record_id", updated.ID, "employee_id", updated.EmployeeID, "edited_by", req.EditorID)
	return attendance.NewDayRecordResponse(updated), nil
}

// GetToday implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetToday(ctx context.Context, employeeID int64) (*attendance.DayRecordResponse, error) {
	rec, err := s.records.GetDayRecordByEmployeeAndDate(ctx, employeeID, s.today())
	if err != nil {
		return nil, fmt.Errorf("failed to get today's record: %w", err)
	}
	if rec == nil {
		return nil, nil
	}
	resp := attendance.NewDayRecordResponse(*rec)
	return &resp, nil
}

// GetHistory implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetHistory(ctx context.Context, employeeID int64) ([]attendance.DayRecordResponse, error) {
	records, err := s.records.GetDayRecordsForEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee history: %w", err)
	}
	return attendance.NewDayRecordResponses(records), nil
}

// GetAllForDate implements attendance.AttendanceService. A zero date means today.
func (s *AttendanceServiceImpl) GetAllForDate(ctx context.Context, date time.Time) ([]attendance.DayRecordResponse, error) {
	if date.IsZero() {
		date = s.today()
	}
	records, err := s.records.GetDayRecordsForDate(ctx, attendance.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("failed to get records for date: %w", err)
	}
	return attendance.NewDayRecordResponses(records), nil
}

// GetRecent implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetRecent(ctx context.Context, limit int) ([]attendance.DayRecordResponse, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	records, err := s.records.GetRecentDayRecords(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent records: %w", err)
	}
	return attendance.NewDayRecordResponses(records), nil
}

// GetAll implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAll(ctx context.Context) ([]attendance.DayRecordResponse, error) {
	records, err := s.records.GetAllDayRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}
	return attendance.NewDayRecordResponses(records), nil
}

// GetDayRecord implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetDayRecord(ctx context.Context, id int64) (attendance.DayRecordResponse, error) {
	rec, err := s.records.GetDayRecord(ctx, id)
	if err != nil {
		return attendance.DayRecordResponse{}, fmt.Errorf("failed to get day record: %w", err)
	}
	if rec == nil {
		return attendance.DayRecordResponse{}, attendance.ErrDayRecordNotFound
	}
	return attendance.NewDayRecordResponse(*rec), nil
}

// RecentActivities implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RecentActivities(ctx context.Context, limit int) ([]attendance.ActivityResponse, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	records, err := s.records.GetRecentDayRecords(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent records: %w", err)
	}

	activities := make([]attendance.ActivityResponse, 0, len(records))
	for i := range records {
		punch, at := records[i].LastPunch()
		if at == nil {
			continue
		}
		item := attendance.ActivityResponse{
			RecordID:   records[i].ID,
			EmployeeID: records[i].EmployeeID,
			Punch:      punch,
			At:         at.Format(time.RFC3339),
		}
		if records[i].Employee != nil {
			item.EmployeeName = records[i].Employee.Name
		}
		activities = append(activities, item)
	}
	return activities, nil
}
