package mongodb

import (
	"encoding/json"
	"time"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/attendance"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/schedule"
)

const dateLayout = "2006-01-02"

type identityDocument struct {
	ID                int64      `bson:"_id"`
	CPF               string     `bson:"cpf"`
	Name              string     `bson:"name"`
	PasswordHash      string     `bson:"password_hash"`
	Role              string     `bson:"role"`
	Active            bool       `bson:"active"`
	Email             *string    `bson:"email"`
	Phone             *string    `bson:"phone"`
	BirthDate         *time.Time `bson:"birth_date"`
	StartDate         *time.Time `bson:"start_date"`
	WeeklyHours       *int       `bson:"weekly_hours"`
	ContractType      *string    `bson:"contract_type"`
	MustResetPassword bool       `bson:"must_reset_password"`
	CreatedAt         time.Time  `bson:"created_at"`
}

func newIdentityDocument(i identity.Identity) identityDocument {
	return identityDocument{
		ID:                i.ID,
		CPF:               i.CPF,
		Name:              i.Name,
		PasswordHash:      i.PasswordHash,
		Role:              string(i.Role),
		Active:            i.Active,
		Email:             i.Email,
		Phone:             i.Phone,
		BirthDate:         i.BirthDate,
		StartDate:         i.StartDate,
		WeeklyHours:       i.WeeklyHours,
		ContractType:      i.ContractType,
		MustResetPassword: i.MustResetPassword,
		CreatedAt:         i.CreatedAt,
	}
}

func (d identityDocument) toEntity() identity.Identity {
	return identity.Identity{
		ID:                d.ID,
		CPF:               d.CPF,
		Name:              d.Name,
		PasswordHash:      d.PasswordHash,
		Role:              identity.Role(d.Role),
		Active:            d.Active,
		Email:             d.Email,
		Phone:             d.Phone,
		BirthDate:         d.BirthDate,
		StartDate:         d.StartDate,
		WeeklyHours:       d.WeeklyHours,
		ContractType:      d.ContractType,
		MustResetPassword: d.MustResetPassword,
		CreatedAt:         d.CreatedAt,
	}
}

type scheduleDocument struct {
	ID         int64     `bson:"_id"`
	EmployeeID int64     `bson:"employee_id"`
	Weekday    int       `bson:"weekday"`
	StartTime  string    `bson:"start_time"`
	EndTime    string    `bson:"end_time"`
	BreakStart *string   `bson:"break_start"`
	BreakEnd   *string   `bson:"break_end"`
	CreatedAt  time.Time `bson:"created_at"`
}

func (d scheduleDocument) toEntity() schedule.WorkSchedule {
	return schedule.WorkSchedule{
		ID:         d.ID,
		EmployeeID: d.EmployeeID,
		Weekday:    d.Weekday,
		StartTime:  d.StartTime,
		EndTime:    d.EndTime,
		BreakStart: d.BreakStart,
		BreakEnd:   d.BreakEnd,
		CreatedAt:  d.CreatedAt,
	}
}

// dayRecordDocument stores the calendar date as a YYYY-MM-DD string and the
// location payloads as raw JSON text.
type dayRecordDocument struct {
	ID             int64      `bson:"_id"`
	EmployeeID     int64      `bson:"employee_id"`
	Date           string     `bson:"date"`
	Entry          *time.Time `bson:"entry"`
	BreakStart     *time.Time `bson:"break_start"`
	BreakEnd       *time.Time `bson:"break_end"`
	Exit           *time.Time `bson:"exit"`
	Note           *string    `bson:"note"`
	EntryLocation  *string    `bson:"entry_location"`
	BreakLocation  *string    `bson:"break_location"`
	ReturnLocation *string    `bson:"return_location"`
	ExitLocation   *string    `bson:"exit_location"`
	EditReason     *string    `bson:"edit_reason"`
	EditedBy       *int64     `bson:"edited_by"`
	Version        int64      `bson:"version"`
	CreatedAt      time.Time  `bson:"created_at"`
	UpdatedAt      time.Time  `bson:"updated_at"`
}

func newDayRecordDocument(r attendance.DayRecord) dayRecordDocument {
	return dayRecordDocument{
		ID:             r.ID,
		EmployeeID:     r.EmployeeID,
		Date:           r.Date.Format(dateLayout),
		Entry:          r.Entry,
		BreakStart:     r.BreakStart,
		BreakEnd:       r.BreakEnd,
		Exit:           r.Exit,
		Note:           r.Note,
		EntryLocation:  jsonText(r.EntryLocation),
		BreakLocation:  jsonText(r.BreakLocation),
		ReturnLocation: jsonText(r.ReturnLocation),
		ExitLocation:   jsonText(r.ExitLocation),
		EditReason:     r.EditReason,
		EditedBy:       r.EditedBy,
		Version:        r.Version,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func (d dayRecordDocument) toEntity() attendance.DayRecord {
	date, _ := time.Parse(dateLayout, d.Date)
	return attendance.DayRecord{
		ID:             d.ID,
		EmployeeID:     d.EmployeeID,
		Date:           date,
		Entry:          d.Entry,
		BreakStart:     d.BreakStart,
		BreakEnd:       d.BreakEnd,
		Exit:           d.Exit,
		Note:           d.Note,
		EntryLocation:  jsonRaw(d.EntryLocation),
		BreakLocation:  jsonRaw(d.BreakLocation),
		ReturnLocation: jsonRaw(d.ReturnLocation),
		ExitLocation:   jsonRaw(d.ExitLocation),
		EditReason:     d.EditReason,
		EditedBy:       d.EditedBy,
		Version:        d.Version,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func jsonText(raw json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	s := string(raw)
	return &s
}

func jsonRaw(s *string) json.RawMessage {
	if s == nil {
		return nil
	}
	return json.RawMessage(*s)
}

func dateKey(t time.Time) string {
	return attendance.DateOf(t).Format(dateLayout)
}

// now is truncated to the millisecond precision BSON dates keep.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
