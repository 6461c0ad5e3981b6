package attendance

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/validator"
)

type PunchRequest struct {
	EmployeeID int64           `json:"-"`
	Type       PunchType       `json:"type"`
	Location   json.RawMessage `json:"location,omitempty"`
}

func (r *PunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if !validator.IsInSlice(string(r.Type), PunchTypeValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be one of: " + strings.Join(PunchTypeValues, ", "),
		})
	}
	if len(r.Location) > 0 && !json.Valid(r.Location) {
		errs = append(errs, validator.ValidationError{
			Field:   "location",
			Message: "location must be valid JSON",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EditDayRecordRequest carries HH:MM wall-clock values anchored on the record date.
// Empty or nil values are left untouched.
type EditDayRecordRequest struct {
	ID       int64   `json:"-"`
	EditorID int64   `json:"-"`
	Entry    *string `json:"entry,omitempty"`
	Break    *string `json:"break,omitempty"`
	Return   *string `json:"return,omitempty"`
	Exit     *string `json:"exit,omitempty"`
	Reason   string  `json:"reason"`
}

func (r *EditDayRecordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	for _, f := range []struct {
		name  string
		value *string
	}{
		{"entry", r.Entry},
		{"break", r.Break},
		{"return", r.Return},
		{"exit", r.Exit},
	} {
		if f.value != nil && *f.value != "" && !validator.IsValidClock(*f.value) {
			errs = append(errs, validator.ValidationError{
				Field:   f.name,
				Message: f.name + " must be in HH:MM format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToPatch converts the clock values into instants on date in loc.
// Validate must have passed.
func (r *EditDayRecordRequest) ToPatch(date time.Time, loc *time.Location) Patch {
	anchor := func(clock *string) *time.Time {
		if clock == nil || *clock == "" {
			return nil
		}
		minutes, _ := validator.ParseClock(*clock)
		t := time.Date(date.Year(), date.Month(), date.Day(), minutes/60, minutes%60, 0, 0, loc)
		return &t
	}

	reason := strings.TrimSpace(r.Reason)
	editor := r.EditorID
	return Patch{
		Entry:      anchor(r.Entry),
		BreakStart: anchor(r.Break),
		BreakEnd:   anchor(r.Return),
		Exit:       anchor(r.Exit),
		EditReason: &reason,
		EditedBy:   &editor,
	}
}

type DayRecordResponse struct {
	ID             int64           `json:"id"`
	EmployeeID     int64           `json:"employee_id"`
	Date           string          `json:"date"`
	State          State           `json:"state"`
	Entry          *string         `json:"entry"`
	BreakStart     *string         `json:"break_start"`
	BreakEnd       *string         `json:"break_end"`
	Exit           *string         `json:"exit"`
	Note           *string         `json:"note,omitempty"`
	EntryLocation  json.RawMessage `json:"entry_location,omitempty"`
	BreakLocation  json.RawMessage `json:"break_location,omitempty"`
	ReturnLocation json.RawMessage `json:"return_location,omitempty"`
	ExitLocation   json.RawMessage `json:"exit_location,omitempty"`
	EditReason     *string         `json:"edit_reason,omitempty"`
	EditedBy       *int64          `json:"edited_by,omitempty"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
	Employee       *identity.View  `json:"employee,omitempty"`
}

func NewDayRecordResponse(r DayRecord) DayRecordResponse {
	return DayRecordResponse{
		ID:             r.ID,
		EmployeeID:     r.EmployeeID,
		Date:           r.Date.Format("2006-01-02"),
		State:          r.State(),
		Entry:          timePtrToString(r.Entry),
		BreakStart:     timePtrToString(r.BreakStart),
		BreakEnd:       timePtrToString(r.BreakEnd),
		Exit:           timePtrToString(r.Exit),
		Note:           r.Note,
		EntryLocation:  r.EntryLocation,
		BreakLocation:  r.BreakLocation,
		ReturnLocation: r.ReturnLocation,
		ExitLocation:   r.ExitLocation,
		EditReason:     r.EditReason,
		EditedBy:       r.EditedBy,
		CreatedAt:      r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      r.UpdatedAt.Format(time.RFC3339),
		Employee:       r.Employee,
	}
}

func NewDayRecordResponses(records []DayRecord) []DayRecordResponse {
	out := make([]DayRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, NewDayRecordResponse(r))
	}
	return out
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

// ActivityResponse is one line of the admin activity feed.
type ActivityResponse struct {
	RecordID     int64     `json:"record_id"`
	EmployeeID   int64     `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	Punch        PunchType `json:"punch"`
	At           string    `json:"at"`
}
