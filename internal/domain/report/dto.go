package report

import (
	"time"

	"github.com/igorgomez/ponto-seguro-1/internal/pkg/validator"
)

// PeriodRequest selects an inclusive date range. Empty bounds default to the
// current month up to today.
type PeriodRequest struct {
	EmployeeID int64  `json:"employee_id"`
	From       string `json:"from"` // YYYY-MM-DD
	To         string `json:"to"`   // YYYY-MM-DD
}

func (r *PeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	from, fromOK := time.Time{}, true
	if r.From != "" {
		from, fromOK = validator.IsValidDate(r.From)
		if !fromOK {
			errs = append(errs, validator.ValidationError{
				Field:   "from",
				Message: "from must be in YYYY-MM-DD format",
			})
		}
	}
	to, toOK := time.Time{}, true
	if r.To != "" {
		to, toOK = validator.IsValidDate(r.To)
		if !toOK {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: "to must be in YYYY-MM-DD format",
			})
		}
	}
	if r.From != "" && r.To != "" && fromOK && toOK {
		errs = append(errs, spanErrors(from, to)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MaxPeriodDays bounds a report period, both ends included.
const MaxPeriodDays = 366

func spanErrors(from, to time.Time) validator.ValidationErrors {
	switch {
	case to.Before(from):
		return validator.ValidationErrors{{Field: "to", Message: ErrInvalidDateRange.Error()}}
	case int(to.Sub(from).Hours()/24)+1 > MaxPeriodDays:
		return validator.ValidationErrors{{Field: "to", Message: ErrPeriodTooLong.Error()}}
	}
	return nil
}

// CheckSpan validates a resolved period, where one bound may have come from
// the defaults.
func CheckSpan(from, to time.Time) error {
	if errs := spanErrors(from, to); len(errs) > 0 {
		return errs
	}
	return nil
}

// Resolve fills empty bounds: from defaults to the first of today's month,
// to defaults to today. Validate must have passed.
func (r *PeriodRequest) Resolve(today time.Time) (time.Time, time.Time) {
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	if r.From != "" {
		from, _ = validator.IsValidDate(r.From)
	}
	if r.To != "" {
		to, _ = validator.IsValidDate(r.To)
	}
	return from, to
}

type HoursResponse struct {
	RecordID         int64   `json:"record_id"`
	EmployeeID       int64   `json:"employee_id"`
	Date             string  `json:"date"`
	Worked           Hours   `json:"worked"`
	ScheduledMinutes *int    `json:"scheduled_minutes,omitempty"`
	DeltaMinutes     *int    `json:"delta_minutes,omitempty"`
	DeltaLabel       *string `json:"delta_label,omitempty"`
}

type DayClassificationResponse struct {
	Date           string   `json:"date"`
	Weekday        int      `json:"weekday"`
	Class          DayClass `json:"class"`
	ScheduledStart *string  `json:"scheduled_start,omitempty"`
	Entry          *string  `json:"entry,omitempty"`
	LateMinutes    int      `json:"late_minutes"`
	Worked         Hours    `json:"worked"`
}

type ReconcileResponse struct {
	EmployeeID       int64                       `json:"employee_id"`
	From             string                      `json:"from"`
	To               string                      `json:"to"`
	PunctualityRatio float64                     `json:"punctuality_ratio"`
	Punctual         int                         `json:"punctual"`
	Late             int                         `json:"late"`
	Absent           int                         `json:"absent"`
	Incomplete       int                         `json:"incomplete"`
	Unscheduled      int                         `json:"unscheduled"`
	Days             []DayClassificationResponse `json:"days"`
}

func NewReconcileResponse(employeeID int64, from, to time.Time, rec Reconciliation) ReconcileResponse {
	days := make([]DayClassificationResponse, 0, len(rec.Days))
	for _, d := range rec.Days {
		item := DayClassificationResponse{
			Date:           d.Date.Format("2006-01-02"),
			Weekday:        d.Weekday,
			Class:          d.Class,
			ScheduledStart: d.ScheduledStart,
			LateMinutes:    d.LateMinutes,
			Worked:         d.Hours,
		}
		if d.Entry != nil {
			s := d.Entry.Format(time.RFC3339)
			item.Entry = &s
		}
		days = append(days, item)
	}

	return ReconcileResponse{
		EmployeeID:       employeeID,
		From:             from.Format("2006-01-02"),
		To:               to.Format("2006-01-02"),
		PunctualityRatio: rec.PunctualityRatio,
		Punctual:         rec.Punctual,
		Late:             rec.Late,
		Absent:           rec.Absent,
		Incomplete:       rec.Incomplete,
		Unscheduled:      rec.Unscheduled,
		Days:             days,
	}
}

type BankDayResponse struct {
	Date             string `json:"date"`
	WorkedMinutes    int    `json:"worked_minutes"`
	ScheduledMinutes int    `json:"scheduled_minutes"`
	DeltaMinutes     int    `json:"delta_minutes"`
	DeltaLabel       string `json:"delta_label"`
}

type BankBalanceResponse struct {
	EmployeeID     int64             `json:"employee_id"`
	From           string            `json:"from"`
	To             string            `json:"to"`
	BalanceMinutes int               `json:"balance_minutes"`
	BalanceLabel   string            `json:"balance_label"`
	Days           []BankDayResponse `json:"days"`
}

func NewBankBalanceResponse(employeeID int64, from, to time.Time, bank Bank) BankBalanceResponse {
	days := make([]BankDayResponse, 0, len(bank.Days))
	for _, d := range bank.Days {
		days = append(days, BankDayResponse{
			Date:             d.Date.Format("2006-01-02"),
			WorkedMinutes:    d.WorkedMinutes,
			ScheduledMinutes: d.ScheduledMinutes,
			DeltaMinutes:     d.DeltaMinutes,
			DeltaLabel:       FormatMinutes(d.DeltaMinutes),
		})
	}
	return BankBalanceResponse{
		EmployeeID:     employeeID,
		From:           from.Format("2006-01-02"),
		To:             to.Format("2006-01-02"),
		BalanceMinutes: bank.BalanceMinutes,
		BalanceLabel:   FormatMinutes(bank.BalanceMinutes),
		Days:           days,
	}
}

// DashboardResponse mirrors the admin overview cards for today.
type DashboardResponse struct {
	Date            string `json:"date"`
	ActiveEmployees int    `json:"active_employees"`
	Working         int    `json:"working"`
	OnBreak         int    `json:"on_break"`
	Completed       int    `json:"completed"`
	Absent          int    `json:"absent"`
}
