package attendance

import (
	"encoding/json"
	"time"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
)

type PunchType string

const (
	PunchEntry  PunchType = "entry"
	PunchBreak  PunchType = "break"
	PunchReturn PunchType = "return"
	PunchExit   PunchType = "exit"
)

var PunchTypeValues = []string{
	string(PunchEntry),
	string(PunchBreak),
	string(PunchReturn),
	string(PunchExit),
}

type State string

const (
	StateNotStarted State = "not_started"
	StateWorking    State = "working"
	StateOnBreak    State = "on_break"
	StateReturned   State = "returned"
	StateCompleted  State = "completed"
)

// DayRecord is the attendance ledger row of one employee on one calendar day.
// Date is always midnight UTC of that day.
type DayRecord struct {
	ID         int64
	EmployeeID int64
	Date       time.Time
	Entry      *time.Time
	BreakStart *time.Time
	BreakEnd   *time.Time
	Exit       *time.Time
	Note       *string

	// Opaque client payloads, one per punch.
	EntryLocation  json.RawMessage
	BreakLocation  json.RawMessage
	ReturnLocation json.RawMessage
	ExitLocation   json.RawMessage

	EditReason *string
	EditedBy   *int64
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// Read-side join, never stored
	Employee *identity.View
}

// State derives the position of the record in the punch sequence.
func (r *DayRecord) State() State {
	switch {
	case r == nil:
		return StateNotStarted
	case r.Exit != nil:
		return StateCompleted
	case r.Entry == nil:
		return StateNotStarted
	case r.BreakStart != nil && r.BreakEnd == nil:
		return StateOnBreak
	case r.BreakEnd != nil:
		return StateReturned
	default:
		return StateWorking
	}
}

// LastPunch returns the most recent punch present on the record, ordered by
// the punch sequence rather than by timestamp.
func (r *DayRecord) LastPunch() (PunchType, *time.Time) {
	switch {
	case r.Exit != nil:
		return PunchExit, r.Exit
	case r.BreakEnd != nil:
		return PunchReturn, r.BreakEnd
	case r.BreakStart != nil:
		return PunchBreak, r.BreakStart
	case r.Entry != nil:
		return PunchEntry, r.Entry
	}
	return "", nil
}

// DateOf returns the calendar date of t, as seen in t's location, at midnight UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Patch carries a partial day record update. Nil fields are left untouched.
type Patch struct {
	Entry          *time.Time
	BreakStart     *time.Time
	BreakEnd       *time.Time
	Exit           *time.Time
	Note           *string
	EntryLocation  json.RawMessage
	BreakLocation  json.RawMessage
	ReturnLocation json.RawMessage
	ExitLocation   json.RawMessage
	EditReason     *string
	EditedBy       *int64
}

func (p Patch) Apply(r *DayRecord) {
	if p.Entry != nil {
		r.Entry = p.Entry
	}
	if p.BreakStart != nil {
		r.BreakStart = p.BreakStart
	}
	if p.BreakEnd != nil {
		r.BreakEnd = p.BreakEnd
	}
	if p.Exit != nil {
		r.Exit = p.Exit
	}
	if p.Note != nil {
		r.Note = p.Note
	}
	if p.EntryLocation != nil {
		r.EntryLocation = p.EntryLocation
	}
	if p.BreakLocation != nil {
		r.BreakLocation = p.BreakLocation
	}
	if p.ReturnLocation != nil {
		r.ReturnLocation = p.ReturnLocation
	}
	if p.ExitLocation != nil {
		r.ExitLocation = p.ExitLocation
	}
	if p.EditReason != nil {
		r.EditReason = p.EditReason
	}
	if p.EditedBy != nil {
		r.EditedBy = p.EditedBy
	}
}
