package attendance

import (
	"encoding/json"
	"time"
)

// ApplyPunch validates punch against the persisted state of rec and, when
// allowed, stamps it with at. rec is left untouched on failure.
//
// A repeated entry overwrites the previous entry timestamp.
func ApplyPunch(rec *DayRecord, punch PunchType, at time.Time, location json.RawMessage) error {
	switch punch {
	case PunchEntry:
		rec.Entry = &at
		if location != nil {
			rec.EntryLocation = location
		}
	case PunchBreak:
		if rec.Entry == nil {
			return &SequenceError{Punch: punch, Reason: ReasonNoEntry}
		}
		rec.BreakStart = &at
		if location != nil {
			rec.BreakLocation = location
		}
	case PunchReturn:
		if rec.BreakStart == nil {
			return &SequenceError{Punch: punch, Reason: ReasonNoBreak}
		}
		rec.BreakEnd = &at
		if location != nil {
			rec.ReturnLocation = location
		}
	case PunchExit:
		if rec.Entry == nil {
			return &SequenceError{Punch: punch, Reason: ReasonNoEntry}
		}
		if rec.BreakStart != nil && rec.BreakEnd == nil {
			return &SequenceError{Punch: punch, Reason: ReasonBreakNotClosed}
		}
		rec.Exit = &at
		if location != nil {
			rec.ExitLocation = location
		}
	default:
		return ErrInvalidPunchType
	}
	return nil
}
