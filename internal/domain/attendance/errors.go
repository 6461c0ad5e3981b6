package attendance

import (
	"errors"
	"fmt"
)

var (
	ErrDayRecordNotFound = errors.New("day record not found")
	ErrDayRecordExists   = errors.New("day record already exists for this employee and date")
	ErrInvalidPunchType  = errors.New("invalid punch type")
)

// Sequence failure reasons
const (
	ReasonNoEntry        = "no entry"
	ReasonNoBreak        = "no break"
	ReasonBreakNotClosed = "break not closed"
)

// SequenceError reports a punch that the current day record does not allow.
type SequenceError struct {
	Punch  PunchType
	Reason string
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("cannot register %s: %s", e.Punch, e.Reason)
}
