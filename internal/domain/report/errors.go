package report

import "errors"

var (
	ErrInvalidDateRange = errors.New("period end is before its start")
	ErrPeriodTooLong    = errors.New("period must not exceed 366 days")
)
