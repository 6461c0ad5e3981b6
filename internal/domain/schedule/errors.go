package schedule

import "errors"

// ErrEmployeeIDRequired is returned when a schedule call names no employee.
var ErrEmployeeIDRequired = errors.New("schedule employee id is required")
