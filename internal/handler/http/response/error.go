package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/attendance"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/identity"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/report"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/schedule"
	"github.com/igorgomez/ponto-seguro-1/internal/domain/storage"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var seqErr *attendance.SequenceError
	if errors.As(err, &seqErr) {
		SequenceConflict(w, seqErr.Error(), seqErr.Reason)
		return
	}

	switch {
	// Identity domain errors
	case errors.Is(err, identity.ErrInvalidCredential):
		Unauthorized(w, err.Error())
	case errors.Is(err, identity.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, identity.ErrIdentityInactive):
		Forbidden(w, "Identity is inactive")
	case errors.Is(err, identity.ErrAdminRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, identity.ErrWrongPassword):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, identity.ErrIdentityNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, identity.ErrNotAnEmployee):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, identity.ErrCPFExists):
		Conflict(w, "CPF already registered")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrDayRecordNotFound):
		NotFound(w, "Day record not found")
	case errors.Is(err, attendance.ErrDayRecordExists):
		Conflict(w, "Day record already exists")
	case errors.Is(err, attendance.ErrInvalidPunchType):
		BadRequest(w, err.Error(), nil)

	// Schedule and report errors
	case errors.Is(err, schedule.ErrEmployeeIDRequired),
		errors.Is(err, report.ErrInvalidDateRange),
		errors.Is(err, report.ErrPeriodTooLong):
		BadRequest(w, err.Error(), nil)

	default:
		var persistErr *storage.PersistenceError
		if errors.As(err, &persistErr) {
			slog.Error("Storage failure", "op", persistErr.Op, "error", err)
			ServiceUnavailable(w, "Storage is unavailable")
			return
		}
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
