package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/attendance"
	"github.com/igorgomez/ponto-seguro-1/internal/handler/http/response"
	"github.com/igorgomez/ponto-seguro-1/internal/pkg/validator"
)

type AttendanceHandler interface {
	Punch(w http.ResponseWriter, r *http.Request)
	TodayMine(w http.ResponseWriter, r *http.Request)
	HistoryMine(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	Recent(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Edit(w http.ResponseWriter, r *http.Request)
	RecentActivities(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

func (h *attendanceHandlerImpl) Punch(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	var req attendance.PunchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.EmployeeID = claims.IdentityID

	result, err := h.attendanceService.RegisterPunch(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punch registered successfully", result)
}

func (h *attendanceHandlerImpl) TodayMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetToday(r.Context(), claims.IdentityID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// null data means no punch yet today
	response.Success(w, result)
}

func (h *attendanceHandlerImpl) HistoryMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}

	result, err := h.attendanceService.GetHistory(r.Context(), claims.IdentityID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// List serves ?date=YYYY-MM-DD, ?employee_id=N or, without filters, every record.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		result []attendance.DayRecordResponse
		err    error
	)
	switch {
	case query.Get("date") != "":
		date, valid := validator.IsValidDate(query.Get("date"))
		if !valid {
			response.ValidationError(w, map[string]string{"date": "date must be in YYYY-MM-DD format"})
			return
		}
		result, err = h.attendanceService.GetAllForDate(r.Context(), date)
	case query.Get("employee_id") != "":
		employeeID, parseErr := strconv.ParseInt(query.Get("employee_id"), 10, 64)
		if parseErr != nil || employeeID <= 0 {
			response.ValidationError(w, map[string]string{"employee_id": "employee_id must be a positive integer"})
			return
		}
		result, err = h.attendanceService.GetHistory(r.Context(), employeeID)
	default:
		result, err = h.attendanceService.GetAll(r.Context())
	}
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	// zero date means today in the configured timezone
	result, err := h.attendanceService.GetAllForDate(r.Context(), time.Time{})
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *attendanceHandlerImpl) Recent(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetRecent(r.Context(), limitParam(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.attendanceService.GetDayRecord(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if !canAccess(claims, result.EmployeeID) {
		response.Forbidden(w, "Cannot access another employee's record")
		return
	}
	response.Success(w, result)
}

func (h *attendanceHandlerImpl) Edit(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req attendance.EditDayRecordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = id
	req.EditorID = claims.IdentityID

	result, err := h.attendanceService.EditDayRecord(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Day record updated successfully", result)
}

func (h *attendanceHandlerImpl) RecentActivities(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.RecentActivities(r.Context(), limitParam(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// limitParam returns ?limit=N, or 0 to let the service choose.
func limitParam(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
