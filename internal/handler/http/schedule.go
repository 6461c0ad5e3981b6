package http

import (
	"net/http"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/schedule"
	"github.com/igorgomez/ponto-seguro-1/internal/handler/http/response"
)

type ScheduleHandler interface {
	GetMine(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Replace(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService schedule.ScheduleService
}

func NewScheduleHandler(scheduleService schedule.ScheduleService) ScheduleHandler {
	return &scheduleHandlerImpl{
		scheduleService: scheduleService,
	}
}

func (h *scheduleHandlerImpl) GetMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}
	h.list(w, r, claims.IdentityID)
}

func (h *scheduleHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "employeeID")
	if !ok {
		return
	}
	h.list(w, r, employeeID)
}

func (h *scheduleHandlerImpl) list(w http.ResponseWriter, r *http.Request, employeeID int64) {
	result, err := h.scheduleService.List(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *scheduleHandlerImpl) Replace(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "employeeID")
	if !ok {
		return
	}

	var req schedule.ReplaceScheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.EmployeeID = employeeID

	result, err := h.scheduleService.Replace(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Work schedule updated successfully", result)
}
