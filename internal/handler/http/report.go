package http

import (
	"net/http"

	"github.com/igorgomez/ponto-seguro-1/internal/domain/report"
	"github.com/igorgomez/ponto-seguro-1/internal/handler/http/response"
)

type ReportHandler interface {
	Hours(w http.ResponseWriter, r *http.Request)
	ReconcileMine(w http.ResponseWriter, r *http.Request)
	Reconcile(w http.ResponseWriter, r *http.Request)
	BankMine(w http.ResponseWriter, r *http.Request)
	Bank(w http.ResponseWriter, r *http.Request)
	Dashboard(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{reportService: reportService}
}

func (h *reportHandlerImpl) Hours(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.reportService.Hours(r.Context(), id)
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

// periodFromQuery reads ?from= and ?to=; empty values default in the service.
func periodFromQuery(r *http.Request, employeeID int64) report.PeriodRequest {
	return report.PeriodRequest{
		EmployeeID: employeeID,
		From:       r.URL.Query().Get("from"),
		To:         r.URL.Query().Get("to"),
	}
}

func (h *reportHandlerImpl) ReconcileMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}
	h.reconcile(w, r, claims.IdentityID)
}

func (h *reportHandlerImpl) Reconcile(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "employeeID")
	if !ok {
		return
	}
	h.reconcile(w, r, employeeID)
}

func (h *reportHandlerImpl) reconcile(w http.ResponseWriter, r *http.Request, employeeID int64) {
	result, err := h.reportService.Reconcile(r.Context(), periodFromQuery(r, employeeID))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *reportHandlerImpl) BankMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := currentClaims(w, r)
	if !ok {
		return
	}
	h.bank(w, r, claims.IdentityID)
}

func (h *reportHandlerImpl) Bank(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := pathID(w, r, "employeeID")
	if !ok {
		return
	}
	h.bank(w, r, employeeID)
}

func (h *reportHandlerImpl) bank(w http.ResponseWriter, r *http.Request, employeeID int64) {
	result, err := h.reportService.BankBalance(r.Context(), periodFromQuery(r, employeeID))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *reportHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.Dashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
