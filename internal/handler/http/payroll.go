package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/attendance-payroll-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	ListMonthly(w http.ResponseWriter, r *http.Request)
	GetMonthly(w http.ResponseWriter, r *http.Request)
	SaveAdjustment(w http.ResponseWriter, r *http.Request)
	Payslip(w http.ResponseWriter, r *http.Request)
	ExportWorkbook(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
	}
}

// ListMonthly implements PayrollHandler.
func (h *payrollHandlerImpl) ListMonthly(w http.ResponseWriter, r *http.Request) {
	period := periodFromQuery(r)
	if err := period.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.ListMonthly(r.Context(), period.Period())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetMonthly implements PayrollHandler.
func (h *payrollHandlerImpl) GetMonthly(w http.ResponseWriter, r *http.Request) {
	period := periodFromQuery(r)
	if err := period.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.GetMonthly(r.Context(), chi.URLParam(r, "employeeId"), period.Period())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SaveAdjustment implements PayrollHandler.
func (h *payrollHandlerImpl) SaveAdjustment(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var req payroll.AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("SaveAdjustment decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	period := periodFromQuery(r)
	req.EmployeeID = chi.URLParam(r, "employeeId")
	req.Month = period.Month
	req.Year = period.Year

	result, err := h.payrollService.SaveAdjustment(r.Context(), sess, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary adjustment saved", result)
}

// Payslip implements PayrollHandler.
func (h *payrollHandlerImpl) Payslip(w http.ResponseWriter, r *http.Request) {
	period := periodFromQuery(r)
	if err := period.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	employeeID := chi.URLParam(r, "employeeId")
	data, err := h.payrollService.Payslip(r.Context(), employeeID, period.Period())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeFile(w, "application/pdf", fmt.Sprintf("payslip-%s-%s.pdf", employeeID, period.Period()), data)
}

// ExportWorkbook implements PayrollHandler.
func (h *payrollHandlerImpl) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	period := periodFromQuery(r)
	if err := period.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	data, err := h.payrollService.ExportWorkbook(r.Context(), period.Period())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	writeFile(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		fmt.Sprintf("payroll-%s.xlsx", period.Period()), data)
}
