package handlers

import (
	"errors"
	"net/http"
	"strings"

	"phonetracer/internal/domain/services"
	"phonetracer/pkg/logger"
)

// PhoneHandler handles number lookups, community reports and history
type PhoneHandler struct {
	responder
	trace   *services.TraceService
	reports *services.ReportService
}

// NewPhoneHandler creates a new phone handler
func NewPhoneHandler(trace *services.TraceService, reports *services.ReportService, log *logger.Logger) *PhoneHandler {
	return &PhoneHandler{
		responder: responder{logger: log.WithComponent("phone-handler")},
		trace:     trace,
		reports:   reports,
	}
}

// ReportRequest is the body of POST /api/report
type ReportRequest struct {
	Number      string `json:"number"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ReportResponse is the reply to a submitted report
type ReportResponse struct {
	Message               string `json:"message"`
	TotalReportsForNumber int    `json:"total_reports_for_number"`
}

// Trace handles GET /api/trace?number=
func (h *PhoneHandler) Trace(w http.ResponseWriter, r *http.Request) {
	number := strings.TrimSpace(r.URL.Query().Get("number"))
	if number == "" {
		h.respondError(w, http.StatusBadRequest, "number query parameter is required", nil)
		return
	}

	trace, err := h.trace.Trace(r.Context(), number)
	if err != nil {
		if errors.Is(err, services.ErrInvalidNumber) {
			h.respondError(w, http.StatusBadRequest, "Invalid phone number format. Include country code, e.g. +14158586273", nil)
			return
		}
		h.respondError(w, http.StatusInternalServerError, "failed to trace number", err)
		return
	}

	h.respondJSON(w, http.StatusOK, trace)
}

// Report handles POST /api/report
func (h *PhoneHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	total, err := h.reports.Submit(r.Context(), req.Number, req.Type, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidNumber):
			h.respondError(w, http.StatusBadRequest, "Invalid phone number format.", nil)
		case errors.Is(err, services.ErrEmptyReportType):
			h.respondError(w, http.StatusBadRequest, "report type is required", nil)
		default:
			h.respondError(w, http.StatusInternalServerError, "failed to submit report", err)
		}
		return
	}

	h.respondJSON(w, http.StatusOK, ReportResponse{
		Message:               "Report submitted successfully",
		TotalReportsForNumber: total,
	})
}

// Recent handles GET /api/recent
func (h *PhoneHandler) Recent(w http.ResponseWriter, r *http.Request) {
	entries, err := h.trace.Recent(r.Context())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to load recent lookups", err)
		return
	}
	h.respondJSON(w, http.StatusOK, entries)
}
