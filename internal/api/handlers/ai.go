package handlers

import (
	"net/http"
	"strings"

	"phonetracer/internal/domain/models"
	"phonetracer/internal/domain/services"
	"phonetracer/internal/domain/services/ai"
	"phonetracer/pkg/logger"
)

// AIHandler handles risk analysis, the safety chat and generator status
type AIHandler struct {
	responder
	analysis  *services.AnalysisService
	assistant *ai.Assistant
	llm       ai.StatusReporter
}

// NewAIHandler creates a new AI handler. llm may be nil.
func NewAIHandler(analysis *services.AnalysisService, assistant *ai.Assistant, llm ai.StatusReporter, log *logger.Logger) *AIHandler {
	return &AIHandler{
		responder: responder{logger: log.WithComponent("ai-handler")},
		analysis:  analysis,
		assistant: assistant,
		llm:       llm,
	}
}

// AnalyzeRequest is the body of POST /api/ai/analyze
type AnalyzeRequest struct {
	TraceData *models.TraceData `json:"trace_data"`
}

// ChatRequest is the body of POST /api/ai/chat
type ChatRequest struct {
	Message string            `json:"message"`
	History []models.ChatTurn `json:"history"`
}

// Analyze handles POST /api/ai/analyze
func (h *AIHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.TraceData == nil {
		h.respondError(w, http.StatusBadRequest, "trace_data is required", nil)
		return
	}

	result, err := h.analysis.Analyze(r.Context(), *req.TraceData)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to analyze number", err)
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// Chat handles POST /api/ai/chat
func (h *AIHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.respondError(w, http.StatusBadRequest, "message is required", nil)
		return
	}

	h.respondJSON(w, http.StatusOK, h.assistant.Chat(r.Context(), req.Message, req.History))
}

// Status handles GET /api/ai/status
func (h *AIHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h.llm == nil {
		h.respondJSON(w, http.StatusOK, models.LLMStatus{State: models.LLMStateDisabled})
		return
	}
	h.respondJSON(w, http.StatusOK, h.llm.Status())
}
