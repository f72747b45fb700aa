package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"phonetracer/internal/domain/services"
	"phonetracer/internal/domain/services/ai"
	"phonetracer/pkg/logger"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// Handlers holds all API handlers
type Handlers struct {
	Health *HealthHandler
	Phone  *PhoneHandler
	AI     *AIHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Trace     *services.TraceService
	Reports   *services.ReportService
	Analysis  *services.AnalysisService
	Assistant *ai.Assistant
	LLM       ai.StatusReporter
	Checks    map[string]Pinger
	Version   string
	Logger    *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health: NewHealthHandler(deps.Checks, deps.Version, deps.Logger),
		Phone:  NewPhoneHandler(deps.Trace, deps.Reports, deps.Logger),
		AI:     NewAIHandler(deps.Analysis, deps.Assistant, deps.LLM, deps.Logger),
	}
}

// responder carries the JSON response helpers shared by all handlers
type responder struct {
	logger *logger.Logger
}

// respondJSON sends a JSON response
func (h responder) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// respondError sends an error response. Server errors are logged.
func (h responder) respondError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]interface{}{"error": message}
	if err != nil {
		if status >= http.StatusInternalServerError {
			h.logger.Error().Err(err).Msg(message)
		}
		body["details"] = err.Error()
	}
	h.respondJSON(w, status, body)
}

// decodeJSON reads a bounded JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	return nil
}
