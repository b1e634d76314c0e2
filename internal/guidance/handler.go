package guidance

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/douggil74/busy-preacher-mvp-sub000/pkg/logging"
)

// Handler exposes the pastoral-guidance pipeline over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an HTTP handler backed by the given service.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Guidance handles POST /api/pastoral-guidance.
func (h *Handler) Guidance(w http.ResponseWriter, r *http.Request) {
	var req GuidanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	req.ClientIP = clientIP(r)
	req.UserAgent = r.UserAgent()

	resp, err := h.service.Respond(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyQuestion):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "question is required"})
		case errors.Is(err, ErrGenerationFailed):
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: "unable to generate a response right now, please try again"})
		default:
			h.logger.Error("guidance request failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func clientIP(r *http.Request) string {
	// chi's RealIP middleware rewrites RemoteAddr from the proxy headers, but
	// X-Real-Ip is kept as a fallback for deployments without it.
	if xri := r.Header.Get("X-Real-Ip"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
