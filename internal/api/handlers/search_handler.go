package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/velora/vehicle-discovery/internal/domain/entities"
	apperrors "github.com/velora/vehicle-discovery/pkg/errors"
)

// SearchService defines the search operations used by the handler.
type SearchService interface {
	Search(ctx context.Context, sessionID, query string, maxResults int) (*entities.SearchResponse, error)
	GetHistory(ctx context.Context, sessionID string) ([]entities.ConversationTurn, error)
	ClearHistory(ctx context.Context, sessionID string) error
}

// SearchHandler handles conversational search HTTP requests
type SearchHandler struct {
	service SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(service SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

type searchRequest struct {
	Query      string `json:"query"`
	SessionID  string `json:"session_id"`
	MaxResults int    `json:"max_results"`
}

// Search handles POST /api/search
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var payload searchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	response, err := h.service.Search(r.Context(), payload.SessionID, payload.Query, payload.MaxResults)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, response)
}

// GetHistory handles GET /api/sessions/{id}/history
func (h *SearchHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	turns, err := h.service.GetHistory(r.Context(), sessionID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"turns":      turns,
		"count":      len(turns),
	})
}

// ClearHistory handles DELETE /api/sessions/{id}/history
func (h *SearchHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	if err := h.service.ClearHistory(r.Context(), sessionID); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func respondWithServiceError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ErrorTypeValidation:
			respondWithError(w, http.StatusBadRequest, appErr.Message)
		case apperrors.ErrorTypeGuardrail:
			respondWithError(w, http.StatusUnprocessableEntity, appErr.Message)
		case apperrors.ErrorTypeSessionExpired:
			respondWithError(w, http.StatusNotFound, appErr.Message)
		case apperrors.ErrorTypeBackendTimeout:
			respondWithError(w, http.StatusGatewayTimeout, appErr.Message)
		case apperrors.ErrorTypeBackendUnavailable:
			respondWithError(w, http.StatusServiceUnavailable, appErr.Message)
		default:
			respondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}
	respondWithError(w, http.StatusInternalServerError, "internal server error")
}

// Helper functions
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"error": message,
	})
}
