package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velora/vehicle-discovery/internal/api/handlers"
	"github.com/velora/vehicle-discovery/internal/domain/entities"
	apperrors "github.com/velora/vehicle-discovery/pkg/errors"
)

type stubSearchService struct {
	searchResp  *entities.SearchResponse
	searchErr   error
	lastSession string
	lastQuery   string
	lastMax     int
	turns       []entities.ConversationTurn
	historyErr  error
	cleared     []string
}

func (s *stubSearchService) Search(_ context.Context, sessionID, query string, maxResults int) (*entities.SearchResponse, error) {
	s.lastSession, s.lastQuery, s.lastMax = sessionID, query, maxResults
	return s.searchResp, s.searchErr
}

func (s *stubSearchService) GetHistory(_ context.Context, sessionID string) ([]entities.ConversationTurn, error) {
	return s.turns, s.historyErr
}

func (s *stubSearchService) ClearHistory(_ context.Context, sessionID string) error {
	s.cleared = append(s.cleared, sessionID)
	return nil
}

func newSearchRequest(t *testing.T, body interface{}) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	return httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewReader(raw))
}

func TestSearchHandler_Search(t *testing.T) {
	stub := &stubSearchService{searchResp: &entities.SearchResponse{
		Results:      []entities.VehicleResult{{VehicleID: "veh-1", Score: 0.016}},
		TotalCount:   1,
		StrategyUsed: entities.StrategyHybrid,
	}}
	handler := handlers.NewSearchHandler(stub)

	req := newSearchRequest(t, map[string]interface{}{
		"query":       "reliable BMW under 20000",
		"session_id":  "s1",
		"max_results": 5,
	})
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1", stub.lastSession)
	assert.Equal(t, "reliable BMW under 20000", stub.lastQuery)
	assert.Equal(t, 5, stub.lastMax)

	var response entities.SearchResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, entities.StrategyHybrid, response.StrategyUsed)
	require.Len(t, response.Results, 1)
	assert.Equal(t, "veh-1", response.Results[0].VehicleID)
}

func TestSearchHandler_SearchInvalidPayload(t *testing.T) {
	handler := handlers.NewSearchHandler(&stubSearchService{})

	req := httptest.NewRequest(http.MethodPost, "/api/search", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	handler.Search(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchHandler_SearchErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperrors.NewValidationError("query is required"), http.StatusBadRequest},
		{"guardrail", apperrors.NewGuardrailError("query too long"), http.StatusUnprocessableEntity},
		{"timeout", apperrors.NewBackendTimeoutError("exact", nil), http.StatusGatewayTimeout},
		{"unavailable", apperrors.NewBackendUnavailableError("semantic", nil), http.StatusServiceUnavailable},
		{"internal", apperrors.NewInternalError("boom", nil), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := handlers.NewSearchHandler(&stubSearchService{searchErr: tc.err})
			req := newSearchRequest(t, map[string]interface{}{"query": "BMW", "session_id": "s1"})
			rec := httptest.NewRecorder()
			handler.Search(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestSearchHandler_GetHistory(t *testing.T) {
	stub := &stubSearchService{turns: []entities.ConversationTurn{
		{TurnIndex: 0, Query: "BMW 3 Series"},
	}}
	handler := handlers.NewSearchHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/s1/history", nil)
	req.SetPathValue("id", "s1")
	rec := httptest.NewRecorder()
	handler.GetHistory(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		SessionID string                      `json:"session_id"`
		Turns     []entities.ConversationTurn `json:"turns"`
		Count     int                         `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "s1", body.SessionID)
	assert.Equal(t, 1, body.Count)
}

func TestSearchHandler_GetHistoryExpired(t *testing.T) {
	stub := &stubSearchService{historyErr: apperrors.NewSessionExpiredError("s1")}
	handler := handlers.NewSearchHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/s1/history", nil)
	req.SetPathValue("id", "s1")
	rec := httptest.NewRecorder()
	handler.GetHistory(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchHandler_ClearHistory(t *testing.T) {
	stub := &stubSearchService{}
	handler := handlers.NewSearchHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/s1/history", nil)
	req.SetPathValue("id", "s1")
	rec := httptest.NewRecorder()
	handler.ClearHistory(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"s1"}, stub.cleared)
}

func TestSearchHandler_MissingSessionID(t *testing.T) {
	handler := handlers.NewSearchHandler(&stubSearchService{})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions//history", nil)
	rec := httptest.NewRecorder()
	handler.GetHistory(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
