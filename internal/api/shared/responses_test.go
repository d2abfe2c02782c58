package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithJSON(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusOK, map[string]interface{}{
		"message": "success",
		"data":    123,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "success", response["message"])
	assert.Equal(t, float64(123), response["data"])
}

func TestRespondWithJSONNilBody(t *testing.T) {
	req, _ := http.NewRequest(http.MethodDelete, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithJSON(w, req, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String(), "Expected empty body for nil data")
}

func TestRespondWithError(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	req = req.WithContext(SetTraceID(req.Context()))
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusNotFound, "Task not found")

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "Task not found", response.Error)
	assert.NotEmpty(t, response.TraceID, "Expected trace ID to be included")
	assert.Equal(t, GetTraceID(req.Context()), response.TraceID)
}

func TestRespondWithErrorWithoutTraceID(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusBadRequest, "Invalid request")

	var response ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "Invalid request", response.Error)
	assert.Empty(t, response.TraceID)
}

func TestRespondWithErrorAndLog(t *testing.T) {
	req, _ := http.NewRequest(http.MethodPost, "/test", nil)
	req = req.WithContext(SetTraceID(req.Context()))
	w := httptest.NewRecorder()

	internalErr := errors.New("connection refused: postgres://user:secret@db:5432/app")

	RespondWithErrorAndLog(w, req, http.StatusInternalServerError, "An unexpected error occurred", internalErr)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var response ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	// Only the safe message reaches the client
	assert.Equal(t, "An unexpected error occurred", response.Error)
	assert.NotContains(t, w.Body.String(), "secret")
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestRespondWithErrorAndLogNilError(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	RespondWithErrorAndLog(w, req, http.StatusUnauthorized, "Unauthorized", nil, WithElevatedLogLevel())

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "Unauthorized", response.Error)
}

func TestGetTraceIDRoundTrip(t *testing.T) {
	ctx := SetTraceID(context.Background())
	assert.NotEmpty(t, GetTraceID(ctx))
}
