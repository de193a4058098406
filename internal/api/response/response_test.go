package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/moonsightlabs/moonsight/internal/api/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	response.OK(rec, map[string]string{"status": "success"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "success", body["status"])
}

func TestJSON_CustomStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	response.JSON(rec, http.StatusAccepted, map[string]int{"n": 3})

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Detail(rec, http.StatusBadRequest, "Invalid image format")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Invalid image format", body["detail"])
}
