package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpbyrne/ostaa/pkg/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Success(rec, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, float64(http.StatusOK), body["status"])
	assert.Equal(t, "world", body["data"].(map[string]interface{})["hello"])
}

func TestValidationErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	response.ValidationError(rec, map[string]string{"username": "The username field is required."})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "Validation failed", body["message"])
	errs := body["errors"].(map[string]interface{})
	assert.Contains(t, errs, "username")
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name    string
		write   func(w http.ResponseWriter)
		status  int
		message string
	}{
		{"not found", func(w http.ResponseWriter) { response.NotFound(w, "") }, http.StatusNotFound, "Not found"},
		{"conflict", func(w http.ResponseWriter) { response.Conflict(w, "Item already sold") }, http.StatusConflict, "Item already sold"},
		{"unavailable", func(w http.ResponseWriter) { response.Unavailable(w) }, http.StatusServiceUnavailable, "Store unavailable"},
		{"timeout", func(w http.ResponseWriter) { response.Timeout(w) }, http.StatusGatewayTimeout, "Store timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.message, decode(t, rec)["message"])
		})
	}
}
