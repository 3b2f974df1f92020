package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
	appCtx "github.com/baechuer/real-time-ressys/services/syndication-service/internal/pkg/context"
)

func TestErr(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not_found", domain.ErrNotFound("event not found"), http.StatusNotFound, "not_found"},
		{"validation", domain.ErrValidation("invalid platform"), http.StatusBadRequest, "validation_error"},
		{"forbidden", domain.ErrForbidden("not the organizer"), http.StatusForbidden, "forbidden"},
		{"invalid_state", domain.ErrInvalidState("no connections"), http.StatusConflict, "invalid_state"},
		{"unsupported", domain.ErrUnsupported("no delete"), http.StatusUnprocessableEntity, "unsupported"},
		{"generic_error", errors.New("db crash"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
			req = req.WithContext(appCtx.WithRequestID(req.Context(), "req-1"))

			Err(rr, req, tt.err)

			assert.Equal(t, tt.wantStatus, rr.Code)
			var body ErrorBody
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, "req-1", body.Error.RequestID)
		})
	}

	t.Run("meta_is_surfaced_and_internals_hidden", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		Err(rr, req, domain.ErrValidationMeta("lineup is required", map[string]string{"platform": "bandsintown"}))

		var body ErrorBody
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "bandsintown", body.Error.Meta["platform"])

		rr = httptest.NewRecorder()
		Err(rr, req, errors.New("pq: password authentication failed"))
		assert.NotContains(t, rr.Body.String(), "password")
	})
}

func TestData(t *testing.T) {
	rr := httptest.NewRecorder()
	Data(rr, http.StatusOK, map[string]string{"id": "123"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))

	var env Envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	dataMap := env.Data.(map[string]any)
	assert.Equal(t, "123", dataMap["id"])
}

func TestRequestIDFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "from-header")
	assert.Equal(t, "from-header", RequestIDFromRequest(req))

	req = req.WithContext(appCtx.WithRequestID(req.Context(), "from-ctx"))
	assert.Equal(t, "from-ctx", RequestIDFromRequest(req))
}
