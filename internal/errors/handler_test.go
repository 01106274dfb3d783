package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alan-aru/MOD006901-PrescribeGUI/internal/shared/testutil"
)

var errNothingLoaded = errors.New("no dataset loaded")

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	assert.Equal(t, ProblemContentType, rec.Header().Get("Content-Type"))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "registered sentinel",
			err:        fmt.Errorf("plot: %w", errNothingLoaded),
			wantStatus: http.StatusConflict,
			wantType:   TypeDatasetNotLoaded,
		},
		{
			name:       "api error with cause",
			err:        fmt.Errorf("query: %w", InvalidColumnError(errors.New(`column "Q" not found`))),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeInvalidColumn,
		},
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "api error",
			err:        ErrInvalidColumn,
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeInvalidColumn,
		},
		{
			name:       "app validation error",
			err:        NewAppValidationError("file has unsupported extension"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
		},
		{
			name:       "app parsing error",
			err:        NewParsingError("failed to parse CSV", errors.New("bare quote")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDatasetLoadFailed,
		},
		{
			name:       "app permission error",
			err:        NewPermissionError("outside the data directory"),
			wantStatus: http.StatusForbidden,
			wantType:   TypeForbidden,
		},
		{
			name:       "max bytes",
			err:        &http.MaxBytesError{Limit: 10},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantType:   TypePayloadTooLarge,
		},
		{
			name:       "plain not found",
			err:        errors.New("sheet not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, false).
				MapAPIError(errNothingLoaded, func(error) *APIError { return ErrDatasetNotLoaded })

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/plot", nil)
			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/plot", body["instance"])
			assert.Contains(t, body, "trace_id")
		})
	}
}

func TestErrorHandler_NilError(t *testing.T) {
	rec := httptest.NewRecorder()
	NewErrorHandler(nil, false).HandleError(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Zero(t, rec.Body.Len())
}

func TestErrorHandler_ValidationErrorsExtension(t *testing.T) {
	h := NewErrorHandler(nil, false)
	req := httptest.NewRequest(http.MethodPost, "/api/plot", nil)

	problem := h.ErrorToProblem(NewValidationErrors([]ValidationError{{Field: "x", Message: "required"}}), req)
	assert.Equal(t, TypeValidation, problem.Type)
	assert.Equal(t, []ValidationError{{Field: "x", Message: "required"}}, problem.Extensions["errors"])
}

func TestErrorHandler_LogLevels(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false)
	req := httptest.NewRequest(http.MethodGet, "/api/columns", nil)

	h.HandleError(httptest.NewRecorder(), req, ErrDatasetNotLoaded)
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "request failed")
	testutil.AssertNoErrors(t, logs)

	h.HandleError(httptest.NewRecorder(), req, errors.New("boom"))
	assert.Len(t, logs.GetRecordsByLevel(slog.LevelError), 1)
	testutil.AssertLogAttr(t, logs, "component", "error_handler")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	h := NewErrorHandler(nil, true)
	rec := httptest.NewRecorder()
	h.HandlePanic(rec, httptest.NewRequest(http.MethodGet, "/api/plot", nil), "kaboom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, "kaboom", body["panic"])
	assert.Contains(t, body, "stack")
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	h := NewErrorHandler(nil, false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, TypeNotFound, decodeProblem(t, rec)["type"])

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/plot", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, TypeMethodNotAllowed, decodeProblem(t, rec)["type"])
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	pd := NewDatasetLoadProblem("failed to parse CSV", "/api/datasets").
		WithExtension("path", "epd.csv")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	assert.Equal(t, TypeDatasetLoadFailed, body["type"])
	assert.Equal(t, "Dataset Load Failed", body["title"])
	assert.Equal(t, float64(http.StatusUnprocessableEntity), body["status"])
	assert.Equal(t, "epd.csv", body["path"])
	assert.Equal(t, "DATASET_LOAD_FAILED", body["error_code"])
}
