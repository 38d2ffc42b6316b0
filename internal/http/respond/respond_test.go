package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/mediavault/internal/apperr"
	"github.com/hongminglow/mediavault/internal/logging"
)

type captureLogger struct {
	logging.Nop
	mu     sync.Mutex
	errors [][]any
}

func (c *captureLogger) Error(_ context.Context, _ string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, args)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestFailureClientError(t *testing.T) {
	rec := httptest.NewRecorder()
	logger := &captureLogger{}
	Failure(rec, httptest.NewRequest(http.MethodGet, "/assets/9", nil), logger, fmt.Errorf("get asset: %w", apperr.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.False(t, body.Success)
	assert.Equal(t, "get asset: not found", body.Error)
	assert.Empty(t, body.FailureID)
	assert.Empty(t, logger.errors)
}

func TestFailureInternalHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	logger := &captureLogger{}
	err := fmt.Errorf("list assets: %w: %w", apperr.ErrPersistence, errors.New("password authentication failed for user postgres"))
	Failure(rec, httptest.NewRequest(http.MethodGet, "/assets", nil), logger, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	raw := rec.Body.String()
	assert.NotContains(t, raw, "postgres")

	var body ErrorBody
	require.NoError(t, json.Unmarshal([]byte(raw), &body))
	assert.Equal(t, "internal error", body.Error)
	assert.NotEmpty(t, body.FailureID)

	require.Len(t, logger.errors, 1)
	assert.Contains(t, logger.errors[0], body.FailureID)
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusUnauthorized, "invalid credentials")
	assert.JSONEq(t, `{"error":"invalid credentials","success":false}`, rec.Body.String())
}
