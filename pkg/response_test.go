package pkg

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("stuff: %w", ErrNotFound), http.StatusNotFound},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrAlreadyExists, http.StatusConflict},
		{fmt.Errorf("%w: score", ErrBadRequest), http.StatusBadRequest},
		{ErrRateLimited, http.StatusTooManyRequests},
		{fmt.Errorf("%w: disk I/O error", ErrUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("something else"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			Error(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)

			var resp APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, fmt.Errorf("failed to scan row: secret detail"))

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ErrInternal.Error(), resp.Error)
}

func TestUnavailableSetsRetryAfter(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, ErrUnavailable)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
}

func TestRateLimited(t *testing.T) {
	rec := httptest.NewRecorder()
	RateLimited(rec, 42)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("Retry-After"))
}
