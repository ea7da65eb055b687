package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCtx() (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	return echo.New().NewContext(req, rec), rec
}

func TestDataResponse_EchoesRequestID(t *testing.T) {
	c, rec := newCtx()
	c.Response().Header().Set(echo.HeaderXRequestID, "req-1")

	require.NoError(t, SuccessResponse(c, map[string]int{"rows": 2}))

	var env RawAPIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusOK, env.Status)
	assert.Equal(t, "OK", env.Message)
	assert.Equal(t, "req-1", env.RequestID)
	assert.JSONEq(t, `{"rows":2}`, string(env.Data))
}

func TestAppErrorResponse(t *testing.T) {
	t.Run("retry after", func(t *testing.T) {
		c, rec := newCtx()
		require.NoError(t, AppErrorResponse(c, TooManyRequestsError("slow down")))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "1", rec.Header().Get(echo.HeaderRetryAfter))
	})

	t.Run("sub-second hint rounds up", func(t *testing.T) {
		c, rec := newCtx()
		err := ServiceUnavailableError("ERR_X", "down").WithRetryAfter(200 * time.Millisecond)
		require.NoError(t, AppErrorResponse(c, err))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "1", rec.Header().Get(echo.HeaderRetryAfter))
	})

	t.Run("plain error is a 500", func(t *testing.T) {
		c, rec := newCtx()
		require.NoError(t, AppErrorResponse(c, errors.New("boom")))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Empty(t, rec.Header().Get(echo.HeaderRetryAfter))
	})
}
