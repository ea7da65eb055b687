package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendAndParse_JSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "v", r.URL.Query().Get("k"))
		assert.Equal(t, "secret", r.Header.Get("X-Key"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"type":"ping"}`, string(body))
		_, _ = w.Write([]byte(`{"answer":42}`))
	}))
	defer srv.Close()

	var out struct {
		Answer int `json:"answer"`
	}
	err := NewClient().SendAndParse(context.Background(), &RequestOptions{
		Method:      MethodPost,
		URL:         srv.URL,
		Headers:     map[string]string{"X-Key": "secret"},
		QueryParams: map[string][]string{"k": {"v"}},
		Body:        map[string]string{"type": "ping"},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, 42, out.Answer)
}

func TestClient_SendAndParse_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	err := NewClient().SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, nil)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, "slow down", se.Body)
}

func TestClient_SendAndParse_RawBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("raw"))
	}))
	defer srv.Close()

	var b []byte
	require.NoError(t, NewClient().SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, &b))
	assert.Equal(t, "raw", string(b))
}

func TestClient_SendAndParse_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	var out map[string]interface{}
	err := NewClient().SendAndParse(context.Background(), &RequestOptions{Method: MethodGet, URL: srv.URL}, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode json")
}

func TestClient_RespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewClient().SendAndParse(ctx, &RequestOptions{Method: MethodGet, URL: srv.URL}, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAppError_Envelope(t *testing.T) {
	err := ServiceUnavailableError("ERR_NO_REVENUE_DATA", "no revenue").WithError(errors.New("inner"))
	assert.Equal(t, "no revenue: inner", err.Error())
	assert.Equal(t, "inner", errors.Unwrap(err).Error())

	b, mErr := json.Marshal(err)
	require.NoError(t, mErr)
	assert.JSONEq(t, `{"code":"ERR_NO_REVENUE_DATA","message":"no revenue","retryable":true}`, string(b))

	b, _ = json.Marshal(InternalError("boom"))
	assert.JSONEq(t, `{"code":"ERR_INTERNAL","message":"boom"}`, string(b))
}
