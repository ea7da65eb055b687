package hyperliquid

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xhttp "github.com/Fuel4us/hype-revenue/pkg/http"
)

const metaAndCtxs = `[
  {"universe":[{"name":"BTC","szDecimals":5},{"name":"ETH","szDecimals":4},{"name":"OLD","szDecimals":0,"isDelisted":true}]},
  [
    {"funding":"0.0000125","openInterest":"10.5","markPx":"60000.0","dayNtlVlm":"1"},
    {"funding":"0.0000100","openInterest":"200","markPx":"3000.5"},
    {"funding":"0","openInterest":"0.0","markPx":null}
  ]
]`

func TestFetchOpenInterest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "metaAndAssetCtxs", body["type"])
		_, _ = w.Write([]byte(metaAndCtxs))
	}))
	defer srv.Close()

	oi, err := New(xhttp.NewClient(), WithInfoURL(srv.URL)).FetchOpenInterest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10.5*60000+200*3000.5, oi)
}

func TestFetchOpenInterest_UnexpectedShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"universe":[]}]`))
	}))
	defer srv.Close()

	_, err := New(xhttp.NewClient(), WithInfoURL(srv.URL)).FetchOpenInterest(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected [meta, ctxs]")
}

func TestFetchOpenInterest_UpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(xhttp.NewClient(), WithInfoURL(srv.URL)).FetchOpenInterest(context.Background())
	require.Error(t, err)
}
