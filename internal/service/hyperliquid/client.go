// Package hyperliquid reads the live aggregate open interest from the info endpoint.
package hyperliquid

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	drepo "github.com/Fuel4us/hype-revenue/internal/domain/repository"
	xhttp "github.com/Fuel4us/hype-revenue/pkg/http"
)

const DefaultInfoURL = "https://api.hyperliquid.xyz/info"

type Option func(*Client)

// Client implements repository.LiveOpenInterestSource.
type Client struct {
	http    *xhttp.Client
	infoURL string
}

var _ drepo.LiveOpenInterestSource = (*Client)(nil)

func New(httpClient *xhttp.Client, opts ...Option) *Client {
	c := &Client{http: httpClient, infoURL: DefaultInfoURL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithInfoURL(u string) Option { return func(c *Client) { c.infoURL = u } }

type infoRequest struct {
	Type string `json:"type"`
}

// assetCtx is the subset of a perp asset context we need. Both fields arrive as
// decimal strings and may be null for delisted assets.
type assetCtx struct {
	OpenInterest decimal.Decimal `json:"openInterest"`
	MarkPx       decimal.Decimal `json:"markPx"`
}

// FetchOpenInterest returns Σ openInterest × markPx across all perp assets, in USD.
func (c *Client) FetchOpenInterest(ctx context.Context) (float64, error) {
	var parts []json.RawMessage
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    c.infoURL,
		Body:   infoRequest{Type: "metaAndAssetCtxs"},
	}, &parts)
	if err != nil {
		return 0, fmt.Errorf("hyperliquid metaAndAssetCtxs: %w", err)
	}
	if len(parts) < 2 {
		return 0, fmt.Errorf("hyperliquid metaAndAssetCtxs: expected [meta, ctxs], got %d elements", len(parts))
	}

	var ctxs []assetCtx
	if err := json.Unmarshal(parts[1], &ctxs); err != nil {
		return 0, fmt.Errorf("hyperliquid asset ctxs: %w", err)
	}

	return notionalOpenInterest(ctxs).InexactFloat64(), nil
}

// notionalOpenInterest sums contract open interest valued at mark price.
func notionalOpenInterest(ctxs []assetCtx) decimal.Decimal {
	total := decimal.Zero
	for _, a := range ctxs {
		total = total.Add(a.OpenInterest.Mul(a.MarkPx))
	}
	return total
}
