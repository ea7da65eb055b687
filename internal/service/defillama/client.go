// Package defillama fetches the daily Hyperliquid fee history.
package defillama

import (
	"context"
	"fmt"

	"github.com/Fuel4us/hype-revenue/internal/domain/models"
	drepo "github.com/Fuel4us/hype-revenue/internal/domain/repository"
	xhttp "github.com/Fuel4us/hype-revenue/pkg/http"
)

const (
	DefaultBaseURL  = "https://api.llama.fi"
	DefaultProtocol = "hyperliquid"
)

type Option func(*Client)

// Client implements repository.FeeSource using the fee summary endpoint.
type Client struct {
	http     *xhttp.Client
	baseURL  string
	protocol string
}

var _ drepo.FeeSource = (*Client)(nil)

func New(httpClient *xhttp.Client, opts ...Option) *Client {
	c := &Client{http: httpClient, baseURL: DefaultBaseURL, protocol: DefaultProtocol}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type feeSummary struct {
	TotalDataChart [][2]float64 `json:"totalDataChart"` // [sec, fees]
}

func (c *Client) FetchFees(ctx context.Context) ([]models.FeePoint, error) {
	var resp feeSummary
	err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         fmt.Sprintf("%s/summary/fees/%s", c.baseURL, c.protocol),
		QueryParams: map[string][]string{"dataType": {"dailyFees"}},
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("defillama fees: %w", err)
	}

	out := make([]models.FeePoint, 0, len(resp.TotalDataChart))
	for _, p := range resp.TotalDataChart {
		out = append(out, models.FeePoint{Timestamp: int64(p[0]), DailyFees: p[1]})
	}
	return out, nil
}

func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

func WithProtocol(p string) Option { return func(c *Client) { c.protocol = p } }
