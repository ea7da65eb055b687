// Package coingecko fetches the daily HYPE/USD price history.
package coingecko

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Fuel4us/hype-revenue/internal/domain/models"
	drepo "github.com/Fuel4us/hype-revenue/internal/domain/repository"
	xhttp "github.com/Fuel4us/hype-revenue/pkg/http"
	"github.com/Fuel4us/hype-revenue/pkg/util"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	DefaultCoinID  = "hyperliquid"
	apiKeyHeader   = "x-cg-demo-api-key"
)

// Option configures Client.
type Option func(*Client)

// Client implements repository.PriceSource against the market_chart endpoint.
type Client struct {
	http    *xhttp.Client
	baseURL string
	coinID  string
	days    int
	apiKey  string
}

var _ drepo.PriceSource = (*Client)(nil)

func New(httpClient *xhttp.Client, opts ...Option) *Client {
	c := &Client{
		http:    httpClient,
		baseURL: DefaultBaseURL,
		coinID:  DefaultCoinID,
		days:    365,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type marketChart struct {
	Prices [][2]float64 `json:"prices"` // [ms, price]
}

// FetchPrices returns one point per sample keyed by its UTC day.
// When several samples share a day the last one wins downstream.
func (c *Client) FetchPrices(ctx context.Context) ([]models.PricePoint, error) {
	opts := &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    fmt.Sprintf("%s/coins/%s/market_chart", c.baseURL, c.coinID),
		QueryParams: map[string][]string{
			"vs_currency": {"usd"},
			"days":        {strconv.Itoa(c.days)},
			"interval":    {"daily"},
		},
	}
	if c.apiKey != "" {
		opts.Headers = map[string]string{apiKeyHeader: c.apiKey}
	}

	var resp marketChart
	if err := c.http.SendAndParse(ctx, opts, &resp); err != nil {
		return nil, fmt.Errorf("coingecko market_chart: %w", err)
	}

	out := make([]models.PricePoint, 0, len(resp.Prices))
	for _, p := range resp.Prices {
		out = append(out, models.PricePoint{
			Date:  util.DayKeyFromMillis(int64(p[0])),
			Price: p[1],
		})
	}
	return out, nil
}

func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

func WithCoinID(id string) Option { return func(c *Client) { c.coinID = id } }

func WithDays(days int) Option { return func(c *Client) { c.days = days } }

// WithAPIKey sends the demo API key header on every request.
func WithAPIKey(key string) Option { return func(c *Client) { c.apiKey = key } }
