package repository

import (
	"context"
	"fmt"

	"github.com/Fuel4us/hype-revenue/internal/domain/models"
	domrepo "github.com/Fuel4us/hype-revenue/internal/domain/repository"
	xhttp "github.com/Fuel4us/hype-revenue/pkg/http"
	applogger "github.com/Fuel4us/hype-revenue/pkg/logger"
)

// HTTPOIArchive fetches the archive published as a static JSON artifact.
type HTTPOIArchive struct {
	client *xhttp.Client
	url    string
	l      *applogger.Logger
}

func NewHTTPOIArchive(client *xhttp.Client, url string) *HTTPOIArchive {
	return &HTTPOIArchive{client: client, url: url}
}

var _ domrepo.OpenInterestArchive = (*HTTPOIArchive)(nil)

func (a *HTTPOIArchive) SetLogger(l *applogger.Logger) { a.l = l }

func (a *HTTPOIArchive) Name() string { return "http" }

func (a *HTTPOIArchive) History(ctx context.Context) ([]models.OpenInterestPoint, error) {
	var points []models.OpenInterestPoint
	err := a.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    a.url,
	}, &points)
	if err != nil {
		return nil, fmt.Errorf("fetch oi archive: %w", err)
	}
	return sanitizeHistory(points, a.l, a.Name()), nil
}
