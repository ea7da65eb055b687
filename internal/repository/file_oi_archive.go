package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Fuel4us/hype-revenue/internal/domain/models"
	domrepo "github.com/Fuel4us/hype-revenue/internal/domain/repository"
	applogger "github.com/Fuel4us/hype-revenue/pkg/logger"
)

// FileOIArchive reads a JSON array of {date,total_oi} from local disk.
type FileOIArchive struct {
	path string
	l    *applogger.Logger
}

func NewFileOIArchive(path string) *FileOIArchive {
	return &FileOIArchive{path: path}
}

var _ domrepo.OpenInterestArchive = (*FileOIArchive)(nil)

func (a *FileOIArchive) SetLogger(l *applogger.Logger) { a.l = l }

func (a *FileOIArchive) Name() string { return "file" }

func (a *FileOIArchive) History(ctx context.Context) ([]models.OpenInterestPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(a.path)
	if err != nil {
		return nil, fmt.Errorf("read oi archive %s: %w", a.path, err)
	}
	var points []models.OpenInterestPoint
	if err := json.Unmarshal(b, &points); err != nil {
		return nil, fmt.Errorf("decode oi archive %s: %w", a.path, err)
	}
	return sanitizeHistory(points, a.l, a.Name()), nil
}
