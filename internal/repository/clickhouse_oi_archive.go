package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	"github.com/Fuel4us/hype-revenue/internal/domain/models"
	domrepo "github.com/Fuel4us/hype-revenue/internal/domain/repository"
	pkgch "github.com/Fuel4us/hype-revenue/pkg/clickhouse"
	applogger "github.com/Fuel4us/hype-revenue/pkg/logger"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// CHOIArchive reads daily open interest from a ClickHouse table (date Date, total_oi Float64).
type CHOIArchive struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

func NewCHOIArchive(ch *pkgch.Client, table string) (*CHOIArchive, error) {
	return newCHOIArchive(ch.DB(), table)
}

func newCHOIArchive(db *sql.DB, table string) (*CHOIArchive, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid clickhouse table name %q", table)
	}
	return &CHOIArchive{db: db, table: table}, nil
}

var _ domrepo.OpenInterestArchive = (*CHOIArchive)(nil)

func (s *CHOIArchive) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHOIArchive) Name() string { return "clickhouse" }

// SchemaStatements returns the DDL used by pkg/clickhouse.Client.InitSchema.
func (s *CHOIArchive) SchemaStatements() []string {
	return []string{fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            date     Date,
            total_oi Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY date`, s.table)}
}

func (s *CHOIArchive) History(ctx context.Context) ([]models.OpenInterestPoint, error) {
	start := time.Now()
	// FINAL collapses ReplacingMergeTree duplicates so each date appears once.
	q := fmt.Sprintf(`
        SELECT toString(date) AS d, total_oi
        FROM %s FINAL
        ORDER BY date ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		s.logError("clickhouse oi_history query error", err)
		return nil, fmt.Errorf("query oi history: %w", err)
	}
	defer rows.Close()

	out := make([]models.OpenInterestPoint, 0, 512)
	for rows.Next() {
		var p models.OpenInterestPoint
		if err := rows.Scan(&p.Date, &p.TotalOpenInterest); err != nil {
			s.logError("clickhouse oi_history scan error", err)
			return nil, fmt.Errorf("scan oi point: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		s.logError("clickhouse oi_history rows error", err)
		return nil, fmt.Errorf("rows: %w", err)
	}

	if s.l != nil {
		s.l.Debug("clickhouse oi_history loaded",
			applogger.String("table", s.table),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return sanitizeHistory(out, s.l, s.Name()), nil
}

func (s *CHOIArchive) logError(msg string, err error) {
	if s.l != nil {
		s.l.Error(msg, applogger.String("table", s.table), applogger.Error(err))
	}
}
