package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"StockSage/internal/domain/models"
	"StockSage/internal/domain/repository"
	applogger "StockSage/pkg/logger"
)

// ClickHouseHistory implements HistoryStore for ClickHouse.
type ClickHouseHistory struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewClickHouseHistory creates ClickHouse history storage.
func NewClickHouseHistory(db *sql.DB, table string) repository.HistoryStore {
	return &ClickHouseHistory{db: db, table: table}
}

// SetLogger injects a structured logger.
func (s *ClickHouseHistory) SetLogger(l *applogger.Logger) { s.l = l }

// SchemaStatements returns idempotent DDL for the analyses table.
func SchemaStatements(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
			ts DateTime,
			symbol String,
			score Float64,
			confidence Float64,
			recommendation String,
			reasoning String,
			insights String
		) ENGINE=MergeTree ORDER BY (symbol, ts)`, database, table),
	}
}

func (s *ClickHouseHistory) Store(ctx context.Context, a *models.CombinedAnalysis) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, score, confidence, recommendation, reasoning, insights) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q, analysisArgs(a)...)
	if err != nil {
		return fmt.Errorf("store analysis: %w", err)
	}
	return nil
}

func (s *ClickHouseHistory) StoreBatch(ctx context.Context, as []*models.CombinedAnalysis) error {
	if len(as) == 0 {
		return nil
	}

	values := make([]string, 0, len(as))
	args := make([]interface{}, 0, len(as)*7)
	for _, a := range as {
		if a == nil || a.Symbol == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args, analysisArgs(a)...)
	}
	if len(values) == 0 {
		return nil
	}

	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, score, confidence, recommendation, reasoning, insights) VALUES %s",
		s.table, strings.Join(values, ","))
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("store analysis batch: %w", err)
	}
	return nil
}

func (s *ClickHouseHistory) Recent(ctx context.Context, symbol string, from, to time.Time, limit int) ([]models.HistoryEntry, error) {
	q := fmt.Sprintf(`
		SELECT ts, symbol, score, confidence, recommendation, reasoning
		FROM %s
		WHERE symbol = ? AND ts >= ? AND ts <= ?
		ORDER BY ts DESC
		LIMIT ?`, s.table)

	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse recent query error",
				applogger.String("symbol", symbol),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("recent analyses: %w", err)
	}
	defer rows.Close()

	out := make([]models.HistoryEntry, 0, limit)
	for rows.Next() {
		var e models.HistoryEntry
		var rec string
		if err := rows.Scan(&e.Timestamp, &e.Symbol, &e.Score, &e.Confidence, &rec, &e.Reasoning); err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}
		e.Recommendation = models.Recommendation(rec)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func analysisArgs(a *models.CombinedAnalysis) []interface{} {
	insights, err := json.Marshal(a.Insights)
	if err != nil {
		insights = []byte("[]")
	}
	return []interface{}{
		a.Timestamp,
		a.Symbol,
		a.Score,
		a.Confidence,
		string(a.Recommendation),
		a.Reasoning,
		string(insights),
	}
}
