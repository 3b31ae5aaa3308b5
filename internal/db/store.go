package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/poweringeg/fichas-backend/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// EnsureSchema creates the analysis tables when they do not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			source_file TEXT NOT NULL,
			total_tickets INT NOT NULL,
			total_stores INT NOT NULL,
			status TEXT NOT NULL,
			totals JSONB,
			status_counts JSONB,
			finished_at TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS store_reports (
			run_id UUID NOT NULL REFERENCES analysis_runs(id) ON DELETE CASCADE,
			store_name TEXT NOT NULL,
			store_number INT,
			is_mobile_service BOOLEAN NOT NULL,
			total_tickets INT NOT NULL,
			urgency_level TEXT NOT NULL,
			payload JSONB NOT NULL,
			PRIMARY KEY (run_id, store_name)
		);
	`)
	return err
}

// SaveAnalysis persists a run and its store reports in one transaction.
func (s *Store) SaveAnalysis(ctx context.Context, result models.AnalysisResult) error {
	totals, err := json.Marshal(result.GlobalTotals)
	if err != nil {
		return err
	}
	statusCounts, err := json.Marshal(result.GlobalStatusCounts)
	if err != nil {
		return err
	}

	return s.WithTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO analysis_runs (id, created_at, source_file, total_tickets, total_stores, status, totals, status_counts, finished_at)
			VALUES ($1,$2,$3,$4,$5,'DONE',$6,$7,NOW())
			ON CONFLICT (id) DO UPDATE SET
				total_tickets = EXCLUDED.total_tickets,
				total_stores = EXCLUDED.total_stores,
				status = EXCLUDED.status,
				totals = EXCLUDED.totals,
				status_counts = EXCLUDED.status_counts,
				finished_at = EXCLUDED.finished_at
		`, result.RunID, result.RunTimestamp, result.SourceFileName, result.TotalTickets, result.TotalStores, totals, statusCounts)
		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(result.Reports))
		for _, r := range result.Reports {
			payload, err := json.Marshal(r)
			if err != nil {
				return err
			}
			rows = append(rows, []any{result.RunID, r.StoreName, r.StoreNumber, r.IsMobileService, r.TotalTickets, r.UrgencyLevel, payload})
		}
		_, err = tx.CopyFrom(ctx, pgx.Identifier{"store_reports"},
			[]string{"run_id", "store_name", "store_number", "is_mobile_service", "total_tickets", "urgency_level", "payload"},
			pgx.CopyFromRows(rows))
		return err
	})
}

func (s *Store) CreateRun(ctx context.Context, sourceFile string) (string, error) {
	id := uuid.NewString()
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO analysis_runs (id, created_at, source_file, total_tickets, total_stores, status)
		VALUES ($1, NOW(), $2, 0, 0, 'RUNNING')
	`, id, sourceFile)
	return id, err
}

func (s *Store) FailRun(ctx context.Context, runID string) error {
	_, err := s.Pool.Exec(ctx, `UPDATE analysis_runs SET status = 'FAILED', finished_at = NOW() WHERE id = $1`, runID)
	return err
}

func (s *Store) GetLatestRun(ctx context.Context) (map[string]any, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, created_at, source_file, total_tickets, total_stores, status, totals, status_counts, finished_at
		FROM analysis_runs
		WHERE status = 'DONE'
		ORDER BY created_at DESC
		LIMIT 1
	`)
	var (
		id           string
		createdAt    time.Time
		sourceFile   string
		totalTickets int
		totalStores  int
		status       string
		totals       []byte
		statusCounts []byte
		finishedAt   *time.Time
	)
	if err := row.Scan(&id, &createdAt, &sourceFile, &totalTickets, &totalStores, &status, &totals, &statusCounts, &finishedAt); err != nil {
		return nil, err
	}

	out := map[string]any{
		"id":            id,
		"created_at":    createdAt,
		"source_file":   sourceFile,
		"total_tickets": totalTickets,
		"total_stores":  totalStores,
		"status":        status,
		"finished_at":   finishedAt,
	}
	if len(totals) > 0 {
		var tmp any
		if err := json.Unmarshal(totals, &tmp); err == nil {
			out["totals"] = tmp
		}
	}
	if len(statusCounts) > 0 {
		var tmp any
		if err := json.Unmarshal(statusCounts, &tmp); err == nil {
			out["status_counts"] = tmp
		}
	}
	return out, nil
}

// ListStoreReports returns the report summaries of one run, ordered by name.
func (s *Store) ListStoreReports(ctx context.Context, runID string) ([]map[string]any, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT store_name, store_number, is_mobile_service, total_tickets, urgency_level
		FROM store_reports
		WHERE run_id = $1
		ORDER BY store_name ASC
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		var (
			name        string
			number      *int
			mobile      bool
			total       int
			urgency     string
		)
		if err := rows.Scan(&name, &number, &mobile, &total, &urgency); err != nil {
			return nil, err
		}
		out = append(out, map[string]any{
			"store_name":        name,
			"store_number":      number,
			"is_mobile_service": mobile,
			"total_tickets":     total,
			"urgency_level":     urgency,
		})
	}
	return out, rows.Err()
}

func (s *Store) GetStoreReport(ctx context.Context, runID, storeName string) (*models.StoreReport, error) {
	var payload []byte
	err := s.Pool.QueryRow(ctx, `
		SELECT payload FROM store_reports WHERE run_id = $1 AND store_name = $2
	`, runID, storeName).Scan(&payload)
	if err != nil {
		return nil, err
	}
	var report models.StoreReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
