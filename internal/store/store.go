// Package store persists completed runs: one RunSummary plus the full
// anomaly log per run, keyed by run id and the source video's path/hash.
// The pipeline itself owns no persisted state; storing a run is optional.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"vidscope/internal/aggregate"
	"vidscope/internal/anomaly"
)

// Store manages the PostgreSQL connection for run persistence.
type Store struct {
	conn *pgx.Conn
}

// Run is one persisted pipeline execution.
type Run struct {
	ID        string               `json:"id"`
	VideoPath string               `json:"video_path"`
	VideoHash string               `json:"video_hash"`
	CreatedAt time.Time            `json:"created_at"`
	Summary   aggregate.RunSummary `json:"summary"`
	Anomalies []anomaly.Anomaly    `json:"anomalies"`
}

// New establishes a connection and ensures the schema is initialized.
func New(ctx context.Context, connString string) (*Store, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}

	if err := initSchema(ctx, conn); err != nil {
		conn.Close(ctx)
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return &Store{conn: conn}, nil
}

// initSchema creates the tables if they don't exist (auto-migration).
func initSchema(ctx context.Context, conn *pgx.Conn) error {
	query := `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			video_path TEXT NOT NULL,
			video_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			summary JSONB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS run_anomalies (
			id BIGSERIAL PRIMARY KEY,
			run_id TEXT REFERENCES runs(id) ON DELETE CASCADE,
			frame_index INT NOT NULL,
			ts DOUBLE PRECISION NOT NULL,
			subject_id INT NOT NULL,
			kind TEXT NOT NULL,
			detail TEXT
		);
		CREATE INDEX IF NOT EXISTS run_anomalies_run_id_idx ON run_anomalies (run_id);
	`
	_, err := conn.Exec(ctx, query)
	return err
}

// SaveRun writes a completed run and its full anomaly log in one
// transaction. Anomalies keep their insertion order via the serial id.
func (s *Store) SaveRun(ctx context.Context, run Run) error {
	summaryJSON, err := json.Marshal(run.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO runs (id, video_path, video_hash, summary) VALUES ($1, $2, $3, $4)`,
		run.ID, run.VideoPath, run.VideoHash, summaryJSON)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, a := range run.Anomalies {
		_, err = tx.Exec(ctx,
			`INSERT INTO run_anomalies (run_id, frame_index, ts, subject_id, kind, detail)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			run.ID, a.FrameIndex, a.Timestamp, a.SubjectID, string(a.Kind), a.Detail)
		if err != nil {
			return fmt.Errorf("failed to insert anomaly: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// GetRun loads one run with its anomaly log, or pgx.ErrNoRows.
func (s *Store) GetRun(ctx context.Context, id string) (Run, error) {
	var run Run
	var summaryJSON []byte

	err := s.conn.QueryRow(ctx,
		`SELECT id, video_path, video_hash, created_at, summary FROM runs WHERE id = $1`, id).
		Scan(&run.ID, &run.VideoPath, &run.VideoHash, &run.CreatedAt, &summaryJSON)
	if err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
		return Run{}, fmt.Errorf("failed to decode summary: %w", err)
	}

	rows, err := s.conn.Query(ctx,
		`SELECT frame_index, ts, subject_id, kind, detail FROM run_anomalies
		 WHERE run_id = $1 ORDER BY id`, id)
	if err != nil {
		return Run{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var a anomaly.Anomaly
		var kind string
		if err := rows.Scan(&a.FrameIndex, &a.Timestamp, &a.SubjectID, &kind, &a.Detail); err != nil {
			return Run{}, err
		}
		a.Kind = anomaly.Kind(kind)
		run.Anomalies = append(run.Anomalies, a)
	}
	return run, rows.Err()
}

// ListRuns returns run metadata (without anomaly logs), newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.conn.Query(ctx,
		`SELECT id, video_path, video_hash, created_at, summary FROM runs
		 ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var summaryJSON []byte
		if err := rows.Scan(&run.ID, &run.VideoPath, &run.VideoHash, &run.CreatedAt, &summaryJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(summaryJSON, &run.Summary); err != nil {
			return nil, fmt.Errorf("failed to decode summary: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Close releases the connection.
func (s *Store) Close(ctx context.Context) {
	s.conn.Close(ctx)
}
