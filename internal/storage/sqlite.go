//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"chromatin/internal/model"

	_ "modernc.org/sqlite"
)

type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, record model.RunRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeRunRecord(record)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, record.ID, record.CreatedAtUTC, record.SchemaVersion, record.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (model.RunRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.RunRecord{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.RunRecord{}, false, nil
		}
		return model.RunRecord{}, false, err
	}

	record, err := DecodeRunRecord(payload)
	if err != nil {
		return model.RunRecord{}, false, fmt.Errorf("decode run %s: %w", id, err)
	}
	return record, true, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context) ([]model.RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, payload FROM runs ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.RunRecord
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, err
		}
		record, err := DecodeRunRecord(payload)
		if err != nil {
			return nil, fmt.Errorf("decode run %s: %w", id, err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	for _, stmt := range []string{
		`DELETE FROM runs WHERE id = ?`,
		`DELETE FROM curves WHERE run_id = ?`,
		`DELETE FROM traces WHERE run_id = ?`,
		`DELETE FROM distributions WHERE run_id = ?`,
	} {
		if _, err := db.ExecContext(ctx, stmt, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveCurve(ctx context.Context, runID, variant string, points []model.CurvePoint) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeCurvePoints(points)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO curves (run_id, variant, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(run_id, variant) DO UPDATE SET
			payload = excluded.payload
	`, runID, variant, payload)
	return err
}

func (s *SQLiteStore) GetCurve(ctx context.Context, runID, variant string) ([]model.CurvePoint, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM curves WHERE run_id = ? AND variant = ?`, runID, variant).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	points, err := DecodeCurvePoints(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode curve %s/%s: %w", runID, variant, err)
	}
	return points, true, nil
}

func (s *SQLiteStore) SaveTrace(ctx context.Context, runID, label string, samples []model.TraceSample) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeTraceSamples(samples)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO traces (run_id, label, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(run_id, label) DO UPDATE SET
			payload = excluded.payload
	`, runID, label, payload)
	return err
}

func (s *SQLiteStore) GetTrace(ctx context.Context, runID, label string) ([]model.TraceSample, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM traces WHERE run_id = ? AND label = ?`, runID, label).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	samples, err := DecodeTraceSamples(payload)
	if err != nil {
		return nil, false, fmt.Errorf("decode trace %s/%s: %w", runID, label, err)
	}
	return samples, true, nil
}

func (s *SQLiteStore) SaveDistribution(ctx context.Context, record model.DistributionRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := EncodeDistribution(record)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO distributions (run_id, variant, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, variant) DO UPDATE SET
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, record.RunID, record.Variant, record.SchemaVersion, record.CodecVersion, payload)
	return err
}

func (s *SQLiteStore) GetDistribution(ctx context.Context, runID, variant string) (model.DistributionRecord, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.DistributionRecord{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM distributions WHERE run_id = ? AND variant = ?`, runID, variant).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.DistributionRecord{}, false, nil
		}
		return model.DistributionRecord{}, false, err
	}

	record, err := DecodeDistribution(payload)
	if err != nil {
		return model.DistributionRecord{}, false, fmt.Errorf("decode distribution %s/%s: %w", runID, variant, err)
	}
	return record, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS curves (
			run_id TEXT NOT NULL,
			variant TEXT NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, variant)
		);
		CREATE TABLE IF NOT EXISTS traces (
			run_id TEXT NOT NULL,
			label TEXT NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, label)
		);
		CREATE TABLE IF NOT EXISTS distributions (
			run_id TEXT NOT NULL,
			variant TEXT NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, variant)
		);
	`)
	return err
}
