package store

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/lox/bikeshare/internal/models"
)

// SaveSnapshot stores a gzip-compressed report payload. Snapshots are unique
// by fingerprint; saving an already stored fingerprint is a no-op and
// returns false.
func (s *Store) SaveSnapshot(snap models.Snapshot, payload []byte) (bool, error) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(payload); err != nil {
		return false, fmt.Errorf("compress payload: %w", err)
	}
	if err := gz.Close(); err != nil {
		return false, fmt.Errorf("close gzip: %w", err)
	}

	createdAt := snap.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := s.db.Exec(`
		INSERT INTO report_snapshots
		(id, created_at, daily_source, hourly_source, fingerprint, payload_compressed, payload_size)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fingerprint) DO NOTHING
	`, snap.ID, createdAt, snap.DailySource, snap.HourlySource, snap.Fingerprint, buf.Bytes(), len(payload))
	if err != nil {
		return false, fmt.Errorf("insert snapshot: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetSnapshots lists stored snapshots, newest first.
func (s *Store) GetSnapshots(limit int) ([]models.Snapshot, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, daily_source, hourly_source, fingerprint, payload_size
		FROM report_snapshots
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []models.Snapshot
	for rows.Next() {
		var snap models.Snapshot
		if err := rows.Scan(&snap.ID, &snap.CreatedAt, &snap.DailySource, &snap.HourlySource, &snap.Fingerprint, &snap.PayloadSize); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// GetSnapshotPayload returns the decompressed payload for a fingerprint, or
// nil if no such snapshot exists.
func (s *Store) GetSnapshotPayload(fingerprint string) ([]byte, error) {
	var compressed []byte
	err := s.db.QueryRow(`SELECT payload_compressed FROM report_snapshots WHERE fingerprint = ?`, fingerprint).
		Scan(&compressed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	gz, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("create gzip reader: %w", err)
	}
	defer gz.Close()

	return io.ReadAll(gz)
}

// GetInsight returns the cached commentary a model wrote for a fingerprint.
func (s *Store) GetInsight(fingerprint, model string) (string, bool, error) {
	var text string
	err := s.db.QueryRow(`SELECT text FROM insights WHERE fingerprint = ? AND model = ?`, fingerprint, model).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

func (s *Store) SaveInsight(fingerprint, model, text string) error {
	_, err := s.db.Exec(`
		INSERT INTO insights (fingerprint, model, text, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(fingerprint, model) DO UPDATE SET
			text = excluded.text,
			created_at = excluded.created_at
	`, fingerprint, model, text, time.Now().UTC())
	return err
}
