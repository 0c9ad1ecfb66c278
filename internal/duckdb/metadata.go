package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Loaded reports whether the store already holds data loaded from a file
// with the same path, size and modification time.
func (s *Store) Loaded(fp FileFingerprint) (bool, error) {
	var size int64
	var modTime time.Time
	err := s.db.QueryRow(`SELECT size, mod_time FROM sources WHERE path=?`, fp.Path).Scan(&size, &modTime)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query source: %w", err)
	}
	return size == fp.Size && modTime.Equal(fp.ModTime.UTC().Truncate(time.Microsecond)), nil
}

// RecordSource stores the fingerprint of a loaded file with its sample and
// variant counts, replacing any previous entry for the same path.
func (s *Store) RecordSource(fp FileFingerprint, samples int, variants int64) error {
	if _, err := s.db.Exec(`DELETE FROM sources WHERE path=?`, fp.Path); err != nil {
		return fmt.Errorf("replace source: %w", err)
	}
	_, err := s.db.Exec(`INSERT INTO sources VALUES (?, ?, ?, ?, ?)`,
		fp.Path, fp.Size, fp.ModTime.UTC().Truncate(time.Microsecond), samples, variants)
	if err != nil {
		return fmt.Errorf("record source: %w", err)
	}
	return nil
}
