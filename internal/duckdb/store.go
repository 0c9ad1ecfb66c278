// Package duckdb persists decoded VCF genotypes in DuckDB so downstream
// tools can query calls and probabilities without re-parsing the VCF.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding decoded genotype data.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sources (
		path VARCHAR PRIMARY KEY,
		size BIGINT,
		mod_time TIMESTAMP,
		samples INTEGER,
		variants BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS samples (
		idx INTEGER PRIMARY KEY,
		name VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS variants (
		seq BIGINT PRIMARY KEY,
		chrom VARCHAR,
		pos BIGINT,
		id VARCHAR,
		ref VARCHAR,
		alt VARCHAR,
		ref_len INTEGER,
		alt_len INTEGER,
		qual VARCHAR,
		filter VARCHAR,
		format VARCHAR
	)`,
	`CREATE TABLE IF NOT EXISTS genotypes (
		seq BIGINT,
		sample INTEGER,
		hap1 INTEGER,
		hap2 INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS genotype_probs (
		seq BIGINT,
		sample INTEGER,
		p_hom_ref DOUBLE,
		p_het DOUBLE,
		p_hom_alt DOUBLE
	)`,
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes all stored samples, variants, genotypes and sources.
func (s *Store) Clear() error {
	for _, table := range []string{"genotype_probs", "genotypes", "variants", "samples", "sources"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
