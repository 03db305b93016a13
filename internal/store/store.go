// Package store persists called variants in DuckDB so that replicate
// datasets can be queried by position. Ranked scores are never stored;
// this is input-side storage only.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/phenoseq/phenoseq/internal/snp"
)

// Store manages a DuckDB connection holding per-dataset variant calls.
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
			return nil, fmt.Errorf("create store directory: %w", err)
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

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS variant_calls (
		dataset VARCHAR,
		chrom VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		qual DOUBLE
	)`)
	return err
}

// WriteCalls batch-inserts one dataset's calls using the Appender API.
// Chromosome names are stored normalized (leading "chr" stripped) so that
// replicate queries agree across naming conventions.
func (s *Store) WriteCalls(dataset string, snps []*snp.SNP) error {
	if len(snps) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "variant_calls")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, v := range snps {
		if err := appender.AppendRow(dataset, v.NormalizeChrom(), v.Pos, v.Ref, v.Alt, v.Qual); err != nil {
			return fmt.Errorf("append variant call: %w", err)
		}
	}

	return appender.Flush()
}

// CountDatasetsAt returns the number of distinct datasets with a call at
// the position. Implements filter.ReplicateCounter.
func (s *Store) CountDatasetsAt(chrom string, pos int64) (int, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(DISTINCT dataset) FROM variant_calls WHERE chrom = ? AND pos = ?`,
		snp.NormalizeChrom(chrom), pos,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count datasets at %s:%d: %w", chrom, pos, err)
	}
	return count, nil
}

// Datasets returns the distinct dataset names present in the store.
func (s *Store) Datasets() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT dataset FROM variant_calls ORDER BY dataset`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan dataset name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Clear removes all stored calls.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM variant_calls`)
	return err
}
