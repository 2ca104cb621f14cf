// Package store persists raw export rows into a SQLite table that the dataset loader can read back.
package store

import (
	"context"
	"fmt"
	"regexp"

	"agro-trend-api/pkg/services"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store wraps a SQLite database holding one export table.
type Store struct {
	db    *sqlx.DB
	table string
}

// New opens (or creates) the database at path and ensures the table exists.
func New(path, table string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("sqlite: invalid table name %q", table)
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, table: table}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// InsertRows appends rows in a single transaction. Values are stored as text exactly as read.
func (s *Store) InsertRows(ctx context.Context, rows []services.RawExportRow) (err error) {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareNamedContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (descripcion_partida, anio, mes, valor_miles_usd_fob)
		VALUES (:descripcion_partida, :anio, :mes, :valor_miles_usd_fob)
	`, s.table))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range rows {
		if _, err = stmt.ExecContext(ctx, rows[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Truncate removes every row from the table.
func (s *Store) Truncate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, s.table))
	return err
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, s.table))
	return n, err
}

func (s *Store) migrate() error {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			descripcion_partida TEXT,
			anio TEXT,
			mes TEXT,
			valor_miles_usd_fob TEXT
		);`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_producto ON %s (descripcion_partida);`, s.table, s.table),
	}

	for _, statement := range statements {
		if _, err := s.db.Exec(statement); err != nil {
			return err
		}
	}

	return nil
}
