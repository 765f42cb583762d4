// Package db provides the DuckDB-backed draw journal.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/joeblew999/drawmap/internal/service"
)

// Config holds database configuration.
type Config struct {
	DataDir string
	DBName  string
}

// sandbox disables file, network and extension access for every connection
// and locks the setting, so SQL sent to the query endpoint cannot reach the
// host through table functions such as read_text or glob.
const sandbox = "?enable_external_access=false&lock_configuration=true"

// Open opens (creating if needed) the journal database under DataDir/duckdb.
// An empty DataDir opens an in-memory database.
func Open(cfg Config) (*sql.DB, error) {
	dsn := ""
	if cfg.DataDir != "" {
		duckdbDir := filepath.Join(cfg.DataDir, "duckdb")
		if err := os.MkdirAll(duckdbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create duckdb directory: %w", err)
		}
		dsn = filepath.Join(duckdbDir, cfg.DBName+".duckdb")
	}

	conn, err := sql.Open("duckdb", dsn+sandbox)
	if err != nil {
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("opening duckdb: %w", err)
	}
	return conn, nil
}

const schema = `
CREATE SEQUENCE IF NOT EXISTS draw_events_seq;
CREATE TABLE IF NOT EXISTS draw_events (
	id         BIGINT DEFAULT nextval('draw_events_seq') PRIMARY KEY,
	session    VARCHAR NOT NULL,
	action     VARCHAR NOT NULL,
	layer_type VARCHAR,
	lat        DOUBLE,
	lng        DOUBLE,
	at         TIMESTAMP NOT NULL
);`

// Journal appends applied session mutations to the draw_events table.
type Journal struct {
	db *sql.DB
}

// NewJournal creates the journal table if missing.
func NewJournal(ctx context.Context, db *sql.DB) (*Journal, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating draw_events: %w", err)
	}
	return &Journal{db: db}, nil
}

// Record writes one row per position, or a single row without coordinates.
func (j *Journal) Record(ctx context.Context, e service.JournalEntry) error {
	const insert = `INSERT INTO draw_events (session, action, layer_type, lat, lng, at) VALUES (?, ?, ?, ?, ?, ?)`

	layerType := sql.NullString{String: e.LayerType, Valid: e.LayerType != ""}
	if len(e.Positions) == 0 {
		_, err := j.db.ExecContext(ctx, insert, e.Session, e.Action, layerType, nil, nil, e.At)
		return err
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, p := range e.Positions {
		if _, err := tx.ExecContext(ctx, insert, e.Session, e.Action, layerType, p.Lat, p.Lng, e.At); err != nil {
			tx.Rollback()
			return fmt.Errorf("journal %s: %w", e.Action, err)
		}
	}
	return tx.Commit()
}
