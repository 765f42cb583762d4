package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joeblew999/drawmap/internal/service"
)

func TestJournalRecord(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(Config{DataDir: t.TempDir(), DBName: "test"})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	j, err := NewJournal(ctx, conn)
	if err != nil {
		t.Fatal(err)
	}

	now := time.Now().UTC()
	entries := []service.JournalEntry{
		{Session: "a", Action: service.ActionMounted, At: now},
		{Session: "a", Action: service.ActionCreated, LayerType: service.KindMarker, Positions: []service.LatLng{{Lat: 1, Lng: 2}}, At: now},
		{Session: "a", Action: service.ActionDeleted, Positions: []service.LatLng{{Lat: 1, Lng: 2}, {Lat: 3, Lng: 4}}, At: now},
		{Session: "b", Action: service.ActionMounted, At: now},
	}
	for _, e := range entries {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("record %s: %v", e.Action, err)
		}
	}

	n, err := countRows(ctx, conn, "a")
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("rows for a=%d, want 4", n)
	}

	var lat, lng float64
	err = conn.QueryRowContext(ctx,
		`SELECT lat, lng FROM draw_events WHERE session = 'a' AND action = 'created'`).Scan(&lat, &lng)
	if err != nil {
		t.Fatal(err)
	}
	if lat != 1 || lng != 2 {
		t.Fatalf("created at (%g, %g), want (1, 2)", lat, lng)
	}
}

func TestNewJournalIdempotent(t *testing.T) {
	ctx := context.Background()
	conn, err := Open(Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	if _, err := NewJournal(ctx, conn); err != nil {
		t.Fatal(err)
	}
	if _, err := NewJournal(ctx, conn); err != nil {
		t.Fatalf("second NewJournal: %v", err)
	}
}

func countRows(ctx context.Context, conn *sql.DB, session string) (int, error) {
	var n int
	err := conn.QueryRowContext(ctx, `SELECT count(*) FROM draw_events WHERE session = ?`, session).Scan(&n)
	return n, err
}

func TestExternalAccessDisabled(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	secret := filepath.Join(dir, "secret.txt")
	if err := os.WriteFile(secret, []byte("hunter2"), 0o600); err != nil {
		t.Fatal(err)
	}

	for name, cfg := range map[string]Config{
		"file":   {DataDir: dir, DBName: "test"},
		"memory": {},
	} {
		t.Run(name, func(t *testing.T) {
			conn, err := Open(cfg)
			if err != nil {
				t.Fatal(err)
			}
			defer conn.Close()

			var content string
			err = conn.QueryRowContext(ctx, "SELECT content FROM read_text('"+secret+"')").Scan(&content)
			if err == nil {
				t.Fatalf("read_text succeeded: %q", content)
			}
			if _, err := conn.ExecContext(ctx, "SET enable_external_access = true"); err == nil {
				t.Fatal("external access could be re-enabled")
			}
		})
	}
}
