// Package journal keeps one SQLite row per decided tick, for looking back at
// what the controller did and what it skipped.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/nstehr/tundra/tundra-core/manager"
	"github.com/nstehr/tundra/tundra-core/usererr"
)

type Journal struct {
	db     *sql.DB
	insert *sql.Stmt
}

// Open creates or reopens the journal at path.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("empty journal path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			bucket INTEGER NOT NULL,
			ran TEXT NOT NULL,
			skipped TEXT NOT NULL,
			failed TEXT NOT NULL,
			assigned INTEGER NOT NULL,
			intents INTEGER NOT NULL,
			intents_json TEXT NOT NULL,
			errors INTEGER NOT NULL,
			error_kinds TEXT NOT NULL,
			gc_removed INTEGER NOT NULL,
			duration_us INTEGER NOT NULL
		);`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("init journal: %w", err)
		}
	}

	insert, err := db.Prepare(`INSERT OR REPLACE INTO ticks
		(tick, bucket, ran, skipped, failed, assigned, intents, intents_json, errors, error_kinds, gc_removed, duration_us)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	return &Journal{db: db, insert: insert}, nil
}

// Record writes rep, replacing any earlier row for the same tick.
func (j *Journal) Record(rep *manager.TickReport) error {
	intents, err := json.Marshal(rep.Intents)
	if err != nil {
		return err
	}
	kinds := make([]string, 0, len(rep.Errors))
	for _, e := range rep.Errors {
		kinds = append(kinds, usererr.KindName(e))
	}
	_, err = j.insert.Exec(
		rep.Tick,
		rep.Bucket,
		strings.Join(rep.Ran, ","),
		strings.Join(rep.Skipped, ","),
		strings.Join(rep.Failed, ","),
		rep.Assigned,
		rep.IntentTotal(),
		string(intents),
		len(rep.Errors),
		strings.Join(kinds, ","),
		rep.GC.Total(),
		rep.Duration.Microseconds(),
	)
	if err != nil {
		return fmt.Errorf("record tick %d: %w", rep.Tick, err)
	}
	return nil
}

// Summary is an aggregate over the recorded ticks.
type Summary struct {
	Ticks    int
	First    int
	Last     int
	Assigned int
	Intents  int
	Errors   int
}

func (j *Journal) Summary() (Summary, error) {
	var s Summary
	row := j.db.QueryRow(`SELECT COUNT(*), COALESCE(MIN(tick),0), COALESCE(MAX(tick),0),
		COALESCE(SUM(assigned),0), COALESCE(SUM(intents),0), COALESCE(SUM(errors),0) FROM ticks`)
	if err := row.Scan(&s.Ticks, &s.First, &s.Last, &s.Assigned, &s.Intents, &s.Errors); err != nil {
		return s, fmt.Errorf("summary: %w", err)
	}
	return s, nil
}

func (j *Journal) Close() error {
	j.insert.Close()
	return j.db.Close()
}
