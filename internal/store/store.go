// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists CanonicalSegments in SQLite with an FTS5 index.
//
// Records are keyed by segment id and written with upsert semantics, so
// re-running a batch updates rows in place. Each record carries a content
// fingerprint; a record whose fingerprint is unchanged is skipped.
package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/zeebo/blake3"

	"github.com/pdiddy/canon-engine/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "canon.db"
)

// Store manages the segment SQLite database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
}

// NewStore opens or creates the database at dir/index/canon.db and creates
// the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ingest_runs (
			run_id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			indexed INTEGER NOT NULL DEFAULT 0,
			updated INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS segments (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			segment_id TEXT NOT NULL UNIQUE,
			work_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			basket TEXT,
			collection TEXT,
			sutta TEXT,
			canonical_ref TEXT,
			translator TEXT,
			lang TEXT,
			is_title INTEGER NOT NULL DEFAULT 0,
			is_verse INTEGER NOT NULL DEFAULT 0,
			search_text TEXT NOT NULL,
			body TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			run_id TEXT REFERENCES ingest_runs(run_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_segments_work ON segments(work_id, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_segments_collection ON segments(basket, collection)`,
		`CREATE INDEX IF NOT EXISTS idx_segments_translator ON segments(translator)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='segments_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE segments_fts USING fts5(search_text, content=segments, content_rowid=rowid)`,
			`CREATE TRIGGER segments_ai AFTER INSERT ON segments BEGIN
				INSERT INTO segments_fts(rowid, search_text) VALUES (new.rowid, new.search_text);
			END`,
			`CREATE TRIGGER segments_ad AFTER DELETE ON segments BEGIN
				INSERT INTO segments_fts(segments_fts, rowid, search_text) VALUES('delete', old.rowid, old.search_text);
			END`,
			`CREATE TRIGGER segments_au AFTER UPDATE ON segments BEGIN
				INSERT INTO segments_fts(segments_fts, rowid, search_text) VALUES('delete', old.rowid, old.search_text);
				INSERT INTO segments_fts(rowid, search_text) VALUES (new.rowid, new.search_text);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Upsert writes segs in one transaction under a new ingest run. Each
// record is indexed (new id), updated (known id, changed content) or
// skipped (known id, same fingerprint). Failures are written to w and
// counted; the remaining records are still written.
func (s *Store) Upsert(ctx context.Context, segs []types.CanonicalSegment, w io.Writer) (types.UpsertSummary, error) {
	summary := types.UpsertSummary{RunID: uuid.New().String()}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	started := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO ingest_runs (run_id, started_at) VALUES (?, ?)`, summary.RunID, started,
	); err != nil {
		return summary, fmt.Errorf("recording ingest run: %w", err)
	}

	lookup, err := tx.PrepareContext(ctx, `SELECT fingerprint FROM segments WHERE segment_id = ?`)
	if err != nil {
		return summary, fmt.Errorf("preparing lookup: %w", err)
	}
	defer lookup.Close()

	upsert, err := tx.PrepareContext(ctx,
		`INSERT INTO segments (segment_id, work_id, seq, basket, collection, sutta, canonical_ref,
			translator, lang, is_title, is_verse, search_text, body, fingerprint, run_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(segment_id) DO UPDATE SET
			work_id=excluded.work_id, seq=excluded.seq, basket=excluded.basket,
			collection=excluded.collection, sutta=excluded.sutta,
			canonical_ref=excluded.canonical_ref, translator=excluded.translator,
			lang=excluded.lang, is_title=excluded.is_title, is_verse=excluded.is_verse,
			search_text=excluded.search_text, body=excluded.body,
			fingerprint=excluded.fingerprint, run_id=excluded.run_id`)
	if err != nil {
		return summary, fmt.Errorf("preparing upsert: %w", err)
	}
	defer upsert.Close()

	for i := range segs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		seg := &segs[i]

		body, err := json.Marshal(seg)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", seg.SegmentID, err)
			summary.Failed++
			continue
		}
		fp := Fingerprint(body)

		var stored string
		err = lookup.QueryRowContext(ctx, seg.SegmentID).Scan(&stored)
		exists := err == nil
		if err != nil && err != sql.ErrNoRows {
			fmt.Fprintf(w, "failed  %s: %v\n", seg.SegmentID, err)
			summary.Failed++
			continue
		}
		if exists && stored == fp {
			summary.Skipped++
			continue
		}

		if _, err := upsert.ExecContext(ctx,
			seg.SegmentID, seg.WorkID, seg.Seq, string(seg.Basket), seg.Collection, seg.Sutta,
			seg.CanonicalRef, seg.Translator, seg.Lang, seg.IsTitle, seg.IsVerse,
			searchText(seg), string(body), fp, summary.RunID,
		); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", seg.SegmentID, err)
			summary.Failed++
			continue
		}

		if exists {
			summary.Updated++
		} else {
			summary.Indexed++
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE ingest_runs SET finished_at = ?, indexed = ?, updated = ?, skipped = ?, failed = ?
		 WHERE run_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano),
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed, summary.RunID,
	); err != nil {
		return summary, fmt.Errorf("finishing ingest run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing: %w", err)
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)
	return summary, nil
}

// Fingerprint returns the hex BLAKE3 digest of a serialized record.
func Fingerprint(body []byte) string {
	sum := blake3.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// searchText is the text indexed for full-text search: the primary text,
// the title slots and every variant's text.
func searchText(seg *types.CanonicalSegment) string {
	var parts []string
	if seg.Text != nil {
		parts = append(parts, *seg.Text)
	}
	for _, t := range seg.Titles {
		parts = append(parts, t.Text)
	}
	for _, v := range seg.Variants {
		parts = append(parts, v.Text)
	}
	return strings.Join(parts, "\n")
}
