// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"cmp"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/pdiddy/canon-engine/pkg/types"
)

// ErrNotFound is returned when a segment id is not in the store.
var ErrNotFound = errors.New("segment not found")

// QueryOptions holds parameters for segment queries.
type QueryOptions struct {
	// Query is the FTS5 full-text search string.
	Query string

	// Basket filters by top-level basket.
	Basket types.Basket

	// Collection filters by collection code (DN, MN, SN, AN, KN).
	Collection string

	// WorkID filters by work.
	WorkID string

	// Translator filters by the primary translator.
	Translator string

	// Verse, when set, keeps only verse (true) or prose (false) segments.
	Verse *bool

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Basket == "" && q.Collection == "" &&
		q.WorkID == "" && q.Translator == "" && q.Verse == nil
}

// Retrieve queries segments with optional full-text search and structured
// filters. Full-text results are ranked by relevance; filter-only results
// are in reading order (work_id, seq).
func (s *Store) Retrieve(ctx context.Context, opts QueryOptions) ([]types.CanonicalSegment, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT s.body FROM segments_fts
			JOIN segments s ON s.rowid = segments_fts.rowid
			WHERE segments_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(`SELECT s.body FROM segments s WHERE 1=1`)
	}

	if opts.Basket != "" {
		qb.WriteString(` AND s.basket = ?`)
		args = append(args, string(opts.Basket))
	}
	if opts.Collection != "" {
		qb.WriteString(` AND s.collection = ?`)
		args = append(args, opts.Collection)
	}
	if opts.WorkID != "" {
		qb.WriteString(` AND s.work_id = ?`)
		args = append(args, opts.WorkID)
	}
	if opts.Translator != "" {
		qb.WriteString(` AND s.translator = ?`)
		args = append(args, opts.Translator)
	}
	if opts.Verse != nil {
		qb.WriteString(` AND s.is_verse = ?`)
		args = append(args, *opts.Verse)
	}

	if useFTS {
		qb.WriteString(` ORDER BY segments_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY s.work_id, s.seq, s.segment_id`)
	}

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying segments: %w", err)
	}
	defer rows.Close()

	return scanBodies(rows)
}

// Get returns the segment stored under id.
func (s *Store) Get(ctx context.Context, id string) (types.CanonicalSegment, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM segments WHERE segment_id = ?`, id,
	).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.CanonicalSegment{}, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return types.CanonicalSegment{}, fmt.Errorf("looking up segment: %w", err)
	}

	var seg types.CanonicalSegment
	if err := json.Unmarshal([]byte(body), &seg); err != nil {
		return types.CanonicalSegment{}, fmt.Errorf("decoding segment %s: %w", id, err)
	}
	return seg, nil
}

// Context returns the segment stored under id together with up to radius
// neighbors on each side within the same work, in reading order.
func (s *Store) Context(ctx context.Context, id string, radius int) ([]types.CanonicalSegment, error) {
	var workID string
	var seq int64
	err := s.db.QueryRowContext(ctx,
		`SELECT work_id, seq FROM segments WHERE segment_id = ?`, id,
	).Scan(&workID, &seq)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("looking up segment: %w", err)
	}
	if radius < 0 {
		radius = 0
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM (
			SELECT body, seq, segment_id FROM segments
			WHERE work_id = ? AND (seq < ? OR (seq = ? AND segment_id < ?))
			ORDER BY seq DESC, segment_id DESC LIMIT ?
		)
		UNION ALL
		SELECT body FROM (
			SELECT body, seq, segment_id FROM segments
			WHERE work_id = ? AND (seq > ? OR (seq = ? AND segment_id >= ?))
			ORDER BY seq, segment_id LIMIT ?
		)`,
		workID, seq, seq, id, radius,
		workID, seq, seq, id, radius+1,
	)
	if err != nil {
		return nil, fmt.Errorf("querying context: %w", err)
	}
	defer rows.Close()

	segs, err := scanBodies(rows)
	if err != nil {
		return nil, err
	}
	sortReading(segs)
	return segs, nil
}

func scanBodies(rows *sql.Rows) ([]types.CanonicalSegment, error) {
	var results []types.CanonicalSegment
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		var seg types.CanonicalSegment
		if err := json.Unmarshal([]byte(body), &seg); err != nil {
			return nil, fmt.Errorf("decoding segment: %w", err)
		}
		results = append(results, seg)
	}
	return results, rows.Err()
}

func sortReading(segs []types.CanonicalSegment) {
	slices.SortFunc(segs, func(a, b types.CanonicalSegment) int {
		if c := cmp.Compare(a.Seq, b.Seq); c != 0 {
			return c
		}
		return strings.Compare(a.SegmentID, b.SegmentID)
	})
}
