// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package elastic delivers CanonicalSegments to an Elasticsearch index
// through the _bulk API. Documents are indexed with _id = segment_id, so
// re-sending a batch overwrites rather than duplicates.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/canon-engine/internal/httputil"
	"github.com/pdiddy/canon-engine/internal/logging"
	"github.com/pdiddy/canon-engine/pkg/types"
)

const (
	defaultIndex     = "canon_segments"
	defaultChunkSize = 500
	defaultUserAgent = "canon-engine"
)

// Client sends segments to one index.
type Client struct {
	cfg    types.ElasticConfig
	http   *http.Client
	logger *slog.Logger
}

// New returns a Client for cfg. A nil client uses http.DefaultClient with
// cfg.Timeout applied; a nil logger discards.
func New(cfg types.ElasticConfig, client *http.Client, logger *slog.Logger) *Client {
	if cfg.Index == "" {
		cfg.Index = defaultIndex
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Client{cfg: cfg, http: client, logger: logger}
}

// Index returns the target index name.
func (c *Client) Index() string {
	return c.cfg.Index
}

// EnsureIndex creates the index with the segment mapping if it does not
// exist yet.
func (c *Client) EnsureIndex(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodHead, "/"+url.PathEscape(c.cfg.Index), nil, "")
	if err != nil {
		return fmt.Errorf("checking index %s: %w", c.cfg.Index, err)
	}
	drain(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("checking index %s: unexpected status %d", c.cfg.Index, resp.StatusCode)
	}

	body, err := json.Marshal(indexMapping)
	if err != nil {
		return fmt.Errorf("marshaling mapping: %w", err)
	}
	resp, err = c.do(ctx, http.MethodPut, "/"+url.PathEscape(c.cfg.Index), body, "application/json")
	if err != nil {
		return fmt.Errorf("creating index %s: %w", c.cfg.Index, err)
	}
	defer drain(resp)
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("creating index %s: status %d: %s", c.cfg.Index, resp.StatusCode, bytes.TrimSpace(msg))
	}
	c.logger.Info("created index", "index", c.cfg.Index)
	return nil
}

// bulkResponse is the subset of the _bulk reply that is inspected.
type bulkResponse struct {
	Errors bool                         `json:"errors"`
	Items  []map[string]bulkItemOutcome `json:"items"`
}

type bulkItemOutcome struct {
	ID     string `json:"_id"`
	Status int    `json:"status"`
	Result string `json:"result"`
	Error  *struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"error"`
}

// Upsert sends segs in chunks of cfg.ChunkSize. Per-document failures and
// rejected chunks are written to w and counted; transport errors abort.
// When cfg.Refresh is set the last chunk waits for a refresh.
func (c *Client) Upsert(ctx context.Context, segs []types.CanonicalSegment, w io.Writer) (types.UpsertSummary, error) {
	summary := types.UpsertSummary{RunID: uuid.New().String()}

	for start := 0; start < len(segs); start += c.cfg.ChunkSize {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		end := min(start+c.cfg.ChunkSize, len(segs))
		chunk := segs[start:end]

		body, err := c.encodeChunk(chunk)
		if err != nil {
			return summary, err
		}

		path := "/_bulk"
		if c.cfg.Refresh && end == len(segs) {
			path += "?refresh=wait_for"
		}

		resp, err := c.do(ctx, http.MethodPost, path, body, "application/x-ndjson", summary.RunID)
		if err != nil {
			return summary, fmt.Errorf("sending bulk chunk at %d: %w", start, err)
		}

		if resp.StatusCode >= 300 {
			drain(resp)
			fmt.Fprintf(w, "failed  chunk %d-%d: status %d\n", start, end-1, resp.StatusCode)
			summary.Failed += len(chunk)
			continue
		}

		var br bulkResponse
		err = json.NewDecoder(resp.Body).Decode(&br)
		drain(resp)
		if err != nil {
			fmt.Fprintf(w, "failed  chunk %d-%d: decoding response: %v\n", start, end-1, err)
			summary.Failed += len(chunk)
			continue
		}
		tally(&summary, br, w)

		c.logger.Debug("bulk chunk sent",
			"run_id", summary.RunID, "start", start, "size", len(chunk), "errors", br.Errors)
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)
	return summary, nil
}

func tally(summary *types.UpsertSummary, br bulkResponse, w io.Writer) {
	for _, item := range br.Items {
		for _, outcome := range item {
			switch {
			case outcome.Error != nil || outcome.Status >= 300:
				reason := fmt.Sprintf("status %d", outcome.Status)
				if outcome.Error != nil {
					reason = outcome.Error.Type + ": " + outcome.Error.Reason
				}
				fmt.Fprintf(w, "failed  %s: %s\n", outcome.ID, reason)
				summary.Failed++
			case outcome.Result == "created":
				summary.Indexed++
			case outcome.Result == "noop":
				summary.Skipped++
			default:
				summary.Updated++
			}
		}
	}
}

// encodeChunk renders one NDJSON bulk body: an index action line followed
// by the document line for each segment.
func (c *Client) encodeChunk(chunk []types.CanonicalSegment) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i := range chunk {
		action := map[string]map[string]string{
			"index": {"_index": c.cfg.Index, "_id": chunk[i].SegmentID},
		}
		if err := enc.Encode(action); err != nil {
			return nil, fmt.Errorf("encoding action for %s: %w", chunk[i].SegmentID, err)
		}
		if err := enc.Encode(&chunk[i]); err != nil {
			return nil, fmt.Errorf("encoding %s: %w", chunk[i].SegmentID, err)
		}
	}
	return buf.Bytes(), nil
}

// do issues one request with auth and retry. An optional opaque id is
// attached for tracing in the cluster's task and slow logs.
func (c *Client) do(ctx context.Context, method, path string, body []byte, contentType string, opaqueID ...string) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.URL+path, r)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	if len(opaqueID) > 0 {
		req.Header.Set("X-Opaque-Id", opaqueID[0])
	}
	switch {
	case c.cfg.APIKey != "":
		req.Header.Set("Authorization", "ApiKey "+c.cfg.APIKey)
	case c.cfg.User != "":
		req.SetBasicAuth(c.cfg.User, c.cfg.Password)
	}

	return httputil.DoWithRetry(ctx, c.http, req, c.cfg.MaxRetries, c.logger)
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
