// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/canon-engine/pkg/types"
)

const exportLimit = 100000

// ExportYAML writes matching segments to index/export.yaml under the store
// directory and returns the path written. It supports the same filters as
// Retrieve; an empty query exports in reading order.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	segs, err := s.exportSegments(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, indexDir, "export.yaml")
	data, err := yaml.Marshal(segs)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes matching segments to index/export.json under the store
// directory and returns the path written.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) (string, error) {
	segs, err := s.exportSegments(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, indexDir, "export.json")
	data, err := json.MarshalIndent(segs, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) exportSegments(ctx context.Context, opts QueryOptions) ([]types.CanonicalSegment, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = exportLimit
	}
	segs, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if segs == nil {
		segs = []types.CanonicalSegment{}
	}
	return segs, nil
}
