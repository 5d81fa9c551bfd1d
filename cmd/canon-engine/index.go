// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/canon-engine/internal/elastic"
	"github.com/pdiddy/canon-engine/internal/pipeline"
	"github.com/pdiddy/canon-engine/internal/store"
	"github.com/pdiddy/canon-engine/pkg/types"
)

// Sink names accepted by --sink.
const (
	sinkSQLite  = "sqlite"
	sinkElastic = "elastic"
	sinkJSONL   = "jsonl"
)

var indexCmd = &cobra.Command{
	Use:   "index [paths|globs...]",
	Short: "Run an ingestion batch and deliver the segments to a sink",
	Long: `Index reads every given file (directories are walked for .xml and .json
files), extracts and merges segments, and delivers one record per segment id.

Files that cannot be decoded or parsed are reported and excluded; the rest of
the batch continues. Delivery is an upsert keyed by segment id, so re-running
a batch never duplicates records.

Sinks:
  sqlite   local FTS5 store under --store-dir (default)
  elastic  Elasticsearch _bulk at --es-url into --es-index
  jsonl    one JSON record per line to --out (default stdout)`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := pipelineConfig()
	if cmd.Flags().Changed("no-canonical") {
		off, _ := cmd.Flags().GetBool("no-canonical")
		cfg.Index.Canonical = !off
	}

	paths, err := pipeline.ExpandInputs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no source files matched %v", args)
	}

	start := time.Now()
	segs, result, err := pipeline.Run(ctx, paths, pipeline.ConfigFrom(cfg.Index, logger), os.Stderr)
	if err != nil {
		return err
	}
	printBatchSummary(os.Stderr, result, time.Since(start))

	sink := viper.GetString("sink")
	var summary types.UpsertSummary
	switch sink {
	case sinkJSONL:
		summary, err = deliverJSONL(cmd, segs)
	case sinkSQLite, "":
		summary, err = deliverSQLite(cmd, cfg.Store, segs)
	case sinkElastic:
		summary, err = deliverElastic(cmd, cfg.Elastic, segs)
	default:
		return fmt.Errorf("unsupported sink %q: use sqlite, elastic, or jsonl", sink)
	}
	if err != nil {
		return err
	}

	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed", result.Failed)
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d segment(s) failed delivery", summary.Failed)
	}
	return nil
}

func printBatchSummary(w io.Writer, r pipeline.BatchResult, elapsed time.Duration) {
	fmt.Fprintf(w, "files: %s, failed: %s, works: %s, raw segments: %s, segments: %s (malformed keys: %s, empty: %s) in %s\n",
		humanize.Comma(int64(r.Files)),
		humanize.Comma(int64(r.Failed)),
		humanize.Comma(int64(r.Works)),
		humanize.Comma(int64(r.RawSegments)),
		humanize.Comma(int64(r.Segments)),
		humanize.Comma(int64(r.MalformedKeys)),
		humanize.Comma(int64(r.EmptySegments)),
		elapsed.Round(time.Millisecond))
}

func deliverJSONL(cmd *cobra.Command, segs []types.CanonicalSegment) (types.UpsertSummary, error) {
	out, _ := cmd.Flags().GetString("out")
	w := io.Writer(os.Stdout)
	if out != "" && out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return types.UpsertSummary{}, fmt.Errorf("creating %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}

	if err := pipeline.WriteJSONL(w, segs); err != nil {
		return types.UpsertSummary{}, err
	}
	if f, ok := w.(*os.File); ok && f != os.Stdout {
		if info, err := f.Stat(); err == nil {
			fmt.Fprintf(os.Stderr, "wrote %s records (%s) to %s\n",
				humanize.Comma(int64(len(segs))), humanize.Bytes(uint64(info.Size())), out)
		}
	}
	return types.UpsertSummary{Indexed: len(segs)}, nil
}

func deliverSQLite(cmd *cobra.Command, cfg types.StoreConfig, segs []types.CanonicalSegment) (types.UpsertSummary, error) {
	s, err := store.NewStore(cfg)
	if err != nil {
		return types.UpsertSummary{}, err
	}
	defer s.Close()

	summary, err := s.Upsert(cmd.Context(), segs, os.Stdout)
	if err != nil {
		return summary, err
	}
	logger.Info("sqlite upsert complete", "run_id", summary.RunID, "dir", cfg.Dir)
	return summary, nil
}

func deliverElastic(cmd *cobra.Command, cfg types.ElasticConfig, segs []types.CanonicalSegment) (types.UpsertSummary, error) {
	c := elastic.New(cfg, nil, logger)
	if err := c.EnsureIndex(cmd.Context()); err != nil {
		return types.UpsertSummary{}, err
	}

	summary, err := c.Upsert(cmd.Context(), segs, os.Stdout)
	if err != nil {
		return summary, err
	}
	logger.Info("elastic upsert complete", "run_id", summary.RunID, "index", c.Index())
	return summary, nil
}

func init() {
	f := indexCmd.Flags()
	f.String("sink", sinkSQLite, "delivery sink: sqlite, elastic, or jsonl")
	f.String("out", "", "output file for the jsonl sink (default stdout)")
	f.Bool("no-canonical", false, "disable canonical DN/MN/SN/AN numbering for markup sources")
	f.Bool("sort", false, "sort inputs by path before processing")
	f.String("es-url", "", "Elasticsearch base URL")
	f.String("es-index", "", "Elasticsearch index name")
	f.String("es-user", "", "Elasticsearch basic-auth user")
	f.Int("chunk-size", 0, "records per bulk request")
	f.Bool("refresh", false, "refresh the index after the last bulk request")

	viper.BindPFlag("sink", f.Lookup("sink"))
	viper.BindPFlag("index.sort_inputs", f.Lookup("sort"))
	viper.BindPFlag("elastic.url", f.Lookup("es-url"))
	viper.BindPFlag("elastic.index", f.Lookup("es-index"))
	viper.BindPFlag("elastic.user", f.Lookup("es-user"))
	viper.BindPFlag("elastic.chunk_size", f.Lookup("chunk-size"))
	viper.BindPFlag("elastic.refresh", f.Lookup("refresh"))

	rootCmd.AddCommand(indexCmd)
}
