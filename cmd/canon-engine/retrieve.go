// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/canon-engine/internal/store"
	"github.com/pdiddy/canon-engine/pkg/types"
)

// --- retrieve ---

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the SQLite store with full-text search and filters",
	Long: `Retrieve searches indexed segments using FTS5 full-text search over the
primary text, title slots and every variant, structured filters (basket,
collection, work, translator, verse), or both.

Use --id to print one segment, with --context N to include its neighbors.`,
	RunE: runRetrieve,
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(pipelineConfig().Store)
	if err != nil {
		return err
	}
	defer s.Close()

	jsonOutput, _ := cmd.Flags().GetBool("json")

	if id, _ := cmd.Flags().GetString("id"); id != "" {
		radius, _ := cmd.Flags().GetInt("context")
		segs, err := s.Context(cmd.Context(), id, radius)
		if err != nil {
			return err
		}
		return formatSegments(os.Stdout, segs, jsonOutput)
	}

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --basket, --collection, --work, --translator, or --verse")
	}

	results, err := s.Retrieve(cmd.Context(), opts)
	if err != nil {
		return err
	}
	return formatSegments(os.Stdout, results, jsonOutput)
}

func formatSegments(w io.Writer, segs []types.CanonicalSegment, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if segs == nil {
			segs = []types.CanonicalSegment{}
		}
		return enc.Encode(segs)
	}

	if len(segs) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-22s  %-10s  %-8s  %s\n", "Rank", "Segment", "Ref", "Verse", "Text")
	fmt.Fprintln(w, strings.Repeat("-", 100))

	for i, seg := range segs {
		verse := ""
		if seg.IsVerse && seg.StanzaNo != nil && seg.LineNo != nil {
			verse = fmt.Sprintf("%d.%d", *seg.StanzaNo, *seg.LineNo)
		}
		fmt.Fprintf(w, "%-4d  %-22s  %-10s  %-8s  %s\n",
			i+1, truncate(seg.SegmentID, 22), truncate(types.Deref(seg.CanonicalRef), 10),
			verse, truncate(displayText(seg), 50))
	}

	fmt.Fprintf(w, "\n%s results\n", humanize.Comma(int64(len(segs))))
	return nil
}

// displayText prefers the primary text and falls back to the first variant.
func displayText(seg types.CanonicalSegment) string {
	if seg.Text != nil {
		return *seg.Text
	}
	if len(seg.Variants) > 0 {
		return seg.Variants[0].Text
	}
	return ""
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- export ---

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the SQLite store to YAML or JSON",
	Long: `Export writes every stored segment (or a filtered subset) to
<store-dir>/index/export.yaml or export.json. Supports the same filter flags
as retrieve.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := store.NewStore(pipelineConfig().Store)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = s.ExportYAML(cmd.Context(), opts)
	case "json":
		path, err = s.ExportJSON(cmd.Context(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}

	fmt.Println("Exported to", path)
	return nil
}

// --- shared helpers ---

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	basket, _ := cmd.Flags().GetString("basket")
	collection, _ := cmd.Flags().GetString("collection")
	work, _ := cmd.Flags().GetString("work")
	translator, _ := cmd.Flags().GetString("translator")
	limit, _ := cmd.Flags().GetInt("limit")

	opts := store.QueryOptions{
		Query:      queryText,
		Basket:     types.Basket(strings.ToLower(basket)),
		Collection: strings.ToUpper(collection),
		WorkID:     strings.ToLower(work),
		Translator: translator,
		MaxResults: limit,
	}
	if cmd.Flags().Changed("verse") {
		verse, _ := cmd.Flags().GetBool("verse")
		opts.Verse = &verse
	}
	return opts
}

func addFilterFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("query", "", "full-text search query")
	f.String("basket", "", "filter by basket: sutta, vinaya, abhidhamma, extracanonical")
	f.String("collection", "", "filter by collection: DN, MN, SN, AN, KN")
	f.String("work", "", "filter by work id (e.g. mn10)")
	f.String("translator", "", "filter by translator")
	f.Bool("verse", false, "keep only verse segments (--verse=false for prose)")
	f.Int("limit", 0, "maximum results (0 = use default)")
}

func init() {
	addFilterFlags(retrieveCmd)
	retrieveCmd.Flags().Bool("json", false, "output results as JSON")
	retrieveCmd.Flags().String("id", "", "print the segment with this id")
	retrieveCmd.Flags().Int("context", 0, "with --id, neighbors to include on each side")

	addFilterFlags(exportCmd)
	exportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	rootCmd.AddCommand(retrieveCmd)
	rootCmd.AddCommand(exportCmd)
}
