// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/canon-engine/pkg/types"
)

// --- test helpers ---

func writeFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func corpus(t *testing.T) (dir string, paths []string) {
	t.Helper()
	dir = t.TempDir()
	paths = []string{
		writeFile(t, dir, "root/pli/ms/sutta/mn/mn10_root-pli-ms.json",
			`{"mn10:0.1": "MN 10", "mn10:1.1": "Thus I have heard.", "bogus": "x"}`),
		writeFile(t, dir, "translation/en/sujato/sutta/mn/mn10_translation-en-sujato.json",
			`{"mn10:1.1": "Should be discourse"}`),
	}
	return dir, paths
}

func byID(segs []types.CanonicalSegment) map[string]types.CanonicalSegment {
	m := make(map[string]types.CanonicalSegment, len(segs))
	for _, s := range segs {
		m[s.SegmentID] = s
	}
	return m
}

// --- tests ---

func TestRunRootAndTranslation(t *testing.T) {
	_, paths := corpus(t)
	var progress bytes.Buffer

	segs, res, err := Run(context.Background(), paths, Config{}, &progress)
	require.NoError(t, err)
	assert.Empty(t, progress.String())

	assert.Equal(t, 2, res.Files)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 3, res.RawSegments)
	assert.Equal(t, 1, res.MalformedKeys)
	assert.Equal(t, 2, res.Segments)
	assert.Equal(t, 1, res.Works)
	assert.False(t, res.HasFailures())

	require.Len(t, segs, 2)
	got := byID(segs)
	seg := got["mn10:1.1"]
	assert.False(t, seg.IsTitle)
	assert.Equal(t, int64(1001000000), seg.Seq)
	assert.Equal(t, "Should be discourse", types.Deref(seg.Text))
	require.Len(t, seg.Variants, 2)
	assert.Equal(t, types.LayerRoot, seg.Variants[0].Layer)
	assert.Equal(t, types.LayerTranslation, seg.Variants[1].Layer)
	assert.Equal(t, "MN", types.Deref(seg.Collection))

	title := got["mn10:0.1"]
	assert.True(t, title.IsTitle)
	assert.Equal(t, "MN 10", types.Deref(title.Text))
}

func TestRunIsIdempotent(t *testing.T) {
	_, paths := corpus(t)

	render := func() []byte {
		segs, _, err := Run(context.Background(), paths, Config{}, &bytes.Buffer{})
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, WriteJSONL(&buf, segs))
		return buf.Bytes()
	}
	assert.Equal(t, render(), render())
}

func TestRunRecordsFileErrors(t *testing.T) {
	dir, paths := corpus(t)
	broken := writeFile(t, dir, "root/pli/ms/sutta/mn/mn11_root-pli-ms.json", `{"mn11:1.1": `)
	unknown := writeFile(t, dir, "notes.txt", "hello")
	paths = append([]string{broken}, append(paths, unknown)...)

	var progress bytes.Buffer
	segs, res, err := Run(context.Background(), paths, Config{}, &progress)
	require.NoError(t, err)
	assert.Len(t, segs, 2)

	assert.Equal(t, 2, res.Failed)
	assert.Equal(t, 4, res.Total())
	assert.True(t, res.HasFailures())
	require.Len(t, res.Errors, 2)
	assert.Equal(t, broken, res.Errors[0].Path)
	assert.Equal(t, "parsing source", res.Errors[0].Reason)
	assert.Equal(t, "unsupported format", res.Errors[1].Reason)

	lines := strings.Split(strings.TrimSpace(progress.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "failed  "+broken))
}

func TestAddFileReturnsFileError(t *testing.T) {
	b := NewBatch(Config{})
	err := b.AddFile(filepath.Join(t.TempDir(), "missing.json"))
	var fe *FileError
	require.True(t, errors.As(err, &fe))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.Equal(t, 1, b.Result().Failed)
}

func TestRunSortInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "root/pli/ms/sutta/kn/thag1.1_a.json", `{"thag1.1:1.1": "a1", "thag1.1:1.2": "a2"}`)
	b := writeFile(t, dir, "root/pli/ms/sutta/kn/thag1.1_b.json", `{"thag1.1:2.1": "b1"}`)

	segs, _, err := Run(context.Background(), []string{b, a}, Config{SortInputs: true}, &bytes.Buffer{})
	require.NoError(t, err)
	got := byID(segs)
	assert.Equal(t, 1, *got["thag1.1:1.1"].StanzaNo)
	assert.Equal(t, 2, *got["thag1.1:2.1"].StanzaNo)
	assert.Equal(t, "thag1.1:1.1", segs[0].SegmentID)

	segs, _, err = Run(context.Background(), []string{b, a}, Config{}, &bytes.Buffer{})
	require.NoError(t, err)
	got = byID(segs)
	assert.Equal(t, 1, *got["thag1.1:2.1"].StanzaNo)
	assert.Equal(t, 2, *got["thag1.1:1.1"].StanzaNo)
}

func TestRunCancelled(t *testing.T) {
	_, paths := corpus(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Run(ctx, paths, Config{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunMarkupCanonicalFlag(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "romn/s0101m.mul.xml", `<TEI.2><text><body>
<p rend="nikaya">Dīghanikāyo</p>
<div id="dn1" type="book">
  <div id="dn1_5" type="sutta">
    <p rend="subhead">5. Kūṭadantasuttaṃ</p>
    <p rend="bodytext" n="323">323. Evaṃ me sutaṃ.</p>
  </div>
</div>
</body></text></TEI.2>`)

	segs, _, err := Run(context.Background(), []string{path}, Config{Canonical: true}, &bytes.Buffer{})
	require.NoError(t, err)
	seg := byID(segs)["dn1_5.p.323"]
	assert.Equal(t, "DN 5", types.Deref(seg.CanonicalRef))
	assert.Equal(t, "pli", types.Deref(seg.Lang))
	assert.Equal(t, "Evaṃ me sutaṃ.", types.Deref(seg.Text))

	segs, _, err = Run(context.Background(), []string{path}, Config{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Nil(t, byID(segs)["dn1_5.p.323"].CanonicalRef)
}

func TestWriteJSONL(t *testing.T) {
	_, paths := corpus(t)
	segs, _, err := Run(context.Background(), paths, Config{}, &bytes.Buffer{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteJSONL(&buf, segs))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &rec))
	assert.Equal(t, "mn10:1.1", rec["segment_id"])
	assert.Equal(t, "1.1", rec["segment_num"])
	assert.Contains(t, rec, "vagga")
	assert.Nil(t, rec["vagga"])
	assert.Len(t, rec["variants"], 2)
}
