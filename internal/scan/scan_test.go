package scan

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/askeland/pdftriage/internal/classify"
	"github.com/askeland/pdftriage/internal/pdfstruct"
	"github.com/askeland/pdftriage/internal/report"
	"github.com/askeland/pdftriage/internal/structtree"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTree lays out files under a fresh scan root named "docs" and
// returns the root path.
func writeTree(t *testing.T, names ...string) string {
	t.Helper()
	root := filepath.Join(t.TempDir(), "docs")
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("stub"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// fakeOpen serves canned documents keyed by file basename.
func fakeOpen(docs map[string]*pdfstruct.Document) OpenFunc {
	return func(path string) (*pdfstruct.Document, error) {
		name := filepath.Base(path)
		if doc, ok := docs[name]; ok {
			return doc, nil
		}
		return nil, &pdfstruct.FileError{Path: path, Err: io.ErrUnexpectedEOF}
	}
}

func taggedDoc() *pdfstruct.Document {
	return &pdfstruct.Document{
		Root: &structtree.Node{Type: "StructTreeRoot", Children: []*structtree.Node{
			{Type: "H1"},
		}},
		Meta: structtree.Metadata{"Title": "T", "Author": "A"},
	}
}

func TestRun_RowPerFileInEnumerationOrder(t *testing.T) {
	root := writeTree(t, "b.pdf", "a.pdf", "sub/c.pdf", "notes.txt")
	docs := map[string]*pdfstruct.Document{
		"a.pdf": taggedDoc(),
		"b.pdf": {Meta: structtree.Metadata{"Title": "T"}},
		"c.pdf": taggedDoc(),
	}

	rep := report.New()
	s := New(fakeOpen(docs), rep, discardLogger(), nil, 4)
	if err := s.Run(context.Background(), root); err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries := rep.Entries()
	if len(entries) != 3 {
		t.Fatalf("got %d rows, want 3 (txt file must be ignored)", len(entries))
	}

	want := []string{
		filepath.Join("docs", "a.pdf"),
		filepath.Join("docs", "b.pdf"),
		filepath.Join("docs", "sub", "c.pdf"),
	}
	for i, e := range entries {
		name := e.Name
		if e.Record != nil {
			name = e.Record.Filename
		}
		if name != want[i] {
			t.Errorf("row %d = %q, want %q", i, name, want[i])
		}
	}
}

func TestRun_ContinuesPastFileError(t *testing.T) {
	root := writeTree(t, "a.pdf", "broken.pdf", "z.pdf")
	docs := map[string]*pdfstruct.Document{
		"a.pdf": taggedDoc(),
		"z.pdf": taggedDoc(),
	}

	rep := report.New()
	s := New(fakeOpen(docs), rep, discardLogger(), nil, 1)
	if err := s.Run(context.Background(), root); err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries := rep.Entries()
	if len(entries) != 3 {
		t.Fatalf("got %d rows, want 3", len(entries))
	}
	if entries[1].Err == nil {
		t.Error("broken.pdf should produce an error row")
	}
	if entries[0].Record == nil || entries[2].Record == nil {
		t.Error("files around the failure should still produce judgment rows")
	}

	var sb strings.Builder
	if err := rep.WriteCSV(&sb); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !strings.Contains(sb.String(), report.ErrorSentinel) {
		t.Error("CSV should carry the error sentinel for the broken file")
	}
}

func TestRun_MalformedStructureStillProducesJudgmentRow(t *testing.T) {
	root := writeTree(t, "damaged.pdf")
	docs := map[string]*pdfstruct.Document{
		"damaged.pdf": {
			Root:      nil, // structure catalog degraded to untagged
			Meta:      structtree.Metadata{"Title": "T", "Author": "A"},
			StructErr: &pdfstruct.StructureError{Err: io.ErrUnexpectedEOF},
		},
	}

	rep := report.New()
	s := New(fakeOpen(docs), rep, discardLogger(), nil, 1)
	if err := s.Run(context.Background(), root); err != nil {
		t.Fatalf("Run: %v", err)
	}

	entries := rep.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d rows, want 1", len(entries))
	}
	rec := entries[0].Record
	if rec == nil {
		t.Fatal("degraded structure must yield a judgment row, not an error row")
	}
	if rec.Tags != classify.Fail {
		t.Errorf("tags = %q, want Fail for a degraded structure tree", rec.Tags)
	}
	if rec.ContainsImages != classify.PresenceUnknown || rec.HeaderOrdering != classify.NotApplicable {
		t.Errorf("gated checks = (%q, %q), want (N/A, N/A)", rec.ContainsImages, rec.HeaderOrdering)
	}
	if rec.Metadata != classify.Pass {
		t.Errorf("metadata = %q, want Pass; readable metadata must still count", rec.Metadata)
	}
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	root := writeTree(t, "a.pdf", "b.pdf", "c.pdf", "d.pdf", "e.pdf", "sub/f.pdf")
	docs := map[string]*pdfstruct.Document{
		"a.pdf": taggedDoc(),
		"c.pdf": taggedDoc(),
		"e.pdf": {Meta: structtree.Metadata{"Title": "T", "Author": "A"}},
		"f.pdf": taggedDoc(),
	}

	var outputs []string
	for _, workers := range []int{1, 4} {
		rep := report.New()
		s := New(fakeOpen(docs), rep, discardLogger(), nil, workers)
		if err := s.Run(context.Background(), root); err != nil {
			t.Fatalf("Run(workers=%d): %v", workers, err)
		}
		var sb strings.Builder
		if err := rep.WriteCSV(&sb); err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, sb.String())
	}

	if outputs[0] != outputs[1] {
		t.Errorf("output differs across worker counts:\n%s\nvs\n%s", outputs[0], outputs[1])
	}
}

func TestRun_MissingRootFails(t *testing.T) {
	rep := report.New()
	s := New(fakeOpen(nil), rep, discardLogger(), nil, 1)
	if err := s.Run(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("scanning a missing root should fail")
	}
}

func TestRun_EmptyTreeProducesNoRows(t *testing.T) {
	root := writeTree(t, "readme.md")
	rep := report.New()
	s := New(fakeOpen(nil), rep, discardLogger(), nil, 1)
	if err := s.Run(context.Background(), root); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Len() != 0 {
		t.Errorf("got %d rows, want 0", rep.Len())
	}
}

func TestRun_CancelledContextStops(t *testing.T) {
	root := writeTree(t, "a.pdf")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := report.New()
	s := New(fakeOpen(map[string]*pdfstruct.Document{"a.pdf": taggedDoc()}), rep, discardLogger(), nil, 1)
	if err := s.Run(ctx, root); err == nil {
		t.Error("cancelled context should surface as an error")
	}
}

func TestDisplayName_FallsBackToFullPath(t *testing.T) {
	if got := displayName("/somewhere/else", "/data/docs/a.pdf"); !strings.HasSuffix(got, "a.pdf") {
		t.Errorf("displayName = %q", got)
	}
	got := displayName("/data", "/data/docs/a.pdf")
	if got != filepath.Join("docs", "a.pdf") {
		t.Errorf("displayName = %q, want %q", got, filepath.Join("docs", "a.pdf"))
	}
}
