// Package scan walks a directory tree, runs the per-file accessibility
// checks, and forwards one row per PDF to the reporter.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/askeland/pdftriage/internal/classify"
	"github.com/askeland/pdftriage/internal/pdfstruct"
	"github.com/askeland/pdftriage/internal/report"
)

// OpenFunc parses one PDF into its accessibility model. It is the
// seam between the walker and the PDF library.
type OpenFunc func(path string) (*pdfstruct.Document, error)

// Scanner enumerates PDFs under a root and classifies each one.
type Scanner struct {
	open    OpenFunc
	rep     *report.Reporter
	log     *slog.Logger
	console *Console // nil disables progress output
	workers int
}

func New(open OpenFunc, rep *report.Reporter, log *slog.Logger, console *Console, workers int) *Scanner {
	if open == nil {
		open = pdfstruct.Open
	}
	if workers <= 0 {
		workers = 1
	}
	return &Scanner{
		open:    open,
		rep:     rep,
		log:     log,
		console: console,
		workers: workers,
	}
}

type result struct {
	name string
	rec  *classify.Record
	err  error
	done bool
}

// Run scans root and forwards every result to the reporter in
// enumeration order, regardless of worker count or completion order.
// Per-file failures become error rows; only an unreadable root or a
// cancelled context fails the run.
func (s *Scanner) Run(ctx context.Context, root string) error {
	paths, err := s.enumerate(root)
	if err != nil {
		return err
	}
	s.log.Info("scan started", "root", root, "files", len(paths), "workers", s.workers)

	results := make([]result, len(paths))
	sem := make(chan struct{}, s.workers)
	var wg sync.WaitGroup

	base := filepath.Dir(filepath.Clean(root))
	var ctxErr error
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			ctxErr = err
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.process(path, displayName(base, path))
		}(i, path)
	}
	wg.Wait()

	for _, r := range results {
		if !r.done {
			continue
		}
		if r.err != nil {
			s.rep.AddError(r.name, r.err)
		} else {
			s.rep.Add(*r.rec)
		}
	}

	s.log.Info("scan finished", "files", len(paths), "rows", s.rep.Len())
	return ctxErr
}

// process runs open -> classify for a single file. The PDF handle is
// scoped to the open call; nothing is shared across files.
func (s *Scanner) process(path, name string) result {
	s.console.Analyzing(name)

	doc, err := s.open(path)
	if err != nil {
		s.log.Error("file unreadable", "file", path, "error", err)
		s.console.Failed(name, err)
		return result{name: name, err: err, done: true}
	}
	if doc.StructErr != nil {
		// Degraded to untagged; still worth a row.
		s.log.Warn("malformed structure tree, treating as untagged", "file", path, "error", doc.StructErr)
	}

	rec := classify.Classify(doc.Root, doc.Meta)
	rec.Filename = name
	return result{name: name, rec: &rec, done: true}
}

// enumerate collects candidate files under root in lexical walk order:
// regular files with a .pdf extension. The signature check happens at
// open time so that a misnamed file surfaces as an error row rather
// than vanishing from the report.
func (s *Scanner) enumerate(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return fmt.Errorf("scan root: %w", err)
			}
			s.log.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// displayName makes report filenames relative to the scan root's
// parent, falling back to the full path.
func displayName(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
