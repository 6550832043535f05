// Package report accumulates judgment rows across a scan and serializes
// them as CSV, with an optional rendered summary report.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sync"

	"github.com/askeland/pdftriage/internal/classify"
)

// ErrorSentinel fills the judgment columns of a row whose file could
// not be analyzed. Distinct from every legal judgment value.
const ErrorSentinel = "ERROR"

// Header is the fixed CSV column order.
var Header = []string{"filename", "containsImages", "altText", "metadata", "tags", "headerOrdering"}

// Entry is one report row: either a judgment record or a file-level
// error, never both.
type Entry struct {
	Record *classify.Record
	Name   string // set for error entries
	Err    error  // set for error entries
}

// Reporter collects entries in arrival order. Safe for concurrent use.
type Reporter struct {
	mu      sync.Mutex
	entries []Entry
}

func New() *Reporter {
	return &Reporter{}
}

// Add appends one document's judgment record.
func (r *Reporter) Add(rec classify.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Record: &rec})
}

// AddError appends a file-level error row for name.
func (r *Reporter) AddError(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Name: name, Err: err})
}

// Entries returns a snapshot of the collected rows in arrival order.
func (r *Reporter) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of collected rows.
func (r *Reporter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// WriteCSV serializes all entries to w with the fixed header row.
// encoding/csv handles quoting of filenames containing delimiters.
func (r *Reporter) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range r.Entries() {
		if err := cw.Write(row(e)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func row(e Entry) []string {
	if e.Err != nil {
		return []string{e.Name, ErrorSentinel, ErrorSentinel, ErrorSentinel, ErrorSentinel, ErrorSentinel}
	}
	rec := e.Record
	return []string{
		rec.Filename,
		string(rec.ContainsImages),
		string(rec.AltText),
		string(rec.Metadata),
		string(rec.Tags),
		string(rec.HeaderOrdering),
	}
}

// Summary is a point-in-time tally of the collected rows.
type Summary struct {
	Files           int
	Errors          int
	TagsPass        int
	MetadataPass    int
	WithImages      int
	AltTextPass     int
	AltTextFail     int
	HeaderOrderFail int
}

// Summarize tallies the rows collected so far.
func (r *Reporter) Summarize() Summary {
	var s Summary
	for _, e := range r.Entries() {
		s.Files++
		if e.Err != nil {
			s.Errors++
			continue
		}
		rec := e.Record
		if rec.Tags == classify.Pass {
			s.TagsPass++
		}
		if rec.Metadata == classify.Pass {
			s.MetadataPass++
		}
		if rec.ContainsImages == classify.PresenceYes {
			s.WithImages++
		}
		switch rec.AltText {
		case classify.Pass:
			s.AltTextPass++
		case classify.Fail:
			s.AltTextFail++
		}
		if rec.HeaderOrdering == classify.Fail {
			s.HeaderOrderFail++
		}
	}
	return s
}
