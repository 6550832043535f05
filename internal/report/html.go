package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders the collected rows and summary as a GFM document.
func (r *Reporter) Markdown(title string) []byte {
	var b strings.Builder
	s := r.Summarize()

	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- Files scanned: %d\n", s.Files)
	fmt.Fprintf(&b, "- Unreadable: %d\n", s.Errors)
	fmt.Fprintf(&b, "- Tagged: %d\n", s.TagsPass)
	fmt.Fprintf(&b, "- Metadata present: %d\n", s.MetadataPass)
	fmt.Fprintf(&b, "- With figures: %d (alt text missing on %d)\n", s.WithImages, s.AltTextFail)
	fmt.Fprintf(&b, "- Heading order violations: %d\n\n", s.HeaderOrderFail)

	b.WriteString("| " + strings.Join(Header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(Header)) + "\n")
	for _, e := range r.Entries() {
		cells := row(e)
		for i, c := range cells {
			cells[i] = cell(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return []byte(b.String())
}

// cell makes a value safe inside a Markdown table: pipes are escaped
// and control characters (a newline in a filename would break the row)
// become spaces.
func cell(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < ' ' {
			return ' '
		}
		return r
	}, s)
	return strings.ReplaceAll(s, "|", "\\|")
}

// WriteHTML converts the Markdown report to HTML on w.
func (r *Reporter) WriteHTML(w io.Writer, title string) error {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert(r.Markdown(title), w); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}
