package scan

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/askeland/pdftriage/internal/report"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Console prints human-oriented progress lines alongside the
// structured log. Color is enabled only when writing to a terminal.
// A nil Console discards everything.
type Console struct {
	w     io.Writer
	mu    sync.Mutex
	color bool
}

// NewConsole creates a Console writing to w. If w is nil, output is
// discarded.
func NewConsole(w io.Writer) *Console {
	if w == nil {
		return nil
	}
	return &Console{w: w, color: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *Console) printf(clr *color.Color, format string, args ...any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.color && clr != nil {
		fmt.Fprintln(c.w, clr.Sprintf(format, args...))
		return
	}
	fmt.Fprintf(c.w, format+"\n", args...)
}

// Scanning announces the root being scanned.
func (c *Console) Scanning(root string) {
	c.printf(nil, "Scanning: %s", root)
	c.printf(nil, "Checking: tagging, alt text, metadata, and heading order")
}

// NoFiles reports an empty scan.
func (c *Console) NoFiles() {
	c.printf(nil, "No PDF files found.")
}

// Analyzing announces that a file is being processed.
func (c *Console) Analyzing(name string) {
	c.printf(color.New(color.FgCyan), "  Analyzing: %s", name)
}

// Failed reports a file that could not be analyzed.
func (c *Console) Failed(name string, err error) {
	c.printf(color.New(color.FgRed), "  Unreadable: %s (%v)", name, err)
}

// Summary prints the end-of-run tally and the report location.
func (c *Console) Summary(s report.Summary, output string) {
	c.printf(nil, "\nAnalyzed %d PDF(s), %d unreadable.", s.Files, s.Errors)
	c.printf(nil, "Tagged: %d  Metadata: %d  Figures w/o alt text: %d  Heading violations: %d",
		s.TagsPass, s.MetadataPass, s.AltTextFail, s.HeaderOrderFail)
	c.printf(color.New(color.FgGreen), "Report saved to: %s", output)
}
