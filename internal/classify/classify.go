// Package classify derives the four WCAG triage judgments for a single
// document from its structure tree and info-dictionary metadata.
package classify

import (
	"github.com/askeland/pdftriage/internal/structtree"
)

// Judgment is the outcome of one accessibility check.
type Judgment string

const (
	Pass          Judgment = "Pass"
	Fail          Judgment = "Fail"
	NotApplicable Judgment = "N/A"
)

// Presence is the outcome of the contains-images check.
type Presence string

const (
	PresenceYes     Presence = "Yes"
	PresenceNo      Presence = "No"
	PresenceUnknown Presence = "N/A"
)

// Record is the judgment row produced for one document. It is immutable
// once returned by Classify.
type Record struct {
	Filename       string
	ContainsImages Presence
	AltText        Judgment
	Metadata       Judgment
	Tags           Judgment
	HeaderOrdering Judgment
}

// Classify evaluates one document. root is the structure tree root, or
// nil for an untagged document; meta may be nil or empty.
//
// The checks cascade: tags gates containsImages and headerOrdering, and
// containsImages gates altText. The metadata check is independent of
// tagging and always yields Pass or Fail. Classify is a pure function
// and never fails: any input, however minimal, yields a complete Record.
func Classify(root *structtree.Node, meta structtree.Metadata) Record {
	rec := Record{
		ContainsImages: PresenceUnknown,
		AltText:        NotApplicable,
		Metadata:       checkMetadata(meta),
		Tags:           Fail,
		HeaderOrdering: NotApplicable,
	}

	if root == nil {
		// Untagged: figures and heading order cannot be assessed.
		return rec
	}
	rec.Tags = Pass

	figures := structtree.Figures(root)
	if len(figures) == 0 {
		rec.ContainsImages = PresenceNo
	} else {
		rec.ContainsImages = PresenceYes
		rec.AltText = checkAltText(figures)
	}

	if ValidHeadingOrder(structtree.HeadingLevels(root)) {
		rec.HeaderOrdering = Pass
	} else {
		rec.HeaderOrdering = Fail
	}

	return rec
}

// checkAltText passes only when every figure carries non-empty alt text.
// A single missing alternative fails the whole document.
func checkAltText(figures []*structtree.Node) Judgment {
	for _, f := range figures {
		if !f.HasAlt() {
			return Fail
		}
	}
	return Pass
}

// checkMetadata requires Title and Author to be present and non-empty.
func checkMetadata(meta structtree.Metadata) Judgment {
	if meta.Has(structtree.KeyTitle) && meta.Has(structtree.KeyAuthor) {
		return Pass
	}
	return Fail
}

// ValidHeadingOrder reports whether a heading-level sequence is well
// ordered. The first heading may sit at any level; after that, a heading
// may go at most one level deeper than the deepest level reached so far
// (H1 followed by H3 skips a level and is invalid), while moving back up
// by any amount closes sections and is always valid. An empty sequence
// is trivially ordered.
func ValidHeadingOrder(levels []int) bool {
	if len(levels) == 0 {
		return true
	}
	deepest := levels[0]
	for _, lvl := range levels[1:] {
		if lvl > deepest+1 {
			return false
		}
		if lvl > deepest {
			deepest = lvl
		}
	}
	return true
}
