// Package overlay resolves duplicate annotations and composites the final
// rendered image.
package overlay

import (
	"strings"

	"github.com/arbovm/levenshtein"

	"github.com/lenslate/lenslate/internal/utils"
)

// DefaultIoUThreshold is the screen-box overlap above which two lines are
// considered duplicate candidates.
const DefaultIoUThreshold = 0.85

// SimilarFunc decides whether two recognized texts are the same line seen
// twice.
type SimilarFunc func(a, b string) bool

// Dedupe removes later lines that overlap an earlier line and carry similar
// text per the given matcher (nil means TextsSimilarFuzzy). Ties always
// break toward the first-seen line, so output is stable for a given input
// order.
func Dedupe(lines []Line, iouThreshold float64, similar SimilarFunc) []Line {
	if iouThreshold <= 0 {
		iouThreshold = DefaultIoUThreshold
	}
	if similar == nil {
		similar = TextsSimilarFuzzy
	}
	kept := make([]Line, 0, len(lines))
	boxes := make([]utils.Box, 0, len(lines))
	for _, ln := range lines {
		box := utils.BoundingBox(ln.Placement.ScreenCorners[:])
		dup := false
		for i := range kept {
			if utils.IoU(boxes[i], box) > iouThreshold && similar(kept[i].Text, ln.Text) {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, ln)
			boxes = append(boxes, box)
		}
	}
	return kept
}

// TextsSimilar matches exact, case-insensitive, and containment duplicates.
// Distinct texts in the same spot are kept apart even at full overlap.
func TextsSimilar(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == b || strings.EqualFold(a, b) {
		return true
	}
	if len(a) > 4 && len(b) > 4 {
		la, lb := strings.ToLower(a), strings.ToLower(b)
		if strings.Contains(la, lb) || strings.Contains(lb, la) {
			return true
		}
	}
	return false
}

// TextsSimilarFuzzy extends TextsSimilar with a small edit distance budget,
// merging OCR re-reads of one line that differ by a glyph.
func TextsSimilarFuzzy(a, b string) bool {
	if TextsSimilar(a, b) {
		return true
	}
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if len(a) > 4 && len(b) > 4 {
		la, lb := strings.ToLower(a), strings.ToLower(b)
		longer := len(la)
		if len(lb) > longer {
			longer = len(lb)
		}
		if levenshtein.Distance(la, lb) <= longer/8 {
			return true
		}
	}
	return false
}
