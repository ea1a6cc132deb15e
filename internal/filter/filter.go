// Package filter rejects OCR lines that are implausible text: tiny boxes,
// symbol runs, repeated-character noise and box-drawing artifacts.
package filter

import (
	"strings"
	"unicode"

	"github.com/lenslate/lenslate/internal/classify"
	"github.com/lenslate/lenslate/internal/utils"
)

// DropReason explains why a line was rejected. DropNone means the line is kept.
type DropReason int

const (
	DropNone DropReason = iota
	DropTinyBox
	DropTextLength
	DropNoLetters
	DropSpecialRatio
	DropSuspiciousRow
)

// String returns a short label for diagnostics.
func (r DropReason) String() string {
	switch r {
	case DropTinyBox:
		return "tiny_box"
	case DropTextLength:
		return "text_length"
	case DropNoLetters:
		return "no_letters"
	case DropSpecialRatio:
		return "special_ratio"
	case DropSuspiciousRow:
		return "suspicious_row"
	default:
		return "kept"
	}
}

// Config holds the tunable rejection thresholds.
type Config struct {
	MinBoxWidth       float64 // reject boxes at or below this width (px)
	MinBoxHeight      float64 // reject boxes at or below this height (px)
	MinTextLength     int     // shortest trimmed text kept
	MaxTextLength     int     // longest trimmed text kept
	MaxSpecialRatio   float64 // reject above this special-character fraction
	DominantCharRatio float64 // suspicious when one char exceeds this fraction
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		MinBoxWidth:       15,
		MinBoxHeight:      8,
		MinTextLength:     2,
		MaxTextLength:     199,
		MaxSpecialRatio:   0.5,
		DominantCharRatio: 0.7,
	}
}

// numericPunctuation is excluded from the special-character count for
// number/price/date content, together with currency symbols.
const numericPunctuation = ".,:/- "

// boxDrawingGlyphs are frame and fill characters that OCR engines emit for
// table borders and receipt separators.
const boxDrawingGlyphs = "─│┌┐└┘├┤┬┴┼═║╔╗╚╝╠╣╦╩╬▀▄█▌▐░▒▓■□▪▫"

// Keep decides whether a recognized line is plausible text. The decision is
// per-line: it never depends on other lines in the photo.
func Keep(text string, box utils.Box, contentType classify.ContentType, cfg Config) (bool, DropReason) {
	if box.Width() <= cfg.MinBoxWidth || box.Height() <= cfg.MinBoxHeight {
		return false, DropTinyBox
	}

	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) < cfg.MinTextLength || len(runes) > cfg.MaxTextLength {
		return false, DropTextLength
	}

	s := stats(runes, contentType)

	if s.letters == 0 && !contentType.Numeric() {
		return false, DropNoLetters
	}

	if float64(s.effectiveSpecials)/float64(len(runes)) > cfg.MaxSpecialRatio {
		return false, DropSpecialRatio
	}

	if suspiciousRow(runes, s, cfg) {
		return false, DropSuspiciousRow
	}

	return true, DropNone
}

type charStats struct {
	letters           int
	digits            int
	effectiveSpecials int
	nonSpace          int
	dominantCount     int
	allBoxDrawing     bool
}

func stats(runes []rune, contentType classify.ContentType) charStats {
	s := charStats{allBoxDrawing: true}
	counts := make(map[rune]int)
	for _, r := range runes {
		switch {
		case unicode.IsLetter(r):
			s.letters++
		case unicode.IsDigit(r):
			s.digits++
		case unicode.IsSpace(r):
			// spaces are never special
		default:
			if !isExcludedSpecial(r, contentType) {
				s.effectiveSpecials++
			}
		}
		if !unicode.IsSpace(r) {
			s.nonSpace++
			counts[r]++
			if counts[r] > s.dominantCount {
				s.dominantCount = counts[r]
			}
			if !strings.ContainsRune(boxDrawingGlyphs, r) {
				s.allBoxDrawing = false
			}
		}
	}
	return s
}

// isExcludedSpecial reports whether r is exempt from the special count for
// digit-heavy content types.
func isExcludedSpecial(r rune, contentType classify.ContentType) bool {
	if !contentType.Numeric() {
		return false
	}
	return strings.ContainsRune(classify.CurrencyRunes, r) || strings.ContainsRune(numericPunctuation, r)
}

func suspiciousRow(runes []rune, s charStats, cfg Config) bool {
	if s.nonSpace == 0 {
		return true
	}
	// One character dominating the row is repeated-character noise.
	if float64(s.dominantCount)/float64(s.nonSpace) > cfg.DominantCharRatio {
		return true
	}
	// Nothing alphanumeric survives once specials are stripped.
	if s.letters == 0 && s.digits == 0 {
		return true
	}
	// Specials outnumber the real content.
	if s.effectiveSpecials > s.letters+s.digits {
		return true
	}
	if s.allBoxDrawing {
		return true
	}
	return false
}
