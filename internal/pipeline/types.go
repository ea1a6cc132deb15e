// Package pipeline orchestrates annotation: filtering, translation, color
// analysis, layout, and duplicate resolution for one photo at a time.
package pipeline

import (
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/text/language"

	"github.com/lenslate/lenslate/internal/classify"
	"github.com/lenslate/lenslate/internal/coloranalysis"
	"github.com/lenslate/lenslate/internal/filter"
	"github.com/lenslate/lenslate/internal/layout"
	"github.com/lenslate/lenslate/internal/utils"
)

// RecognizedLine is one OCR output line: the raw text and its geometry in
// image coordinates. CornerPoints holds the four quad corners in top-left,
// top-right, bottom-right, bottom-left order, or is nil when the OCR engine
// only produced an axis-aligned box.
type RecognizedLine struct {
	Text         string        `json:"text"`
	Box          utils.Box     `json:"box"`
	CornerPoints []utils.Point `json:"cornerPoints,omitempty"`
}

// AnnotatedLine is a recognized line that survived filtering, carrying its
// classification and translation. An empty TranslatedText, or one equal to
// Text, means the original is displayed.
type AnnotatedLine struct {
	RecognizedLine
	TranslatedText string               `json:"translatedText,omitempty"`
	ContentType    classify.ContentType `json:"contentType"`
}

// DisplayText returns the text to draw.
func (l AnnotatedLine) DisplayText() string {
	if l.TranslatedText != "" {
		return l.TranslatedText
	}
	return l.Text
}

// TransformedLine is the final per-line annotation in display coordinates.
// Instances are immutable once built; a new layout pass builds new ones.
type TransformedLine struct {
	Text            string               `json:"text"`
	DisplayText     string               `json:"displayText"`
	ContentType     classify.ContentType `json:"contentType"`
	ScreenCorners   [4]utils.Point       `json:"screenCorners"`
	FontSizePt      float64              `json:"fontSizePt"`
	TargetWidth     float64              `json:"targetWidth"`
	Rotation        float64              `json:"rotation"`
	Weight          layout.FontWeight    `json:"weight"`
	TextColor       colorful.Color       `json:"textColor"`
	BackgroundColor colorful.Color       `json:"backgroundColor"`
	Trace           *DebugTrace          `json:"trace,omitempty"`
}

// DebugTrace carries per-line diagnostics attached only when debug output is
// requested.
type DebugTrace struct {
	Scheme          coloranalysis.Scheme `json:"scheme"`
	ColorConfidence float64              `json:"colorConfidence"`
	DropReason      filter.DropReason    `json:"-"`
	TargetWidth     float64              `json:"targetWidth"`
	TargetHeight    float64              `json:"targetHeight"`
	ColorDuration   time.Duration        `json:"colorDurationNs"`
}

// Options controls a single Annotate call.
type Options struct {
	// ImageID distinguishes photos in the color decision cache. Callers
	// should pass a stable identifier per photo.
	ImageID string

	// Source and Target select the translation direction. Equal or
	// undefined tags skip translation.
	Source language.Tag
	Target language.Tag

	// DisplayWidth and DisplayHeight are the destination canvas size the
	// photo is aspect-fit into. Zero values default to the photo size.
	DisplayWidth  int
	DisplayHeight int

	// Debug attaches a DebugTrace to every returned line.
	Debug bool

	// Progress, when set, is called after each pipeline stage with the
	// number of lines still in play. Called from the annotating goroutine.
	Progress ProgressFunc
}

// ProgressFunc receives per-stage progress during Annotate.
type ProgressFunc func(stage string, lines int)
