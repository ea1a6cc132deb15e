package pipeline

import (
	"encoding/json"
	"image"

	"github.com/lenslate/lenslate/internal/coloranalysis"
	"github.com/lenslate/lenslate/internal/layout"
	"github.com/lenslate/lenslate/internal/overlay"
)

// Result is the serializable outcome of one annotated photo.
type Result struct {
	ImageID string            `json:"imageId,omitempty"`
	Width   int               `json:"width"`
	Height  int               `json:"height"`
	Lines   []TransformedLine `json:"lines"`
}

// ToJSON serializes a result to pretty JSON.
func ToJSON(res Result) (string, error) {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// RenderOverlay rasterizes the annotated photo onto a display-sized canvas.
// Width and height default to the photo size when non-positive.
func (e *Engine) RenderOverlay(photo image.Image, lines []TransformedLine, width, height int) *image.RGBA {
	if photo != nil {
		b := photo.Bounds()
		if width <= 0 {
			width = b.Dx()
		}
		if height <= 0 {
			height = b.Dy()
		}
	}
	drawn := toOverlayLines(lines)
	return e.compositor.Render(photo, drawn, width, height)
}

func toOverlayLines(lines []TransformedLine) []overlay.Line {
	out := make([]overlay.Line, len(lines))
	for i, tl := range lines {
		out[i] = overlay.Line{
			Text:    tl.Text,
			Display: tl.DisplayText,
			Placement: layout.Placement{
				ScreenCorners: tl.ScreenCorners,
				FontSizePt:    tl.FontSizePt,
				Rotation:      tl.Rotation,
				Weight:        tl.Weight,
				TargetWidth:   tl.TargetWidth,
			},
			Colors: coloranalysis.Decision{
				Text:       tl.TextColor,
				Background: tl.BackgroundColor,
			},
		}
	}
	return out
}
