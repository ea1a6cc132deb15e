package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"sort"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"

	"github.com/lenslate/lenslate/internal/coloranalysis"
	"github.com/lenslate/lenslate/internal/layout"
	"github.com/lenslate/lenslate/internal/utils"
)

// lineSpacing matches the spacing the layout fit was measured with.
const lineSpacing = 1.2

// Line is one annotation ready to draw: the surviving text, its display
// form, screen geometry, and chosen colors.
type Line struct {
	Text      string
	Display   string
	Placement layout.Placement
	Colors    coloranalysis.Decision

	// Ref is a caller-assigned index, preserved through Dedupe so per-line
	// metadata held outside the overlay can be re-attached to survivors.
	Ref int
}

// Compositor draws annotation lines over a photo. It renders with the same
// font family the layout engine measured against.
type Compositor struct {
	engine *layout.Engine
}

// NewCompositor wires a compositor to the layout engine's fonts.
func NewCompositor(engine *layout.Engine) *Compositor {
	return &Compositor{engine: engine}
}

// Render composites lines onto a dstW by dstH canvas holding the photo
// aspect-fit. All backgrounds are painted before any glyphs so one line's
// patch never covers another's text; backgrounds go up in area order and
// glyphs come down, keeping small annotations legible inside large ones.
func (c *Compositor) Render(photo image.Image, lines []Line, dstW, dstH int) *image.RGBA {
	dc := gg.NewContext(dstW, dstH)
	dc.SetColor(color.White)
	dc.Clear()

	if photo != nil {
		b := photo.Bounds()
		tr := utils.NewFitTransform(float64(b.Dx()), float64(b.Dy()), float64(dstW), float64(dstH))
		scaledW := int(float64(b.Dx())*tr.Scale + 0.5)
		scaledH := int(float64(b.Dy())*tr.Scale + 0.5)
		if scaledW > 0 && scaledH > 0 {
			scaled := imaging.Resize(photo, scaledW, scaledH, imaging.Lanczos)
			dc.DrawImage(scaled, int(tr.OffsetX+0.5), int(tr.OffsetY+0.5))
		}
	}

	byArea := make([]Line, len(lines))
	copy(byArea, lines)
	sort.SliceStable(byArea, func(i, j int) bool {
		return quadArea(byArea[i]) < quadArea(byArea[j])
	})
	for _, ln := range byArea {
		c.drawBackground(dc, ln)
	}
	for i := len(byArea) - 1; i >= 0; i-- {
		c.drawText(dc, byArea[i])
	}

	out := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	draw.Draw(out, out.Bounds(), dc.Image(), image.Point{}, draw.Src)
	return out
}

func quadArea(ln Line) float64 {
	return utils.BoundingBox(ln.Placement.ScreenCorners[:]).Area()
}

func (c *Compositor) drawBackground(dc *gg.Context, ln Line) {
	corners := ln.Placement.ScreenCorners
	dc.NewSubPath()
	dc.MoveTo(corners[0].X, corners[0].Y)
	for _, p := range corners[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.ClosePath()
	dc.SetColor(ln.Colors.Background)
	dc.Fill()
}

func (c *Compositor) drawText(dc *gg.Context, ln Line) {
	text := ln.Display
	if text == "" {
		text = ln.Text
	}
	if text == "" {
		return
	}

	face := truetype.NewFace(c.engine.Font(ln.Placement.Weight), &truetype.Options{
		Size: ln.Placement.FontSizePt,
	})
	center := utils.QuadCenter(ln.Placement.ScreenCorners[:])

	dc.Push()
	dc.RotateAbout(ln.Placement.Rotation, center.X, center.Y)
	dc.SetFontFace(face)
	dc.SetColor(ln.Colors.Text)
	dc.DrawStringWrapped(text, center.X, center.Y, 0.5, 0.5,
		ln.Placement.TargetWidth, lineSpacing, gg.AlignCenter)
	dc.Pop()
}
