package coloranalysis

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lenslate/lenslate/internal/utils"
)

// pixel is one sampled image pixel with its Lab coordinates and its position
// normalized to [0,1] within the sampled crop.
type pixel struct {
	col     colorful.Color
	l, a, b float64
	x, y    float64
}

// adaptiveInset returns the crop margin for a line's bounding box. The margin
// scales with the box's short side so small regions lose less of their area:
// roughly 2% of the short side for tiny boxes growing to 5% for large ones.
func adaptiveInset(box utils.Box, minRatio, maxRatio float64) float64 {
	short := box.Width()
	if box.Height() < short {
		short = box.Height()
	}
	if short <= 0 {
		return 0
	}
	t := short / 300.0
	if t > 1 {
		t = 1
	}
	return short * (minRatio + (maxRatio-minRatio)*t)
}

// samplePixels crops the source image at the line's box (inset by the
// adaptive margin), downscales the crop to a thumbnail and converts every
// pixel to Lab. Returns nil for degenerate input.
func samplePixels(img image.Image, box utils.Box, cfg Config) []pixel {
	if img == nil || box.Empty() {
		return nil
	}
	inset := box.Inset(adaptiveInset(box, cfg.InsetMinRatio, cfg.InsetMaxRatio))
	crop := utils.CropImageBox(img, inset)
	cb := crop.Bounds()
	if cb.Dx() == 0 || cb.Dy() == 0 {
		return nil
	}
	thumb := utils.Thumbnail(crop, cfg.ThumbnailMaxSide)
	tb := thumb.Bounds()
	w, h := tb.Dx(), tb.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	pixels := make([]pixel, 0, w*h)
	for y := tb.Min.Y; y < tb.Max.Y; y++ {
		for x := tb.Min.X; x < tb.Max.X; x++ {
			c, ok := colorful.MakeColor(thumb.At(x, y))
			if !ok {
				// Fully transparent pixel; nothing to sample.
				continue
			}
			l, a, b := c.Lab()
			px := pixel{col: c, l: l, a: a, b: b}
			if w > 1 {
				px.x = float64(x-tb.Min.X) / float64(w-1)
			}
			if h > 1 {
				px.y = float64(y-tb.Min.Y) / float64(h-1)
			}
			pixels = append(pixels, px)
		}
	}
	return pixels
}

// labDistanceSq returns the squared Euclidean distance between a pixel and a
// centroid in Lab space.
func labDistanceSq(p pixel, c [3]float64) float64 {
	dl := p.l - c[0]
	da := p.a - c[1]
	db := p.b - c[2]
	return dl*dl + da*da + db*db
}
