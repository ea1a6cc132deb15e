// Package testutil generates synthetic photos for exercising the annotation
// pipeline without real camera input.
package testutil

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// UniformPhoto creates a single-color photo.
func UniformPhoto(width, height int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
	return img
}

// TextPhoto creates a photo with text drawn at (x, y) in the given colors,
// using the fixed 7x13 bitmap face. Good enough for sampling and geometry
// tests; layout tests use real faces.
func TextPhoto(width, height int, text string, x, y int, bg, fg color.Color) *image.RGBA {
	img := UniformPhoto(width, height, bg)
	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{fg},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
	return img
}

// CenteredTextPhoto creates a photo with the text centered.
func CenteredTextPhoto(width, height int, text string, bg, fg color.Color) *image.RGBA {
	textWidth := font.MeasureString(basicfont.Face7x13, text).Ceil()
	x := (width - textWidth) / 2
	y := (height + basicfont.Face7x13.Metrics().Height.Ceil()) / 2
	return TextPhoto(width, height, text, x, y, bg, fg)
}

// GradientPhoto creates a horizontal gradient between two colors.
func GradientPhoto(width, height int, from, to color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := range width {
		t := float64(x) / float64(maxInt(width-1, 1))
		c := color.RGBA{
			R: lerpByte(from.R, to.R, t),
			G: lerpByte(from.G, to.G, t),
			B: lerpByte(from.B, to.B, t),
			A: 255,
		}
		for y := range height {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// BlockPhoto creates a photo with a filled inner rectangle on a background,
// mimicking a text region surrounded by its backdrop.
func BlockPhoto(width, height int, bg, block color.Color, inner image.Rectangle) *image.RGBA {
	img := UniformPhoto(width, height, bg)
	draw.Draw(img, inner.Intersect(img.Bounds()), &image.Uniform{block}, image.Point{}, draw.Src)
	return img
}

// CheckerPhoto creates a photo alternating between several colors in
// cellSize blocks, producing a high-entropy color population.
func CheckerPhoto(width, height, cellSize int, colors []color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	if cellSize < 1 {
		cellSize = 1
	}
	for y := range height {
		for x := range width {
			idx := (x/cellSize + y/cellSize) % len(colors)
			img.Set(x, y, colors[idx])
		}
	}
	return img
}

func lerpByte(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
