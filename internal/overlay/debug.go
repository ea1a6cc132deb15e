package overlay

import (
	"image"
	"image/color"

	"github.com/lenslate/lenslate/internal/utils"
)

var (
	debugQuadColor = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	debugBoxColor  = color.RGBA{R: 40, G: 180, B: 60, A: 255}
)

// DrawDebug outlines each line's screen quad and its axis-aligned bounding
// box on dst, for inspecting geometry without the painted annotations.
func DrawDebug(dst *image.RGBA, lines []Line) {
	for _, ln := range lines {
		corners := ln.Placement.ScreenCorners[:]
		utils.DrawPolygon(dst, corners, debugQuadColor, 2)
		box := utils.BoundingBox(corners)
		utils.DrawRect(dst, box.ToRect(dst.Bounds()), debugBoxColor, 1)
	}
}
