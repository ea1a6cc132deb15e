package overlay

import (
	"image"
	"image/color"
	"testing"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/require"

	"github.com/lenslate/lenslate/internal/coloranalysis"
	"github.com/lenslate/lenslate/internal/layout"
	"github.com/lenslate/lenslate/internal/testutil"
)

func newCompositor(t *testing.T) *Compositor {
	t.Helper()
	engine, err := layout.NewEngine(layout.DefaultConfig())
	require.NoError(t, err)
	return NewCompositor(engine)
}

func styledLine(text string, x, y, w, h float64, bg, fg colorful.Color) Line {
	ln := lineAt(text, x, y, w, h)
	ln.Placement.FontSizePt = 14
	ln.Placement.TargetWidth = w * 0.95
	ln.Placement.TargetHeight = h * 0.95
	ln.Colors = coloranalysis.Decision{Text: fg, Background: bg, Confidence: 1}
	return ln
}

func TestRender_PaintsBackgroundAndCanvasSize(t *testing.T) {
	c := newCompositor(t)
	photo := testutil.UniformPhoto(200, 200, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	bg := colorful.Color{R: 1, G: 0, B: 0}
	fg := colorful.Color{R: 1, G: 1, B: 1}
	lines := []Line{styledLine("HELLO", 40, 40, 120, 40, bg, fg)}

	out := c.Render(photo, lines, 200, 200)
	require.Equal(t, image.Rect(0, 0, 200, 200), out.Bounds())

	// A point inside the quad but outside any glyph run's first row should
	// carry the background color.
	r, g, b, _ := out.At(42, 42).RGBA()
	require.Greater(t, r, uint32(0xc000))
	require.Less(t, g, uint32(0x4000))
	require.Less(t, b, uint32(0x4000))

	// Outside the quad the photo shows through.
	r, g, b, _ = out.At(10, 10).RGBA()
	require.InDelta(t, 128<<8, int(r), 1<<10)
	require.InDelta(t, 128<<8, int(g), 1<<10)
	require.InDelta(t, 128<<8, int(b), 1<<10)
}

func TestRender_NilPhotoAndNoLines(t *testing.T) {
	c := newCompositor(t)
	out := c.Render(nil, nil, 64, 32)
	require.Equal(t, image.Rect(0, 0, 64, 32), out.Bounds())
	r, g, b, _ := out.At(5, 5).RGBA()
	require.Equal(t, uint32(0xffff), r)
	require.Equal(t, uint32(0xffff), g)
	require.Equal(t, uint32(0xffff), b)
}

func TestRender_SmallAnnotationStaysOnTop(t *testing.T) {
	c := newCompositor(t)
	big := styledLine("", 20, 20, 160, 160,
		colorful.Color{R: 0, G: 0, B: 1}, colorful.Color{R: 1, G: 1, B: 1})
	small := styledLine("", 60, 80, 60, 30,
		colorful.Color{R: 0, G: 1, B: 0}, colorful.Color{R: 0, G: 0, B: 0})

	// Draw order in the input is big first; area ordering must still paint
	// the small patch over the big one.
	out := c.Render(nil, []Line{big, small}, 200, 200)
	_, g, b, _ := out.At(80, 90).RGBA()
	require.Greater(t, g, uint32(0xc000))
	require.Less(t, b, uint32(0x4000))
}

func TestRender_AspectFitOffsetsPhoto(t *testing.T) {
	c := newCompositor(t)
	// A wide photo in a square canvas letterboxes top and bottom in white.
	photo := testutil.UniformPhoto(200, 100, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	out := c.Render(photo, nil, 100, 100)

	r, _, _, _ := out.At(50, 5).RGBA()
	require.Equal(t, uint32(0xffff), r)
	r, _, _, _ = out.At(50, 50).RGBA()
	require.Less(t, r, uint32(0x2000))
}

func TestDrawDebug_MarksQuadEdges(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	ln := lineAt("dbg", 20, 20, 40, 20)
	DrawDebug(dst, []Line{ln})

	found := false
	for x := 18; x <= 22 && !found; x++ {
		for y := 18; y <= 22; y++ {
			r, _, _, a := dst.At(x, y).RGBA()
			if a > 0 && r > 0x8000 {
				found = true
				break
			}
		}
	}
	require.True(t, found, "expected quad outline near the top-left corner")
}

func TestQuadArea(t *testing.T) {
	ln := lineAt("a", 0, 0, 10, 5)
	require.InDelta(t, 50, quadArea(ln), 1e-9)
	var zero Line
	require.Zero(t, quadArea(zero))
}
