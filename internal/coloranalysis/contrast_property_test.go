package coloranalysis

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/lenslate/lenslate/internal/colorcache"
	"github.com/lenslate/lenslate/internal/testutil"
	"github.com/lenslate/lenslate/internal/utils"
)

// TestAnalyze_ContrastPostCondition: every decision satisfies the WCAG floor
// after the forced-contrast fallback, whatever pixel population the photo has.
func TestAnalyze_ContrastPostCondition(t *testing.T) {
	properties := gopter.NewProperties(nil)
	analyzer := New(DefaultConfig(), colorcache.New[Key, Decision](200, 10<<20))

	genChannel := gen.UInt8Range(0, 255)
	counter := 0

	properties.Property("contrast ratio >= 4.5", prop.ForAll(
		func(r1, g1, b1, r2, g2, b2 uint8) bool {
			counter++
			bg := color.RGBA{r1, g1, b1, 255}
			fg := color.RGBA{r2, g2, b2, 255}
			img := testutil.BlockPhoto(80, 40, bg, fg, image.Rect(20, 10, 60, 30))
			d := analyzer.Analyze(img, "Sample", utils.NewBox(0, 0, 80, 40),
				fmt.Sprintf("prop-%d", counter))
			return ContrastRatio(d.Text, d.Background) >= 4.5
		},
		genChannel, genChannel, genChannel, genChannel, genChannel, genChannel,
	))

	properties.TestingRun(t)
}
