package pipeline

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/lenslate/lenslate/internal/classify"
	"github.com/lenslate/lenslate/internal/testutil"
	"github.com/lenslate/lenslate/internal/translate"
	"github.com/lenslate/lenslate/internal/utils"
)

func testPhoto() *image.RGBA {
	return testutil.UniformPhoto(800, 600, color.RGBA{R: 240, G: 240, B: 240, A: 255})
}

func newEngine(t *testing.T, opts ...func(*Builder)) *Engine {
	t.Helper()
	b := NewBuilder().WithWorkers(2)
	for _, o := range opts {
		o(b)
	}
	e, err := b.Build()
	require.NoError(t, err)
	return e
}

func TestAnnotate_EndToEnd(t *testing.T) {
	tr := translate.NewStatic(map[string]string{
		"Organic Apples": "Органічні яблука",
	})
	e := newEngine(t, func(b *Builder) { b.WithTranslator(tr) })

	lines := []RecognizedLine{
		{Text: "12.99", Box: utils.NewBox(100, 100, 260, 150)},
		{Text: "Organic Apples", Box: utils.NewBox(100, 200, 500, 260)},
	}
	got, err := e.Annotate(context.Background(), testPhoto(), lines, Options{
		ImageID: "receipt-1",
		Source:  language.English,
		Target:  language.Ukrainian,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)

	first := got[0]
	require.Equal(t, "12.99", first.Text)
	require.Equal(t, classify.Price, first.ContentType)
	require.Equal(t, "12.99", first.DisplayText)
	require.GreaterOrEqual(t, first.FontSizePt, 6.0)

	second := got[1]
	require.Equal(t, "Organic Apples", second.Text)
	require.Equal(t, "Органічні яблука", second.DisplayText)
	require.GreaterOrEqual(t, second.FontSizePt, 6.0)

	for _, tl := range got {
		box := utils.BoundingBox(tl.ScreenCorners[:])
		require.False(t, box.Empty(), "screen quad must span area")
	}
}

func TestAnnotate_EmptyInput(t *testing.T) {
	e := newEngine(t)
	got, err := e.Annotate(context.Background(), testPhoto(), nil, Options{})
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = e.Annotate(context.Background(), nil, []RecognizedLine{{Text: "x"}}, Options{})
	require.Error(t, err)
}

func TestAnnotate_FiltersNoise(t *testing.T) {
	e := newEngine(t)
	lines := []RecognizedLine{
		{Text: "TOTAL 12.99", Box: utils.NewBox(50, 50, 300, 100)},
		{Text: "x", Box: utils.NewBox(50, 150, 300, 200)},        // too short
		{Text: "|||***///", Box: utils.NewBox(50, 250, 300, 300)}, // all specials
		{Text: "hidden", Box: utils.NewBox(0, 0, 10, 5)},          // tiny box
	}
	got, err := e.Annotate(context.Background(), testPhoto(), lines, Options{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "TOTAL 12.99", got[0].Text)
}

func TestAnnotate_PreservesOCROrder(t *testing.T) {
	e := newEngine(t)
	lines := []RecognizedLine{
		{Text: "line three", Box: utils.NewBox(50, 400, 300, 450)},
		{Text: "line one", Box: utils.NewBox(50, 50, 300, 100)},
		{Text: "line two", Box: utils.NewBox(50, 200, 300, 250)},
	}
	got, err := e.Annotate(context.Background(), testPhoto(), lines, Options{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "line three", got[0].Text)
	require.Equal(t, "line one", got[1].Text)
	require.Equal(t, "line two", got[2].Text)
}

func TestAnnotate_DeduplicatesOverlap(t *testing.T) {
	e := newEngine(t)
	lines := []RecognizedLine{
		{Text: "SPECIAL OFFER", Box: utils.NewBox(100, 100, 400, 160)},
		{Text: "SPECIAL OFFER", Box: utils.NewBox(102, 101, 402, 161)},
		{Text: "DIFFERENT TEXT", Box: utils.NewBox(100, 100, 400, 160)},
	}
	got, err := e.Annotate(context.Background(), testPhoto(), lines, Options{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "SPECIAL OFFER", got[0].Text)
	require.Equal(t, "DIFFERENT TEXT", got[1].Text)
}

func TestAnnotate_StrictDedupeKeepsGlyphSlips(t *testing.T) {
	lines := []RecognizedLine{
		{Text: "ORGANIC APPLES", Box: utils.NewBox(100, 100, 400, 160)},
		{Text: "0RGANIC APPLES", Box: utils.NewBox(102, 101, 402, 161)},
	}

	got, err := newEngine(t).Annotate(context.Background(), testPhoto(), lines, Options{})
	require.NoError(t, err)
	require.Len(t, got, 1, "fuzzy matching merges one-glyph re-reads")

	cfg := DefaultConfig()
	cfg.StrictDedupe = true
	got, err = newEngine(t, func(b *Builder) { b.WithConfig(cfg) }).
		Annotate(context.Background(), testPhoto(), lines, Options{})
	require.NoError(t, err)
	require.Len(t, got, 2, "strict matching keeps both readings")
}

func TestAnnotate_TranslationFailureDegrades(t *testing.T) {
	e := newEngine(t, func(b *Builder) {
		b.WithTranslator(failingTranslator{})
	})
	lines := []RecognizedLine{
		{Text: "Organic Apples", Box: utils.NewBox(100, 200, 500, 260)},
	}
	got, err := e.Annotate(context.Background(), testPhoto(), lines, Options{
		Target: language.Ukrainian,
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Organic Apples", got[0].DisplayText)
}

func TestAnnotate_SupersededByNewerFrame(t *testing.T) {
	var session *Session
	e := newEngine(t, func(b *Builder) {
		b.WithTranslator(funcTranslator(func(ctx context.Context, texts []string, _, _ language.Tag) ([]*string, error) {
			// A newer frame arrives on the same session while this one is
			// still translating.
			_, err := session.Annotate(ctx, testPhoto(), []RecognizedLine{
				{Text: "newer frame line", Box: utils.NewBox(50, 50, 300, 100)},
			}, Options{})
			require.NoError(t, err)
			return make([]*string, len(texts)), nil
		}))
	})
	session = e.NewSession()

	_, err := session.Annotate(context.Background(), testPhoto(), []RecognizedLine{
		{Text: "older frame line", Box: utils.NewBox(50, 50, 300, 100)},
	}, Options{Target: language.Ukrainian})
	require.ErrorIs(t, err, ErrSuperseded)
}

func TestAnnotate_IndependentRequestsNeverSupersede(t *testing.T) {
	e := newEngine(t)
	lines := []RecognizedLine{
		{Text: "TOTAL 12.99", Box: utils.NewBox(50, 50, 300, 100)},
	}

	const clients, requests = 8, 10
	errs := make(chan error, clients*requests)
	var wg sync.WaitGroup
	for range clients {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range requests {
				_, err := e.Annotate(context.Background(), testPhoto(), lines, Options{ImageID: "shared"})
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
}

func TestAnnotate_RepeatedTextKeepsOwnTrace(t *testing.T) {
	e := newEngine(t)
	lines := []RecognizedLine{
		{Text: "SALE", Box: utils.NewBox(50, 50, 150, 90)},
		{Text: "SALE", Box: utils.NewBox(400, 400, 700, 520)},
	}
	got, err := e.Annotate(context.Background(), testPhoto(), lines, Options{Debug: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Trace)
	require.NotNil(t, got[1].Trace)
	// Each trace reflects its own quad, not the first line with equal text.
	require.Greater(t, got[1].Trace.TargetWidth, got[0].Trace.TargetWidth)
	require.InDelta(t, got[0].TargetWidth, got[0].Trace.TargetWidth, 1e-9)
	require.InDelta(t, got[1].TargetWidth, got[1].Trace.TargetWidth, 1e-9)
}

func TestAnnotate_CancelledContext(t *testing.T) {
	e := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := e.Annotate(ctx, testPhoto(), []RecognizedLine{
		{Text: "some line", Box: utils.NewBox(50, 50, 300, 100)},
	}, Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestAnnotate_DebugTraces(t *testing.T) {
	e := newEngine(t)
	lines := []RecognizedLine{
		{Text: "TOTAL 12.99", Box: utils.NewBox(50, 50, 300, 100)},
	}
	got, err := e.Annotate(context.Background(), testPhoto(), lines, Options{Debug: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Trace)
	require.Positive(t, got[0].Trace.TargetWidth)

	got, err = e.Annotate(context.Background(), testPhoto(), lines, Options{})
	require.NoError(t, err)
	require.Nil(t, got[0].Trace)
}

func TestAnnotate_ProgressReported(t *testing.T) {
	e := newEngine(t)
	var stages []string
	_, err := e.Annotate(context.Background(), testPhoto(), []RecognizedLine{
		{Text: "TOTAL 12.99", Box: utils.NewBox(50, 50, 300, 100)},
	}, Options{Progress: func(stage string, _ int) {
		stages = append(stages, stage)
	}})
	require.NoError(t, err)
	require.Equal(t, []string{"filter", "translate", "colors", "layout", "dedupe"}, stages)
}

func TestAnnotate_DeterministicAcrossRuns(t *testing.T) {
	lines := []RecognizedLine{
		{Text: "TOTAL 12.99", Box: utils.NewBox(50, 50, 300, 100)},
		{Text: "Organic Apples", Box: utils.NewBox(50, 200, 500, 260)},
	}
	a, err := newEngine(t).Annotate(context.Background(), testPhoto(), lines, Options{ImageID: "p"})
	require.NoError(t, err)
	b, err := newEngine(t).Annotate(context.Background(), testPhoto(), lines, Options{ImageID: "p"})
	require.NoError(t, err)
	require.Equal(t, a, b)
}

type failingTranslator struct{}

func (failingTranslator) Translate(context.Context, []string, language.Tag, language.Tag) ([]*string, error) {
	return nil, context.DeadlineExceeded
}

type funcTranslator func(context.Context, []string, language.Tag, language.Tag) ([]*string, error)

func (f funcTranslator) Translate(ctx context.Context, texts []string, s, t language.Tag) ([]*string, error) {
	return f(ctx, texts, s, t)
}
