package pipeline

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"golang.org/x/text/language"

	"github.com/lenslate/lenslate/internal/classify"
	"github.com/lenslate/lenslate/internal/coloranalysis"
	"github.com/lenslate/lenslate/internal/common"
	"github.com/lenslate/lenslate/internal/filter"
	"github.com/lenslate/lenslate/internal/layout"
	"github.com/lenslate/lenslate/internal/overlay"
	"github.com/lenslate/lenslate/internal/translate"
	"github.com/lenslate/lenslate/internal/utils"
)

// transformKey identifies a layout computation: same text in the same box,
// photo, and display geometry lays out identically.
type transformKey struct {
	text    string
	box     utils.Box
	imgW    int
	imgH    int
	screenW int
	screenH int
}

// colorJob carries one line into the analysis worker pool.
type colorJob struct {
	index int
	line  AnnotatedLine
}

// colorResult is the pool's per-line output, indexed so order survives.
type colorResult struct {
	index    int
	decision coloranalysis.Decision
	elapsed  time.Duration
}

// Annotate runs the full pipeline for one photo and returns the surviving
// lines in OCR enumeration order. The call is independent of any other
// in-flight Annotate; use a Session when newer frames should cancel older
// ones.
func (e *Engine) Annotate(ctx context.Context, photo image.Image, lines []RecognizedLine, opts Options) ([]TransformedLine, error) {
	return e.NewSession().Annotate(ctx, photo, lines, opts)
}

// Annotate runs the pipeline for one frame of the session's display. A later
// Annotate call on the same session supersedes this one, which then returns
// ErrSuperseded at the next stage boundary.
func (s *Session) Annotate(ctx context.Context, photo image.Image, lines []RecognizedLine, opts Options) ([]TransformedLine, error) {
	e := s.engine
	token := s.generation.Add(1)
	if photo == nil {
		return nil, fmt.Errorf("nil photo")
	}
	if len(lines) == 0 {
		return []TransformedLine{}, nil
	}

	bounds := photo.Bounds()
	imgW, imgH := bounds.Dx(), bounds.Dy()
	if opts.DisplayWidth <= 0 {
		opts.DisplayWidth = imgW
	}
	if opts.DisplayHeight <= 0 {
		opts.DisplayHeight = imgH
	}

	timings := common.NewStageTimings()

	report := opts.Progress
	if report == nil {
		report = func(string, int) {}
	}

	stop := timings.Start("filter")
	kept, dropped := e.filterLines(lines)
	stop()
	report("filter", len(kept))
	e.countFiltered(len(lines), dropped)
	if err := s.checkAlive(ctx, token); err != nil {
		return nil, err
	}

	stop = timings.Start("translate")
	e.translateLines(ctx, kept, opts)
	stop()
	report("translate", len(kept))
	if err := s.checkAlive(ctx, token); err != nil {
		return nil, err
	}

	stop = timings.Start("colors")
	decisions, colorTimes := e.analyzeColors(ctx, photo, kept, opts.ImageID)
	stop()
	report("colors", len(kept))
	if err := s.checkAlive(ctx, token); err != nil {
		return nil, err
	}

	stop = timings.Start("layout")
	drawn := make([]overlay.Line, len(kept))
	traces := make([]*DebugTrace, len(kept))
	for i, line := range kept {
		placement := e.place(line, imgW, imgH, opts)
		drawn[i] = overlay.Line{
			Text:      line.Text,
			Display:   line.DisplayText(),
			Placement: placement,
			Colors:    decisions[i],
			Ref:       i,
		}
		if opts.Debug {
			traces[i] = &DebugTrace{
				Scheme:          decisions[i].Scheme,
				ColorConfidence: decisions[i].Confidence,
				TargetWidth:     placement.TargetWidth,
				TargetHeight:    placement.TargetHeight,
				ColorDuration:   colorTimes[i],
			}
		}
	}
	stop()

	report("layout", len(kept))

	similar := overlay.TextsSimilarFuzzy
	if e.cfg.StrictDedupe {
		similar = overlay.TextsSimilar
	}
	stop = timings.Start("dedupe")
	survivors := overlay.Dedupe(drawn, e.cfg.IoUThreshold, similar)
	stop()
	report("dedupe", len(survivors))

	out := make([]TransformedLine, 0, len(survivors))
	for _, ln := range survivors {
		tl := TransformedLine{
			Text:            ln.Text,
			DisplayText:     ln.Display,
			ScreenCorners:   ln.Placement.ScreenCorners,
			FontSizePt:      ln.Placement.FontSizePt,
			TargetWidth:     ln.Placement.TargetWidth,
			Rotation:        ln.Placement.Rotation,
			Weight:          ln.Placement.Weight,
			TextColor:       ln.Colors.Text,
			BackgroundColor: ln.Colors.Background,
			ContentType:     kept[ln.Ref].ContentType,
			Trace:           traces[ln.Ref],
		}
		out = append(out, tl)
	}

	e.logger.Debug("annotated photo",
		"imageID", opts.ImageID,
		"lines", len(lines),
		"kept", len(kept),
		"rendered", len(out),
		"stages", timings.String())
	e.observeStages(timings)
	return out, nil
}

// checkAlive reports cancellation or supersession.
func (s *Session) checkAlive(ctx context.Context, token uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.generation.Load() != token {
		return ErrSuperseded
	}
	return nil
}

// filterLines classifies and filters the raw lines, keeping OCR order.
func (e *Engine) filterLines(lines []RecognizedLine) ([]AnnotatedLine, map[filter.DropReason]int) {
	kept := make([]AnnotatedLine, 0, len(lines))
	dropped := make(map[filter.DropReason]int)
	for _, line := range lines {
		contentType := classify.Detect(line.Text)
		ok, reason := filter.Keep(line.Text, line.Box, contentType, e.cfg.Filter)
		if !ok {
			dropped[reason]++
			continue
		}
		kept = append(kept, AnnotatedLine{
			RecognizedLine: line,
			ContentType:    contentType,
		})
	}
	return kept, dropped
}

// translateLines fills TranslatedText in place. Failures degrade to the
// original text and are logged, never surfaced.
func (e *Engine) translateLines(ctx context.Context, kept []AnnotatedLine, opts Options) {
	if e.translator == nil || len(kept) == 0 {
		return
	}
	if opts.Target == language.Und || opts.Target == opts.Source {
		return
	}
	texts := make([]string, len(kept))
	for i := range kept {
		texts[i] = kept[i].Text
	}
	translated, err := e.translator.Translate(ctx, texts, opts.Source, opts.Target)
	if err != nil {
		e.logger.Warn("translation degraded to originals", "error", err)
	}
	merged := translate.Apply(texts, translated, err)
	for i := range kept {
		if merged[i] != kept[i].Text {
			kept[i].TranslatedText = merged[i]
		}
	}
}

// analyzeColors runs the per-line color analysis in a bounded worker pool
// and returns decisions aligned with kept.
func (e *Engine) analyzeColors(ctx context.Context, photo image.Image, kept []AnnotatedLine, imageID string) ([]coloranalysis.Decision, []time.Duration) {
	decisions := make([]coloranalysis.Decision, len(kept))
	elapsed := make([]time.Duration, len(kept))
	for i := range decisions {
		decisions[i] = coloranalysis.DefaultDecision()
	}
	if len(kept) == 0 {
		return decisions, elapsed
	}

	workers := e.cfg.Workers
	if workers > len(kept) {
		workers = len(kept)
	}

	jobs := make(chan colorJob, len(kept))
	results := make(chan colorResult, len(kept))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				start := time.Now()
				d := e.analyzer.Analyze(photo, job.line.Text, job.line.Box, imageID)
				select {
				case results <- colorResult{index: job.index, decision: d, elapsed: time.Since(start)}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, line := range kept {
			select {
			case jobs <- colorJob{index: i, line: line}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		decisions[res.index] = res.decision
		elapsed[res.index] = res.elapsed
	}
	return decisions, elapsed
}

// place computes a line's display placement, consulting the transform cache
// for repeated text in unchanged geometry.
func (e *Engine) place(line AnnotatedLine, imgW, imgH int, opts Options) layout.Placement {
	key := transformKey{
		text:    line.DisplayText(),
		box:     line.Box,
		imgW:    imgW,
		imgH:    imgH,
		screenW: opts.DisplayWidth,
		screenH: opts.DisplayHeight,
	}
	// Only rectangle-derived quads are cacheable: explicit corners vary per
	// detection even for identical text and box.
	cacheable := len(line.CornerPoints) != 4
	if cacheable {
		if p, ok := e.transforms.Get(key); ok {
			return p
		}
	}
	p := e.layout.Transform(
		line.DisplayText(), line.ContentType, line.CornerPoints, line.Box,
		float64(imgW), float64(imgH),
		float64(opts.DisplayWidth), float64(opts.DisplayHeight),
	)
	if cacheable {
		e.transforms.Put(key, p, 0)
	}
	return p
}
