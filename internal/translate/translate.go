// Package translate defines the translation collaborator used to localize
// recognized lines before layout.
package translate

import (
	"context"

	"golang.org/x/text/language"
)

// Translator translates a batch of texts. The result has one entry per
// input; a nil entry means that text could not be translated and the caller
// shows the original. Implementations must not reorder entries.
type Translator interface {
	Translate(ctx context.Context, texts []string, source, target language.Tag) ([]*string, error)
}

// Apply merges a translation batch over the original texts. Nil entries,
// short batches, and a batch-level error all degrade to the original text,
// so an outage never blanks the overlay.
func Apply(texts []string, translated []*string, err error) []string {
	out := make([]string, len(texts))
	copy(out, texts)
	if err != nil {
		return out
	}
	for i := range out {
		if i < len(translated) && translated[i] != nil && *translated[i] != "" {
			out[i] = *translated[i]
		}
	}
	return out
}

// Identity returns every text unchanged. Used when source and target match
// or when no provider is configured.
type Identity struct{}

// Translate implements Translator.
func (Identity) Translate(_ context.Context, texts []string, _, _ language.Tag) ([]*string, error) {
	out := make([]*string, len(texts))
	for i := range texts {
		t := texts[i]
		out[i] = &t
	}
	return out, nil
}

// Static translates from a fixed lookup table. Texts missing from the table
// come back nil. Useful for tests and offline CLI runs with a prepared
// translation file.
type Static struct {
	Entries map[string]string
}

// NewStatic builds a Static translator over entries.
func NewStatic(entries map[string]string) *Static {
	return &Static{Entries: entries}
}

// Translate implements Translator.
func (s *Static) Translate(ctx context.Context, texts []string, _, _ language.Tag) ([]*string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]*string, len(texts))
	for i, text := range texts {
		if tr, ok := s.Entries[text]; ok {
			v := tr
			out[i] = &v
		}
	}
	return out, nil
}
