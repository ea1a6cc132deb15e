package layout

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
)

// FontWeight is the closed set of annotation weights.
type FontWeight int

const (
	WeightRegular FontWeight = iota
	WeightMedium
	WeightBold
)

// String returns the lowercase weight name.
func (w FontWeight) String() string {
	switch w {
	case WeightMedium:
		return "medium"
	case WeightBold:
		return "bold"
	default:
		return "regular"
	}
}

// MarshalText implements encoding.TextMarshaler for JSON output.
func (w FontWeight) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// fontSet holds one parsed face family per weight.
type fontSet struct {
	fonts map[FontWeight]*truetype.Font
}

// loadFonts parses the bundled Go font family.
func loadFonts() (*fontSet, error) {
	fs := &fontSet{fonts: make(map[FontWeight]*truetype.Font, 3)}
	sources := map[FontWeight][]byte{
		WeightRegular: goregular.TTF,
		WeightMedium:  gomedium.TTF,
		WeightBold:    gobold.TTF,
	}
	for weight, ttf := range sources {
		f, err := truetype.Parse(ttf)
		if err != nil {
			return nil, fmt.Errorf("parse %s font: %w", weight, err)
		}
		fs.fonts[weight] = f
	}
	return fs, nil
}

// font returns the parsed font for a weight, falling back to regular.
func (fs *fontSet) font(w FontWeight) *truetype.Font {
	if f, ok := fs.fonts[w]; ok {
		return f
	}
	return fs.fonts[WeightRegular]
}
