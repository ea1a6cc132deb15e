package utils

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
)

// SupportedImageExtensions lists supported file extensions for loading.
var SupportedImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// ImageMetadata captures lightweight file and pixel information.
type ImageMetadata struct {
	Path        string
	Format      string
	SizeBytes   int64
	Width       int
	Height      int
	AspectRatio float64
}

// LoadImage opens and decodes a photo file, returning the image and metadata.
func LoadImage(path string) (image.Image, ImageMetadata, error) {
	if path == "" {
		return nil, ImageMetadata{}, errors.New("load image: empty path")
	}
	if !IsSupportedImage(path) {
		return nil, ImageMetadata{}, fmt.Errorf("load image: unsupported format %s", filepath.Ext(path))
	}

	f, err := os.Open(path) //nolint:gosec // G304: reading user-provided photo path is expected
	if err != nil {
		return nil, ImageMetadata{}, fmt.Errorf("load image: %w", err)
	}
	defer func() { _ = f.Close() }()

	fi, statErr := f.Stat()
	if statErr != nil {
		return nil, ImageMetadata{}, fmt.Errorf("load image: %w", statErr)
	}

	img, format, decErr := image.Decode(f)
	if decErr != nil {
		return nil, ImageMetadata{}, fmt.Errorf("decode image: %w", decErr)
	}

	b := img.Bounds()
	meta := ImageMetadata{
		Path:        path,
		Format:      format,
		SizeBytes:   fi.Size(),
		Width:       b.Dx(),
		Height:      b.Dy(),
		AspectRatio: float64(b.Dx()) / float64(b.Dy()),
	}
	return img, meta, nil
}
