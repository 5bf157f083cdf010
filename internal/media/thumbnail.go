package media

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"searchable-gallery/internal/database"
	"searchable-gallery/internal/logging"
	"searchable-gallery/internal/metrics"

	"github.com/disintegration/imaging"
)

const (
	// ThumbnailSize is the bounding box thumbnails are fitted into.
	ThumbnailSize = 200

	thumbnailQuality = 80
)

// ThumbnailGenerator writes JPEG thumbnails into a directory.
type ThumbnailGenerator struct {
	dir string
}

// NewThumbnailGenerator returns a generator writing to dir, creating it if
// needed.
func NewThumbnailGenerator(dir string) (*ThumbnailGenerator, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail dir %s: %w", dir, err)
	}
	logging.Debug("ThumbnailGenerator: writing to %s", dir)
	return &ThumbnailGenerator{dir: dir}, nil
}

// Dir returns the thumbnail directory.
func (t *ThumbnailGenerator) Dir() string {
	return t.dir
}

// ThumbnailName returns the thumbnail file name for an item.
func ThumbnailName(id database.ItemID) string {
	return id.String() + ".jpg"
}

// Generate fits the image at srcPath into a ThumbnailSize square, encodes
// it as JPEG under the name ThumbnailName(id), and returns that name.
func (t *ThumbnailGenerator) Generate(srcPath string, id database.ItemID) (string, error) {
	start := time.Now()
	name, err := t.generate(srcPath, id)
	metrics.ThumbnailGenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.ThumbnailGenerationsTotal.WithLabelValues("success").Inc()
	return name, nil
}

func (t *ThumbnailGenerator) generate(srcPath string, id database.ItemID) (string, error) {
	img, err := LoadImageConstrained(srcPath, MaxImageDimension, MaxImagePixels)
	if err != nil {
		return "", fmt.Errorf("thumbnail generation failed: %w", err)
	}

	thumb := imaging.Fit(img, ThumbnailSize, ThumbnailSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	name := ThumbnailName(id)
	dest := filepath.Join(t.dir, name)

	// Write to a temp file and rename so readers never see a partial JPEG.
	tmp, err := os.CreateTemp(t.dir, ".thumb-*")
	if err != nil {
		return "", fmt.Errorf("failed to create thumbnail: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write thumbnail: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to store thumbnail: %w", err)
	}

	logging.Debug("Thumbnail written: %s (%dx%d)", dest, thumb.Bounds().Dx(), thumb.Bounds().Dy())
	return name, nil
}
