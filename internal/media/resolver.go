package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"searchable-gallery/internal/filesystem"
	"searchable-gallery/internal/mediatypes"
	"searchable-gallery/internal/metrics"
)

var (
	// ErrNotFound is returned when an image or thumbnail file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrInvalidRef is returned for thumbnail references that are empty or
	// would escape the thumbnail directory.
	ErrInvalidRef = errors.New("invalid thumbnail reference")
)

// Resolver turns stored item paths and thumbnail references into bytes.
type Resolver struct {
	thumbnailDir string
	retry        filesystem.RetryConfig
}

// NewResolver returns a resolver serving thumbnails from thumbnailDir.
func NewResolver(thumbnailDir string) *Resolver {
	return &Resolver{
		thumbnailDir: filepath.Clean(thumbnailDir),
		retry:        filesystem.DefaultRetryConfig(),
	}
}

// ResolveBytes reads the image file at path.
func (r *Resolver) ResolveBytes(path string) ([]byte, error) {
	data, err := r.read(path)
	recordBlobRead("image", err)
	return data, err
}

// DataURL reads the image at path and returns it as a base64 data URL. The
// MIME type comes from the extension and defaults to image/jpeg.
func (r *Resolver) DataURL(path string) (string, error) {
	data, err := r.ResolveBytes(path)
	if err != nil {
		return "", err
	}
	return EncodeDataURL(mediatypes.ImageMimeType(path), data), nil
}

// EncodeDataURL formats data as "data:<mime>;base64,<payload>".
func EncodeDataURL(mime string, data []byte) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mime) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mime)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// ThumbnailPath returns the absolute path of the thumbnail named ref. ref
// must be a bare file name inside the thumbnail directory.
func (r *Resolver) ThumbnailPath(ref string) (string, error) {
	if ref == "" || ref != filepath.Base(ref) || ref == "." || ref == ".." || strings.ContainsAny(ref, `/\`) {
		return "", fmt.Errorf("%q: %w", ref, ErrInvalidRef)
	}

	p := filepath.Join(r.thumbnailDir, ref)
	if filepath.Dir(p) != r.thumbnailDir {
		return "", fmt.Errorf("%q: %w", ref, ErrInvalidRef)
	}

	info, err := filesystem.StatWithRetry(p, r.retry)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("thumbnail %s: %w", ref, ErrNotFound)
		}
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("thumbnail %s: %w", ref, ErrNotFound)
	}
	return p, nil
}

// ReadThumbnail returns the bytes of the thumbnail named ref.
func (r *Resolver) ReadThumbnail(ref string) ([]byte, error) {
	p, err := r.ThumbnailPath(ref)
	if err != nil {
		recordBlobRead("thumbnail", err)
		return nil, err
	}
	data, err := r.read(p)
	recordBlobRead("thumbnail", err)
	return data, err
}

func (r *Resolver) read(path string) ([]byte, error) {
	data, err := filesystem.ReadFileWithRetry(path, r.retry)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return nil, err
	}
	return data, nil
}

func recordBlobRead(kind string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.BlobReadsTotal.WithLabelValues(kind, status).Inc()
}
