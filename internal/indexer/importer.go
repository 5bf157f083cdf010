package indexer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"searchable-gallery/internal/database"
	"searchable-gallery/internal/logging"
	"searchable-gallery/internal/media"
	"searchable-gallery/internal/mediatypes"
	"searchable-gallery/internal/memory"
	"searchable-gallery/internal/metrics"
	"searchable-gallery/internal/workers"
)

// Config configures an import run.
type Config struct {
	// NumWorkers is the number of parallel workers (0 = auto based on CPU)
	NumWorkers int
	// ChannelBuffer is the size of the work channel buffer
	ChannelBuffer int
	// SkipHidden skips files and directories starting with "."
	SkipHidden bool
	// SkipExisting skips files whose absolute path is already catalogued.
	SkipExisting bool
	// Tags are attached to every imported item.
	Tags []string
	// Memory, when set, pauses workers while heap usage is critical.
	Memory *memory.Monitor
}

// DefaultConfig returns defaults sized to the available CPUs. IMPORT_WORKERS
// overrides the worker count.
func DefaultConfig() Config {
	return Config{
		NumWorkers:    workers.ForMixed(8),
		ChannelBuffer: 256,
		SkipHidden:    true,
		SkipExisting:  true,
	}
}

// Result summarizes an import run.
type Result struct {
	Imported int64 `json:"imported"`
	Skipped  int64 `json:"skipped"`
	Failed   int64 `json:"failed"`
}

// Importer catalogs image files found under a directory: one item per
// image, with a fresh random id, a generated thumbnail and the configured
// tags.
type Importer struct {
	db     *database.Database
	thumbs *media.ThumbnailGenerator
	config Config
}

// NewImporter returns an importer writing to db. thumbs may be nil, in
// which case items are imported without thumbnails.
func NewImporter(db *database.Database, thumbs *media.ThumbnailGenerator, config Config) *Importer {
	if config.NumWorkers <= 0 {
		config.NumWorkers = workers.ForMixed(8)
	}
	if config.ChannelBuffer <= 0 {
		config.ChannelBuffer = 256
	}
	return &Importer{db: db, thumbs: thumbs, config: config}
}

type importJob struct {
	path string
	info fs.FileInfo
}

type outcome int

const (
	outcomeImported outcome = iota
	outcomeSkipped
	outcomeFailed
)

func (o outcome) String() string {
	switch o {
	case outcomeImported:
		return "imported"
	case outcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Import walks dir and catalogs every supported image in it. Individual
// file failures are logged and counted; the returned error is reserved for
// an unreadable root or a cancelled context.
func (im *Importer) Import(ctx context.Context, dir string) (Result, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return Result{}, fmt.Errorf("failed to resolve import dir: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return Result{}, fmt.Errorf("failed to access import dir: %w", err)
	}
	if !info.IsDir() {
		return Result{}, fmt.Errorf("import path %s is not a directory", root)
	}

	logging.Info("Starting import of %s with %d workers (tags: %v)", root, im.config.NumWorkers, im.config.Tags)
	startTime := time.Now()

	var imported, skipped, failed atomic.Int64
	jobs := make(chan importJob, im.config.ChannelBuffer)

	var wg sync.WaitGroup
	for i := 0; i < im.config.NumWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logging.Debug("Import worker %d started", id)
			for job := range jobs {
				o := im.importFile(ctx, job)
				metrics.ImportFilesTotal.WithLabelValues(o.String()).Inc()
				switch o {
				case outcomeImported:
					imported.Add(1)
				case outcomeSkipped:
					skipped.Add(1)
				default:
					failed.Add(1)
				}
			}
		}(i)
	}

	walkErr := im.walk(ctx, root, jobs)
	close(jobs)
	wg.Wait()

	result := Result{Imported: imported.Load(), Skipped: skipped.Load(), Failed: failed.Load()}
	logging.Info("Import complete: %d imported, %d skipped, %d failed in %v",
		result.Imported, result.Skipped, result.Failed, time.Since(startTime))

	if walkErr != nil {
		return result, walkErr
	}
	return result, ctx.Err()
}

// walk sends every supported image under root to jobs.
func (im *Importer) walk(ctx context.Context, root string, jobs chan<- importJob) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			logging.Warn("Error accessing path %s: %v", path, err)
			return nil
		}

		if path != root && im.config.SkipHidden && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() || !d.Type().IsRegular() || !mediatypes.IsImageFile(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logging.Warn("Error getting info for %s: %v", path, err)
			return nil
		}

		select {
		case jobs <- importJob{path: path, info: info}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if err != nil {
		return fmt.Errorf("import walk failed: %w", err)
	}
	return nil
}

func (im *Importer) importFile(ctx context.Context, job importJob) outcome {
	if ctx.Err() != nil {
		return outcomeSkipped
	}
	if err := im.config.Memory.Wait(ctx); err != nil {
		return outcomeSkipped
	}

	if im.config.SkipExisting {
		exists, err := im.db.ItemExistsByPath(ctx, job.path)
		if err != nil {
			logging.Warn("Import: lookup failed for %s: %v", job.path, err)
			return outcomeFailed
		}
		if exists {
			logging.Debug("Import: %s already catalogued", job.path)
			return outcomeSkipped
		}
	}

	id := database.NewItemID()
	var thumbRef *string
	if im.thumbs != nil {
		ref, err := im.thumbs.Generate(job.path, id)
		if err != nil {
			logging.Warn("Import: %s is not a decodable image: %v", job.path, err)
			return outcomeFailed
		}
		thumbRef = &ref
	}

	title := strings.TrimSuffix(job.info.Name(), filepath.Ext(job.info.Name()))
	_, err := im.db.InsertItem(ctx, database.NewItem{
		ID:           id,
		FullPath:     job.path,
		ShortTitle:   &title,
		ThumbnailRef: thumbRef,
		CreatedAt:    job.info.ModTime(),
		Tags:         im.config.Tags,
	})
	if err != nil {
		logging.Warn("Import: failed to catalogue %s: %v", job.path, err)
		if thumbRef != nil {
			_ = os.Remove(filepath.Join(im.thumbs.Dir(), *thumbRef))
		}
		return outcomeFailed
	}
	return outcomeImported
}
