package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"searchable-gallery/internal/indexer"
	"searchable-gallery/internal/media"
	"searchable-gallery/internal/memory"
)

func newImportCmd(a *app) *cobra.Command {
	var (
		tags         []string
		workers      int
		noThumbnails bool
		includeAll   bool
	)

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Catalog the images in a directory",
		Long: `Walk dir and add every supported image (jpg, png, gif, bmp, webp, tiff)
as a new item. A thumbnail is written to THUMBNAIL_DIR for each image unless
--no-thumbnails is given. Files whose path is already catalogued are skipped.

Example:
  galleryctl import /photos/2024 --tag holiday --tag 2024
  galleryctl import ./scans --no-thumbnails`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(a.output, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			var thumbs *media.ThumbnailGenerator
			if !noThumbnails {
				thumbs, err = media.NewThumbnailGenerator(a.config.ThumbnailDir)
				if err != nil {
					return fmt.Errorf("thumbnail directory: %w", err)
				}
			}

			memory.ConfigureFromEnv()
			mon := memory.NewMonitor(memory.DefaultConfig())
			monCtx, stopMonitor := context.WithCancel(cmd.Context())
			defer stopMonitor()
			go mon.Run(monCtx)

			cfg := indexer.DefaultConfig()
			cfg.Tags = tags
			cfg.Memory = mon
			cfg.SkipHidden = !includeAll
			if workers > 0 {
				cfg.NumWorkers = workers
			}

			result, err := indexer.NewImporter(a.db, thumbs, cfg).Import(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}

			return render(cmd.OutOrStdout(), format, result, func(w *tabwriter.Writer) {
				fmt.Fprintln(w, "IMPORTED\tSKIPPED\tFAILED")
				fmt.Fprintf(w, "%d\t%d\t%d\n", result.Imported, result.Skipped, result.Failed)
			})
		},
	}

	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "tag to attach to every imported item (repeatable)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "parallel workers (default: IMPORT_WORKERS or CPU based)")
	cmd.Flags().BoolVar(&noThumbnails, "no-thumbnails", false, "do not generate thumbnails")
	cmd.Flags().BoolVar(&includeAll, "all", false, "include hidden files and directories")
	return cmd
}
