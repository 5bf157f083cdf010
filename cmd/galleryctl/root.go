package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"searchable-gallery/internal/catalog"
	"searchable-gallery/internal/database"
	"searchable-gallery/internal/logging"
	"searchable-gallery/internal/startup"
)

// defaultTimeout bounds catalog reads issued by the CLI.
const defaultTimeout = 30 * time.Second

// app carries global flags and the resources opened for a command.
type app struct {
	output      string
	databaseDir string
	driver      string
	verbose     bool

	config  *startup.Config
	db      *database.Database
	catalog *catalog.Service
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "galleryctl",
		Short:         "Query and populate a tag-indexed image catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations["skipDatabase"] == "true" {
				return nil
			}
			return a.open(cmd)
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVarP(&a.output, "output", "o", "", "output format: table, json or yaml (default: table on a terminal, json otherwise)")
	root.PersistentFlags().StringVar(&a.databaseDir, "database-dir", "", "database directory (overrides DATABASE_DIR)")
	root.PersistentFlags().StringVar(&a.driver, "driver", "", "SQLite driver: sqlite3 or sqlite (overrides DATABASE_DRIVER)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newTagsCmd(a),
		newItemsCmd(a),
		newImportCmd(a),
		newVersionCmd(a),
	)
	return root
}

// open loads configuration and opens the catalog.
func (a *app) open(cmd *cobra.Command) error {
	if a.verbose {
		logging.SetLevel(logging.LevelDebug)
	} else {
		logging.SetLevel(logging.LevelWarn)
	}

	cfg, err := startup.Load()
	if err != nil {
		return err
	}
	if a.databaseDir != "" {
		dir, err := filepath.Abs(a.databaseDir)
		if err != nil {
			return fmt.Errorf("failed to resolve database directory path: %w", err)
		}
		cfg.DatabaseDir = dir
		cfg.DatabasePath = startup.DatabasePathFor(dir)
	}
	if a.driver != "" {
		cfg.DatabaseDriver = a.driver
	}
	a.config = cfg

	if err := os.MkdirAll(cfg.DatabaseDir, 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := database.New(cmd.Context(), cfg.DatabasePath, &database.Options{Driver: cfg.DatabaseDriver})
	if err != nil {
		return fmt.Errorf("failed to open catalog %s: %w", cfg.DatabasePath, err)
	}
	logging.Debug("Opened catalog %s (driver %s)", db.Path(), db.Driver())
	a.db = db
	a.catalog = catalog.NewService(db)
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	if err != nil {
		return errors.Join(errors.New("failed to close catalog"), err)
	}
	return nil
}
