package main

import (
	"fmt"
	"os"

	"library-circulation/library"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "library-circulation",
		Short: "Single-user library circulation tool",
		Long: "Tracks a catalog of books, a registry of members, and the loans linking\n" +
			"them. State lives in a JSON data file loaded at startup and saved on exit.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell()
		},
	}
	root.AddCommand(newExportCmd(), newImportCmd())
	return root
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func loadOrNew(cfg Config, log *zap.Logger) (*library.Library, error) {
	lib, err := library.Load(cfg.DataFile, log)
	if err != nil {
		// Corrupt data surfaces here; starting empty over a broken file
		// would silently destroy it.
		return nil, err
	}
	if lib == nil {
		lib = library.New(log)
	}
	return lib, nil
}

func runShell() error {
	cfg, err := NewConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	lib, err := loadOrNew(cfg, log)
	if err != nil {
		return err
	}
	return runMenu(os.Stdin, os.Stdout, lib, cfg)
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.db>",
		Short: "Export the data file to a SQLite database",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := NewConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.Debug)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			lib, err := loadOrNew(cfg, log)
			if err != nil {
				return err
			}
			return lib.ExportSQLite(args[0])
		},
	}
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.db>",
		Short: "Replace the data file with a SQLite export",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := NewConfig()
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.Debug)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			lib, err := library.ImportSQLite(args[0], log)
			if err != nil {
				return err
			}
			return lib.Save(cfg.DataFile)
		},
	}
}
