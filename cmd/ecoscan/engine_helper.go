package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"ecoscan/internal/config"
	"ecoscan/internal/engine"
	ecoerrors "ecoscan/internal/errors"
	"ecoscan/internal/paths"
	"ecoscan/internal/slogutil"
	"ecoscan/internal/storage"
)

// getRepoRoot returns the project root directory.
func getRepoRoot() (string, error) {
	return os.Getwd()
}

// mustGetRepoRoot returns the project root or exits on error.
func mustGetRepoRoot() string {
	repoRoot, err := getRepoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return repoRoot
}

// mustLoadConfig loads and validates the configuration or exits.
func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := config.LoadConfig(repoRoot)
	if err != nil {
		exitWithError(ecoerrors.NewEcoError(ecoerrors.ConfigInvalid, "failed to load configuration", err))
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ecoerrors.NewEcoError(ecoerrors.ConfigInvalid, "invalid configuration", err))
	}
	return cfg
}

// logLevel picks the level from -v/-q when given, else from the config.
func logLevel(cfg *config.Config) slog.Level {
	if verbosity > 0 || quiet {
		return slogutil.LevelFromVerbosity(verbosity, quiet)
	}
	return slogutil.LevelFromString(cfg.Logging.Level)
}

// newLogger creates the stderr logger for a command.
func newLogger(cfg *config.Config) *slog.Logger {
	return slogutil.NewFormatLogger(os.Stderr, logLevel(cfg), cfg.Logging.Format)
}

// openEngine creates an engine, opening the history database when storage
// is enabled. The returned func closes the database.
func openEngine(repoRoot string, cfg *config.Config, logger *slog.Logger) (*engine.Engine, func(), error) {
	if !cfg.Storage.Enabled {
		return engine.NewEngine(nil, logger, cfg), func() {}, nil
	}

	db, err := openDB(repoRoot, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database", "error", err.Error())
		}
	}
	return engine.NewEngine(db, logger, cfg), closeFn, nil
}

func openDB(repoRoot string, cfg *config.Config, logger *slog.Logger) (*storage.DB, error) {
	db, err := storage.Open(paths.Resolve(repoRoot, cfg.Storage.Path), logger)
	if err != nil {
		return nil, ecoerrors.NewEcoError(ecoerrors.StorageError, "failed to open run history", err)
	}
	logger.Debug("Opened run history", "path", db.Path())
	return db, nil
}

// newContext creates a context that is cancelled on interrupt.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// exitWithError prints err, and any suggested fixes it carries, then exits.
func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	var eco *ecoerrors.EcoError
	if errors.As(err, &eco) {
		for _, fix := range eco.SuggestedFixes {
			switch {
			case fix.Command != "":
				fmt.Fprintf(os.Stderr, "  Try: %s (%s)\n", fix.Command, fix.Description)
			case fix.URL != "":
				fmt.Fprintf(os.Stderr, "  See: %s (%s)\n", fix.URL, fix.Description)
			}
		}
	}
	os.Exit(1)
}
