package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ecoscan/internal/api"
	"ecoscan/internal/paths"
	"ecoscan/internal/slogutil"
)

var (
	serveAddr       string
	serveLogFile    string
	serveLogMaxSize string
	serveLogBackups int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP front end",
	Long: `Start the ecoscan HTTP server. Python files can be uploaded or pasted
to POST /analyze; optimized files are served from GET /download/<name>.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default server.addr from config)")
	serveCmd.Flags().StringVar(&serveLogFile, "log-file", "", "Also append logs to this file")
	serveCmd.Flags().StringVar(&serveLogMaxSize, "log-max-size", "10MB", "Rotate the log file at this size (empty disables rotation)")
	serveCmd.Flags().IntVar(&serveLogBackups, "log-backups", 3, "Rotated log files to keep")
}

func runServe(cmd *cobra.Command, args []string) error {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	if serveLogFile != "" {
		fileLogger, closer, err := slogutil.NewRotatingFileLogger(
			paths.Resolve(repoRoot, serveLogFile), logLevel(cfg), serveLogMaxSize, serveLogBackups)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() { _ = closer.Close() }()
		logger = slogutil.Tee(logger, fileLogger)
	}

	serverCfg := cfg.Server
	if serveAddr != "" {
		serverCfg.Addr = serveAddr
	}
	serverCfg.UploadDir = paths.Resolve(repoRoot, serverCfg.UploadDir)
	serverCfg.OptimizedDir = paths.Resolve(repoRoot, serverCfg.OptimizedDir)

	eng, closeEngine, err := openEngine(repoRoot, cfg, logger)
	if err != nil {
		return err
	}
	defer closeEngine()

	server, err := api.NewServer(serverCfg, eng, logger)
	if err != nil {
		return err
	}

	// Setup graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		fmt.Printf("ecoscan listening on http://%s\n", serverCfg.Addr)
		fmt.Println("Press Ctrl+C to stop")
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", "error", err.Error())
			return err
		}
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during shutdown", "error", err.Error())
			return err
		}
	}

	return nil
}
