package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/harmonysearch/internal/server"
	"github.com/cwbudde/harmonysearch/internal/store"
)

var (
	serveAddr     string
	serveDataDir  string
	rateLimit     float64
	rateBurst     int
	serveCompress bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP job server",
	Long: `Starts the HTTP server that accepts optimization jobs, streams progress
over SSE, and persists completed runs under the data directory.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "./data", "Base directory for run persistence (empty disables it)")
	serveCmd.Flags().Float64Var(&rateLimit, "rate-limit", 5, "Max job submissions per second")
	serveCmd.Flags().IntVar(&rateBurst, "burst", 5, "Job submission burst allowance")
	serveCmd.Flags().BoolVar(&serveCompress, "compress", false, "Compress persisted traces with zstd")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := server.Config{
		Addr:           serveAddr,
		CompressTraces: serveCompress,
		JobsPerSecond:  rateLimit,
		JobBurst:       rateBurst,
	}

	if serveDataDir != "" {
		runStore, err := store.NewFSStore(serveDataDir)
		if err != nil {
			return fmt.Errorf("failed to open run store: %w", err)
		}
		cfg.Store = runStore
		cfg.TraceDir = runStore.BaseDir()
	}

	s := server.NewServer(cfg)

	// Serve until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
