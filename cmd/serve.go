package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwbudde/weberfit/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr     string
	serveDataDir  string
	serveRedisDSN string
	serveCacheTTL time.Duration
	serveNoTraces bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP job server",
	Long: `Serves the job API (POST /api/v1/jobs), live progress over SSE,
iteration traces, saved runs and an HTML job list.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "./data", "Base directory for runs and traces")
	serveCmd.Flags().StringVar(&serveRedisDSN, "redis", "", "Store run records in Redis (redis://host:port/db)")
	serveCmd.Flags().DurationVar(&serveCacheTTL, "cache-ttl", server.DefaultCacheTTL, "How long finished results answer identical jobs (negative disables)")
	serveCmd.Flags().BoolVar(&serveNoTraces, "no-traces", false, "Disable iteration traces")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	runs, closeStore, err := openStore(serveDataDir, serveRedisDSN)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := server.Options{DataDir: serveDataDir, CacheTTL: serveCacheTTL}
	if serveNoTraces {
		opts.DataDir = ""
	}
	srv := server.NewServer(serveAddr, runs, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Signal received, stopping")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
