package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pkozlov/bucketeer/internal/common"
	"github.com/pkozlov/bucketeer/internal/llm"
	"github.com/pkozlov/bucketeer/internal/server"
	"github.com/pkozlov/bucketeer/internal/trace"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Starts the HTTP API used by review frontends: upload, progress,
categorization, confirmation, stats, and Prometheus metrics on /metrics.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	cfg := llmConfig()
	client, err := llm.NewClient(cfg)
	if err != nil {
		return err
	}
	defer closeClient(client)

	srv := server.New(
		store,
		initProgress(),
		client,
		cfg.Provider,
		engineOptions(),
		trace.NewLogSink(slog.Default()),
		slog.Default(),
	)

	addr := viper.GetString("server.addr")
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	slog.Info("starting HTTP API", "addr", addr, "provider", cfg.Provider)
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		common.LogError(err, "HTTP server failed", common.Fields{"addr": addr})
		return err
	}
	return nil
}
