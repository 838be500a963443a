package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/pkozlov/bucketeer/internal/common"
	"github.com/pkozlov/bucketeer/internal/config"
	"github.com/pkozlov/bucketeer/internal/engine"
	"github.com/pkozlov/bucketeer/internal/llm"
	"github.com/pkozlov/bucketeer/internal/progress"
	"github.com/pkozlov/bucketeer/internal/storage"
	"github.com/pkozlov/bucketeer/internal/trace"
)

// initStorage opens the history database and runs migrations.
func initStorage(ctx context.Context) (*storage.Store, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/bucketeer/bucketeer.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.New(dbPath)
	if err != nil {
		return nil, common.NewUserError("failed to open the mapping database", err)
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, common.NewUserError("failed to migrate the mapping database", err)
	}

	return store, nil
}

// closeClient releases background resources a generation client may hold,
// such as the rate limiter's refill goroutine.
func closeClient(client llm.Client) {
	if closer, ok := client.(io.Closer); ok {
		_ = closer.Close()
	}
}

// initProgress opens the progress file store.
func initProgress() *progress.Store {
	path := viper.GetString("progress.path")
	if path == "" {
		path = "$HOME/.local/share/bucketeer/progress.json"
	}
	return progress.NewStore(config.ExpandPath(path))
}

// llmConfig assembles the generation client configuration from viper.
func llmConfig() llm.Config {
	cfg := llm.DefaultConfig()

	if v := viper.GetString("llm.provider"); v != "" {
		cfg.Provider = v
	}
	if v := viper.GetString("llm.model"); v != "" {
		cfg.Model = v
	}
	if v := viper.GetString("llm.api_key"); v != "" {
		cfg.APIKey = v
	}
	if v := viper.GetString("llm.base_url"); v != "" {
		cfg.BaseURL = v
	}
	if viper.IsSet("llm.temperature") {
		cfg.Temperature = viper.GetFloat64("llm.temperature")
	}
	if v := viper.GetInt("llm.max_tokens"); v > 0 {
		cfg.MaxTokens = v
	}
	if v := viper.GetDuration("llm.timeout"); v > 0 {
		cfg.Timeout = v
	}
	cfg.RateLimit = viper.GetInt("llm.rate_limit")

	return cfg
}

// engineOptions assembles batching options from viper.
func engineOptions() engine.Options {
	opts := engine.DefaultOptions()
	if v := viper.GetInt("categorize.batch_size"); v > 0 {
		opts.BatchSize = v
	}
	if v := viper.GetInt("categorize.max_examples"); v > 0 {
		opts.MaxExamples = v
	}
	return opts
}

// initCategorizer builds the LLM client and the categorization engine.
func initCategorizer() (*engine.Categorizer, llm.Client, error) {
	client, err := llm.NewClient(llmConfig())
	if err != nil {
		return nil, nil, err
	}

	sink := trace.NewLogSink(slog.Default())
	return engine.New(client, engineOptions(), sink, slog.Default()), client, nil
}
