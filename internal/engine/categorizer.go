// Package engine orchestrates batch categorization: it partitions pending
// rows into fixed-size groups, drives one generation call per group, and
// assembles a complete per-row result set.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pkozlov/bucketeer/internal/category"
	"github.com/pkozlov/bucketeer/internal/common"
	"github.com/pkozlov/bucketeer/internal/model"
	"github.com/pkozlov/bucketeer/internal/parse"
	"github.com/pkozlov/bucketeer/internal/prompt"
	"github.com/pkozlov/bucketeer/internal/trace"
)

// Generator is the external text-completion call. llm.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options configures a Categorizer.
type Options struct {
	// Normalizer overrides the cleanup applied to model output before
	// category validation. Nil selects category.DefaultNormalizer.
	Normalizer category.Normalizer
	// BatchSize is the maximum number of rows per generation call.
	BatchSize int
	// MaxExamples caps the historical examples rendered into each prompt.
	MaxExamples int
	// BatchTimeout overrides the per-batch deadline. Zero selects
	// TimeoutForBatch(BatchSize).
	BatchTimeout time.Duration
}

// DefaultOptions returns the stock configuration: batches of 5, up to 100
// in-context examples.
func DefaultOptions() Options {
	return Options{
		BatchSize:   5,
		MaxExamples: prompt.DefaultMaxExamples,
	}
}

// TimeoutForBatch returns the generation deadline for a group of n rows:
// 30s for a single row, growing to 60s at the default batch size of 5.
func TimeoutForBatch(n int) time.Duration {
	if n < 1 {
		n = 1
	}
	return 30*time.Second + time.Duration(n-1)*7500*time.Millisecond
}

// Categorizer proposes categories for unmapped rows. It is stateless between
// Categorize calls; session learning happens by the caller re-supplying a
// grown example list.
type Categorizer struct {
	gen    Generator
	parser *parse.Parser
	sink   trace.Sink
	logger *slog.Logger
	opts   Options
}

// New creates a Categorizer. A nil sink disables event emission and a nil
// logger selects slog.Default.
func New(gen Generator, opts Options, sink trace.Sink, logger *slog.Logger) *Categorizer {
	if sink == nil {
		sink = trace.NopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Categorizer{
		gen:    gen,
		parser: parse.NewParser(category.NewValidator(opts.Normalizer)),
		sink:   sink,
		logger: logger,
		opts:   opts,
	}
}

// Categorize proposes a category for every row and returns a mapping that
// covers exactly the input row indices. Failures are scoped to the smallest
// affected unit: a generation failure marks its whole group Failed, a bad
// output line marks only its row Rejected, and no group's failure aborts the
// remaining groups. When ctx is canceled mid-run, the assignments assembled
// so far are returned alongside the context error.
func (c *Categorizer) Categorize(ctx context.Context, rows []model.Row, categories model.CategorySet, examples []model.Example) (map[int]model.Assignment, error) {
	if c.opts.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: batch size must be positive, got %d", common.ErrInvalidConfig, c.opts.BatchSize)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidConfig, common.ErrNoCategories)
	}

	results := make(map[int]model.Assignment, len(rows))
	if len(rows) == 0 {
		return results, nil
	}

	groups := partition(rows, c.opts.BatchSize)
	timeout := c.opts.BatchTimeout
	if timeout == 0 {
		timeout = TimeoutForBatch(c.opts.BatchSize)
	}

	c.logger.Info("starting batch categorization",
		"rows", len(rows),
		"groups", len(groups),
		"batch_size", c.opts.BatchSize,
		"examples", len(examples))

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		c.categorizeGroup(ctx, group, categories, examples, timeout, results)
	}

	return results, nil
}

func (c *Categorizer) categorizeGroup(ctx context.Context, group []model.Row, categories model.CategorySet, examples []model.Example, timeout time.Duration, results map[int]model.Assignment) {
	indices := make([]int, len(group))
	for i, row := range group {
		indices[i] = row.Index
	}

	trace.Emit(ctx, c.sink, trace.EventBatchStarted, map[string]any{
		"batch_size": len(group),
		"indices":    indices,
	})

	p := prompt.BuildBatchPrompt(group, categories, examples, c.opts.MaxExamples)

	genCtx, cancel := context.WithTimeout(ctx, timeout)
	raw, err := c.gen.Generate(genCtx, p)
	cancel()

	if err != nil {
		reason := err.Error()
		c.logger.Warn("generation failed for batch", "indices", indices, "error", err)
		trace.Emit(ctx, c.sink, trace.EventGenerationError, map[string]any{
			"batch_size": len(group),
			"error":      reason,
		})
		for _, idx := range indices {
			results[idx] = model.Assignment{
				RowIndex: idx,
				Status:   model.StatusFailed,
				Reason:   reason,
			}
		}
		return
	}

	parsed := c.parser.ParseBatchResponse(raw, indices, categories)

	var assigned, rejected int
	for _, idx := range indices {
		res := parsed[idx]
		if res.Reason != "" {
			rejected++
			trace.Emit(ctx, c.sink, trace.EventParseError, map[string]any{
				"row_index": idx,
				"reason":    res.Reason,
			})
			results[idx] = model.Assignment{
				RowIndex: idx,
				Status:   model.StatusRejected,
				Reason:   res.Reason,
			}
			continue
		}
		assigned++
		results[idx] = model.Assignment{
			RowIndex: idx,
			Status:   model.StatusAssigned,
			Category: res.Category,
			Note:     res.Note,
		}
	}

	trace.Emit(ctx, c.sink, trace.EventBatchCompleted, map[string]any{
		"batch_size": len(group),
		"assigned":   assigned,
		"rejected":   rejected,
	})
}

// SuggestOne proposes a category for a single row using the single-row
// prompt variant. Transient generation failures are retried; a rejected
// reply is returned as-is for the caller to surface.
func (c *Categorizer) SuggestOne(ctx context.Context, row model.Row, categories model.CategorySet, examples []model.Example) (model.Assignment, error) {
	if len(categories) == 0 {
		return model.Assignment{}, fmt.Errorf("%w: %v", common.ErrInvalidConfig, common.ErrNoCategories)
	}

	p := prompt.BuildSingleRowPrompt(row, categories, examples, c.opts.MaxExamples)

	var raw string
	err := common.WithRetry(ctx, func() error {
		genCtx, cancel := context.WithTimeout(ctx, TimeoutForBatch(1))
		defer cancel()

		reply, err := c.gen.Generate(genCtx, p)
		if err != nil {
			return &common.RetryableError{Err: err, Retryable: retryableGeneration(err)}
		}
		raw = reply
		return nil
	}, common.RetryOptions{MaxAttempts: 3, InitialDelay: time.Second})
	if err != nil {
		trace.Emit(ctx, c.sink, trace.EventGenerationError, map[string]any{
			"row_index": row.Index,
			"error":     err.Error(),
		})
		return model.Assignment{
			RowIndex: row.Index,
			Status:   model.StatusFailed,
			Reason:   err.Error(),
		}, nil
	}

	res := c.parser.ParseSingleResponse(raw, categories)
	if res.Reason != "" {
		trace.Emit(ctx, c.sink, trace.EventParseError, map[string]any{
			"row_index": row.Index,
			"reason":    res.Reason,
		})
		return model.Assignment{
			RowIndex: row.Index,
			Status:   model.StatusRejected,
			Reason:   res.Reason,
		}, nil
	}

	return model.Assignment{
		RowIndex: row.Index,
		Status:   model.StatusAssigned,
		Category: res.Category,
		Note:     res.Note,
	}, nil
}

// retryableGeneration reports whether a failed generation call is worth
// repeating. Configuration problems will not fix themselves between attempts;
// timeouts, rate limits, and transport errors may.
func retryableGeneration(err error) bool {
	if common.IsRetryable(err) {
		return true
	}
	return !errors.Is(err, common.ErrMissingConfig) && !errors.Is(err, common.ErrInvalidConfig)
}

// partition splits rows into contiguous groups of at most size, preserving
// order. The last group may be smaller.
func partition(rows []model.Row, size int) [][]model.Row {
	if len(rows) == 0 {
		return nil
	}
	groups := make([][]model.Row, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		groups = append(groups, rows[start:end])
	}
	return groups
}
