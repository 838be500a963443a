package main

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pkozlov/bucketeer/internal/cli"
	"github.com/pkozlov/bucketeer/internal/common"
	"github.com/pkozlov/bucketeer/internal/engine"
	"github.com/pkozlov/bucketeer/internal/llm"
	"github.com/pkozlov/bucketeer/internal/model"
	"github.com/pkozlov/bucketeer/internal/prompt"
	"github.com/pkozlov/bucketeer/internal/trace"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Propose categories for every unmapped transaction",
		Long: `Runs the batch pipeline over all unmapped rows and prints the proposed
category for each. Nothing is saved; use "confirm" to accept a proposal.`,
		RunE: runCategorize,
	}

	cmd.Flags().Int("batch-size", 0, "rows per generation call (overrides config)")

	return cmd
}

func runCategorize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	f, err := initProgress().Load()
	if err != nil {
		return err
	}
	if len(f.Rows) == 0 {
		return common.NewUserError(`no file uploaded yet, run "bucketeer upload" first`, common.ErrNoRows)
	}

	pending := f.Unmapped()
	if len(pending) == 0 {
		fmt.Println(cli.FormatSuccess("nothing to categorize"))
		return nil
	}

	categories, err := store.CategorySet(ctx)
	if err != nil {
		return err
	}

	examples, err := store.RecentExamples(ctx, prompt.DefaultMaxExamples)
	if err != nil {
		return err
	}

	opts := engineOptions()
	if batchSize, _ := cmd.Flags().GetInt("batch-size"); batchSize > 0 {
		opts.BatchSize = batchSize
	}

	client, err := llm.NewClient(llmConfig())
	if err != nil {
		return err
	}
	defer closeClient(client)
	categorizer := engine.New(client, opts, trace.NewLogSink(slog.Default()), slog.Default())

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Categorizing %d transactions with %s", len(pending), client.Name())))

	bar := progressbar.NewOptions(len(pending),
		progressbar.OptionSetDescription("categorizing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	results, runErr := categorizeWithProgress(ctx, categorizer, opts.BatchSize, pending, categories, examples, bar)
	_ = bar.Finish()

	printResults(pending, results)

	if runErr != nil {
		return fmt.Errorf("categorization interrupted: %w", runErr)
	}
	return nil
}

// categorizeWithProgress feeds the engine one batch at a time so the bar can
// advance between generation calls. A batch failure does not stop later
// batches; only a context error does.
func categorizeWithProgress(ctx context.Context, c *engine.Categorizer, batchSize int, rows []model.Row, categories model.CategorySet, examples []model.Example, bar *progressbar.ProgressBar) (map[int]model.Assignment, error) {
	results := make(map[int]model.Assignment, len(rows))

	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))

		part, err := c.Categorize(ctx, rows[start:end], categories, examples)
		for idx, a := range part {
			results[idx] = a
		}
		_ = bar.Add(end - start)
		if err != nil {
			return results, err
		}
	}

	return results, nil
}

func printResults(pending []model.Row, results map[int]model.Assignment) {
	indices := make([]int, 0, len(results))
	for idx := range results {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	byIndex := make(map[int]model.Row, len(pending))
	for _, row := range pending {
		byIndex[row.Index] = row
	}

	assigned := 0
	for _, idx := range indices {
		a := results[idx]
		row := byIndex[idx]
		switch {
		case a.Assigned():
			assigned++
			line := fmt.Sprintf("row %d  %-40.40s  %s", idx, row.Description, a.Category)
			if a.Note != "" {
				line += " " + cli.StyleSubtle("("+a.Note+")")
			}
			fmt.Println(cli.FormatSuccess(line))
		case a.Status == model.StatusRejected:
			fmt.Println(cli.FormatWarning(fmt.Sprintf("row %d  %-40.40s  %s", idx, row.Description, a.Reason)))
		default:
			fmt.Println(cli.FormatError(fmt.Sprintf("row %d  %-40.40s  %s", idx, row.Description, a.Reason)))
		}
	}

	fmt.Println(cli.StyleSubtle(fmt.Sprintf("%d of %d rows got a proposal", assigned, len(pending))))
}
