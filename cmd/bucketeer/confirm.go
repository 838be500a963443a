package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pkozlov/bucketeer/internal/cli"
	"github.com/pkozlov/bucketeer/internal/common"
	"github.com/pkozlov/bucketeer/internal/prompt"
)

func confirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <row> [category]",
		Short: "Confirm a category for one transaction",
		Long: `Records a category for the given row in the progress file and in the
mapping history. With no category argument, asks the model for a suggestion
and prints it without saving anything.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runConfirm,
	}
}

func runConfirm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	rowIndex, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid row index %q", args[0])
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	progStore := initProgress()

	if len(args) == 1 {
		f, err := progStore.Load()
		if err != nil {
			return err
		}
		row, ok := f.Row(rowIndex)
		if !ok {
			return fmt.Errorf("row %d not found", rowIndex)
		}

		categories, err := store.CategorySet(ctx)
		if err != nil {
			return err
		}
		examples, err := store.RecentExamples(ctx, prompt.DefaultMaxExamples)
		if err != nil {
			return err
		}

		categorizer, client, err := initCategorizer()
		if err != nil {
			return err
		}
		defer closeClient(client)

		assignment, err := categorizer.SuggestOne(ctx, row, categories, examples)
		if err != nil {
			return err
		}
		if !assignment.Assigned() {
			fmt.Println(cli.FormatWarning(fmt.Sprintf("no suggestion for row %d: %s", rowIndex, assignment.Reason)))
			return nil
		}

		fmt.Println(cli.FormatSuccess(fmt.Sprintf("row %d  %s  →  %s", rowIndex, row.Description, assignment.Category)))
		fmt.Println(cli.StyleSubtle(fmt.Sprintf("run \"bucketeer confirm %d %q\" to accept", rowIndex, assignment.Category)))
		return nil
	}

	categoryName := args[1]
	categories, err := store.CategorySet(ctx)
	if err != nil {
		return err
	}
	canonical := categories.CanonicalFold(categoryName)
	if canonical == "" {
		return fmt.Errorf("unknown category %q, see \"bucketeer categories list\"", categoryName)
	}

	f, err := progStore.Confirm(rowIndex, canonical)
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("row %d not found", rowIndex)
	}
	if err != nil {
		return err
	}

	if row, ok := f.Row(rowIndex); ok {
		if err := store.RecordMapping(ctx, row, canonical); err != nil {
			fmt.Println(cli.FormatWarning("confirmed, but failed to record history: " + err.Error()))
		}
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("row %d confirmed as %s", rowIndex, canonical)))
	return nil
}
