package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkozlov/bucketeer/internal/cli"
	"github.com/pkozlov/bucketeer/internal/common"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage budget categories",
	}

	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesRemoveCmd())

	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.GetCategories(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatTitle("Categories"))
			for _, c := range categories {
				fmt.Println(cli.TableCellStyle.Render("  " + c.Name))
			}
			return nil
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			cat, err := store.CreateCategory(cmd.Context(), args[0])
			if errors.Is(err, common.ErrDuplicateEntry) {
				return fmt.Errorf("category %q already exists", args[0])
			}
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("added " + cat.Name))
			return nil
		},
	}
}

func categoriesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			err = store.RemoveCategory(cmd.Context(), args[0])
			if errors.Is(err, common.ErrNotFound) {
				return fmt.Errorf("category %q not found", args[0])
			}
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("removed " + args[0]))
			return nil
		},
	}
}
