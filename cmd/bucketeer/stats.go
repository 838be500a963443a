package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pkozlov/bucketeer/internal/analytics"
	"github.com/pkozlov/bucketeer/internal/cli"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show mapping progress and monthly spending",
		RunE:  runStats,
	}

	cmd.Flags().Bool("monthly", false, "include per-month category totals")

	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	f, err := initProgress().Load()
	if err != nil {
		return err
	}

	stats := analytics.Compute(f)

	fmt.Println(cli.FormatTitle("Mapping progress"))
	if stats.FileName != "" {
		fmt.Println(cli.StyleSubtle(fmt.Sprintf("file: %s  updated: %s", stats.FileName, stats.LastUpdated)))
	}
	fmt.Printf("  total rows:     %d\n", stats.TotalRows)
	fmt.Printf("  mapped rows:    %d\n", stats.MappedRows)
	fmt.Printf("  remaining rows: %d\n", stats.RemainingRows)

	if len(stats.CategoryBreakdown) > 0 {
		fmt.Println()
		fmt.Println(cli.TableHeaderStyle.Render("Category breakdown"))
		names := make([]string, 0, len(stats.CategoryBreakdown))
		for name := range stats.CategoryBreakdown {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %-24s %d\n", name, stats.CategoryBreakdown[name])
		}
	}

	if monthly, _ := cmd.Flags().GetBool("monthly"); monthly {
		totals := analytics.MonthlySpending(f)
		if len(totals) > 0 {
			fmt.Println()
			fmt.Println(cli.TableHeaderStyle.Render("Monthly spending"))
			for _, t := range totals {
				fmt.Printf("  %s  %-24s %s\n", t.Month, t.Category, t.Total.StringFixed(2))
			}
		}
	}

	return nil
}
