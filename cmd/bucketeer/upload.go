package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pkozlov/bucketeer/internal/cli"
	"github.com/pkozlov/bucketeer/internal/importer"
	"github.com/pkozlov/bucketeer/internal/model"
)

func uploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>",
		Short: "Load a transaction export (CSV, JSON, or OFX)",
		Long: `Parses a bank export and initializes the progress file. Re-uploading
the same file keeps every mapping you have already confirmed; a different
file starts over.`,
		Args: cobra.ExactArgs(1),
		RunE: runUpload,
	}
}

func runUpload(_ *cobra.Command, args []string) error {
	path := args[0]

	format, err := importer.DetectFormat(path)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	rows, err := importer.Parse(format, bytes.NewReader(content))
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println(cli.FormatWarning("no transactions found in " + path))
		return nil
	}

	fileName := filepath.Base(path)
	f, err := initProgress().Init(fileName, model.ContentHash(content), rows)
	if err != nil {
		return err
	}

	mapped := 0
	for _, state := range f.Rows {
		if state.Mapped {
			mapped++
		}
	}

	fmt.Println(cli.FormatTitle("Upload complete"))
	fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s: %d transactions (%s)", fileName, len(rows), format)))
	if mapped > 0 {
		fmt.Println(cli.StyleSubtle(fmt.Sprintf("%d previously confirmed mappings preserved", mapped)))
	}

	return nil
}
