// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/snapfind-dev/snapfind/internal/index"
)

func newIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index DIR...",
		Short: "Index images under one or more directories",
		Long:  "Scan the given directories for .png/.jpg images, generate a caption and embedding per image, and store them in the catalog. Already-indexed images are skipped.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIndex,
	}

	cmd.Flags().IntP("workers", "w", 0, "parallel workers (default from config)")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	client, err := newVisionClient(cfg)
	if err != nil {
		return err
	}

	workers, _ := cmd.Flags().GetInt("workers")
	if workers < 1 {
		workers = cfg.Index.Workers
	}

	out := cmd.OutOrStdout()
	ix := index.New(store, client)

	summary, runErr := ix.Run(cmd.Context(), args, index.Options{
		Workers: workers,
		Events:  func(ev index.Event) { printEvent(out, ev) },
	})

	printSummary(out, summary)
	return runErr
}

func printEvent(out io.Writer, ev index.Event) {
	switch ev.Outcome {
	case index.OutcomeIndexed:
		fmt.Fprintf(out, "%s %s | %s\n", successStyle.Render("[ok]"), ev.Path, ev.Caption)
	case index.OutcomeSkipped:
		fmt.Fprintf(out, "%s %s\n", dimStyle.Render("[skip]"), ev.Path)
	case index.OutcomeErrored:
		fmt.Fprintf(out, "%s %s | %v\n", errorStyle.Render("[error]"), ev.Path, ev.Err)
	}
}

func printSummary(out io.Writer, summary index.Summary) {
	fmt.Fprintf(out, "\n%s\n", titleStyle.Render("Indexing summary"))
	fmt.Fprintf(out, "  Indexed: %d\n", summary.Indexed)
	fmt.Fprintf(out, "  Skipped: %d\n", summary.Skipped)
	fmt.Fprintf(out, "  Errors:  %d\n", summary.Errored)
	fmt.Fprintf(out, "  Total:   %d\n", summary.Total)
}
