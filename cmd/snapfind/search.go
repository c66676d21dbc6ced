// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Snapfind Contributors

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/snapfind-dev/snapfind/internal/search"
	snaperr "github.com/snapfind-dev/snapfind/pkg/errors"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search indexed images by description",
		Long:  "Find indexed images matching a natural-language description. A phrase like \"from 6 months ago\" narrows the search to an approximate time window; explicit --from-date/--to-date bounds take precedence and leave the query untouched.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSearch,
	}

	cmd.Flags().IntP("top-k", "k", 0, "number of results (default from config)")
	cmd.Flags().String("from-date", "", "earliest date, YYYY-MM-DD")
	cmd.Flags().String("to-date", "", "latest date, YYYY-MM-DD")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	rawQuery := ""
	if len(args) > 0 {
		rawQuery = args[0]
	} else {
		rawQuery, err = promptQuery(cmd)
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(rawQuery) == "" {
		return snaperr.New(snaperr.CodeCLIInputInvalid, "no description provided")
	}

	fromFlag, _ := cmd.Flags().GetString("from-date")
	toFlag, _ := cmd.Flags().GetString("to-date")

	from, err := parseDate(fromFlag)
	if err != nil {
		return err
	}
	to, err := parseDate(toFlag)
	if err != nil {
		return err
	}

	topK, _ := cmd.Flags().GetInt("top-k")
	if topK < 1 {
		topK = cfg.Search.TopK
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

	searcher := search.NewSearcher(store, client)
	resp, err := searcher.Search(cmd.Context(), search.Request{
		Query: rawQuery,
		TopK:  topK,
		From:  from,
		To:    to,
	})
	if err != nil {
		return err
	}

	printResults(cmd.OutOrStdout(), resp)
	return nil
}

// promptQuery asks interactively for a description when none was given on
// the command line.
func promptQuery(cmd *cobra.Command) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Describe the image: ")

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", snaperr.Wrapf(err, snaperr.CodeCLIInputInvalid, "reading description")
	}
	return strings.TrimSpace(line), nil
}

// parseDate parses a YYYY-MM-DD flag value; empty input means no bound.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, snaperr.Errorf(snaperr.CodeCLIDateInvalid, "invalid date %q, want YYYY-MM-DD: %w", value, err)
	}
	return t, nil
}

func printResults(out io.Writer, resp search.Response) {
	fmt.Fprintf(out, "Searching for: %s\n", titleStyle.Render(resp.Query))
	if !resp.Window.IsZero() {
		fmt.Fprintf(out, "Time filter: %s\n", dimStyle.Render(formatWindow(resp.Window)))
	}

	if len(resp.Matches) == 0 {
		fmt.Fprintln(out, "\nNo results found.")
		return
	}

	fmt.Fprintf(out, "\n%s\n\n", titleStyle.Render("Top matches"))
	for i, m := range resp.Matches {
		fmt.Fprintf(out, "%d. %s\n", i+1, m.Entry.Path)
		fmt.Fprintf(out, "   Score:   %s\n", scoreStyle.Render(fmt.Sprintf("%.4f", m.Score)))
		fmt.Fprintf(out, "   Caption: %s\n", m.Entry.Caption)
		fmt.Fprintf(out, "   Created: %s\n\n", m.Entry.CreatedAt.Format(time.RFC3339))
	}
}

func formatWindow(w search.Window) string {
	const layout = "2006-01-02"
	switch {
	case !w.From.IsZero() && !w.To.IsZero():
		return fmt.Sprintf("%s .. %s", w.From.Format(layout), w.To.Format(layout))
	case !w.From.IsZero():
		return "from " + w.From.Format(layout)
	default:
		return "until " + w.To.Format(layout)
	}
}
