package export

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/umputun/ideascope/pkg/domain"
)

func writeText(_ context.Context, path string, records []domain.IdeaRecord, when time.Time) error {
	return writeReport(path, func(w *bufio.Writer) {
		line := strings.Repeat("=", 70)
		fmt.Fprintln(w, line)
		fmt.Fprintln(w, "STARTUP IDEAS REPORT")
		fmt.Fprintln(w, line)
		fmt.Fprintf(w, "Generated: %s\n", when.Format(time.RFC3339))
		fmt.Fprintf(w, "Total ideas: %d\n", len(records))
		if m := modelsUsed(records); m != "" {
			fmt.Fprintf(w, "Model: %s\n", m)
		}
		if len(records) == 0 {
			fmt.Fprintln(w, "\nNo ideas generated.")
			return
		}
		for i, r := range records {
			fmt.Fprintf(w, "\n%d. %s\n", i+1, r.IdeaName)
			fmt.Fprintln(w, strings.Repeat("-", 70))
			fmt.Fprintf(w, "Source:      %s (%s)\n", r.Title, r.Community)
			fmt.Fprintf(w, "URL:         %s\n", r.URL)
			fmt.Fprintf(w, "Problem:     %s\n", r.ProblemSummary)
			fmt.Fprintf(w, "Audience:    %s\n", r.TargetAudience)
			fmt.Fprintf(w, "Idea:        %s\n", r.IdeaDescription)
			fmt.Fprintf(w, "Category:    %s\n", r.Category)
			fmt.Fprintf(w, "Complexity:  %s\n", r.Complexity)
			fmt.Fprintf(w, "Market size: %s\n", r.MarketSize)
			fmt.Fprintf(w, "Confidence:  %s\n", formatScore(r.ConfidenceScore))
		}
	})
}

func writeMarkdown(_ context.Context, path string, records []domain.IdeaRecord, when time.Time) error {
	return writeReport(path, func(w *bufio.Writer) {
		fmt.Fprintln(w, "# Startup Ideas Report")
		fmt.Fprintln(w)
		fmt.Fprintf(w, "- **Generated:** %s\n", when.Format(time.RFC3339))
		fmt.Fprintf(w, "- **Total ideas:** %d\n", len(records))
		if m := modelsUsed(records); m != "" {
			fmt.Fprintf(w, "- **Model:** %s\n", m)
		}
		if len(records) == 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "_No ideas generated._")
			return
		}

		fmt.Fprintln(w)
		fmt.Fprintln(w, "| # | Idea | Community | Category | Complexity | Market | Confidence |")
		fmt.Fprintln(w, "|---|------|-----------|----------|------------|--------|------------|")
		for i, r := range records {
			fmt.Fprintf(w, "| %d | %s | %s | %s | %s | %s | %s |\n", i+1, mdCell(r.IdeaName), mdCell(r.Community),
				mdCell(r.Category), r.Complexity, r.MarketSize, formatScore(r.ConfidenceScore))
		}

		for i, r := range records {
			fmt.Fprintf(w, "\n## %d. %s\n\n", i+1, r.IdeaName)
			fmt.Fprintf(w, "**Source:** [%s](%s) in %s\n\n", r.Title, r.URL, r.Community)
			fmt.Fprintf(w, "**Problem:** %s\n\n", r.ProblemSummary)
			fmt.Fprintf(w, "**Target audience:** %s\n\n", r.TargetAudience)
			fmt.Fprintf(w, "**Idea:** %s\n", r.IdeaDescription)
		}
	})
}

// writeReport creates the file and runs fn with a buffered writer, write errors surface on flush
func writeReport(path string, fn func(w *bufio.Writer)) error {
	fh, err := os.Create(path) //nolint:gosec // path is built from configured output dir
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(fh)
	fn(w)
	if err := w.Flush(); err != nil {
		_ = fh.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// mdCell escapes pipes and flattens newlines for a markdown table cell
func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
