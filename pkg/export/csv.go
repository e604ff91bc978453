package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/umputun/ideascope/pkg/domain"
)

// csvHeader lists exported columns, names match json fields of domain.IdeaRecord
var csvHeader = []string{"post_id", "title", "community", "url", "problem_summary", "target_audience",
	"idea_name", "idea_description", "category", "complexity", "market_size", "confidence_score", "model", "generated_at"}

func writeCSV(_ context.Context, path string, records []domain.IdeaRecord, _ time.Time) error {
	fh, err := os.Create(path) //nolint:gosec // path is built from configured output dir
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(fh)
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, csvHeader)
	for _, r := range records {
		rows = append(rows, []string{r.PostID, r.Title, r.Community, r.URL, r.ProblemSummary, r.TargetAudience,
			r.IdeaName, r.IdeaDescription, r.Category, string(r.Complexity), string(r.MarketSize),
			formatScore(r.ConfidenceScore), r.Model, r.GeneratedAt.Format(time.RFC3339)})
	}
	if err := w.WriteAll(rows); err != nil {
		_ = fh.Close()
		return fmt.Errorf("write csv: %w", err)
	}
	if err := fh.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
