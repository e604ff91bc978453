package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/umputun/ideascope/pkg/domain"
)

// Document is the layout of the json export
type Document struct {
	Metadata Metadata            `json:"metadata"`
	Analyses []domain.IdeaRecord `json:"analyses"`
}

// Metadata describes the exported run
type Metadata struct {
	GeneratedAt   time.Time `json:"generated_at"`
	TotalAnalyses int       `json:"total_analyses"`
	ModelUsed     string    `json:"model_used"`
}

func writeJSON(_ context.Context, path string, records []domain.IdeaRecord, when time.Time) error {
	doc := Document{
		Metadata: Metadata{GeneratedAt: when, TotalAnalyses: len(records), ModelUsed: modelsUsed(records)},
		Analyses: records,
	}
	if doc.Analyses == nil {
		doc.Analyses = []domain.IdeaRecord{} // empty array rather than null
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
