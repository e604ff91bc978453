package llm

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/umputun/ideascope/pkg/domain"
)

// rawAnalysis keeps enum fields as plain strings for normalization
type rawAnalysis struct {
	ProblemSummary  string `json:"problem_summary"`
	TargetAudience  string `json:"target_audience"`
	IdeaName        string `json:"idea_name"`
	IdeaDescription string `json:"idea_description"`
	Category        string `json:"category"`
	Complexity      string `json:"complexity"`
	MarketSize      string `json:"market_size"`
}

var complexityAliases = map[string]domain.Complexity{
	"low": domain.ComplexityLow, "easy": domain.ComplexityLow, "simple": domain.ComplexityLow,
	"medium": domain.ComplexityMedium, "moderate": domain.ComplexityMedium, "mid": domain.ComplexityMedium,
	"high": domain.ComplexityHigh, "hard": domain.ComplexityHigh, "complex": domain.ComplexityHigh,
}

var marketAliases = map[string]domain.MarketSize{
	"small": domain.MarketSmall, "niche": domain.MarketSmall,
	"medium": domain.MarketMedium, "mid": domain.MarketMedium, "moderate": domain.MarketMedium,
	"large": domain.MarketLarge, "big": domain.MarketLarge, "huge": domain.MarketLarge,
}

// ParseAnalysis extracts analysis from model output. The output must contain a JSON object with
// every field set, enum fields are normalized. Anything else is domain.ErrMalformedResponse.
func ParseAnalysis(content string) (domain.Analysis, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || start >= end {
		return domain.Analysis{}, fmt.Errorf("no json object in response: %w", domain.ErrMalformedResponse)
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return domain.Analysis{}, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
	}

	res := domain.Analysis{
		ProblemSummary:  strings.TrimSpace(raw.ProblemSummary),
		TargetAudience:  strings.TrimSpace(raw.TargetAudience),
		IdeaName:        strings.TrimSpace(raw.IdeaName),
		IdeaDescription: strings.TrimSpace(raw.IdeaDescription),
		Category:        strings.TrimSpace(raw.Category),
	}

	var missing []string
	for name, v := range map[string]string{
		"problem_summary": res.ProblemSummary, "target_audience": res.TargetAudience, "idea_name": res.IdeaName,
		"idea_description": res.IdeaDescription, "category": res.Category,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return domain.Analysis{}, fmt.Errorf("missing fields %s: %w", strings.Join(missing, ", "), domain.ErrMalformedResponse)
	}

	var ok bool
	if res.Complexity, ok = complexityAliases[strings.ToLower(strings.TrimSpace(raw.Complexity))]; !ok {
		return domain.Analysis{}, fmt.Errorf("invalid complexity %q: %w", raw.Complexity, domain.ErrMalformedResponse)
	}
	if res.MarketSize, ok = marketAliases[strings.ToLower(strings.TrimSpace(raw.MarketSize))]; !ok {
		return domain.Analysis{}, fmt.Errorf("invalid market size %q: %w", raw.MarketSize, domain.ErrMalformedResponse)
	}
	return res, nil
}
