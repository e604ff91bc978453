// Package filter decides whether a fetched post looks like a pain point worth analyzing.
package filter

import (
	"strings"

	"github.com/umputun/ideascope/pkg/config"
	"github.com/umputun/ideascope/pkg/domain"
)

// Filter applies engagement and keyword rules to raw posts. It is safe for concurrent use.
type Filter struct {
	minComments int
	painPoints  []keyword
	exclusions  []keyword
	required    []keyword
}

// keyword keeps the configured phrase for reporting and its lowercase form for matching
type keyword struct {
	phrase string
	lower  string
}

// New makes a Filter from filter configuration
func New(cfg config.FilterConfig) *Filter {
	return &Filter{
		minComments: cfg.MinComments,
		painPoints:  compile(cfg.PainPoints),
		exclusions:  compile(cfg.Exclusions),
		required:    compile(cfg.Required),
	}
}

// Decide returns the filter decision for the post. Checks run in order: engagement, exclusions,
// pain points, required keywords. Signals are set only for passed posts and for posts rejected
// at the required keyword step.
func (f *Filter) Decide(p domain.RawPost) domain.FilterDecision {
	if p.Comments < f.minComments {
		return domain.FilterDecision{Reason: domain.RejectLowEngagement}
	}

	text := strings.ToLower(p.Title + " " + p.Body)

	for _, kw := range f.exclusions {
		if strings.Contains(text, kw.lower) {
			return domain.FilterDecision{Reason: domain.RejectExcluded}
		}
	}

	signals := match(text, f.painPoints, nil)
	if len(signals) == 0 {
		return domain.FilterDecision{Reason: domain.RejectNoPainPoint}
	}

	if len(f.required) > 0 {
		if !anyMatch(text, f.required) {
			return domain.FilterDecision{Signals: signals, Reason: domain.RejectNoRequiredKeyword}
		}
		signals = match(text, f.required, signals)
	}

	return domain.FilterDecision{Passed: true, Signals: signals}
}

// compile drops empty phrases and duplicates (case-insensitive), keeping configured order
func compile(phrases []string) []keyword {
	res := make([]keyword, 0, len(phrases))
	seen := make(map[string]bool, len(phrases))
	for _, ph := range phrases {
		ph = strings.TrimSpace(ph)
		lower := strings.ToLower(ph)
		if lower == "" || seen[lower] {
			continue
		}
		seen[lower] = true
		res = append(res, keyword{phrase: ph, lower: lower})
	}
	return res
}

// match appends phrases found in text to dst, skipping ones already present
func match(text string, kws []keyword, dst []string) []string {
	for _, kw := range kws {
		if !strings.Contains(text, kw.lower) {
			continue
		}
		dup := false
		for _, s := range dst {
			if strings.EqualFold(s, kw.phrase) {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, kw.phrase)
		}
	}
	return dst
}

func anyMatch(text string, kws []keyword) bool {
	for _, kw := range kws {
		if strings.Contains(text, kw.lower) {
			return true
		}
	}
	return false
}
