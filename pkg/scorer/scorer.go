// Package scorer computes confidence of a filtered post from its matched signals and engagement.
package scorer

import (
	"strings"

	"github.com/umputun/ideascope/pkg/config"
	"github.com/umputun/ideascope/pkg/domain"
)

// Scorer turns signals and comment count into a score in [0,1]
type Scorer struct {
	saturateAt     int
	highEngagement int
	maxBonus       float64
}

// New makes a Scorer from scorer configuration. Non-positive thresholds are treated as 1
// and the bonus is clamped to [0,1].
func New(cfg config.ScorerConfig) *Scorer {
	return &Scorer{
		saturateAt:     max(cfg.SaturateAt, 1),
		highEngagement: max(cfg.HighEngagement, 1),
		maxBonus:       clamp(cfg.MaxEngagementBonus),
	}
}

// Score returns keyword part (distinct signals up to saturation) plus engagement bonus
// (comments relative to high engagement threshold), clamped to [0,1].
func (s *Scorer) Score(p domain.RawPost, signals []string) float64 {
	distinct := make(map[string]struct{}, len(signals))
	for _, sig := range signals {
		if sig = strings.ToLower(strings.TrimSpace(sig)); sig != "" {
			distinct[sig] = struct{}{}
		}
	}

	base := float64(min(len(distinct), s.saturateAt)) / float64(s.saturateAt) * (1 - s.maxBonus)
	engagement := min(float64(max(p.Comments, 0))/float64(s.highEngagement), 1)
	return clamp(base + engagement*s.maxBonus)
}

// Apply scores a passed filter decision into a ScoredPost at the given index
func (s *Scorer) Apply(p domain.RawPost, d domain.FilterDecision, idx int) domain.ScoredPost {
	return domain.ScoredPost{Post: p, Score: s.Score(p, d.Signals), Signals: d.Signals, Index: idx}
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
