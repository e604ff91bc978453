package domain

import (
	"strings"
	"time"
)

// RawPost represents a single forum submission as fetched from a community
type RawPost struct {
	ID        string
	Title     string
	Body      string
	Community string
	URL       string
	Author    string
	Upvotes   int
	Comments  int
	Created   time.Time
}

// PostText joins title and body the way providers receive it
func PostText(p RawPost) string {
	body := strings.TrimSpace(p.Body)
	if body == "" {
		return strings.TrimSpace(p.Title)
	}
	return strings.TrimSpace(p.Title) + "\n\n" + body
}

// RejectReason explains why a post failed the pain-point filter
type RejectReason string

const (
	RejectNone              RejectReason = ""
	RejectLowEngagement     RejectReason = "low_engagement"
	RejectExcluded          RejectReason = "excluded"
	RejectNoPainPoint       RejectReason = "no_pain_point"
	RejectNoRequiredKeyword RejectReason = "no_required_keyword"
)

// FilterDecision is the outcome of the pain-point filter for one post
type FilterDecision struct {
	Passed  bool
	Signals []string
	Reason  RejectReason
}

// ScoredPost is a post that passed the filter, paired with its confidence score.
// Index is the position of the post within its community fetch.
type ScoredPost struct {
	Post    RawPost
	Score   float64
	Signals []string
	Index   int
}

// Category is a keyword business bucket of a post. Score is the share of the bucket
// in the keyword weight of all matched buckets.
type Category struct {
	Name     string
	Score    float64
	Keywords []string
}

// Complexity is the estimated implementation complexity of an idea
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// MarketSize is the estimated market size of an idea
type MarketSize string

const (
	MarketSmall  MarketSize = "small"
	MarketMedium MarketSize = "medium"
	MarketLarge  MarketSize = "large"
)

// Analysis holds the fields a generation backend produces for a post
type Analysis struct {
	ProblemSummary  string     `json:"problem_summary" jsonschema:"description=1-2 sentence summary of the core pain point"`
	TargetAudience  string     `json:"target_audience" jsonschema:"description=specific group of people who have this problem"`
	IdeaName        string     `json:"idea_name" jsonschema:"description=short product name for the proposed idea"`
	IdeaDescription string     `json:"idea_description" jsonschema:"description=concrete description of the product or service solving the problem"`
	Category        string     `json:"category" jsonschema:"description=idea category,example=SaaS,example=marketplace,example=tool,example=service"`
	Complexity      Complexity `json:"complexity" jsonschema:"enum=low,enum=medium,enum=high,description=estimated implementation complexity"`
	MarketSize      MarketSize `json:"market_size" jsonschema:"enum=small,enum=medium,enum=large,description=estimated market size"`
}

// IdeaRecord is the terminal result for one successfully analyzed post
type IdeaRecord struct {
	PostID          string     `json:"post_id"`
	Title           string     `json:"title"`
	Community       string     `json:"community"`
	URL             string     `json:"url"`
	ProblemSummary  string     `json:"problem_summary"`
	TargetAudience  string     `json:"target_audience"`
	IdeaName        string     `json:"idea_name"`
	IdeaDescription string     `json:"idea_description"`
	Category        string     `json:"category"`
	Complexity      Complexity `json:"complexity"`
	MarketSize      MarketSize `json:"market_size"`
	ConfidenceScore float64    `json:"confidence_score"`
	Model           string     `json:"model"`
	GeneratedAt     time.Time  `json:"generated_at"`
}

// NewIdeaRecord builds a record from a scored post and its analysis.
// The confidence score is taken from the scored post as is.
func NewIdeaRecord(sp ScoredPost, a Analysis, model string, at time.Time) IdeaRecord {
	return IdeaRecord{
		PostID:          sp.Post.ID,
		Title:           sp.Post.Title,
		Community:       sp.Post.Community,
		URL:             sp.Post.URL,
		ProblemSummary:  a.ProblemSummary,
		TargetAudience:  a.TargetAudience,
		IdeaName:        a.IdeaName,
		IdeaDescription: a.IdeaDescription,
		Category:        a.Category,
		Complexity:      a.Complexity,
		MarketSize:      a.MarketSize,
		ConfidenceScore: sp.Score,
		Model:           model,
		GeneratedAt:     at,
	}
}
