// Package pipeline drives a single run: fetch posts of every community, filter, score,
// generate ideas for selected posts and export the collected records once at the end.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/sync/errgroup"

	"github.com/umputun/ideascope/pkg/domain"
	"github.com/umputun/ideascope/pkg/export"
	"github.com/umputun/ideascope/pkg/llm"
)

//go:generate moq -out mocks/source.go -pkg mocks -skip-ensure -fmt goimports . Source
//go:generate moq -out mocks/provider.go -pkg mocks -skip-ensure -fmt goimports . Provider
//go:generate moq -out mocks/exporter.go -pkg mocks -skip-ensure -fmt goimports . Exporter

// Source yields posts of a community
type Source interface {
	Posts(ctx context.Context, community string, limit int) iter.Seq2[domain.RawPost, error]
}

// Filter decides if a post is worth scoring
type Filter interface {
	Decide(p domain.RawPost) domain.FilterDecision
}

// Scorer makes a scored post from a post passed the filter
type Scorer interface {
	Apply(p domain.RawPost, d domain.FilterDecision, idx int) domain.ScoredPost
}

// Categorizer assigns a business bucket to a selected post
type Categorizer interface {
	Categorize(p domain.RawPost) domain.Category
}

// Provider generates analysis for a post
type Provider interface {
	Generate(ctx context.Context, req llm.Request) (domain.Analysis, error)
	Name() string
}

// Exporter writes collected records
type Exporter interface {
	Export(ctx context.Context, records []domain.IdeaRecord, when time.Time) export.Report
}

// Config defines run parameters
type Config struct {
	Communities   []string
	PostLimit     int
	MinConfidence float64
	MaxInFlight   int    // concurrent generation calls within a community, 1 means sequential
	SystemPrompt  string // passed to provider, empty for provider's default
}

// Params for creating a new Orchestrator
type Params struct {
	Config      Config
	Source      Source
	Filter      Filter
	Scorer      Scorer
	Categorizer Categorizer // optional, no bucket breakdown if nil
	Provider    Provider
	Exporter    Exporter
	Now         func() time.Time // optional, time.Now by default
}

// Orchestrator runs the pipeline
type Orchestrator struct {
	Params
}

// Result of a finished run
type Result struct {
	Records []domain.IdeaRecord
	Summary domain.RunSummary
}

// skip reasons set by the orchestrator itself
const (
	skipBelowThreshold   = "below_threshold"  // scored posts under the min confidence
	skipCommunityFailure = "community_failed" // selected posts dropped with their failed community
)

// New makes an orchestrator
func New(p Params) *Orchestrator {
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Config.MaxInFlight < 1 {
		p.Config.MaxInFlight = 1
	}
	return &Orchestrator{Params: p}
}

// Run processes all configured communities one by one and exports the collected records.
// Canceling ctx stops the run, records collected so far are still exported.
// Returns error only if every requested export format failed.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	started := o.Now()
	sum := domain.NewRunSummary(started)
	var records []domain.IdeaRecord

	lgr.Printf("[INFO] run started, communities: %s, generator: %s",
		strings.Join(o.Config.Communities, ", "), o.Provider.Name())

	for _, community := range o.Config.Communities {
		if ctx.Err() != nil {
			break
		}
		recs, cs, err := o.processCommunity(ctx, community)
		if err != nil {
			if ctx.Err() != nil {
				break // interrupted while fetching, nothing from this community
			}
			kind := domain.ErrorKind(err)
			sum.FailedCommunities[community] = kind
			mergeFailed(&sum, cs)
			lgr.Printf("[WARN] community %s skipped after %d fetched posts, %s: %v", community, cs.Fetched, kind, err)
			continue
		}
		merge(&sum, cs)
		records = append(records, recs...)
		lgr.Printf("[INFO] community %s done, fetched %d, selected %d, generated %d",
			community, cs.Fetched, cs.Selected, cs.Generated)
	}
	if ctx.Err() != nil {
		sum.Aborted = true
		lgr.Printf("[WARN] run interrupted, exporting %d collected records", len(records))
	}

	// export even after interrupt, with a context not canceled by it
	rep := o.Exporter.Export(context.WithoutCancel(ctx), records, started)
	for f, path := range rep.Files {
		sum.ExportedFiles[f] = path
	}
	var exportErrs []error
	for f, err := range rep.Errors {
		sum.ExportErrors[f] = err.Error()
		exportErrs = append(exportErrs, err)
	}
	if len(rep.Files) > 0 {
		sum.Exported = len(records)
	}
	sum.EndedAt = o.Now()
	logSummary(sum)

	res := Result{Records: records, Summary: sum}
	if rep.AllFailed() {
		return res, fmt.Errorf("all export formats failed: %w", errors.Join(exportErrs...))
	}
	return res, nil
}

// processCommunity fetches, filters and scores posts of the community, then generates ideas for selected ones.
// A source error drops the whole community, posts already fetched included. Counters collected
// before the error are returned with it.
func (o *Orchestrator) processCommunity(ctx context.Context, community string) ([]domain.IdeaRecord, domain.RunSummary, error) {
	cs := domain.NewRunSummary(time.Time{})
	selected, err := o.collect(ctx, community, &cs)
	if err != nil {
		return nil, cs, err
	}
	if len(selected) == 0 {
		return nil, cs, nil
	}
	return o.generate(ctx, community, selected, &cs), cs, nil
}

// collect reads posts from the source and returns ones passed the filter and the confidence threshold
func (o *Orchestrator) collect(ctx context.Context, community string, cs *domain.RunSummary) ([]domain.ScoredPost, error) {
	var selected []domain.ScoredPost
	idx := 0
	for post, err := range o.Source.Posts(ctx, community, o.Config.PostLimit) {
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", community, err)
		}
		if o.Config.PostLimit > 0 && idx >= o.Config.PostLimit {
			break
		}
		cs.Fetched++
		pos := idx
		idx++

		d := o.Filter.Decide(post)
		if !d.Passed {
			cs.Skip(string(d.Reason))
			continue
		}
		cs.Filtered++

		sp := o.Scorer.Apply(post, d, pos)
		cs.Scored++
		if sp.Score < o.Config.MinConfidence {
			cs.Skip(skipBelowThreshold)
			lgr.Printf("[DEBUG] %s post %s below threshold, score %.3f", community, post.ID, sp.Score)
			continue
		}
		cs.Selected++
		if o.Categorizer != nil {
			cat := o.Categorizer.Categorize(post)
			cs.AddBucket(cat.Name)
			lgr.Printf("[DEBUG] %s post %s bucket %q, score %.3f, keywords %v", community, post.ID, cat.Name, cat.Score, cat.Keywords)
		}
		selected = append(selected, sp)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slices.SortStableFunc(selected, func(a, b domain.ScoredPost) int { return a.Index - b.Index })
	return selected, nil
}

// generate calls provider for every selected post with up to MaxInFlight concurrent calls.
// Records keep the order of selected posts. A failed post is skipped and doesn't affect others.
func (o *Orchestrator) generate(ctx context.Context, community string, selected []domain.ScoredPost, cs *domain.RunSummary) []domain.IdeaRecord {
	results := make([]*domain.IdeaRecord, len(selected))
	errs := make([]error, len(selected))
	model := o.Provider.Name()

	var g errgroup.Group // no derived context, a failure must not cancel siblings
	g.SetLimit(o.Config.MaxInFlight)
	for i, sp := range selected {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			req := llm.Request{Text: domain.PostText(sp.Post), SystemPrompt: o.Config.SystemPrompt}
			a, err := o.Provider.Generate(ctx, req)
			if err != nil {
				errs[i] = err
				return nil
			}
			rec := domain.NewIdeaRecord(sp, a, model, o.Now())
			results[i] = &rec
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	records := make([]domain.IdeaRecord, 0, len(selected))
	for i, sp := range selected {
		switch {
		case results[i] != nil:
			records = append(records, *results[i])
			cs.Generated++
		case errs[i] != nil && ctx.Err() != nil && errors.Is(errs[i], context.Canceled):
			lgr.Printf("[DEBUG] %s post %s not generated, run interrupted", community, sp.Post.ID)
		case errs[i] != nil:
			kind := domain.ErrorKind(errs[i])
			cs.Skip(kind)
			lgr.Printf("[WARN] %s post %s skipped, %s: %v", community, sp.Post.ID, kind, errs[i])
		}
	}
	return records
}

// merge adds community counters to the run summary
func merge(dst *domain.RunSummary, src domain.RunSummary) {
	dst.Fetched += src.Fetched
	dst.Filtered += src.Filtered
	dst.Scored += src.Scored
	dst.Selected += src.Selected
	dst.Generated += src.Generated
	for k, v := range src.Skipped {
		dst.Skipped[k] += v
	}
	for k, v := range src.Buckets {
		dst.Buckets[k] += v
	}
}

// mergeFailed adds counters of a failed community. Its selected posts are never generated,
// they are counted as skipped instead.
func mergeFailed(dst *domain.RunSummary, src domain.RunSummary) {
	dst.Fetched += src.Fetched
	dst.Filtered += src.Filtered
	dst.Scored += src.Scored
	for k, v := range src.Skipped {
		dst.Skipped[k] += v
	}
	if src.Selected > 0 {
		dst.Skipped[skipCommunityFailure] += src.Selected
	}
}

func logSummary(s domain.RunSummary) {
	skips := make([]string, 0, len(s.Skipped))
	for _, reason := range s.SkipReasons() {
		skips = append(skips, fmt.Sprintf("%s=%d", reason, s.Skipped[reason]))
	}
	lgr.Printf("[INFO] run summary: fetched %d, filtered %d, scored %d, selected %d, generated %d, skipped %d [%s], exported %d",
		s.Fetched, s.Filtered, s.Scored, s.Selected, s.Generated, s.TotalSkipped(), strings.Join(skips, " "), s.Exported)
	if len(s.Buckets) > 0 {
		buckets := make([]string, 0, len(s.Buckets))
		for _, name := range s.BucketNames() {
			buckets = append(buckets, fmt.Sprintf("%s=%d", name, s.Buckets[name]))
		}
		lgr.Printf("[INFO] selected posts by bucket: %s", strings.Join(buckets, ", "))
	}
	for c, kind := range s.FailedCommunities {
		lgr.Printf("[INFO] failed community %s: %s", c, kind)
	}
	for f, path := range s.ExportedFiles {
		lgr.Printf("[INFO] exported %s: %s", f, path)
	}
	for f, e := range s.ExportErrors {
		lgr.Printf("[WARN] export %s failed: %s", f, e)
	}
	if s.Aborted {
		lgr.Printf("[INFO] run was interrupted, took %v", s.EndedAt.Sub(s.StartedAt).Round(time.Millisecond))
		return
	}
	lgr.Printf("[INFO] run completed in %v", s.EndedAt.Sub(s.StartedAt).Round(time.Millisecond))
}
