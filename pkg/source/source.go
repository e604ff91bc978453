// Package source provides post sources: reddit public JSON listings and RSS/Atom forum feeds.
// Every source yields posts lazily as iter.Seq2; a failure is yielded once as the last element.
package source

import (
	"context"
	"errors"
	"fmt"
	"html"
	"iter"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/microcosm-cc/bluemonday"

	"github.com/umputun/ideascope/pkg/domain"
)

//go:generate moq -out mocks/extractor.go -pkg mocks -skip-ensure -fmt goimports . Extractor

// Source yields up to limit posts of a community
type Source interface {
	Posts(ctx context.Context, community string, limit int) iter.Seq2[domain.RawPost, error]
}

// Extractor returns readable text of a linked page
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// errConsumed is yielded when a sequence is ranged over the second time
var errConsumed = errors.New("post sequence already consumed")

// Router sends feed URL communities to the feed source and everything else to reddit
type Router struct {
	Reddit Source
	Feed   Source
}

// Posts dispatches by community form
func (r *Router) Posts(ctx context.Context, community string, limit int) iter.Seq2[domain.RawPost, error] {
	if IsFeedURL(community) {
		return r.Feed.Posts(ctx, community, limit)
	}
	return r.Reddit.Posts(ctx, community, limit)
}

// IsFeedURL checks if community is given as a feed URL
func IsFeedURL(community string) bool {
	c := strings.ToLower(strings.TrimSpace(community))
	return strings.HasPrefix(c, "http://") || strings.HasPrefix(c, "https://")
}

// once wraps a sequence so it can be ranged over only once, later ranges yield errConsumed
func once(seq iter.Seq2[domain.RawPost, error]) iter.Seq2[domain.RawPost, error] {
	var used atomic.Bool
	return func(yield func(domain.RawPost, error) bool) {
		if used.Swap(true) {
			yield(domain.RawPost{}, errConsumed)
			return
		}
		seq(yield)
	}
}

// retryRateLimited calls fn, on rate limit sleeps backoff and calls it once more.
// Errors other than domain.ErrRateLimited are returned right away, a second rate limit
// is returned as is.
func retryRateLimited[T any](ctx context.Context, backoff time.Duration, fn func() (T, error)) (T, error) {
	var res T
	var lastErr error
	done := false
	err := repeater.NewFixed(2, backoff).Do(ctx, func() error {
		r, err := fn()
		if err != nil {
			lastErr = err
			if errors.Is(err, domain.ErrRateLimited) {
				return err // retry
			}
			return fmt.Errorf("%w: %w", errStop, err)
		}
		res, lastErr, done = r, nil, true
		return nil
	}, errStop)

	switch {
	case done:
		return res, nil
	case ctx.Err() != nil:
		return res, ctx.Err()
	case lastErr != nil:
		return res, lastErr
	default:
		return res, err
	}
}

// errStop marks errors which should not be retried
var errStop = errors.New("stop retry")

// sanitizer strips all markup from user supplied text
type sanitizer struct {
	policy *bluemonday.Policy
}

func newSanitizer() *sanitizer {
	return &sanitizer{policy: bluemonday.StrictPolicy()}
}

// Clean removes tags, unescapes entities and trims whitespace
func (s *sanitizer) Clean(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}
