package source

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/umputun/ideascope/pkg/domain"
)

// FeedParams defines parameters of the feed source
type FeedParams struct {
	UserAgent        string
	Timeout          time.Duration
	RateLimitBackoff time.Duration
}

// Feed reads forum posts from RSS/Atom feeds, community is the feed URL
type Feed struct {
	FeedParams
	parser    *gofeed.Parser
	sanitizer *sanitizer
}

// NewFeed makes feed source
func NewFeed(params FeedParams) *Feed {
	if params.Timeout <= 0 {
		params.Timeout = 30 * time.Second
	}
	parser := gofeed.NewParser()
	parser.UserAgent = params.UserAgent
	parser.Client = &http.Client{Timeout: params.Timeout}
	return &Feed{FeedParams: params, parser: parser, sanitizer: newSanitizer()}
}

// Posts yields up to limit feed items in feed order
func (f *Feed) Posts(ctx context.Context, community string, limit int) iter.Seq2[domain.RawPost, error] {
	return once(func(yield func(domain.RawPost, error) bool) {
		feed, err := retryRateLimited(ctx, f.RateLimitBackoff, func() (*gofeed.Feed, error) {
			return f.parse(ctx, community)
		})
		if err != nil {
			yield(domain.RawPost{}, err)
			return
		}

		for i, item := range feed.Items {
			if i >= limit {
				return
			}
			if !yield(f.toPost(community, item), nil) {
				return
			}
		}
	})
}

func (f *Feed) parse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err == nil {
		return feed, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var httpErr gofeed.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("feed %s: %w", feedURL, domain.ErrRateLimited)
	}
	return nil, fmt.Errorf("feed %s: %w: %w", feedURL, domain.ErrSourceUnavailable, err)
}

func (f *Feed) toPost(community string, item *gofeed.Item) domain.RawPost {
	post := domain.RawPost{
		ID:        item.GUID,
		Title:     f.sanitizer.Clean(item.Title),
		Body:      f.sanitizer.Clean(item.Content),
		Community: community,
		URL:       item.Link,
		Comments:  slashComments(item),
	}
	if post.ID == "" {
		post.ID = item.Link
	}
	if post.Body == "" {
		post.Body = f.sanitizer.Clean(item.Description)
	}
	if item.Author != nil {
		post.Author = item.Author.Name
	}
	switch {
	case item.PublishedParsed != nil:
		post.Created = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		post.Created = item.UpdatedParsed.UTC()
	}
	return post
}

// slashComments reads comment count from the slash:comments extension, 0 if missing
func slashComments(item *gofeed.Item) int {
	ext, ok := item.Extensions["slash"]["comments"]
	if !ok || len(ext) == 0 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(ext[0].Value))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
