package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"golang.org/x/time/rate"

	"github.com/umputun/ideascope/pkg/domain"
)

// maxPageSize is the largest listing page reddit returns
const maxPageSize = 100

// RedditParams defines parameters of the reddit source
type RedditParams struct {
	BaseURL          string        // reddit API base, https://www.reddit.com by default
	UserAgent        string        // reddit rejects requests with generic user agents
	Timeout          time.Duration // single request timeout
	RequestInterval  time.Duration // minimal interval between page requests, 0 to disable pacing
	RateLimitBackoff time.Duration // sleep before the retry after 429
	Extractor        Extractor     // optional, fills body of link posts
}

// Reddit reads posts from the public JSON listing of subreddits
type Reddit struct {
	RedditParams
	client    *http.Client
	limiter   *rate.Limiter
	sanitizer *sanitizer
}

// NewReddit makes reddit source
func NewReddit(params RedditParams) *Reddit {
	if params.BaseURL == "" {
		params.BaseURL = "https://www.reddit.com"
	}
	params.BaseURL = strings.TrimSuffix(params.BaseURL, "/")
	if params.Timeout <= 0 {
		params.Timeout = 30 * time.Second
	}
	limit := rate.Inf
	if params.RequestInterval > 0 {
		limit = rate.Every(params.RequestInterval)
	}
	return &Reddit{
		RedditParams: params,
		client:       &http.Client{Timeout: params.Timeout},
		limiter:      rate.NewLimiter(limit, 1),
		sanitizer:    newSanitizer(),
	}
}

// Posts yields up to limit newest posts of the subreddit, paginating by the after cursor
func (r *Reddit) Posts(ctx context.Context, community string, limit int) iter.Seq2[domain.RawPost, error] {
	return once(func(yield func(domain.RawPost, error) bool) {
		sub := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(community), "/"), "r/")
		if sub == "" {
			yield(domain.RawPost{}, fmt.Errorf("empty subreddit name: %w", domain.ErrSourceUnavailable))
			return
		}

		after, count := "", 0
		for count < limit {
			page, err := r.page(ctx, sub, min(limit-count, maxPageSize), after, count)
			if err != nil {
				yield(domain.RawPost{}, fmt.Errorf("r/%s: %w", sub, err))
				return
			}

			for _, child := range page.Data.Children {
				if child.Kind != "" && child.Kind != "t3" {
					continue
				}
				if !yield(r.toPost(ctx, community, child.Data), nil) {
					return
				}
				if count++; count >= limit {
					return
				}
			}

			after = page.Data.After
			if after == "" || len(page.Data.Children) == 0 {
				return
			}
		}
	})
}

// page fetches one listing page, retrying once after rate limit
func (r *Reddit) page(ctx context.Context, sub string, size int, after string, count int) (*listingResponse, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(size))
	q.Set("raw_json", "1")
	if after != "" {
		q.Set("after", after)
		q.Set("count", strconv.Itoa(count))
	}
	u := fmt.Sprintf("%s/r/%s/new.json?%s", r.BaseURL, url.PathEscape(sub), q.Encode())

	return retryRateLimited(ctx, r.RateLimitBackoff, func() (*listingResponse, error) {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return r.get(ctx, u)
	})
}

func (r *Reddit) get(ctx context.Context, u string) (*listingResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("get %s: %w: %w", u, domain.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		lgr.Printf("[WARN] rate limited by %s", r.BaseURL)
		return nil, fmt.Errorf("get %s: %w", u, domain.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("get %s: status %d: %w", u, resp.StatusCode, domain.ErrSourceUnavailable)
	}

	var listing listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode listing: %w: %w", domain.ErrSourceUnavailable, err)
	}
	return &listing, nil
}

// toPost converts listing entry to RawPost, community is kept as configured
func (r *Reddit) toPost(ctx context.Context, community string, d listingData) domain.RawPost {
	post := domain.RawPost{
		ID:        d.ID,
		Title:     r.sanitizer.Clean(d.Title),
		Body:      r.sanitizer.Clean(d.SelfText),
		Community: community,
		URL:       r.BaseURL + d.Permalink,
		Author:    d.Author,
		Upvotes:   d.Score,
		Comments:  max(d.NumComments, 0),
		Created:   time.Unix(int64(d.CreatedUTC), 0).UTC(),
	}
	if d.Permalink == "" {
		post.URL = d.URL
	}

	// link posts have no text, use the linked page if it can be extracted, otherwise body stays empty
	if post.Body == "" && !d.IsSelf && d.URL != "" && r.Extractor != nil {
		text, err := r.Extractor.Extract(ctx, d.URL)
		if err != nil {
			lgr.Printf("[DEBUG] can't extract linked content for post %s from %s: %v", d.ID, d.URL, err)
			return post
		}
		post.Body = r.sanitizer.Clean(text)
	}
	return post
}

type listingResponse struct {
	Data struct {
		Children []listingChild `json:"children"`
		After    string         `json:"after"`
	} `json:"data"`
}

type listingChild struct {
	Kind string      `json:"kind"`
	Data listingData `json:"data"`
}

type listingData struct {
	ID          string  `json:"id"`
	Subreddit   string  `json:"subreddit"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	SelfText    string  `json:"selftext"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	IsSelf      bool    `json:"is_self"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}
