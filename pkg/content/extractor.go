// Package content extracts readable text of pages linked from link-only posts.
package content

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/markusmobius/go-trafilatura"
)

// ErrNotText is returned for links pointing to media or other non-article content
var ErrNotText = errors.New("link is not a text page")

// DefaultMaxLength is the maximum length of extracted text in runes
const DefaultMaxLength = 4000

// mediaHosts serve images and videos only
var mediaHosts = map[string]bool{
	"i.redd.it": true, "v.redd.it": true, "i.imgur.com": true, "imgur.com": true,
	"youtube.com": true, "www.youtube.com": true, "youtu.be": true, "gfycat.com": true,
}

// mediaExt are file extensions of non-text links
var mediaExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".gifv": true, ".webp": true,
	".mp4": true, ".webm": true, ".mov": true, ".pdf": true, ".zip": true,
}

// HTTPExtractor extracts article text from URLs using trafilatura
type HTTPExtractor struct {
	client    *http.Client
	userAgent string
	maxLength int
}

// NewHTTPExtractor creates a new content extractor
func NewHTTPExtractor(timeout time.Duration, userAgent string) *HTTPExtractor {
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (compatible; ideascope/1.0)"
	}
	return &HTTPExtractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		maxLength: DefaultMaxLength,
	}
}

// Extract retrieves the page and returns its main text, truncated to the max length
func (e *HTTPExtractor) Extract(ctx context.Context, urlStr string) (string, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	if (parsedURL.Scheme != "http" && parsedURL.Scheme != "https") || parsedURL.Host == "" {
		return "", fmt.Errorf("invalid URL: %s", urlStr)
	}
	if mediaHosts[strings.ToLower(parsedURL.Hostname())] || mediaExt[strings.ToLower(path.Ext(parsedURL.Path))] {
		return "", fmt.Errorf("%s: %w", urlStr, ErrNotText)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	addBrowserHeaders(req)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch URL %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d for URL %s", resp.StatusCode, urlStr)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") && !strings.HasPrefix(ct, "text/") {
		return "", fmt.Errorf("%s has content type %q: %w", urlStr, ct, ErrNotText)
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   true,
		Deduplicate:     true,
		OriginalURL:     parsedURL,
	}
	result, err := trafilatura.Extract(resp.Body, opts)
	if err != nil {
		return "", fmt.Errorf("extract content from %s: %w", urlStr, err)
	}
	if result == nil || strings.TrimSpace(result.ContentText) == "" {
		return "", fmt.Errorf("no text content extracted from %s", urlStr)
	}

	return truncate(strings.TrimSpace(result.ContentText), e.maxLength), nil
}

// truncate cuts text to max runes on a word boundary when possible
func truncate(s string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	cut := string([]rune(s)[:maxRunes])
	if i := strings.LastIndexAny(cut, " \n\t"); i > maxRunes/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "…"
}
