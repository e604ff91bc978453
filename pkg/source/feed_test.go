package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/ideascope/pkg/domain"
)

const testRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:slash="http://purl.org/rss/1.0/modules/slash/" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
  <title>Indie forum</title>
  <link>https://forum.example.com</link>
  <item>
    <title>Tired of chasing invoices</title>
    <link>https://forum.example.com/t/1</link>
    <guid>topic-1</guid>
    <author>alice@example.com (Alice)</author>
    <description>short</description>
    <content:encoded><![CDATA[<p>I hate it when clients <b>pay late</b> &amp; ignore reminders</p>]]></content:encoded>
    <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    <slash:comments>17</slash:comments>
  </item>
  <item>
    <title>Looking for a way to plan meals</title>
    <link>https://forum.example.com/t/2</link>
    <description><![CDATA[Is there a tool for <i>that</i>?]]></description>
  </item>
  <item>
    <title>Third</title>
    <link>https://forum.example.com/t/3</link>
    <slash:comments>not a number</slash:comments>
  </item>
</channel>
</rss>`

func TestFeed_Posts(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testRSS))
	}))
	defer ts.Close()

	src := NewFeed(FeedParams{UserAgent: "ideascope-test/1.0", Timeout: 5 * time.Second})
	community := ts.URL + "/latest.rss"
	posts, err := collect(src.Posts(context.Background(), community, 10))
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "ideascope-test/1.0", gotUA)

	p := posts[0]
	assert.Equal(t, "topic-1", p.ID)
	assert.Equal(t, "Tired of chasing invoices", p.Title)
	assert.Equal(t, "I hate it when clients pay late & ignore reminders", p.Body)
	assert.Equal(t, community, p.Community)
	assert.Equal(t, "https://forum.example.com/t/1", p.URL)
	assert.Equal(t, 17, p.Comments)
	assert.Equal(t, time.Date(2006, 1, 2, 15, 4, 5, 0, time.UTC), p.Created)

	assert.Equal(t, "https://forum.example.com/t/2", posts[1].ID, "link used when guid missing")
	assert.Equal(t, "Is there a tool for that?", posts[1].Body, "description used when no content")
	assert.Equal(t, 0, posts[1].Comments)
	assert.Equal(t, 0, posts[2].Comments, "invalid comment count ignored")

	limited, err := collect(src.Posts(context.Background(), community, 2))
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestFeed_PostsErrors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer ts.Close()
		_, err := collect(NewFeed(FeedParams{}).Posts(context.Background(), ts.URL, 10))
		require.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})

	t.Run("not a feed", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("plain text"))
		}))
		defer ts.Close()
		_, err := collect(NewFeed(FeedParams{}).Posts(context.Background(), ts.URL, 10))
		require.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})

	t.Run("rate limited twice", func(t *testing.T) {
		var calls atomic.Int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer ts.Close()
		_, err := collect(NewFeed(FeedParams{RateLimitBackoff: 10 * time.Millisecond}).Posts(context.Background(), ts.URL, 10))
		require.ErrorIs(t, err, domain.ErrRateLimited)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("rate limited once", func(t *testing.T) {
		var calls atomic.Int32
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if calls.Add(1) == 1 {
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			_, _ = w.Write([]byte(testRSS))
		}))
		defer ts.Close()
		posts, err := collect(NewFeed(FeedParams{RateLimitBackoff: 10 * time.Millisecond}).Posts(context.Background(), ts.URL, 10))
		require.NoError(t, err)
		assert.Len(t, posts, 3)
	})
}
