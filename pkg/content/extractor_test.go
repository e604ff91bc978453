package content

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPExtractor_Extract(t *testing.T) {
	tests := []struct {
		name        string
		htmlContent string
		contentType string
		wantContent string
		wantErr     bool
		statusCode  int
	}{
		{
			name: "successful extraction",
			htmlContent: `<!DOCTYPE html>
				<html>
				<head><title>Invoicing is broken</title></head>
				<body>
					<article>
						<h1>Why freelancers wait 60 days for payment</h1>
						<p>Every freelancer I know chases unpaid invoices every single month.</p>
						<p>Reminders, spreadsheets and awkward emails take hours.</p>
					</article>
				</body>
				</html>`,
			contentType: "text/html; charset=utf-8",
			wantContent: "unpaid invoices",
			statusCode:  http.StatusOK,
		},
		{
			name:        "json response is not a text page",
			htmlContent: `{"ok":true}`,
			contentType: "application/json",
			wantErr:     true,
			statusCode:  http.StatusOK,
		},
		{
			name:        "server error",
			htmlContent: "error",
			contentType: "text/plain",
			wantErr:     true,
			statusCode:  http.StatusInternalServerError,
		},
		{
			name:        "not found",
			htmlContent: "not found",
			contentType: "text/plain",
			wantErr:     true,
			statusCode:  http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUA string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUA = r.Header.Get("User-Agent")
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.htmlContent))
			}))
			defer server.Close()

			extractor := NewHTTPExtractor(10*time.Second, "test-agent/1.0")
			content, err := extractor.Extract(context.Background(), server.URL+"/article")
			assert.Equal(t, "test-agent/1.0", gotUA)

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, content, tt.wantContent)
		})
	}
}

func TestHTTPExtractor_Extract_MediaLinks(t *testing.T) {
	extractor := NewHTTPExtractor(time.Second, "")

	for _, u := range []string{
		"https://i.redd.it/abc123.png",
		"https://v.redd.it/xyz",
		"https://www.youtube.com/watch?v=1",
		"https://example.com/files/report.PDF",
		"https://example.com/pic.jpeg?size=large",
	} {
		t.Run(u, func(t *testing.T) {
			_, err := extractor.Extract(context.Background(), u)
			require.ErrorIs(t, err, ErrNotText)
		})
	}
}

func TestHTTPExtractor_Extract_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body>Too late</body></html>"))
	}))
	defer server.Close()

	extractor := NewHTTPExtractor(100*time.Millisecond, "")
	_, err := extractor.Extract(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadline exceeded")
}

func TestHTTPExtractor_Extract_InvalidURL(t *testing.T) {
	extractor := NewHTTPExtractor(time.Second, "")

	tests := []struct {
		name string
		url  string
	}{
		{name: "empty url", url: ""},
		{name: "invalid scheme", url: "not-a-url"},
		{name: "ftp scheme", url: "ftp://example.com/file"},
		{name: "unreachable host", url: "http://localhost:99999/test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractor.Extract(context.Background(), tt.url)
			require.Error(t, err)
		})
	}
}

func TestHTTPExtractor_Extract_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(5 * time.Second):
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	extractor := NewHTTPExtractor(5*time.Second, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := extractor.Extract(ctx, server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "context canceled")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short text", truncate("short text", 100))
	assert.Equal(t, "no limit", truncate("no limit", 0))

	long := strings.Repeat("word ", 100)
	res := truncate(long, 50)
	assert.LessOrEqual(t, utf8.RuneCountInString(res), 51)
	assert.True(t, strings.HasSuffix(res, "word…"))

	res = truncate(strings.Repeat("я", 20), 10)
	assert.Equal(t, strings.Repeat("я", 10)+"…", res)
}
