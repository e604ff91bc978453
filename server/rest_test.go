package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/ideascope/pkg/domain"
	"github.com/umputun/ideascope/pkg/pipeline"
	"github.com/umputun/ideascope/server/mocks"
)

func testResult() pipeline.Result {
	s := domain.NewRunSummary(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	s.Fetched, s.Generated, s.Exported = 10, 3, 3
	s.Skip("no_pain_point")
	return pipeline.Result{
		Records: []domain.IdeaRecord{
			{PostID: "a", IdeaName: "Alpha", ConfidenceScore: 0.9},
			{PostID: "b", IdeaName: "Beta", ConfidenceScore: 0.35},
			{PostID: "c", IdeaName: "Gamma", ConfidenceScore: 0.6},
		},
		Summary: s,
	}
}

func do(t *testing.T, srv *Server, method, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, url, http.NoBody)
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	return w
}

func TestServer_Ping(t *testing.T) {
	srv := New(testConfig(":8080"), &mocks.RunnerMock{}, "1.0.0", false)
	w := do(t, srv, http.MethodGet, "/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestServer_StatusNoRuns(t *testing.T) {
	srv := New(testConfig(":8080"), &mocks.RunnerMock{}, "1.2.3", false)
	w := do(t, srv, http.MethodGet, "/api/v1/status")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var status map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, "1.2.3", status["version"])
	assert.Equal(t, false, status["running"])
	assert.NotContains(t, status, "last_run")
	assert.NotEmpty(t, status["time"])
}

func TestServer_RunLifecycle(t *testing.T) {
	release := make(chan struct{})
	runner := &mocks.RunnerMock{RunFunc: func(context.Context) (pipeline.Result, error) {
		<-release
		return testResult(), nil
	}}
	srv := New(testConfig(":8080"), runner, "1.0.0", false)

	w := do(t, srv, http.MethodPost, "/api/v1/run")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"status":"started"}`, w.Body.String())

	// second start while running is rejected
	w = do(t, srv, http.MethodPost, "/api/v1/run")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"run already in progress"}`, w.Body.String())

	var status statusResponse
	w = do(t, srv, http.MethodGet, "/api/v1/status")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.Running)
	assert.Nil(t, status.LastRun)

	close(release)
	srv.Wait()

	w = do(t, srv, http.MethodGet, "/api/v1/status")
	status = statusResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.Running)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, 10, status.LastRun.Fetched)
	assert.Equal(t, 3, status.LastRun.Generated)
	assert.Equal(t, map[string]int{"no_pain_point": 1}, status.LastRun.Skipped)
	assert.NotNil(t, status.Finished)
	assert.Empty(t, status.LastError)

	// can start again after the run is finished
	w = do(t, srv, http.MethodPost, "/api/v1/run")
	assert.Equal(t, http.StatusAccepted, w.Code)
	srv.Wait()
	assert.Len(t, runner.RunCalls(), 2)
}

func TestServer_StopRun(t *testing.T) {
	started, canceled := make(chan struct{}), make(chan struct{})
	runner := &mocks.RunnerMock{RunFunc: func(ctx context.Context) (pipeline.Result, error) {
		close(started)
		select {
		case <-ctx.Done():
			close(canceled)
		case <-time.After(5 * time.Second):
		}
		s := testResult().Summary
		s.Aborted = ctx.Err() != nil
		return pipeline.Result{Summary: s}, nil
	}}
	srv := New(testConfig(":8080"), runner, "1.0.0", false)

	// nothing to stop yet
	w := do(t, srv, http.MethodPost, "/api/v1/stop")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"no active run"}`, w.Body.String())

	require.Equal(t, http.StatusAccepted, do(t, srv, http.MethodPost, "/api/v1/run").Code)
	<-started

	w = do(t, srv, http.MethodPost, "/api/v1/stop")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"status":"stopping"}`, w.Body.String())

	select {
	case <-canceled:
	case <-time.After(time.Second):
		t.Fatal("run context was not canceled")
	}
	srv.Wait()

	var status map[string]any
	require.NoError(t, json.Unmarshal(do(t, srv, http.MethodGet, "/api/v1/status").Body.Bytes(), &status))
	assert.Equal(t, false, status["running"])
	lastRun, ok := status["last_run"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, lastRun["aborted"])

	// stopped run is finished, second stop has nothing to cancel
	assert.Equal(t, http.StatusConflict, do(t, srv, http.MethodPost, "/api/v1/stop").Code)
}

func TestServer_RunRejectedOnShutdown(t *testing.T) {
	runner := &mocks.RunnerMock{RunFunc: func(context.Context) (pipeline.Result, error) { return testResult(), nil }}
	srv := New(testConfig(":8080"), runner, "1.0.0", false)
	srv.runLock.Lock()
	srv.closing = true
	srv.runLock.Unlock()

	w := do(t, srv, http.MethodPost, "/api/v1/run")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"server is shutting down"}`, w.Body.String())
	srv.Wait()
	assert.Empty(t, runner.RunCalls())
}

func TestServer_RunFailure(t *testing.T) {
	runner := &mocks.RunnerMock{RunFunc: func(context.Context) (pipeline.Result, error) {
		return pipeline.Result{Summary: domain.NewRunSummary(time.Now())},
			errors.Join(domain.ErrExportWrite, errors.New("all export formats failed"))
	}}
	srv := New(testConfig(":8080"), runner, "1.0.0", false)
	assert.Equal(t, http.StatusAccepted, do(t, srv, http.MethodPost, "/api/v1/run").Code)
	srv.Wait()

	var status statusResponse
	require.NoError(t, json.Unmarshal(do(t, srv, http.MethodGet, "/api/v1/status").Body.Bytes(), &status))
	assert.Contains(t, status.LastError, "all export formats failed")
	assert.NotNil(t, status.LastRun)
}

func TestServer_Ideas(t *testing.T) {
	runner := &mocks.RunnerMock{RunFunc: func(context.Context) (pipeline.Result, error) { return testResult(), nil }}
	srv := New(testConfig(":8080"), runner, "1.0.0", false)

	// nothing before the first run
	w := do(t, srv, http.MethodGet, "/api/v1/ideas")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	do(t, srv, http.MethodPost, "/api/v1/run")
	srv.Wait()

	tests := []struct {
		name string
		url  string
		code int
		ids  []string
	}{
		{name: "all", url: "/api/v1/ideas", code: http.StatusOK, ids: []string{"a", "b", "c"}},
		{name: "min score", url: "/api/v1/ideas?min_score=0.5", code: http.StatusOK, ids: []string{"a", "c"}},
		{name: "limit", url: "/api/v1/ideas?limit=2", code: http.StatusOK, ids: []string{"a", "b"}},
		{name: "min score and limit", url: "/api/v1/ideas?min_score=0.5&limit=1", code: http.StatusOK, ids: []string{"a"}},
		{name: "bad min score", url: "/api/v1/ideas?min_score=abc", code: http.StatusBadRequest},
		{name: "min score out of range", url: "/api/v1/ideas?min_score=5", code: http.StatusBadRequest},
		{name: "bad limit", url: "/api/v1/ideas?limit=-1", code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodGet, tt.url)
			require.Equal(t, tt.code, w.Code)
			if tt.code != http.StatusOK {
				assert.Contains(t, w.Body.String(), "error")
				return
			}
			var records []domain.IdeaRecord
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
			ids := make([]string, 0, len(records))
			for _, r := range records {
				ids = append(ids, r.PostID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestRenderError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "with error", err: errors.New("boom"), want: `{"error":"boom"}`},
		{name: "nil error", err: nil, want: `{"error":"unknown error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			renderError(w, httptest.NewRequest(http.MethodGet, "/", http.NoBody), tt.err, http.StatusTeapot)
			assert.Equal(t, http.StatusTeapot, w.Code)
			assert.JSONEq(t, tt.want, w.Body.String())
		})
	}
}
