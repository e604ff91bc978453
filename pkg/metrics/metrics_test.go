package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/ideascope/pkg/domain"
)

func TestWriteTextfile(t *testing.T) {
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s := domain.NewRunSummary(started)
	s.EndedAt = started.Add(90 * time.Second)
	s.Fetched, s.Filtered, s.Scored, s.Selected, s.Generated, s.Exported = 50, 12, 12, 5, 4, 4
	s.Skip("low_engagement")
	s.Skip("low_engagement")
	s.Skip("timeout")
	s.FailedCommunities["SaaS"] = "rate_limited"
	s.ExportedFiles["csv"] = "outputs/a.csv"
	s.ExportErrors["sqlite"] = "disk full"
	s.AddBucket("Financial Management")
	s.AddBucket("Financial Management")

	path := filepath.Join(t.TempDir(), "textfile", "ideascope.prom")
	require.NoError(t, WriteTextfile(path, s))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	for _, line := range []string{
		`ideascope_run_posts{stage="fetched"} 50`,
		`ideascope_run_posts{stage="generated"} 4`,
		`ideascope_run_skipped{reason="low_engagement"} 2`,
		`ideascope_run_skipped{reason="timeout"} 1`,
		`ideascope_run_bucket{bucket="Financial Management"} 2`,
		`ideascope_run_failed_community{community="SaaS",kind="rate_limited"} 1`,
		`ideascope_run_export{format="csv"} 1`,
		`ideascope_run_export{format="sqlite"} 0`,
		`ideascope_run_aborted 0`,
		`ideascope_run_duration_seconds 90`,
		"# HELP ideascope_run_posts Number of posts at each pipeline stage of the last run",
		"# TYPE ideascope_run_posts gauge",
	} {
		assert.Contains(t, out, line)
	}
}

func TestWriteTextfile_Aborted(t *testing.T) {
	s := domain.NewRunSummary(time.Now())
	s.EndedAt = s.StartedAt
	s.Aborted = true
	path := filepath.Join(t.TempDir(), "m.prom")
	require.NoError(t, WriteTextfile(path, s))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ideascope_run_aborted 1")
	assert.NotContains(t, string(data), "ideascope_run_skipped{", "no skip series without skips")
}

func TestWriteTextfile_BadPath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	err := WriteTextfile(filepath.Join(blocker, "m.prom"), domain.NewRunSummary(time.Now()))
	require.Error(t, err)
}
