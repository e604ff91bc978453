// Package metrics writes run counters in prometheus text format for the node-exporter textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/umputun/ideascope/pkg/domain"
)

// WriteTextfile writes metrics of the run summary to path, replacing the file atomically
func WriteTextfile(path string, s domain.RunSummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	reg := prometheus.NewRegistry()
	register(reg, s)
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

// register creates gauges with summary values in the registry
func register(reg *prometheus.Registry, s domain.RunSummary) {
	factory := promauto.With(reg)

	posts := factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ideascope_run_posts",
		Help: "Number of posts at each pipeline stage of the last run",
	}, []string{"stage"})
	posts.WithLabelValues("fetched").Set(float64(s.Fetched))
	posts.WithLabelValues("filtered").Set(float64(s.Filtered))
	posts.WithLabelValues("scored").Set(float64(s.Scored))
	posts.WithLabelValues("selected").Set(float64(s.Selected))
	posts.WithLabelValues("generated").Set(float64(s.Generated))
	posts.WithLabelValues("exported").Set(float64(s.Exported))

	skipped := factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ideascope_run_skipped",
		Help: "Number of posts skipped in the last run, by reason",
	}, []string{"reason"})
	for reason, n := range s.Skipped {
		skipped.WithLabelValues(reason).Set(float64(n))
	}

	buckets := factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ideascope_run_bucket",
		Help: "Number of selected posts in the last run, by business bucket",
	}, []string{"bucket"})
	for name, n := range s.Buckets {
		buckets.WithLabelValues(name).Set(float64(n))
	}

	failed := factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ideascope_run_failed_community",
		Help: "Communities skipped in the last run, by error kind",
	}, []string{"community", "kind"})
	for community, kind := range s.FailedCommunities {
		failed.WithLabelValues(community, kind).Set(1)
	}

	exports := factory.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ideascope_run_export",
		Help: "Export result per format of the last run, 1 for success and 0 for failure",
	}, []string{"format"})
	for format := range s.ExportedFiles {
		exports.WithLabelValues(format).Set(1)
	}
	for format := range s.ExportErrors {
		exports.WithLabelValues(format).Set(0)
	}

	aborted := factory.NewGauge(prometheus.GaugeOpts{
		Name: "ideascope_run_aborted",
		Help: "1 if the last run was interrupted",
	})
	if s.Aborted {
		aborted.Set(1)
	}

	factory.NewGauge(prometheus.GaugeOpts{
		Name: "ideascope_run_duration_seconds",
		Help: "Duration of the last run",
	}).Set(s.EndedAt.Sub(s.StartedAt).Seconds())

	factory.NewGauge(prometheus.GaugeOpts{
		Name: "ideascope_run_last_timestamp_seconds",
		Help: "Unix time the last run ended",
	}).Set(float64(s.EndedAt.Unix()))
}
