package domain

import (
	"sort"
	"time"
)

// RunSummary holds counters of a single pipeline run
type RunSummary struct {
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Aborted   bool      `json:"aborted"`

	Fetched   int `json:"fetched"`
	Filtered  int `json:"filtered"` // posts passing the filter
	Scored    int `json:"scored"`
	Selected  int `json:"selected"` // scored posts at or above the threshold
	Generated int `json:"generated"`
	Exported  int `json:"exported"` // records handed to the export sink

	Skipped           map[string]int    `json:"skipped"`            // reason -> count
	FailedCommunities map[string]string `json:"failed_communities"` // community -> error kind
	ExportedFiles     map[string]string `json:"exported_files"`     // format -> path
	ExportErrors      map[string]string `json:"export_errors"`      // format -> error
	Buckets           map[string]int    `json:"buckets"`            // business bucket -> selected posts
}

// NewRunSummary makes an empty summary with initialized maps
func NewRunSummary(started time.Time) RunSummary {
	return RunSummary{
		StartedAt:         started,
		Skipped:           map[string]int{},
		FailedCommunities: map[string]string{},
		ExportedFiles:     map[string]string{},
		ExportErrors:      map[string]string{},
		Buckets:           map[string]int{},
	}
}

// Skip increments the skip counter for the reason
func (s *RunSummary) Skip(reason string) {
	if s.Skipped == nil {
		s.Skipped = map[string]int{}
	}
	s.Skipped[reason]++
}

// AddBucket counts a selected post in its business bucket
func (s *RunSummary) AddBucket(name string) {
	if s.Buckets == nil {
		s.Buckets = map[string]int{}
	}
	s.Buckets[name]++
}

// TotalSkipped returns the sum of all skip counters
func (s RunSummary) TotalSkipped() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// SkipReasons returns skip reasons sorted by name
func (s RunSummary) SkipReasons() []string {
	return sortedKeys(s.Skipped)
}

// BucketNames returns business buckets sorted by name
func (s RunSummary) BucketNames() []string {
	return sortedKeys(s.Buckets)
}

func sortedKeys(m map[string]int) []string {
	res := make([]string, 0, len(m))
	for k := range m {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
