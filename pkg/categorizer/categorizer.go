// Package categorizer sorts posts into business buckets by keyword matches, no generation backend involved.
package categorizer

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/umputun/ideascope/pkg/domain"
)

// Fallback is the bucket of posts matching no keywords
const Fallback = "General Business"

// fallbackScore is the score of the fallback bucket
const fallbackScore = 0.1

// Bucket is a named business category with its keywords
type Bucket struct {
	Name     string
	Keywords []string
}

// Categorizer assigns the best matching bucket to a post. It is safe for concurrent use.
type Categorizer struct {
	buckets []compiled
}

type compiled struct {
	name     string
	keywords []string // lowercase, deduplicated
}

// New makes a Categorizer from default buckets extended by custom ones.
// A custom bucket with a default name replaces its keywords, new buckets go after defaults in name order.
func New(custom map[string][]string) *Categorizer {
	buckets := make([]Bucket, 0, len(DefaultBuckets)+len(custom))
	for _, b := range DefaultBuckets {
		if kws, ok := custom[b.Name]; ok {
			b.Keywords = kws
		}
		buckets = append(buckets, b)
	}

	extra := make([]string, 0, len(custom))
	for name := range custom {
		if !isDefault(name) {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		buckets = append(buckets, Bucket{Name: name, Keywords: custom[name]})
	}

	res := &Categorizer{buckets: make([]compiled, 0, len(buckets))}
	for _, b := range buckets {
		res.buckets = append(res.buckets, compiled{name: b.Name, keywords: lowerUnique(b.Keywords)})
	}
	return res
}

// Buckets returns bucket names in matching order
func (c *Categorizer) Buckets() []string {
	res := make([]string, 0, len(c.buckets))
	for _, b := range c.buckets {
		res = append(res, b.name)
	}
	return res
}

// Categorize returns the bucket with the highest keyword weight. A multi-word keyword weighs 2, a single
// word 1. Ties go to the bucket listed first. Score is the share of the winner in the weight of all
// matched buckets. Posts without matches get the fallback bucket.
func (c *Categorizer) Categorize(p domain.RawPost) domain.Category {
	text := strings.ToLower(p.Title + " " + p.Body)

	var best domain.Category
	bestWeight, total := 0.0, 0.0
	for _, b := range c.buckets {
		weight := 0.0
		var found []string
		for _, kw := range b.keywords {
			if !containsWord(text, kw) {
				continue
			}
			found = append(found, kw)
			if strings.Contains(kw, " ") {
				weight += 2
				continue
			}
			weight++
		}
		if weight == 0 {
			continue
		}
		total += weight
		if weight > bestWeight {
			bestWeight = weight
			best = domain.Category{Name: b.name, Keywords: found}
		}
	}

	if total == 0 {
		return domain.Category{Name: Fallback, Score: fallbackScore}
	}
	best.Score = math.Round(bestWeight/total*1000) / 1000
	return best
}

// containsWord reports whether kw occurs in text not glued to other letters or digits
func containsWord(text, kw string) bool {
	for start := 0; start < len(text); {
		i := strings.Index(text[start:], kw)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(kw)
		if boundary(text, i-1) && boundary(text, end) {
			return true
		}
		start = i + 1
	}
	return false
}

// boundary is true if position is outside of text or holds a non-alphanumeric byte.
// Multibyte runes are treated as word characters.
func boundary(text string, pos int) bool {
	if pos < 0 || pos >= len(text) {
		return true
	}
	ch := rune(text[pos])
	if ch >= 0x80 {
		return false
	}
	return !unicode.IsLetter(ch) && !unicode.IsDigit(ch)
}

func lowerUnique(kws []string) []string {
	res := make([]string, 0, len(kws))
	seen := make(map[string]bool, len(kws))
	for _, kw := range kws {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		res = append(res, kw)
	}
	return res
}

func isDefault(name string) bool {
	for _, b := range DefaultBuckets {
		if b.Name == name {
			return true
		}
	}
	return false
}
