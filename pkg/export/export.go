// Package export writes idea records to output files, one file per requested format.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	log "github.com/go-pkgz/lgr"

	"github.com/umputun/ideascope/pkg/domain"
)

// filePrefix is the common prefix of all exported files
const filePrefix = "startup_ideas_"

// writer writes records in one format to the given path
type writer func(ctx context.Context, path string, records []domain.IdeaRecord, when time.Time) error

type format struct {
	ext   string
	write writer
}

var formats = map[string]format{
	"csv":      {ext: "csv", write: writeCSV},
	"json":     {ext: "json", write: writeJSON},
	"text":     {ext: "txt", write: writeText},
	"markdown": {ext: "md", write: writeMarkdown},
	"sqlite":   {ext: "db", write: writeSQLite},
}

// Exporter writes records to the output directory in every configured format
type Exporter struct {
	dir     string
	formats []string
}

// Report is the outcome of one export call
type Report struct {
	Files  map[string]string // format -> written path
	Errors map[string]error  // format -> failure, each wraps domain.ErrExportWrite
}

// AllFailed returns true if nothing was written while at least one format was requested
func (r Report) AllFailed() bool {
	return len(r.Files) == 0 && len(r.Errors) > 0
}

// Paths returns written file paths sorted by format name
func (r Report) Paths() []string {
	keys := make([]string, 0, len(r.Files))
	for k := range r.Files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	res := make([]string, 0, len(keys))
	for _, k := range keys {
		res = append(res, r.Files[k])
	}
	return res
}

// New makes an exporter for the given output directory and formats.
// Unknown formats are reported as export errors at export time.
func New(dir string, formatNames []string) *Exporter {
	names := make([]string, 0, len(formatNames))
	for _, f := range formatNames {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || slices.Contains(names, f) {
			continue
		}
		names = append(names, f)
	}
	return &Exporter{dir: dir, formats: names}
}

// FileName returns the name of the exported file for the format extension and run time
func FileName(ext string, when time.Time) string {
	return filePrefix + when.Format("20060102_150405") + "." + ext
}

// Export writes records in all formats. The records slice is never modified.
// A failure of one format doesn't prevent writing the others.
func (e *Exporter) Export(ctx context.Context, records []domain.IdeaRecord, when time.Time) Report {
	rep := Report{Files: map[string]string{}, Errors: map[string]error{}}

	if err := os.MkdirAll(e.dir, 0o750); err != nil {
		for _, name := range e.formats {
			rep.Errors[name] = fmt.Errorf("%w: create output dir %s: %w", domain.ErrExportWrite, e.dir, err)
		}
		log.Printf("[ERROR] can't create output directory %s: %v", e.dir, err)
		return rep
	}

	for _, name := range e.formats {
		f, ok := formats[name]
		if !ok {
			rep.Errors[name] = fmt.Errorf("%w: unsupported format %q", domain.ErrExportWrite, name)
			continue
		}
		path := filepath.Join(e.dir, FileName(f.ext, when))
		if err := f.write(ctx, path, records, when); err != nil {
			removePartial(path)
			rep.Errors[name] = fmt.Errorf("%w: %s: %w", domain.ErrExportWrite, name, err)
			log.Printf("[WARN] export %s to %s failed: %v", name, path, err)
			continue
		}
		rep.Files[name] = path
		log.Printf("[INFO] exported %d records to %s", len(records), path)
	}
	return rep
}

// removePartial removes a partially written file, leaving anything else at the path alone
func removePartial(path string) {
	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
		_ = os.Remove(path)
	}
}

// modelsUsed returns distinct model names of records in order of appearance, comma separated
func modelsUsed(records []domain.IdeaRecord) string {
	var models []string
	for _, r := range records {
		if r.Model != "" && !slices.Contains(models, r.Model) {
			models = append(models, r.Model)
		}
	}
	return strings.Join(models, ", ")
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
