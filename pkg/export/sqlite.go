package export

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/umputun/ideascope/pkg/domain"
)

const ideasSchema = `
CREATE TABLE IF NOT EXISTS ideas (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id TEXT NOT NULL,
	title TEXT NOT NULL,
	community TEXT NOT NULL,
	url TEXT NOT NULL,
	problem_summary TEXT NOT NULL,
	target_audience TEXT NOT NULL,
	idea_name TEXT NOT NULL,
	idea_description TEXT NOT NULL,
	category TEXT NOT NULL,
	complexity TEXT NOT NULL,
	market_size TEXT NOT NULL,
	confidence_score REAL NOT NULL,
	model TEXT NOT NULL,
	generated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ideas_confidence ON ideas(confidence_score DESC);
`

// ideaRow is the sqlite row of an idea record
type ideaRow struct {
	ID              int64     `db:"id"`
	PostID          string    `db:"post_id"`
	Title           string    `db:"title"`
	Community       string    `db:"community"`
	URL             string    `db:"url"`
	ProblemSummary  string    `db:"problem_summary"`
	TargetAudience  string    `db:"target_audience"`
	IdeaName        string    `db:"idea_name"`
	IdeaDescription string    `db:"idea_description"`
	Category        string    `db:"category"`
	Complexity      string    `db:"complexity"`
	MarketSize      string    `db:"market_size"`
	ConfidenceScore float64   `db:"confidence_score"`
	Model           string    `db:"model"`
	GeneratedAt     time.Time `db:"generated_at"`
}

func toRow(r domain.IdeaRecord) ideaRow {
	return ideaRow{PostID: r.PostID, Title: r.Title, Community: r.Community, URL: r.URL,
		ProblemSummary: r.ProblemSummary, TargetAudience: r.TargetAudience, IdeaName: r.IdeaName,
		IdeaDescription: r.IdeaDescription, Category: r.Category, Complexity: string(r.Complexity),
		MarketSize: string(r.MarketSize), ConfidenceScore: r.ConfidenceScore, Model: r.Model,
		GeneratedAt: r.GeneratedAt.UTC()}
}

func writeSQLite(ctx context.Context, path string, records []domain.IdeaRecord, _ time.Time) error {
	// the file must hold only this run
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove old %s: %w", path, err)
	}

	conn, err := sqlx.Open("sqlite", "file:"+path+"?mode=rwc")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, ideasSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	query := `INSERT INTO ideas (post_id, title, community, url, problem_summary, target_audience, idea_name,
		idea_description, category, complexity, market_size, confidence_score, model, generated_at)
		VALUES (:post_id, :title, :community, :url, :problem_summary, :target_audience, :idea_name,
		:idea_description, :category, :complexity, :market_size, :confidence_score, :model, :generated_at)`
	for _, r := range records {
		if _, err := tx.NamedExecContext(ctx, query, toRow(r)); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("insert idea %s: %w (rollback also failed: %s)", r.PostID, err, rbErr.Error())
			}
			return fmt.Errorf("insert idea %s: %w", r.PostID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ReadSQLite loads idea records from a sqlite export, ordered as inserted
func ReadSQLite(ctx context.Context, path string) ([]domain.IdeaRecord, error) {
	conn, err := sqlx.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	defer conn.Close()

	var rows []ideaRow
	if err := conn.SelectContext(ctx, &rows, "SELECT * FROM ideas ORDER BY id"); err != nil {
		return nil, fmt.Errorf("select ideas: %w", err)
	}
	res := make([]domain.IdeaRecord, 0, len(rows))
	for _, r := range rows {
		res = append(res, domain.IdeaRecord{PostID: r.PostID, Title: r.Title, Community: r.Community, URL: r.URL,
			ProblemSummary: r.ProblemSummary, TargetAudience: r.TargetAudience, IdeaName: r.IdeaName,
			IdeaDescription: r.IdeaDescription, Category: r.Category, Complexity: domain.Complexity(r.Complexity),
			MarketSize: domain.MarketSize(r.MarketSize), ConfidenceScore: r.ConfidenceScore, Model: r.Model,
			GeneratedAt: r.GeneratedAt})
	}
	return res, nil
}
