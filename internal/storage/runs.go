package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ecoscan/internal/smells"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("analysis run not found")

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// RunInput is everything recorded about one analysis.
type RunInput struct {
	SourceName         string
	Source             string
	Optimized          string
	Issues             []smells.Issue
	OriginalEmissions  float64
	OptimizedEmissions float64
	Reduction          float64
}

// Run is the summary row of a stored analysis.
type Run struct {
	ID                 string    `json:"id" yaml:"id"`
	SourceName         string    `json:"sourceName" yaml:"sourceName"`
	CreatedAt          time.Time `json:"createdAt" yaml:"createdAt"`
	IssueCount         int       `json:"issueCount" yaml:"issueCount"`
	OriginalEmissions  float64   `json:"originalEmissions" yaml:"originalEmissions"`
	OptimizedEmissions float64   `json:"optimizedEmissions" yaml:"optimizedEmissions"`
	Reduction          float64   `json:"reduction" yaml:"reduction"`
	SourceBytes        int64     `json:"sourceBytes" yaml:"sourceBytes"`
}

// RunDetail is a stored analysis with its texts and issues.
type RunDetail struct {
	Run       `yaml:",inline"`
	Source    string         `json:"source" yaml:"source"`
	Optimized string         `json:"optimized" yaml:"optimized"`
	Issues    []smells.Issue `json:"issues" yaml:"issues"`
}

// RecordRun stores an analysis and returns its generated id.
func (db *DB) RecordRun(ctx context.Context, in RunInput) (string, error) {
	id := uuid.New().String()
	createdAt := time.Now().UTC().Format(timeLayout)

	err := db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO analysis_runs (
				id, source_name, created_at, issue_count,
				original_emissions, optimized_emissions, reduction,
				source_bytes, source_blob, optimized_blob
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, in.SourceName, createdAt, len(in.Issues),
			in.OriginalEmissions, in.OptimizedEmissions, in.Reduction,
			len(in.Source), compressText(in.Source), compressText(in.Optimized))
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO analysis_issues (run_id, seq, line, kind, message, recommendation, suggestion)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, issue := range in.Issues {
			if _, err := stmt.ExecContext(ctx, id, i, issue.Line, string(issue.Kind),
				issue.Message, issue.Recommendation, issue.Suggestion); err != nil {
				return fmt.Errorf("failed to insert issue: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	db.logger.Debug("Recorded analysis run", "id", id, "source", in.SourceName, "issues", len(in.Issues))
	return id, nil
}

const runColumns = `id, source_name, created_at, issue_count,
	original_emissions, optimized_emissions, reduction, source_bytes`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner, extra ...interface{}) (*Run, error) {
	var r Run
	var createdAt string
	dest := append([]interface{}{
		&r.ID, &r.SourceName, &createdAt, &r.IssueCount,
		&r.OriginalEmissions, &r.OptimizedEmissions, &r.Reduction, &r.SourceBytes,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("bad created_at %q: %w", createdAt, err)
	}
	r.CreatedAt = t
	return &r, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM analysis_runs ORDER BY created_at DESC, id"
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRun loads one run with its texts and issues.
func (db *DB) GetRun(ctx context.Context, id string) (*RunDetail, error) {
	var sourceBlob, optimizedBlob []byte
	row := db.conn.QueryRowContext(ctx,
		"SELECT "+runColumns+", source_blob, optimized_blob FROM analysis_runs WHERE id = ?", id)
	r, err := scanRun(row, &sourceBlob, &optimizedBlob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}

	detail := &RunDetail{Run: *r}
	if detail.Source, err = decompressText(sourceBlob); err != nil {
		return nil, err
	}
	if detail.Optimized, err = decompressText(optimizedBlob); err != nil {
		return nil, err
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT line, kind, message, recommendation, suggestion
		FROM analysis_issues WHERE run_id = ? ORDER BY seq
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var issue smells.Issue
		var kind string
		if err := rows.Scan(&issue.Line, &kind, &issue.Message, &issue.Recommendation, &issue.Suggestion); err != nil {
			return nil, err
		}
		issue.Kind = smells.PatternKind(kind)
		detail.Issues = append(detail.Issues, issue)
	}
	return detail, rows.Err()
}
