package store

import (
	"context"
	"fmt"
	"time"
)

// Entry is one answered question.
type Entry struct {
	Seq       int64     `json:"seq"`
	TraceID   string    `json:"trace_id"`
	Dataset   string    `json:"dataset"`
	Question  string    `json:"question"`
	SQL       string    `json:"sql,omitempty"`
	Answer    string    `json:"answer"`
	Retried   bool      `json:"retried"`
	CreatedAt time.Time `json:"created_at"`
}

// Record appends e to the history. Seq is assigned by the store and
// returned. A duplicate trace ID is rejected.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO query_history
		(trace_id, dataset, question, sql, answer, retried, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		e.TraceID,
		e.Dataset,
		e.Question,
		e.SQL,
		e.Answer,
		e.Retried,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("record history: %w", err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("record history: %w", err)
	}
	return seq, nil
}

// Recent returns the last n entries across all datasets, oldest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Entry, error) {
	return s.recent(ctx, "", n)
}

// RecentForDataset returns the last n entries for one dataset, oldest first.
func (s *Store) RecentForDataset(ctx context.Context, dataset string, n int) ([]Entry, error) {
	return s.recent(ctx, dataset, n)
}

func (s *Store) recent(ctx context.Context, dataset string, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, trace_id, dataset, question, sql, answer, retried, created_at
		FROM (
			SELECT * FROM query_history
			WHERE ? = '' OR dataset = ?
			ORDER BY seq DESC
			LIMIT ?
		)
		ORDER BY seq ASC
	`, dataset, dataset, n)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e         Entry
			createdAt string
		)
		if err := rows.Scan(&e.Seq, &e.TraceID, &e.Dataset, &e.Question, &e.SQL, &e.Answer, &e.Retried, &createdAt); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at for seq %d: %w", e.Seq, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}
