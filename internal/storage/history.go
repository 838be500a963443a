package storage

import (
	"context"
	"fmt"

	"github.com/pkozlov/bucketeer/internal/model"
)

// RecordMapping appends one confirmed mapping to the history.
func (s *Store) RecordMapping(ctx context.Context, row model.Row, categoryName string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if categoryName == "" {
		return fmt.Errorf("category cannot be empty")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mappings (date, amount, description, category) VALUES (?, ?, ?, ?)`,
		row.Date, row.Amount, row.Description, categoryName)
	if err != nil {
		return fmt.Errorf("failed to record mapping: %w", err)
	}
	return nil
}

// RecentExamples returns up to limit confirmed mappings, newest first, for
// use as in-context examples.
func (s *Store) RecentExamples(ctx context.Context, limit int) ([]model.Example, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT date, amount, description, category, created_at
		FROM mappings
		ORDER BY id DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var examples []model.Example
	for rows.Next() {
		var ex model.Example
		if err := rows.Scan(&ex.Date, &ex.Amount, &ex.Description, &ex.Category, &ex.ConfirmedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		examples = append(examples, ex)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mappings: %w", err)
	}
	return examples, nil
}

// MappingCount returns the number of confirmed mappings recorded.
func (s *Store) MappingCount(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM mappings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count mappings: %w", err)
	}
	return count, nil
}
