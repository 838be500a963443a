package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pkozlov/bucketeer/internal/common"
	"github.com/pkozlov/bucketeer/internal/model"
)

var defaultCategoryNames = model.DefaultCategories

// GetCategories returns all active categories in insertion order, which is
// the canonical prompt rendering order.
func (s *Store) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, created_at, is_active
		FROM categories
		WHERE is_active = 1
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.CreatedAt, &cat.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}

// CategorySet returns the active category names as the pipeline's vocabulary.
func (s *Store) CategorySet(ctx context.Context) (model.CategorySet, error) {
	categories, err := s.GetCategories(ctx)
	if err != nil {
		return nil, err
	}

	set := make(model.CategorySet, 0, len(categories))
	for _, cat := range categories {
		set = append(set, cat.Name)
	}
	return set, nil
}

// CreateCategory adds a new category, reactivating a previously removed one
// with the same name.
func (s *Store) CreateCategory(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("category name cannot be empty")
	}

	var existing model.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, is_active FROM categories WHERE name = ?`, name).
		Scan(&existing.ID, &existing.Name, &existing.CreatedAt, &existing.IsActive)

	switch {
	case err == nil && existing.IsActive:
		return nil, fmt.Errorf("category %q: %w", name, common.ErrDuplicateEntry)
	case err == nil:
		if _, err := s.db.ExecContext(ctx,
			`UPDATE categories SET is_active = 1 WHERE id = ?`, existing.ID); err != nil {
			return nil, fmt.Errorf("failed to reactivate category: %w", err)
		}
		existing.IsActive = true
		return &existing, nil
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read category id: %w", err)
	}

	slog.Info("created category", "name", name, "id", id)
	return &model.Category{ID: int(id), Name: name, IsActive: true}, nil
}

// RemoveCategory soft-deletes a category so historical mappings stay intact.
func (s *Store) RemoveCategory(ctx context.Context, name string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET is_active = 0 WHERE name = ? AND is_active = 1`, name)
	if err != nil {
		return fmt.Errorf("failed to remove category: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %q: %w", name, common.ErrNotFound)
	}
	return nil
}
