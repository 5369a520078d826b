package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jjudge-oj/glossary/types"
)

// CategoryRepository handles persistence for categories.
type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// List returns categories in creation order. A non-empty query keeps only
// categories whose name or description contains it, ignoring case.
func (r *CategoryRepository) List(ctx context.Context, query string) ([]types.Category, error) {
	stmt := `
		SELECT id, name, description, created_at
		FROM categories`
	var args []any
	if q := strings.TrimSpace(query); q != "" {
		stmt += `
		WHERE name ILIKE $1 OR description ILIKE $1`
		args = append(args, containsPattern(q))
	}
	stmt += `
		ORDER BY created_at, name`

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]types.Category, 0)
	for rows.Next() {
		var category types.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *CategoryRepository) Get(ctx context.Context, id string) (types.Category, error) {
	const query = `
		SELECT id, name, description, created_at
		FROM categories
		WHERE id = $1`
	var category types.Category
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&category.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Category{}, ErrNotFound
		}
		return types.Category{}, err
	}
	return category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category types.Category) (types.Category, error) {
	category.ID = uuid.NewString()
	category.CreatedAt = time.Now().UTC()

	const query = `
		INSERT INTO categories (id, name, description, created_at)
		VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, category.ID, category.Name, category.Description, category.CreatedAt); err != nil {
		return types.Category{}, mapError(err)
	}
	return category, nil
}

func (r *CategoryRepository) Update(ctx context.Context, category types.Category) (types.Category, error) {
	const query = `
		UPDATE categories
		SET name = $1,
			description = $2
		WHERE id = $3
		RETURNING created_at`
	err := r.db.QueryRowContext(ctx, query, category.Name, category.Description, category.ID).Scan(&category.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Category{}, ErrNotFound
		}
		return types.Category{}, mapError(err)
	}
	return category, nil
}

// Delete removes a category. Terms referencing it keep existing with a
// null category; the foreign key clears the reference in the same statement.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM categories WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
