package postgres

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
)

type categoryRepository struct {
	db DB
}

func NewCategoryRepository(db DB) interfaces.CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO categories (slug, title) VALUES ($1, $2) RETURNING id`,
		category.Slug, category.Title,
	).Scan(&category.ID)
	if err != nil {
		return mapError(err, fmt.Sprintf("category slug %q", category.Slug))
	}
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.db.QueryRow(ctx, `SELECT id, slug, title FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Slug, &c.Title)
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("category %d", id))
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, slug, title FROM categories ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Slug, &c.Title); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE categories SET slug = $1, title = $2 WHERE id = $3`,
		category.Slug, category.Title, category.ID,
	)
	if err != nil {
		return mapError(err, fmt.Sprintf("category slug %q", category.Slug))
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("category %d", category.ID)
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return domain.Conflictf("category %d still has menu items", id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("category %d", id)
	}
	return nil
}
