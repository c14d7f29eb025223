package store

import (
	"context"
	"database/sql"
	"fmt"

	"vendora/internal/models"
)

// TaxonomyStore maps category and subcategory slugs to their identities
// and serves the public taxonomy listing.
type TaxonomyStore struct {
	db *sql.DB
}

// NewTaxonomyStore creates a new TaxonomyStore with the given database connection.
func NewTaxonomyStore(db *sql.DB) *TaxonomyStore {
	return &TaxonomyStore{db: db}
}

// CategoryBySlug retrieves a category by its slug. Returns nil if not found.
func (s *TaxonomyStore) CategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	c := &models.Category{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, slug, sort_order, created_at, updated_at
		FROM categories WHERE slug = $1
	`, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// SubcategoryBySlug retrieves a subcategory by its slug. Returns nil if not found.
func (s *TaxonomyStore) SubcategoryBySlug(ctx context.Context, slug string) (*models.Subcategory, error) {
	sc := &models.Subcategory{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, category_id, name, slug, sort_order, created_at, updated_at
		FROM subcategories WHERE slug = $1
	`, slug).Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.Slug, &sc.SortOrder, &sc.CreatedAt, &sc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find subcategory by slug: %w", err)
	}
	return sc, nil
}

// List returns all categories ordered by sort order, each with its
// subcategories attached.
func (s *TaxonomyStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, slug, sort_order, created_at, updated_at
		FROM categories
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	idx := make(map[string]int)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		cats = append(cats, c)
		idx[c.ID.String()] = len(cats) - 1
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subRows, err := s.db.QueryContext(ctx, `
		SELECT id, category_id, name, slug, sort_order, created_at, updated_at
		FROM subcategories
		ORDER BY sort_order, name
	`)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer subRows.Close()

	for subRows.Next() {
		var sc models.Subcategory
		if err := subRows.Scan(&sc.ID, &sc.CategoryID, &sc.Name, &sc.Slug, &sc.SortOrder, &sc.CreatedAt, &sc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		if i, ok := idx[sc.CategoryID.String()]; ok {
			cats[i].Subcategories = append(cats[i].Subcategories, sc)
		}
	}
	return cats, subRows.Err()
}
