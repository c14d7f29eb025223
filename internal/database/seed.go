package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"vendora/internal/slug"
)

// Seed populates the database with development data: three subscription
// tiers, two vendors per tier, a small taxonomy, and a spread of products
// with variants and size options. No-op when plans already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM plans").Scan(&count); err != nil {
		return fmt.Errorf("seed check plans: %w", err)
	}
	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	planIDs := make([]string, 0, 3)
	for _, p := range []struct {
		name  string
		price int
	}{
		{"Starter", 0},
		{"Growth", 1000},
		{"Premium", 5000},
	} {
		var id string
		err := tx.QueryRow(`
			INSERT INTO plans (name, slug, price_cents) VALUES ($1, $2, $3) RETURNING id
		`, p.name, slug.Generate(p.name), p.price).Scan(&id)
		if err != nil {
			return fmt.Errorf("seed plan %s: %w", p.name, err)
		}
		planIDs = append(planIDs, id)
	}

	var categoryID, subcategoryID string
	if err := tx.QueryRow(`
		INSERT INTO categories (name, slug, sort_order) VALUES ('Food', 'food', 1) RETURNING id
	`).Scan(&categoryID); err != nil {
		return fmt.Errorf("seed category: %w", err)
	}
	if err := tx.QueryRow(`
		INSERT INTO subcategories (category_id, name, slug, sort_order)
		VALUES ($1, 'Baked Goods', 'baked-goods', 1) RETURNING id
	`, categoryID).Scan(&subcategoryID); err != nil {
		return fmt.Errorf("seed subcategory: %w", err)
	}

	for bi := 0; bi < 6; bi++ {
		name := fmt.Sprintf("Demo Vendor %d", bi+1)
		var bizID string
		if err := tx.QueryRow(`
			INSERT INTO businesses (name, slug, active) VALUES ($1, $2, TRUE) RETURNING id
		`, name, slug.Generate(name)).Scan(&bizID); err != nil {
			return fmt.Errorf("seed business: %w", err)
		}

		// Two businesses per plan tier.
		if _, err := tx.Exec(`
			INSERT INTO subscriptions (business_id, plan_id, status) VALUES ($1, $2, 'active')
		`, bizID, planIDs[bi/2]); err != nil {
			return fmt.Errorf("seed subscription: %w", err)
		}

		for pi := 0; pi < 4; pi++ {
			title := fmt.Sprintf("%s Item %d", name, pi+1)
			var productID string
			if err := tx.QueryRow(`
				INSERT INTO products (business_id, category_id, subcategory_id, title, slug,
				                      published, rating_avg, rating_count)
				VALUES ($1, $2, $3, $4, $5, TRUE, 4.2, 12)
				RETURNING id
			`, bizID, categoryID, subcategoryID, title, slug.Generate(title)).Scan(&productID); err != nil {
				return fmt.Errorf("seed product: %w", err)
			}

			var variantID string
			if err := tx.QueryRow(`
				INSERT INTO variants (product_id, name, published, position)
				VALUES ($1, 'Default', TRUE, 0) RETURNING id
			`, productID).Scan(&variantID); err != nil {
				return fmt.Errorf("seed variant: %w", err)
			}
			if _, err := tx.Exec(`
				INSERT INTO size_options (variant_id, label, stock, price_cents, position)
				VALUES ($1, 'Regular', 10, 1999, 0)
			`, variantID); err != nil {
				return fmt.Errorf("seed size option: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo marketplace data",
		"plans", 3,
		"businesses", 6,
		"products", 24,
	)
	return nil
}
