package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"vendora/internal/models"
)

// CatalogStore reads catalog items for the listing pipeline. It is strictly
// read-only: vendor CRUD happens elsewhere.
type CatalogStore struct {
	db *sql.DB
}

// NewCatalogStore creates a new CatalogStore with the given database connection.
func NewCatalogStore(db *sql.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

// CandidateFilter narrows a candidate scan. Nil ids mean "no filter".
type CandidateFilter struct {
	CategoryID    *uuid.UUID
	SubcategoryID *uuid.UUID
	ExcludeID     *uuid.UUID
	ScanLimit     int
}

// ScanCandidates returns up to ScanLimit most-recently-created catalog
// items matching the filter (newest first, id ascending on ties), each
// joined with its variants, size options, owning business, and that
// business's active subscription. Eligibility is decided over these rows
// by ranking.EvaluateCandidate so the listing and explain paths share one
// verdict.
func (s *CatalogStore) ScanCandidates(ctx context.Context, f CandidateFilter) ([]models.Candidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.business_id, p.category_id, p.subcategory_id,
		       p.title, p.slug, p.published, p.deleted,
		       p.rating_avg, p.rating_count, p.created_at, p.updated_at,
		       v.id, v.name, v.published, v.deleted, v.allow_backorder, v.position,
		       so.id, so.label, so.stock, so.price_cents, so.sale_price_cents, so.sale_ends_at, so.position,
		       b.id, b.name, b.slug, b.active,
		       sub.id, sub.plan_id, sub.status
		FROM (
			SELECT *
			FROM products
			WHERE ($1::uuid IS NULL OR category_id = $1)
			  AND ($2::uuid IS NULL OR subcategory_id = $2)
			  AND ($3::uuid IS NULL OR id <> $3)
			ORDER BY created_at DESC, id ASC
			LIMIT $4
		) p
		LEFT JOIN variants v ON v.product_id = p.id
		LEFT JOIN size_options so ON so.variant_id = v.id
		LEFT JOIN businesses b ON b.id = p.business_id
		LEFT JOIN subscriptions sub ON sub.business_id = b.id AND sub.status = 'active'
		ORDER BY p.created_at DESC, p.id ASC, v.position ASC, so.position ASC
	`, f.CategoryID, f.SubcategoryID, f.ExcludeID, f.ScanLimit)
	if err != nil {
		return nil, fmt.Errorf("scan candidates: %w", err)
	}
	defer rows.Close()

	candidates, err := groupCandidateRows(rows)
	if err != nil {
		return nil, err
	}
	return candidates, rows.Err()
}

// groupCandidateRows folds the flat join rows back into nested candidates,
// preserving the scan order of products and the stored order of variants
// and sizes.
func groupCandidateRows(rows *sql.Rows) ([]models.Candidate, error) {
	var out []models.Candidate
	itemIdx := make(map[uuid.UUID]int)
	variantIdx := make(map[uuid.UUID]map[uuid.UUID]int)
	seenSize := make(map[uuid.UUID]bool)

	for rows.Next() {
		var item models.CatalogItem
		var subcatID uuid.NullUUID

		var vID uuid.NullUUID
		var vName sql.NullString
		var vPublished, vDeleted, vBackorder sql.NullBool
		var vPosition sql.NullInt64

		var soID uuid.NullUUID
		var soLabel sql.NullString
		var soStock, soPrice, soSalePrice sql.NullInt64
		var soSaleEnds sql.NullTime
		var soPosition sql.NullInt64

		var bID uuid.NullUUID
		var bName, bSlug sql.NullString
		var bActive sql.NullBool

		var subID, subPlanID uuid.NullUUID
		var subStatus sql.NullString

		if err := rows.Scan(
			&item.ID, &item.BusinessID, &item.CategoryID, &subcatID,
			&item.Title, &item.Slug, &item.Published, &item.Deleted,
			&item.RatingAvg, &item.RatingCount, &item.CreatedAt, &item.UpdatedAt,
			&vID, &vName, &vPublished, &vDeleted, &vBackorder, &vPosition,
			&soID, &soLabel, &soStock, &soPrice, &soSalePrice, &soSaleEnds, &soPosition,
			&bID, &bName, &bSlug, &bActive,
			&subID, &subPlanID, &subStatus,
		); err != nil {
			return nil, fmt.Errorf("scan candidate row: %w", err)
		}

		idx, ok := itemIdx[item.ID]
		if !ok {
			if subcatID.Valid {
				id := subcatID.UUID
				item.SubcategoryID = &id
			}
			cand := models.Candidate{Item: item}
			if bID.Valid {
				biz := &models.Business{
					ID:     bID.UUID,
					Name:   bName.String,
					Slug:   bSlug.String,
					Active: bActive.Bool,
				}
				if subID.Valid {
					biz.Subscription = &models.Subscription{
						ID:         subID.UUID,
						BusinessID: bID.UUID,
						PlanID:     subPlanID.UUID,
						Status:     models.SubscriptionStatus(subStatus.String),
					}
				}
				cand.Business = biz
			}
			out = append(out, cand)
			idx = len(out) - 1
			itemIdx[item.ID] = idx
			variantIdx[item.ID] = make(map[uuid.UUID]int)
		}

		if !vID.Valid {
			continue
		}
		vIdx, ok := variantIdx[item.ID][vID.UUID]
		if !ok {
			out[idx].Item.Variants = append(out[idx].Item.Variants, models.Variant{
				ID:             vID.UUID,
				ItemID:         item.ID,
				Name:           vName.String,
				Published:      vPublished.Bool,
				Deleted:        vDeleted.Bool,
				AllowBackorder: vBackorder.Bool,
				Position:       int(vPosition.Int64),
			})
			vIdx = len(out[idx].Item.Variants) - 1
			variantIdx[item.ID][vID.UUID] = vIdx
		}

		if !soID.Valid || seenSize[soID.UUID] {
			continue
		}
		seenSize[soID.UUID] = true
		size := models.SizeOption{
			ID:         soID.UUID,
			VariantID:  vID.UUID,
			Label:      soLabel.String,
			Stock:      int(soStock.Int64),
			PriceCents: int(soPrice.Int64),
			Position:   int(soPosition.Int64),
		}
		if soSalePrice.Valid {
			sp := int(soSalePrice.Int64)
			size.SalePriceCents = &sp
		}
		if soSaleEnds.Valid {
			t := soSaleEnds.Time.UTC()
			size.SaleEndsAt = &t
		}
		v := &out[idx].Item.Variants[vIdx]
		v.Sizes = append(v.Sizes, size)
	}

	return out, nil
}

// CountProducts returns the total number of products. Used by the seed
// and operational tooling paths.
func (s *CatalogStore) CountProducts(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}
