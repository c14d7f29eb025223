package models

import (
	"time"

	"github.com/google/uuid"
)

// SizeOption is a purchasable size/stock entry under a variant. The sale
// price only applies while SaleEndsAt is set and strictly in the future.
type SizeOption struct {
	ID             uuid.UUID  `json:"id"`
	VariantID      uuid.UUID  `json:"variant_id"`
	Label          string     `json:"label"`
	Stock          int        `json:"stock"`
	PriceCents     int        `json:"price_cents"`
	SalePriceCents *int       `json:"sale_price_cents,omitempty"`
	SaleEndsAt     *time.Time `json:"sale_ends_at,omitempty"`
	Position       int        `json:"position"`
}

// Variant is a sellable variation of a catalog item (colour, flavour, ...).
type Variant struct {
	ID             uuid.UUID    `json:"id"`
	ItemID         uuid.UUID    `json:"item_id"`
	Name           string       `json:"name"`
	Published      bool         `json:"published"`
	Deleted        bool         `json:"deleted"`
	AllowBackorder bool         `json:"allow_backorder"`
	Position       int          `json:"position"`
	Sizes          []SizeOption `json:"sizes,omitempty"`
}

// CatalogItem is a vendor product listing. RatingAvg/RatingCount are
// aggregates maintained by the review pipeline and merely read here.
type CatalogItem struct {
	ID            uuid.UUID  `json:"id"`
	BusinessID    uuid.UUID  `json:"business_id"`
	CategoryID    uuid.UUID  `json:"category_id"`
	SubcategoryID *uuid.UUID `json:"subcategory_id,omitempty"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Published     bool       `json:"published"`
	Deleted       bool       `json:"deleted"`
	RatingAvg     float64    `json:"rating_avg"`
	RatingCount   int        `json:"rating_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Variants      []Variant  `json:"variants,omitempty"`
}

// Candidate is one row of a bounded catalog scan: a catalog item joined
// with its owning business and that business's active subscription. The
// eligibility decision over a candidate happens in the ranking package so
// listing and explain paths share one verdict.
type Candidate struct {
	Item     CatalogItem
	Business *Business
}
