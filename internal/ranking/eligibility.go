package ranking

import (
	"time"

	"github.com/google/uuid"

	"vendora/internal/models"
)

// Reason identifies why a candidate (or one of its variants) was rejected
// during eligibility evaluation.
type Reason string

const (
	ReasonProductUnpublished        Reason = "product_unpublished"
	ReasonProductDeleted            Reason = "product_deleted"
	ReasonNoEligibleVariants        Reason = "no_eligible_variants"
	ReasonVariantUnpublished        Reason = "variant_unpublished"
	ReasonVariantDeleted            Reason = "variant_deleted"
	ReasonVariantNoInventory        Reason = "variant_no_inventory_and_no_backorder"
	ReasonBusinessInactiveOrMissing Reason = "business_inactive_or_missing"
	ReasonNoActiveSubscription      Reason = "no_active_subscription"
	ReasonPerVendorCap              Reason = "per_vendor_cap"
)

// Offer is the first eligible variant/size pairing of an item, in stored
// order, with the sale-aware effective price resolved.
type Offer struct {
	VariantID           uuid.UUID `json:"variant_id"`
	SizeID              uuid.UUID `json:"size_id"`
	PriceCents          int       `json:"price_cents"`
	EffectivePriceCents int       `json:"effective_price_cents"`
	OnSale              bool      `json:"on_sale"`
}

// EligibleItem is the fully-normalized projection of a catalog item that
// passed every eligibility check. All numeric fields are resolved here so
// scoring and interleaving never see nil or missing values.
type EligibleItem struct {
	ID            uuid.UUID  `json:"id"`
	BusinessID    uuid.UUID  `json:"business_id"`
	CategoryID    uuid.UUID  `json:"category_id"`
	SubcategoryID *uuid.UUID `json:"subcategory_id,omitempty"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	RatingAvg     float64    `json:"rating_avg"`
	RatingCount   int        `json:"rating_count"`
	CreatedAt     time.Time  `json:"created_at"`

	// Offer is nil in the rare case no eligible variant yields a
	// displayable price; such items are dropped before bucketing.
	Offer *Offer `json:"offer,omitempty"`
}

// VariantVerdict reports why a single variant was rejected.
type VariantVerdict struct {
	VariantID uuid.UUID `json:"variant_id"`
	Reasons   []Reason  `json:"reasons"`
}

// Rejection reports every reason a candidate failed eligibility.
type Rejection struct {
	ProductID  uuid.UUID        `json:"product_id"`
	BusinessID uuid.UUID        `json:"business_id"`
	Reasons    []Reason         `json:"reasons"`
	Variants   []VariantVerdict `json:"variants,omitempty"`
}

// EvaluateCandidate applies the eligibility invariants to one scanned
// candidate. It returns either the eligible projection or the full set of
// rejection reasons — both the listing and the explain path go through
// this single function so their verdicts can never diverge.
func EvaluateCandidate(c models.Candidate, now time.Time) (*EligibleItem, *Rejection) {
	rej := &Rejection{ProductID: c.Item.ID}
	if c.Business != nil {
		rej.BusinessID = c.Business.ID
	}

	if !c.Item.Published {
		rej.Reasons = append(rej.Reasons, ReasonProductUnpublished)
	}
	if c.Item.Deleted {
		rej.Reasons = append(rej.Reasons, ReasonProductDeleted)
	}

	eligible, verdicts := eligibleVariants(c.Item.Variants)
	if len(eligible) == 0 {
		rej.Reasons = append(rej.Reasons, ReasonNoEligibleVariants)
		rej.Variants = verdicts
	}

	if c.Business == nil || !c.Business.Active {
		rej.Reasons = append(rej.Reasons, ReasonBusinessInactiveOrMissing)
	} else if !c.Business.Subscription.IsActive() {
		rej.Reasons = append(rej.Reasons, ReasonNoActiveSubscription)
	}

	if len(rej.Reasons) > 0 {
		return nil, rej
	}

	return &EligibleItem{
		ID:            c.Item.ID,
		BusinessID:    c.Business.ID,
		CategoryID:    c.Item.CategoryID,
		SubcategoryID: c.Item.SubcategoryID,
		Title:         c.Item.Title,
		Slug:          c.Item.Slug,
		RatingAvg:     c.Item.RatingAvg,
		RatingCount:   c.Item.RatingCount,
		CreatedAt:     c.Item.CreatedAt,
		Offer:         firstOffer(eligible, now),
	}, nil
}

// eligibleVariants splits variants into the eligible subset and per-variant
// rejection verdicts for the rest.
func eligibleVariants(variants []models.Variant) ([]models.Variant, []VariantVerdict) {
	var kept []models.Variant
	var verdicts []VariantVerdict
	for _, v := range variants {
		var reasons []Reason
		if !v.Published {
			reasons = append(reasons, ReasonVariantUnpublished)
		}
		if v.Deleted {
			reasons = append(reasons, ReasonVariantDeleted)
		}
		if firstEligibleSize(v) == nil {
			reasons = append(reasons, ReasonVariantNoInventory)
		}
		if len(reasons) > 0 {
			verdicts = append(verdicts, VariantVerdict{VariantID: v.ID, Reasons: reasons})
			continue
		}
		kept = append(kept, v)
	}
	return kept, verdicts
}

// firstEligibleSize returns the first size option, in stored order, with
// stock or backorder allowance. Nil when the variant has none.
func firstEligibleSize(v models.Variant) *models.SizeOption {
	for i := range v.Sizes {
		if v.Sizes[i].Stock > 0 || v.AllowBackorder {
			return &v.Sizes[i]
		}
	}
	return nil
}

// firstOffer builds the first-eligible projection from the eligible
// variants, in stored order. It tolerates a variant whose first eligible
// size has gone missing and moves on to the next variant.
func firstOffer(variants []models.Variant, now time.Time) *Offer {
	for _, v := range variants {
		size := firstEligibleSize(v)
		if size == nil {
			continue
		}
		effective, onSale := effectivePrice(size, now)
		return &Offer{
			VariantID:           v.ID,
			SizeID:              size.ID,
			PriceCents:          size.PriceCents,
			EffectivePriceCents: effective,
			OnSale:              onSale,
		}
	}
	return nil
}

// effectivePrice resolves the displayable price for a size option. The
// sale price applies only while the sale expiry is set and strictly in
// the future.
func effectivePrice(size *models.SizeOption, now time.Time) (int, bool) {
	if size.SalePriceCents != nil && size.SaleEndsAt != nil && size.SaleEndsAt.After(now) {
		return *size.SalePriceCents, true
	}
	return size.PriceCents, false
}
