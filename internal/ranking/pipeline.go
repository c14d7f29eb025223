package ranking

import (
	"time"

	"github.com/google/uuid"
)

// VendorMeta is the resolved subscription metadata for one business.
type VendorMeta struct {
	PlanID   string
	Priority int
	Weight   float64
}

// Params are the normalized listing request parameters.
type Params struct {
	Page         int
	PageSize     int
	MaxPerVendor int
	Debug        bool
}

// CapDrop identifies an item removed purely by the per-vendor cap.
type CapDrop struct {
	ProductID  uuid.UUID `json:"product_id"`
	BusinessID uuid.UUID `json:"business_id"`
	Reason     Reason    `json:"reason"`
}

// OffPageItem identifies a ranked item that fell outside the requested page.
type OffPageItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Position  int       `json:"position"`
}

// PageDebug is the pipeline-level debug payload (cap and page stages; the
// aggregation stage is reported by the caller from the eligibility pass).
type PageDebug struct {
	RemovedByCap []CapDrop     `json:"removed_by_cap"`
	NotOnPage    []OffPageItem `json:"not_on_page"`
}

// PageResult is one assembled listing page plus its telemetry.
type PageResult struct {
	Items      []Ranked
	Total      int
	Page       int
	PageSize   int
	TotalPages int
	Mix        map[string]int
	Debug      *PageDebug
}

// BuildPage runs the in-memory half of the pipeline: bucket eligible items
// by plan, score and sort each bucket, interleave by weight, apply the
// per-vendor cap with backfill, and slice out the requested page. Items
// without a displayable offer are dropped here. vendors may be missing
// entries for businesses whose subscription lapsed between the scan and
// the resolve; those items rank with priority 0 in a shared bucket.
func BuildPage(items []EligibleItem, vendors map[uuid.UUID]VendorMeta, planWeights map[string]float64, p Params, now time.Time) PageResult {
	buckets := make(map[string][]Ranked)
	for _, it := range items {
		if it.Offer == nil {
			continue
		}
		meta := vendors[it.BusinessID]
		r := Ranked{
			EligibleItem: it,
			PlanID:       meta.PlanID,
			Priority:     meta.Priority,
		}
		r.Score = Score(it, meta.Priority, now)
		buckets[r.PlanID] = append(buckets[r.PlanID], r)
	}
	for id := range buckets {
		SortBucket(buckets[id])
	}

	merged := Interleave(buckets, planWeights, 0)

	needed := p.Page * p.PageSize
	capped := ApplyVendorCap(merged, p.MaxPerVendor, needed)

	page := Paginate(capped.Items, p.Page, p.PageSize)

	res := PageResult{
		Items:      page,
		Total:      len(capped.Items),
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: TotalPages(len(capped.Items), p.PageSize),
		Mix:        PlanMix(page),
	}

	if p.Debug {
		dbg := &PageDebug{
			RemovedByCap: make([]CapDrop, 0, len(capped.Dropped)),
			NotOnPage:    make([]OffPageItem, 0),
		}
		for _, it := range capped.Dropped {
			dbg.RemovedByCap = append(dbg.RemovedByCap, CapDrop{
				ProductID:  it.ID,
				BusinessID: it.BusinessID,
				Reason:     ReasonPerVendorCap,
			})
		}
		start := (p.Page - 1) * p.PageSize
		for i, it := range capped.Items {
			if i >= start && i < start+p.PageSize {
				continue
			}
			dbg.NotOnPage = append(dbg.NotOnPage, OffPageItem{ProductID: it.ID, Position: i})
		}
		res.Debug = dbg
	}

	return res
}
