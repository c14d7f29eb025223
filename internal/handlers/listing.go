// Package handlers implements the HTTP layer of the listing service. The
// Listing handler group orchestrates the pipeline: taxonomy resolution,
// bounded candidate scan, vendor metadata resolution, ranking, and the
// optional explain output.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"vendora/internal/cache"
	"vendora/internal/metrics"
	"vendora/internal/models"
	"vendora/internal/ranking"
	"vendora/internal/store"
	"vendora/internal/vendormeta"
)

// CatalogRepo is the catalog read interface the listing handler consumes.
type CatalogRepo interface {
	ScanCandidates(ctx context.Context, f store.CandidateFilter) ([]models.Candidate, error)
}

// TaxonomyRepo resolves category and subcategory slugs.
type TaxonomyRepo interface {
	CategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	SubcategoryBySlug(ctx context.Context, slug string) (*models.Subcategory, error)
}

// VendorMetaSource resolves subscription metadata for businesses.
type VendorMetaSource interface {
	Resolve(ctx context.Context, businessIDs []uuid.UUID) (vendormeta.Result, error)
}

// Listing groups the product listing handlers and their dependencies.
type Listing struct {
	catalog  CatalogRepo
	taxonomy TaxonomyRepo
	vendors  VendorMetaSource

	// listingCache may be nil when Valkey is not configured.
	listingCache *cache.ListingCache

	scanLimit   int
	scanTimeout time.Duration
	now         func() time.Time
}

// NewListing creates the listing handler group. listingCache may be nil.
func NewListing(catalog CatalogRepo, taxonomy TaxonomyRepo, vendors VendorMetaSource, listingCache *cache.ListingCache) *Listing {
	return &Listing{
		catalog:      catalog,
		taxonomy:     taxonomy,
		vendors:      vendors,
		listingCache: listingCache,
		scanLimit:    ranking.DefaultScanLimit,
		scanTimeout:  5 * time.Second,
		now:          time.Now,
	}
}

// listingItem is the public JSON shape of one ranked listing entry.
type listingItem struct {
	ID                  uuid.UUID  `json:"id"`
	Title               string     `json:"title"`
	Slug                string     `json:"slug"`
	BusinessID          uuid.UUID  `json:"businessId"`
	PlanID              string     `json:"planId,omitempty"`
	CategoryID          uuid.UUID  `json:"categoryId"`
	SubcategoryID       *uuid.UUID `json:"subcategoryId,omitempty"`
	PriceCents          int        `json:"priceCents"`
	EffectivePriceCents int        `json:"effectivePriceCents"`
	OnSale              bool       `json:"onSale"`
	RatingAvg           float64    `json:"ratingAvg"`
	RatingCount         int        `json:"ratingCount"`
	CreatedAt           time.Time  `json:"createdAt"`
	Score               float64    `json:"score"`
	CapRelaxed          bool       `json:"capRelaxed,omitempty"`
}

// listingResponse is the full listing page payload.
type listingResponse struct {
	Items      []listingItem  `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
	Mix        map[string]int `json:"mix"`
	Debug      *debugPayload  `json:"debug,omitempty"`
}

// debugPayload is the explain output attached when debug is requested.
type debugPayload struct {
	RemovedAtAggregation []ranking.Rejection   `json:"removedAtAggregation"`
	RemovedByCap         []ranking.CapDrop     `json:"removedByCap"`
	NotOnPage            []ranking.OffPageItem `json:"notOnPage"`
	Timings              map[string]int64      `json:"timings"`
}

// Products serves GET /api/products: the ranked, capped, paginated listing.
func (h *Listing) Products(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	started := h.now()
	lq := parseListingQuery(r)

	// Slug resolution. Unknown slugs are a client-input condition, not a
	// server error, and must never trigger a catalog scan.
	if lq.categorySlug != "" && lq.categoryID == nil {
		cat, err := h.taxonomy.CategoryBySlug(ctx, lq.categorySlug)
		if err != nil {
			h.serverError(w, r, "resolve category slug", err)
			return
		}
		if cat == nil {
			writeJSONError(w, http.StatusNotFound, "category not found")
			metrics.ListingRequests.WithLabelValues("404").Inc()
			return
		}
		lq.categoryID = &cat.ID
	}
	if lq.subcategorySlug != "" && lq.subcategoryID == nil {
		sub, err := h.taxonomy.SubcategoryBySlug(ctx, lq.subcategorySlug)
		if err != nil {
			h.serverError(w, r, "resolve subcategory slug", err)
			return
		}
		if sub == nil {
			writeJSONError(w, http.StatusNotFound, "subcategory not found")
			metrics.ListingRequests.WithLabelValues("404").Inc()
			return
		}
		lq.subcategoryID = &sub.ID
		if lq.categoryID == nil {
			lq.categoryID = &sub.CategoryID
		}
	}

	// Malformed reference ids short-circuit to an empty page rather than
	// scanning the whole catalog.
	if lq.invalidRef {
		writeJSON(w, http.StatusOK, emptyListing(lq))
		metrics.ListingRequests.WithLabelValues("200").Inc()
		return
	}

	cacheKey := cache.ListingKey(
		idOrEmpty(lq.categoryID), idOrEmpty(lq.subcategoryID), idOrEmpty(lq.excludeID),
		lq.page, lq.pageSize, lq.maxPerVendor,
	)
	if !lq.debug && h.listingCache != nil {
		if body, ok := h.listingCache.Get(ctx, cacheKey); ok {
			metrics.ListingCacheHits.WithLabelValues("hit").Inc()
			metrics.ListingRequests.WithLabelValues("200").Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(body)
			return
		}
		metrics.ListingCacheHits.WithLabelValues("miss").Inc()
	}

	resp, err := h.buildListing(ctx, lq, started)
	if err != nil {
		h.serverError(w, r, "build listing", err)
		return
	}

	if lq.debug {
		// Explain output must never be served from or stored in a
		// shared cache.
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusOK, resp)
		metrics.ListingRequests.WithLabelValues("200").Inc()
		return
	}

	body, err := json.Marshal(resp)
	if err != nil {
		h.serverError(w, r, "encode listing", err)
		return
	}
	if h.listingCache != nil {
		h.listingCache.Set(ctx, cacheKey, body)
	}
	metrics.ListingRequests.WithLabelValues("200").Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// buildListing runs the full pipeline for one request. The candidate scan
// and the plan-derivation warmup run concurrently; everything after the
// join is synchronous over in-memory data.
func (h *Listing) buildListing(ctx context.Context, lq listingQuery, started time.Time) (*listingResponse, error) {
	scanCtx, cancel := context.WithTimeout(ctx, h.scanTimeout)
	defer cancel()

	var (
		wg         sync.WaitGroup
		candidates []models.Candidate
		scanErr    error
		warmErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		scanStart := h.now()
		candidates, scanErr = h.catalog.ScanCandidates(scanCtx, store.CandidateFilter{
			CategoryID:    lq.categoryID,
			SubcategoryID: lq.subcategoryID,
			ExcludeID:     lq.excludeID,
			ScanLimit:     h.scanLimit,
		})
		metrics.ListingStageDuration.WithLabelValues("scan").Observe(h.now().Sub(scanStart).Seconds())
	}()
	go func() {
		defer wg.Done()
		// Warm the plan derivation while the scan runs; business
		// lookups happen after the join once ids are known.
		_, warmErr = h.vendors.Resolve(ctx, nil)
	}()
	wg.Wait()

	if scanErr != nil {
		return nil, scanErr
	}
	if warmErr != nil {
		return nil, warmErr
	}
	scanDone := h.now()

	now := h.now()
	var (
		eligible   []ranking.EligibleItem
		rejections []ranking.Rejection
		bizSeen    = make(map[uuid.UUID]bool)
		bizIDs     []uuid.UUID
	)
	for _, c := range candidates {
		item, rej := ranking.EvaluateCandidate(c, now)
		if item == nil {
			if lq.debug && len(rejections) < ranking.MaxExplainResults {
				rejections = append(rejections, *rej)
			}
			continue
		}
		eligible = append(eligible, *item)
		if !bizSeen[item.BusinessID] {
			bizSeen[item.BusinessID] = true
			bizIDs = append(bizIDs, item.BusinessID)
		}
	}

	meta, err := h.vendors.Resolve(ctx, bizIDs)
	if err != nil {
		return nil, err
	}
	resolveDone := h.now()
	metrics.ListingStageDuration.WithLabelValues("resolve").Observe(resolveDone.Sub(scanDone).Seconds())

	result := ranking.BuildPage(eligible, meta.Businesses, meta.PlanWeights, ranking.Params{
		Page:         lq.page,
		PageSize:     lq.pageSize,
		MaxPerVendor: lq.maxPerVendor,
		Debug:        lq.debug,
	}, now)
	rankDone := h.now()
	metrics.ListingStageDuration.WithLabelValues("rank").Observe(rankDone.Sub(resolveDone).Seconds())

	resp := &listingResponse{
		Items:      make([]listingItem, 0, len(result.Items)),
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
		Mix:        result.Mix,
	}
	for _, it := range result.Items {
		resp.Items = append(resp.Items, toListingItem(it))
	}

	if lq.debug && result.Debug != nil {
		resp.Debug = &debugPayload{
			RemovedAtAggregation: rejections,
			RemovedByCap:         result.Debug.RemovedByCap,
			NotOnPage:            result.Debug.NotOnPage,
			Timings: map[string]int64{
				"scanMs":    scanDone.Sub(started).Milliseconds(),
				"resolveMs": resolveDone.Sub(scanDone).Milliseconds(),
				"rankMs":    rankDone.Sub(resolveDone).Milliseconds(),
				"totalMs":   rankDone.Sub(started).Milliseconds(),
			},
		}
		if resp.Debug.RemovedAtAggregation == nil {
			resp.Debug.RemovedAtAggregation = []ranking.Rejection{}
		}
	}

	return resp, nil
}

// toListingItem flattens a ranked pipeline item into its public JSON shape.
func toListingItem(it ranking.Ranked) listingItem {
	li := listingItem{
		ID:            it.ID,
		Title:         it.Title,
		Slug:          it.Slug,
		BusinessID:    it.BusinessID,
		PlanID:        it.PlanID,
		CategoryID:    it.CategoryID,
		SubcategoryID: it.SubcategoryID,
		RatingAvg:     it.RatingAvg,
		RatingCount:   it.RatingCount,
		CreatedAt:     it.CreatedAt,
		Score:         it.Score,
		CapRelaxed:    it.CapRelaxed,
	}
	if it.Offer != nil {
		li.PriceCents = it.Offer.PriceCents
		li.EffectivePriceCents = it.Offer.EffectivePriceCents
		li.OnSale = it.Offer.OnSale
	}
	return li
}

// emptyListing builds the zero-result response for short-circuited requests.
func emptyListing(lq listingQuery) *listingResponse {
	return &listingResponse{
		Items:    []listingItem{},
		Page:     lq.page,
		PageSize: lq.pageSize,
		Mix:      map[string]int{},
	}
}

// serverError logs full diagnostics and returns a generic 500. Internal
// store errors never leak into the response body.
func (h *Listing) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error("listing request failed",
		"op", op,
		"error", err,
		"query", r.URL.RawQuery,
		"path", r.URL.Path,
	)
	metrics.ListingRequests.WithLabelValues("500").Inc()
	writeJSONError(w, http.StatusInternalServerError, "internal server error")
}

// idOrEmpty renders an optional uuid for cache key construction.
func idOrEmpty(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeJSONError writes a minimal JSON error body.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
