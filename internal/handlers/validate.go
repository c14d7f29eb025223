package handlers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"vendora/internal/ranking"
)

// listingQuery holds the parsed and clamped listing request parameters.
type listingQuery struct {
	categoryID    *uuid.UUID
	subcategoryID *uuid.UUID
	excludeID     *uuid.UUID

	categorySlug    string
	subcategorySlug string

	// invalidRef is set when a supplied reference id fails to parse.
	// Such requests short-circuit to an empty page instead of scanning
	// the whole catalog.
	invalidRef bool

	page         int
	pageSize     int
	maxPerVendor int
	debug        bool
}

// parseListingQuery reads and normalizes the listing query parameters.
// Numeric parameters are clamped to policy bounds; malformed numbers fall
// back to defaults.
func parseListingQuery(r *http.Request) listingQuery {
	q := r.URL.Query()

	lq := listingQuery{
		categorySlug:    q.Get("categorySlug"),
		subcategorySlug: q.Get("subcategorySlug"),
	}

	lq.categoryID = parseOptionalID(q.Get("categoryId"), &lq.invalidRef)
	lq.subcategoryID = parseOptionalID(q.Get("subcategoryId"), &lq.invalidRef)
	lq.excludeID = parseOptionalID(q.Get("excludeProductId"), &lq.invalidRef)

	lq.page = ranking.ClampPage(atoiOr(q.Get("page"), ranking.DefaultPage))
	lq.pageSize = ranking.ClampPageSize(atoiOr(q.Get("pageSize"), ranking.DefaultPageSize))

	if raw := q.Get("maxPerVendor"); raw != "" {
		lq.maxPerVendor = ranking.ClampMaxPerVendor(atoiOr(raw, ranking.DefaultMaxPerVendor))
	} else {
		lq.maxPerVendor = ranking.DefaultMaxPerVendor
	}

	debug := q.Get("debug")
	lq.debug = debug == "1" || debug == "true"

	return lq
}

// parseOptionalID parses a uuid query value. An empty value yields nil; a
// malformed one yields nil and flags the query as invalid.
func parseOptionalID(raw string, invalid *bool) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		*invalid = true
		return nil
	}
	return &id
}

// atoiOr parses an integer, returning a fallback for empty or malformed input.
func atoiOr(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
