// Package ranking implements the listing pipeline: eligibility decisions,
// scoring, weighted fair interleaving across plan tiers, per-vendor capping
// with backfill, and pagination. Everything here is pure and operates on
// in-memory data already fetched by the stores.
package ranking

// Ranking policy constants, shared by weight derivation (vendormeta) and
// interleaving so the epsilon never drifts between the two.
const (
	// MinPlanWeight is the floor applied to every plan weight. It keeps
	// the lowest tier above zero in weight derivation and guarantees
	// forward progress in the deficit round-robin loop.
	MinPlanWeight = 0.01

	// Scoring term coefficients. Priority dominates: rating and recency
	// together can never overturn a one-tier plan gap.
	priorityCoeff = 1.0
	ratingCoeff   = 0.2
	recencyCoeff  = 0.1

	// DefaultAgeDays is assumed when an item has no usable creation time.
	DefaultAgeDays = 30.0
)

// Request clamps and defaults.
const (
	DefaultPage         = 1
	MaxPage             = 100000
	DefaultPageSize     = 24
	MinPageSize         = 1
	MaxPageSize         = 60
	DefaultMaxPerVendor = 3
	MaxMaxPerVendor     = 50

	// DefaultScanLimit bounds the candidate scan feeding the pipeline.
	DefaultScanLimit = 600

	// MaxExplainResults caps how many rejected candidates the explain
	// output reports.
	MaxExplainResults = 200
)

// ClampPage normalizes a 1-based page number.
func ClampPage(page int) int {
	if page < 1 {
		return DefaultPage
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

// ClampPageSize normalizes a page size, applying the default when unset.
func ClampPageSize(size int) int {
	if size == 0 {
		return DefaultPageSize
	}
	if size < MinPageSize {
		return MinPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// ClampMaxPerVendor normalizes the per-vendor cap. Zero disables capping,
// so only negative values fall back to the default.
func ClampMaxPerVendor(cap int) int {
	if cap < 0 {
		return DefaultMaxPerVendor
	}
	if cap > MaxMaxPerVendor {
		return MaxMaxPerVendor
	}
	return cap
}
