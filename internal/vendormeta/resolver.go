// Package vendormeta derives ranking priorities and display weights from
// vendor subscription plans. Plan-level derivations are cached with a TTL
// because plans change rarely; business-to-plan lookups go to the store on
// every call because subscriptions flip via billing events at any time.
package vendormeta

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"vendora/internal/metrics"
	"vendora/internal/models"
	"vendora/internal/ranking"
)

// DefaultTTL is how long a plan derivation stays cached.
const DefaultTTL = 5 * time.Minute

// PlanSource is the subset of the plan store the resolver needs.
type PlanSource interface {
	ListPlans(ctx context.Context) ([]models.Plan, error)
	ActiveSubscriptionsForBusinesses(ctx context.Context, ids []uuid.UUID) ([]models.Subscription, error)
}

// Result maps businesses to their resolved plan metadata, plus the full
// plan-id → weight map so the interleaver always has complete weight
// context even for plans absent from the current result set.
type Result struct {
	Businesses  map[uuid.UUID]ranking.VendorMeta
	PlanWeights map[string]float64
}

// derivation is one cached plan-level computation.
type derivation struct {
	priorities  map[uuid.UUID]int
	weights     map[string]float64
	refreshedAt time.Time
}

// Resolver resolves vendor metadata with a TTL-cached plan derivation.
// The clock is injectable so tests can force expiry deterministically.
type Resolver struct {
	source PlanSource
	ttl    time.Duration
	now    func() time.Time

	mu     sync.Mutex
	cached *derivation
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// WithTTL overrides the plan-derivation cache TTL.
func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) { r.ttl = ttl }
}

// New creates a Resolver over the given plan source.
func New(source PlanSource, opts ...Option) *Resolver {
	r := &Resolver{
		source: source,
		ttl:    DefaultTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns plan metadata for the given businesses, restricted to
// those with an active subscription, plus the full plan weight map. An
// empty plan table degrades to empty maps — callers fall back to equal
// weighting rather than failing the request.
func (r *Resolver) Resolve(ctx context.Context, businessIDs []uuid.UUID) (Result, error) {
	der, err := r.derive(ctx)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Businesses:  make(map[uuid.UUID]ranking.VendorMeta, len(businessIDs)),
		PlanWeights: der.weights,
	}
	if len(businessIDs) == 0 {
		return res, nil
	}

	subs, err := r.source.ActiveSubscriptionsForBusinesses(ctx, businessIDs)
	if err != nil {
		return Result{}, err
	}

	for _, sub := range subs {
		prio, ok := der.priorities[sub.PlanID]
		if !ok {
			// Subscription references a plan created after the cached
			// derivation; it resolves on the next refresh.
			continue
		}
		res.Businesses[sub.BusinessID] = ranking.VendorMeta{
			PlanID:   sub.PlanID.String(),
			Priority: prio,
			Weight:   der.weights[sub.PlanID.String()],
		}
	}
	return res, nil
}

// PlanWeights returns the plan-id → weight map, refreshing the cached
// derivation if needed. Useful for warming the cache concurrently with
// the candidate scan.
func (r *Resolver) PlanWeights(ctx context.Context) (map[string]float64, error) {
	der, err := r.derive(ctx)
	if err != nil {
		return nil, err
	}
	return der.weights, nil
}

// derive returns the cached plan derivation, recomputing it when the TTL
// has lapsed. Concurrent expiry may trigger redundant refreshes; that is
// acceptable because the derivation is cheap and idempotent.
func (r *Resolver) derive(ctx context.Context) (*derivation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if r.cached != nil && now.Sub(r.cached.refreshedAt) < r.ttl {
		return r.cached, nil
	}

	plans, err := r.source.ListPlans(ctx)
	if err != nil {
		// Serve the stale derivation if we have one; plan data is
		// slow-moving and a stale weight beats a failed request.
		if r.cached != nil {
			slog.Warn("plan derivation refresh failed, serving stale", "error", err)
			return r.cached, nil
		}
		return nil, err
	}

	r.cached = derivePlans(plans, now)
	metrics.PlanCacheRefreshes.Inc()
	slog.Debug("plan derivation refreshed", "plans", len(plans))
	return r.cached, nil
}

// derivePlans sorts plans by price descending and assigns each a priority
// (most expensive = highest integer) and a weight proportional to price,
// clamped to the shared minimum so the lowest tier stays above zero.
func derivePlans(plans []models.Plan, now time.Time) *derivation {
	der := &derivation{
		priorities:  make(map[uuid.UUID]int, len(plans)),
		weights:     make(map[string]float64, len(plans)),
		refreshedAt: now,
	}
	if len(plans) == 0 {
		return der
	}

	sorted := make([]models.Plan, len(plans))
	copy(sorted, plans)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].PriceCents != sorted[j].PriceCents {
			return sorted[i].PriceCents > sorted[j].PriceCents
		}
		return sorted[i].ID.String() < sorted[j].ID.String()
	})

	maxPrice := sorted[0].PriceCents
	for i, p := range sorted {
		der.priorities[p.ID] = len(sorted) - i

		weight := 1.0
		if maxPrice > 0 {
			weight = float64(p.PriceCents) / float64(maxPrice)
		}
		if weight < ranking.MinPlanWeight {
			weight = ranking.MinPlanWeight
		}
		der.weights[p.ID.String()] = weight
	}
	return der
}
