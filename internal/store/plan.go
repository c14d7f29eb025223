package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"vendora/internal/models"
)

// subscriptionChunkSize bounds each IN query so a large business set never
// produces an unbounded parameter list.
const subscriptionChunkSize = 200

// PlanStore reads subscription plans and active subscriptions. Plan and
// subscription writes happen through billing webhooks, outside this service.
type PlanStore struct {
	db *sql.DB
}

// NewPlanStore creates a new PlanStore with the given database connection.
func NewPlanStore(db *sql.DB) *PlanStore {
	return &PlanStore{db: db}
}

// ListPlans returns every plan, ordered by price descending.
func (s *PlanStore) ListPlans(ctx context.Context) ([]models.Plan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, slug, price_cents, created_at, updated_at
		FROM plans
		ORDER BY price_cents DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.PriceCents, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// ActiveSubscriptionsForBusinesses returns the active subscription for
// each of the given businesses that has one. Lookups run in bounded
// chunks; results across chunks are concatenated.
func (s *PlanStore) ActiveSubscriptionsForBusinesses(ctx context.Context, ids []uuid.UUID) ([]models.Subscription, error) {
	var subs []models.Subscription
	for start := 0; start < len(ids); start += subscriptionChunkSize {
		end := start + subscriptionChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk, err := s.activeSubscriptionsChunk(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}
		subs = append(subs, chunk...)
	}
	return subs, nil
}

func (s *PlanStore) activeSubscriptionsChunk(ctx context.Context, ids []uuid.UUID) ([]models.Subscription, error) {
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}

	query := `
		SELECT id, business_id, plan_id, status, created_at, updated_at
		FROM subscriptions
		WHERE status = 'active' AND business_id IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("active subscriptions chunk: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(&sub.ID, &sub.BusinessID, &sub.PlanID, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
