package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus represents the billing state of a vendor subscription.
// Only active subscriptions count toward listing eligibility; every other
// state is reported by the billing provider and treated as inactive here.
type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

// Plan is a vendor subscription tier. Ranking priority and display weight
// are derived from PriceCents relative to the other plans, never stored.
type Plan struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	PriceCents int       `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Subscription links a business to its current plan. Status transitions
// are driven by billing webhooks (out of scope); this service only reads.
type Subscription struct {
	ID         uuid.UUID          `json:"id"`
	BusinessID uuid.UUID          `json:"business_id"`
	PlanID     uuid.UUID          `json:"plan_id"`
	Status     SubscriptionStatus `json:"status"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// IsActive returns true if the subscription is in active status.
func (s *Subscription) IsActive() bool {
	return s != nil && s.Status == SubscriptionStatusActive
}

// Business is a vendor account that owns catalog items.
type Business struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Virtual field populated by candidate scans: the business's active
	// subscription, or nil when none exists.
	Subscription *Subscription `json:"subscription,omitempty"`
}
