package database

import (
	"testing"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed creates data only when the plan table is empty; calling it
	// twice must not duplicate anything.
	if err := Seed(db); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var planCount int
	if err := db.QueryRow("SELECT COUNT(*) FROM plans").Scan(&planCount); err != nil {
		t.Fatalf("count plans: %v", err)
	}
	if planCount != 3 {
		t.Errorf("expected 3 plans, got %d", planCount)
	}

	// Every seeded business carries an active subscription.
	var missing int
	if err := db.QueryRow(`
		SELECT COUNT(*) FROM businesses b
		WHERE NOT EXISTS (
			SELECT 1 FROM subscriptions s
			WHERE s.business_id = b.id AND s.status = 'active'
		)
	`).Scan(&missing); err != nil {
		t.Fatalf("count unsubscribed businesses: %v", err)
	}
	if missing != 0 {
		t.Errorf("expected every business subscribed, %d missing", missing)
	}
}
