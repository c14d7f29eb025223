package ranking

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeTierFixture builds the canonical mixed-tier catalog: three plans,
// two businesses per plan, four items per business.
type threeTierFixture struct {
	items   []EligibleItem
	vendors map[uuid.UUID]VendorMeta
	weights map[string]float64
	plans   map[uuid.UUID]string // business -> plan id
}

func newThreeTierFixture() threeTierFixture {
	f := threeTierFixture{
		vendors: map[uuid.UUID]VendorMeta{},
		weights: map[string]float64{"premium": 1.0, "growth": 0.2, "starter": 0.01},
		plans:   map[uuid.UUID]string{},
	}
	priorities := map[string]int{"premium": 3, "growth": 2, "starter": 1}

	seq := 0
	for _, plan := range []string{"premium", "growth", "starter"} {
		for b := 0; b < 2; b++ {
			biz := uuid.New()
			f.vendors[biz] = VendorMeta{
				PlanID:   plan,
				Priority: priorities[plan],
				Weight:   f.weights[plan],
			}
			f.plans[biz] = plan
			for i := 0; i < 4; i++ {
				seq++
				f.items = append(f.items, EligibleItem{
					ID:         uuid.New(),
					BusinessID: biz,
					Slug:       fmt.Sprintf("%s-%d-%d", plan, b, i),
					CreatedAt:  testNow.Add(-time.Duration(seq) * time.Hour),
					Offer:      &Offer{PriceCents: 1000, EffectivePriceCents: 1000},
				})
			}
		}
	}
	return f
}

func TestBuildPageMixedTiers(t *testing.T) {
	f := newThreeTierFixture()
	p := Params{Page: 1, PageSize: 6, MaxPerVendor: 2}

	res := BuildPage(f.items, f.vendors, f.weights, p, testNow)

	require.Len(t, res.Items, 6)
	// Six vendors with four items each under a cap of two: twelve items
	// survive, the rest wait as overflow for deeper pages.
	assert.Equal(t, 12, res.Total)
	assert.Equal(t, 2, res.TotalPages)

	// Premium leads the page but lower tiers still surface: the premium
	// weight is 5x growth and 100x starter, so over 6 slots premium takes
	// most but not all of them.
	assert.GreaterOrEqual(t, res.Mix["premium"], 4)
	assert.Less(t, res.Mix["premium"], 6)
	assert.Positive(t, res.Mix["growth"])

	// The soft cap holds on the first page.
	perVendor := map[uuid.UUID]int{}
	for _, it := range res.Items {
		perVendor[it.BusinessID]++
		assert.False(t, it.CapRelaxed)
	}
	for biz, n := range perVendor {
		assert.LessOrEqual(t, n, 2, "business %s over cap", biz)
	}
}

func TestBuildPageAllPagesCoverEveryItem(t *testing.T) {
	f := newThreeTierFixture()

	seen := map[uuid.UUID]int{}
	for page := 1; page <= 4; page++ {
		res := BuildPage(f.items, f.vendors, f.weights, Params{Page: page, PageSize: 6, MaxPerVendor: 2}, testNow)
		for _, it := range res.Items {
			seen[it.ID]++
		}
	}

	assert.Len(t, seen, 24)
	for id, n := range seen {
		assert.Equal(t, 1, n, "item %s served %d times", id, n)
	}
}

func TestBuildPageUnresolvedVendorRanksLast(t *testing.T) {
	f := newThreeTierFixture()

	orphanBiz := uuid.New()
	orphan := EligibleItem{
		ID:          uuid.New(),
		BusinessID:  orphanBiz,
		Slug:        "orphan",
		RatingAvg:   5.0,
		RatingCount: 500,
		CreatedAt:   testNow,
		Offer:       &Offer{PriceCents: 100, EffectivePriceCents: 100},
	}
	items := append(append([]EligibleItem{}, f.items...), orphan)

	res := BuildPage(items, f.vendors, f.weights, Params{Page: 1, PageSize: 60, MaxPerVendor: 0}, testNow)

	require.Len(t, res.Items, 25)
	assert.Equal(t, "orphan", res.Items[24].Slug,
		"item with no resolved plan takes priority 0 and sinks below every tier")
	assert.Equal(t, 1, res.Mix[""])
}

func TestBuildPageDropsOfferlessItems(t *testing.T) {
	f := newThreeTierFixture()
	f.items[0].Offer = nil

	res := BuildPage(f.items, f.vendors, f.weights, Params{Page: 1, PageSize: 60, MaxPerVendor: 0}, testNow)
	assert.Equal(t, 23, res.Total)
}

func TestBuildPageDebugAccountsForEveryItem(t *testing.T) {
	f := newThreeTierFixture()
	p := Params{Page: 1, PageSize: 6, MaxPerVendor: 2, Debug: true}

	res := BuildPage(f.items, f.vendors, f.weights, p, testNow)

	require.NotNil(t, res.Debug)
	// On page + off page + cap-dropped must account for every eligible item.
	assert.Equal(t, 24, len(res.Items)+len(res.Debug.NotOnPage)+len(res.Debug.RemovedByCap))
	for _, d := range res.Debug.RemovedByCap {
		assert.Equal(t, ReasonPerVendorCap, d.Reason)
	}
	for _, off := range res.Debug.NotOnPage {
		assert.GreaterOrEqual(t, off.Position, 6)
	}

	plain := BuildPage(f.items, f.vendors, f.weights, Params{Page: 1, PageSize: 6, MaxPerVendor: 2}, testNow)
	assert.Nil(t, plain.Debug)
	require.Len(t, plain.Items, len(res.Items))
	for i := range plain.Items {
		assert.Equal(t, plain.Items[i].ID, res.Items[i].ID,
			"debug mode must not change the served page")
	}
}
