package ranking

import (
	"math"
	"sort"
	"time"
)

// Score computes the ranking score for an eligible item:
//
//	1.0*priority + 0.2*(ratingAvg*log10(1+ratingCount)) + 0.1*(1/log2(2+ageDays))
//
// Priority is the integer plan tier (0 when the vendor is unresolvable);
// it dominates, so rating and recency only break ties within a tier.
func Score(item EligibleItem, priority int, now time.Time) float64 {
	ageDays := DefaultAgeDays
	if !item.CreatedAt.IsZero() {
		ageDays = now.Sub(item.CreatedAt).Hours() / 24
		if ageDays < 1 {
			ageDays = 1
		}
	}

	ratingTerm := item.RatingAvg * math.Log10(1+float64(item.RatingCount))
	recencyTerm := 1 / math.Log2(2+ageDays)

	return priorityCoeff*float64(priority) + ratingCoeff*ratingTerm + recencyCoeff*recencyTerm
}

// Ranked is an eligible item annotated with its plan bucket and score as
// it moves through the pipeline.
type Ranked struct {
	EligibleItem
	PlanID     string  `json:"plan_id,omitempty"`
	Priority   int     `json:"-"`
	Score      float64 `json:"score"`
	CapRelaxed bool    `json:"cap_relaxed,omitempty"`
}

// SortBucket orders a plan bucket best-first: score descending, then
// creation time descending, then item id ascending. The id tie-break makes
// the order a strict total order — no two distinct items compare equal.
func SortBucket(items []Ranked) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.After(items[j].CreatedAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
}
