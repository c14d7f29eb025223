package ranking

import "sort"

// Interleave merges per-plan buckets (each already sorted best-first) into
// one ordered sequence using weighted deficit round robin. Intra-bucket
// order is preserved; across buckets, higher-weight plans surface
// proportionally more often, especially early in the output.
//
// Weights are normalized to the supplied map; plans with zero or missing
// weight are clamped to MinPlanWeight so every bucket makes forward
// progress. If every weight is zero or absent, all buckets are treated as
// equal. limit <= 0 means no limit. The output is exactly reproducible for
// identical inputs: plan ids are visited in sorted order each round.
func Interleave(buckets map[string][]Ranked, weights map[string]float64, limit int) []Ranked {
	planIDs := make([]string, 0, len(buckets))
	total := 0
	for id, b := range buckets {
		if len(b) == 0 {
			continue
		}
		planIDs = append(planIDs, id)
		total += len(b)
	}
	if total == 0 {
		return nil
	}
	sort.Strings(planIDs)

	if limit <= 0 || limit > total {
		limit = total
	}

	w := make(map[string]float64, len(planIDs))
	anyPositive := false
	for _, id := range planIDs {
		if weights[id] > 0 {
			anyPositive = true
		}
	}
	for _, id := range planIDs {
		if !anyPositive {
			w[id] = 1
			continue
		}
		wt := weights[id]
		if wt < MinPlanWeight {
			wt = MinPlanWeight
		}
		w[id] = wt
	}

	heads := make(map[string]int, len(planIDs))
	credit := make(map[string]float64, len(planIDs))
	out := make([]Ranked, 0, limit)

	// A round that emits nothing still accumulates credit, so the loop
	// only stops on exhaustion or the limit. The step ceiling guards
	// against a pathological no-progress loop; with the epsilon clamp a
	// bucket earns a full credit within 1/MinPlanWeight rounds, so the
	// ceiling is generous enough to never trigger on valid input.
	maxRounds := int(float64(limit)/MinPlanWeight) + len(planIDs) + 1
	for round := 0; round < maxRounds && len(out) < limit; round++ {
		exhausted := true
		for _, id := range planIDs {
			if heads[id] >= len(buckets[id]) {
				continue
			}
			exhausted = false
			credit[id] += w[id]
			for credit[id] >= 1 && heads[id] < len(buckets[id]) && len(out) < limit {
				out = append(out, buckets[id][heads[id]])
				heads[id]++
				credit[id]--
			}
		}
		if exhausted {
			break
		}
	}

	return out
}
