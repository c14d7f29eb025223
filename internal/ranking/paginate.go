package ranking

// Paginate slices one 1-based page out of the final ordered sequence.
// Pages past the end yield an empty slice, never an error.
func Paginate(seq []Ranked, page, pageSize int) []Ranked {
	start := (page - 1) * pageSize
	if start >= len(seq) {
		return nil
	}
	end := start + pageSize
	if end > len(seq) {
		end = len(seq)
	}
	return seq[start:end]
}

// TotalPages returns ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// PlanMix builds the plan-id → count histogram over one returned page,
// used for fairness telemetry.
func PlanMix(page []Ranked) map[string]int {
	mix := make(map[string]int, 4)
	for _, it := range page {
		mix[it.PlanID]++
	}
	return mix
}
