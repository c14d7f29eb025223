package ranking

// CapResult is the outcome of applying the per-vendor soft cap.
type CapResult struct {
	// Items is the capped sequence, extended by backfilled overflow
	// items when the cap would have left the requested page short.
	Items []Ranked

	// Relaxed counts how many overflow items were pulled back in.
	Relaxed int

	// Dropped holds overflow items that stayed out, in original order.
	Dropped []Ranked
}

// ApplyVendorCap enforces a soft per-vendor cap over the interleaved
// sequence. At most maxPerVendor items per business survive the first
// pass; the overflow is kept in original relative order. If the capped
// sequence cannot fill through position `needed` (page * pageSize),
// overflow items are appended back in original order and marked
// cap-relaxed, so a page is never short merely due to vendor
// concentration. maxPerVendor <= 0 disables capping.
func ApplyVendorCap(seq []Ranked, maxPerVendor, needed int) CapResult {
	if maxPerVendor <= 0 {
		return CapResult{Items: seq}
	}

	kept := make([]Ranked, 0, len(seq))
	var overflow []Ranked
	perVendor := make(map[string]int)

	for _, it := range seq {
		key := it.BusinessID.String()
		if perVendor[key] >= maxPerVendor {
			overflow = append(overflow, it)
			continue
		}
		perVendor[key]++
		kept = append(kept, it)
	}

	relaxed := 0
	for len(kept) < needed && relaxed < len(overflow) {
		it := overflow[relaxed]
		it.CapRelaxed = true
		kept = append(kept, it)
		relaxed++
	}

	return CapResult{
		Items:   kept,
		Relaxed: relaxed,
		Dropped: overflow[relaxed:],
	}
}
