package stats

import "sort"

func safeDiv(numer, denom int) float64 {
	if denom == 0 {
		return 0
	}
	return float64(numer) / float64(denom)
}

func avg(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return float64(sum) / float64(len(vals))
}

// median returns the middle value of vals, the mean of the middle pair for
// even lengths, or zero for an empty slice.
func median(vals []int) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]int(nil), vals...)
	sort.Ints(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return float64(sorted[mid-1]+sorted[mid]) / 2
}
