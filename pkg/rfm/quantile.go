package rfm

import (
	"math"
	"sort"
)

// quantileEdges returns the unique bucket edges splitting values into n
// equal-frequency buckets. Quantiles use linear interpolation between the
// closest ranks.
func quantileEdges(values []float64, n int) []float64 {
	if len(values) == 0 || n < 1 {
		return nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	step := 1.0 / float64(n)
	edges := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		q := float64(i) * step
		if i == n {
			q = 1
		}
		e := quantile(sorted, q)
		if len(edges) > 0 && e == edges[len(edges)-1] {
			continue
		}
		edges = append(edges, e)
	}
	return edges
}

// quantile expects sorted input.
func quantile(sorted []float64, q float64) float64 {
	h := float64(len(sorted)-1) * q
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return lerp(sorted[lo], sorted[lo+1], h-float64(lo))
}

func lerp(a, b, t float64) float64 {
	if t >= 0.5 {
		return b - (b-a)*(1-t)
	}
	return a + (b-a)*t
}

// bucketize assigns each value the label of its bucket. Buckets are
// right-closed with the lowest edge included; labels[i] names bucket i.
// Edges that collapse are dropped, so fewer buckets than labels may be used.
func bucketize(dimension string, values []float64, labels []int) ([]int, error) {
	edges := quantileEdges(values, len(labels))
	if len(edges) < 2 {
		return nil, &InsufficientDataError{Dimension: dimension, Distinct: len(edges)}
	}

	upper := edges[1:]
	out := make([]int, len(values))
	for i, v := range values {
		b := sort.SearchFloat64s(upper, v)
		if b >= len(upper) {
			b = len(upper) - 1
		}
		out[i] = labels[b]
	}
	return out, nil
}

// rankFirst ranks values ascending starting at 1, breaking ties by position.
func rankFirst(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return values[idx[a]] < values[idx[b]]
	})

	ranks := make([]float64, len(values))
	for r, i := range idx {
		ranks[i] = float64(r + 1)
	}
	return ranks
}

func ascendingLabels(n int) []int {
	l := make([]int, n)
	for i := range l {
		l[i] = ScoreMin + i
	}
	return l
}

func descendingLabels(n int) []int {
	l := make([]int, n)
	for i := range l {
		l[i] = ScoreMax - i
	}
	return l
}
