package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/lox/bikeshare/internal/models"
)

// whiskerIQR is the standard Tukey fence multiplier.
const whiskerIQR = 1.5

// Percentile interpolates linearly between closest ranks (numpy's default
// method). sorted must be in ascending order; p is in [0, 1].
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Box computes quartiles, Tukey whiskers and outliers for values.
func Box(cluster models.Cluster, values []float64) models.BoxStats {
	b := models.BoxStats{Cluster: cluster, Count: len(values)}
	if len(values) == 0 {
		return b
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	b.Min = floats.Min(sorted)
	b.Max = floats.Max(sorted)
	b.Q1 = Percentile(sorted, 0.25)
	b.Median = Percentile(sorted, 0.5)
	b.Q3 = Percentile(sorted, 0.75)

	iqr := b.Q3 - b.Q1
	lowFence := b.Q1 - whiskerIQR*iqr
	highFence := b.Q3 + whiskerIQR*iqr

	b.WhiskerLow = b.Q1
	b.WhiskerHigh = b.Q3
	for _, v := range sorted {
		if v >= lowFence {
			b.WhiskerLow = v
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= highFence {
			b.WhiskerHigh = sorted[i]
			break
		}
	}
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			b.Outliers = append(b.Outliers, v)
		}
	}
	return b
}

// CountOutliers counts values beyond the Tukey fences.
func CountOutliers(values []float64) int {
	return len(Box("", values).Outliers)
}

// Distribution groups counts by cluster, in order of first appearance.
func Distribution(records []models.HourlyRecord) []models.BoxStats {
	var order []models.Cluster
	groups := make(map[models.Cluster][]float64)
	for _, r := range records {
		if _, ok := groups[r.Cluster]; !ok {
			order = append(order, r.Cluster)
		}
		groups[r.Cluster] = append(groups[r.Cluster], r.Count)
	}

	stats := make([]models.BoxStats, 0, len(order))
	for _, c := range order {
		stats = append(stats, Box(c, groups[c]))
	}
	return stats
}
