package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/lox/bikeshare/internal/models"
)

// TemperatureLabels names each bin "lo-hi°C".
func TemperatureLabels(bins []float64) []string {
	if len(bins) < 2 {
		return nil
	}
	labels := make([]string, len(bins)-1)
	for i := range labels {
		labels[i] = fmt.Sprintf("%g-%g°C", bins[i], bins[i+1])
	}
	return labels
}

// TemperatureBin returns the bin index for a scaled temperature. Bins are
// right-closed, (lo, hi], except the first which also includes its lower
// edge. Values outside the outer edges, and NaN, have no bin.
func TemperatureBin(celsius float64, bins []float64) (int, bool) {
	if len(bins) < 2 || math.IsNaN(celsius) {
		return 0, false
	}
	if celsius < bins[0] || celsius > bins[len(bins)-1] {
		return 0, false
	}
	if celsius == bins[0] {
		return 0, true
	}
	for i := 1; i < len(bins); i++ {
		if celsius <= bins[i] {
			return i - 1, true
		}
	}
	return 0, false
}

// CategorizeTemperature labels each record with its temperature category and
// returns the mean count per category. Records are copied, never modified in
// place. Out-of-range rows keep an empty category and count as uncategorized.
func CategorizeTemperature(records []models.DailyRecord, s Settings) ([]models.DailyRecord, []models.TemperatureBucket, int) {
	labels := TemperatureLabels(s.TemperatureBins)
	counts := make([][]float64, len(labels))

	out := make([]models.DailyRecord, len(records))
	uncategorized := 0
	for i, r := range records {
		out[i] = r
		idx, ok := TemperatureBin(r.Temp*s.TemperatureScale, s.TemperatureBins)
		if !ok {
			uncategorized++
			continue
		}
		out[i].TempCategory = labels[idx]
		counts[idx] = append(counts[idx], r.Count)
	}

	buckets := make([]models.TemperatureBucket, len(labels))
	for i, label := range labels {
		buckets[i] = models.TemperatureBucket{
			Label: label,
			Lower: s.TemperatureBins[i],
			Upper: s.TemperatureBins[i+1],
			Rows:  len(counts[i]),
		}
		if len(counts[i]) > 0 {
			mean := stat.Mean(counts[i], nil)
			buckets[i].Mean = &mean
		}
	}
	return out, buckets, uncategorized
}
