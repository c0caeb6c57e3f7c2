package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/lox/bikeshare/internal/dataset"
	"github.com/lox/bikeshare/internal/models"
)

// Correlate computes pairwise Pearson coefficients across the numeric columns
// of ds, skipping exclude. Each pair uses only the rows where both cells are
// present. A column with zero variance correlates as NaN, including with
// itself.
func Correlate(ds *dataset.Dataset, exclude ...string) (models.CorrelationMatrix, error) {
	cols := ds.NumericColumns(exclude...)
	data := make([][]float64, len(cols))
	for i, c := range cols {
		v, err := ds.Floats(c)
		if err != nil {
			return models.CorrelationMatrix{}, err
		}
		data[i] = v
	}
	return CorrelationOf(cols, data)
}

func CorrelationOf(cols []string, data [][]float64) (models.CorrelationMatrix, error) {
	if len(cols) != len(data) {
		return models.CorrelationMatrix{}, fmt.Errorf("correlation: %d names for %d columns", len(cols), len(data))
	}
	n := len(cols)
	m := models.CorrelationMatrix{
		Columns: cols,
		Values:  make([][]float64, n),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
	}

	for i := 1; i < n; i++ {
		if len(data[i]) != len(data[0]) {
			return models.CorrelationMatrix{}, fmt.Errorf("correlation: column %q has %d values, want %d", cols[i], len(data[i]), len(data[0]))
		}
	}

	for i := 0; i < n; i++ {
		m.Values[i][i] = math.NaN()
		if x, _ := complete(data[i], data[i]); len(x) > 1 && stat.Variance(x, nil) > 0 {
			m.Values[i][i] = 1
		}
		for j := i + 1; j < n; j++ {
			r := math.NaN()
			if x, y := complete(data[i], data[j]); len(x) > 1 {
				r = stat.Correlation(x, y, nil)
			}
			if math.IsInf(r, 0) {
				r = math.NaN()
			}
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

// complete drops every row where either value is NaN.
func complete(x, y []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for k := range x {
		if math.IsNaN(x[k]) || math.IsNaN(y[k]) {
			continue
		}
		xs = append(xs, x[k])
		ys = append(ys, y[k])
	}
	return xs, ys
}
