package analysis

import (
	"fmt"
	"strings"

	"github.com/lox/bikeshare/internal/dataset"
	"github.com/lox/bikeshare/internal/models"
)

func AssessQuality(ds *dataset.Dataset) (models.Quality, error) {
	cnt, err := ds.Floats("cnt")
	if err != nil {
		return models.Quality{}, err
	}
	return models.Quality{
		Dataset:       ds.Name,
		Rows:          ds.Len(),
		MissingCells:  ds.MissingCells(),
		DuplicateRows: ds.DuplicateRows(),
		CountOutliers: CountOutliers(cnt),
	}, nil
}

// Findings phrases the data-quality checks as report bullets.
func Findings(qs []models.Quality) []string {
	names := make([]string, len(qs))
	for i, q := range qs {
		names[i] = q.Dataset
	}
	all := strings.Join(names, " and ")

	var missing, dups, outliers, clean []string
	for _, q := range qs {
		if q.MissingCells > 0 {
			missing = append(missing, fmt.Sprintf("%s (%d cells)", q.Dataset, q.MissingCells))
		}
		if q.DuplicateRows > 0 {
			dups = append(dups, fmt.Sprintf("%s (%d rows)", q.Dataset, q.DuplicateRows))
		}
		if q.CountOutliers > 0 {
			outliers = append(outliers, fmt.Sprintf("%s (%d rows)", q.Dataset, q.CountOutliers))
		} else {
			clean = append(clean, q.Dataset)
		}
	}

	var out []string
	if len(missing) == 0 {
		out = append(out, fmt.Sprintf("No missing values in either dataset (%s).", all))
	} else {
		out = append(out, "Missing values found in "+strings.Join(missing, ", ")+".")
	}
	if len(dups) == 0 {
		out = append(out, fmt.Sprintf("No duplicate rows in either dataset (%s).", all))
	} else {
		out = append(out, "Duplicate rows found in "+strings.Join(dups, ", ")+".")
	}
	switch {
	case len(outliers) == 0:
		out = append(out, "No outliers in rental counts in either dataset.")
	case len(clean) == 0:
		out = append(out, "Rental count outliers found in "+strings.Join(outliers, ", ")+".")
	default:
		out = append(out, "Rental count outliers found in "+strings.Join(outliers, ", ")+
			", but none in "+strings.Join(clean, ", ")+".")
	}
	return out
}
