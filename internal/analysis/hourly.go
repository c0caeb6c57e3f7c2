package analysis

import (
	"fmt"

	"github.com/lox/bikeshare/internal/models"
)

const HoursPerDay = 24

// AggregateHourly sums counts by hour of day. The result always has one row
// per hour, 0 through 23, in order; hours with no records sum to zero.
func AggregateHourly(records []models.HourlyRecord) []models.HourlyAggregate {
	agg := make([]models.HourlyAggregate, HoursPerDay)
	for h := range agg {
		agg[h].Hour = h
	}
	for _, r := range records {
		if r.Hour < 0 || r.Hour >= HoursPerDay {
			continue
		}
		agg[r.Hour].Count += r.Count
	}
	return agg
}

// Classify labels a summed count. Only counts strictly above the threshold
// are busy.
func Classify(count, threshold float64) models.Cluster {
	if count > threshold {
		return models.ClusterBusy
	}
	return models.ClusterQuiet
}

func ClassifyHours(agg []models.HourlyAggregate, threshold float64) []models.HourlyAggregate {
	out := make([]models.HourlyAggregate, len(agg))
	for i, a := range agg {
		out[i] = a
		out[i].Cluster = Classify(a.Count, threshold)
	}
	return out
}

// AssignClusters copies each hourly record with the label of its hour.
func AssignClusters(records []models.HourlyRecord, agg []models.HourlyAggregate) ([]models.HourlyRecord, error) {
	byHour := make(map[int]models.Cluster, len(agg))
	for _, a := range agg {
		byHour[a.Hour] = a.Cluster
	}

	out := make([]models.HourlyRecord, len(records))
	for i, r := range records {
		c, ok := byHour[r.Hour]
		if !ok || c == "" {
			return nil, fmt.Errorf("record %d: no classification for hour %d", i+1, r.Hour)
		}
		out[i] = r
		out[i].Cluster = c
	}
	return out, nil
}

// BusyHours returns the hours labelled busy, ascending.
func BusyHours(agg []models.HourlyAggregate) []int {
	var hours []int
	for _, a := range agg {
		if a.Cluster == models.ClusterBusy {
			hours = append(hours, a.Hour)
		}
	}
	return hours
}
