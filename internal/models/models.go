package models

import (
	"encoding/json"
	"math"
	"time"
)

type Cluster string

const (
	ClusterBusy  Cluster = "busy"
	ClusterQuiet Cluster = "quiet"
)

// Label returns the display name used on charts and in the report.
func (c Cluster) Label() string {
	switch c {
	case ClusterBusy:
		return "Busy hours"
	case ClusterQuiet:
		return "Quiet hours"
	default:
		return string(c)
	}
}

type DailyRecord struct {
	Date         string
	Season       int
	WeatherSit   int
	Temp         float64 // normalized, 0-1 maps to 0-40°C
	Humidity     float64
	WindSpeed    float64
	Count        float64
	TempCategory string
}

type HourlyRecord struct {
	Date       string
	Hour       int
	Season     int
	WeatherSit int
	Temp       float64
	Humidity   float64
	WindSpeed  float64
	Count      float64
	Cluster    Cluster
}

type HourlyAggregate struct {
	Hour    int     `json:"hr"`
	Count   float64 `json:"cnt"`
	Cluster Cluster `json:"cluster"`
}

type TemperatureBucket struct {
	Label string   `json:"label"`
	Lower float64  `json:"lower"`
	Upper float64  `json:"upper"`
	Rows  int      `json:"rows"`
	Mean  *float64 `json:"mean"` // nil when no rows fall in the bucket
}

type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// MarshalJSON writes undefined coefficients (NaN) as null.
func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j := range row {
			if !math.IsNaN(row[j]) {
				values[i][j] = &row[j]
			}
		}
	}
	return json.Marshal(struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}{m.Columns, values})
}

func (m *CorrelationMatrix) UnmarshalJSON(data []byte) error {
	var raw struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	m.Columns = raw.Columns
	m.Values = make([][]float64, len(raw.Values))
	for i, row := range raw.Values {
		m.Values[i] = make([]float64, len(row))
		for j, v := range row {
			if v == nil {
				m.Values[i][j] = math.NaN()
			} else {
				m.Values[i][j] = *v
			}
		}
	}
	return nil
}

type BoxStats struct {
	Cluster     Cluster   `json:"cluster"`
	Count       int       `json:"count"`
	Min         float64   `json:"min"`
	Q1          float64   `json:"q1"`
	Median      float64   `json:"median"`
	Q3          float64   `json:"q3"`
	Max         float64   `json:"max"`
	WhiskerLow  float64   `json:"whisker_low"`
	WhiskerHigh float64   `json:"whisker_high"`
	Outliers    []float64 `json:"outliers"`
}

type Preview struct {
	Name    string     `json:"name"`
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Total   int        `json:"total"`
}

type Quality struct {
	Dataset       string `json:"dataset"`
	Rows          int    `json:"rows"`
	MissingCells  int    `json:"missing_cells"`
	DuplicateRows int    `json:"duplicate_rows"`
	CountOutliers int    `json:"count_outliers"`
}

type Snapshot struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	DailySource  string    `json:"daily_source"`
	HourlySource string    `json:"hourly_source"`
	Fingerprint  string    `json:"fingerprint"`
	PayloadSize  int       `json:"payload_size"`
}
