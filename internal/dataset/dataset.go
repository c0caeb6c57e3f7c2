// Package dataset loads the daily and hourly bike-rental CSV files into
// dataframes and exposes typed accessors over them.
package dataset

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/hashicorp/go-multierror"

	"github.com/lox/bikeshare/internal/metrics"
	"github.com/lox/bikeshare/internal/models"
)

const (
	Daily  = "day.csv"
	Hourly = "hour.csv"
)

var (
	ErrMissingColumn  = errors.New("missing column")
	ErrHourOutOfRange = errors.New("hour out of range")
)

var (
	DailyColumns  = []string{"dteday", "temp", "hum", "windspeed", "cnt"}
	HourlyColumns = []string{"hr", "cnt"}
)

// stringColumns are never type-detected; dates must stay text so they are
// excluded from numeric work.
var stringColumns = map[string]series.Type{
	"dteday": series.String,
}

type Dataset struct {
	Name   string
	Source string
	Frame  dataframe.DataFrame

	// header and rows hold the cells as read, before type detection.
	header []string
	rows   [][]string
}

// Load fetches src and parses it as a CSV with a header row.
func Load(ctx context.Context, f *Fetcher, name, src string) (*Dataset, error) {
	data, err := f.Fetch(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	ds, err := Parse(name, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	ds.Source = src
	metrics.DatasetRows.WithLabelValues(name).Set(float64(ds.Len()))
	return ds, nil
}

func Parse(name string, r io.Reader) (*Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(true),
		dataframe.WithTypes(stringColumns),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, df.Err)
	}
	return &Dataset{
		Name:   name,
		Frame:  df,
		header: records[0],
		rows:   records[1:],
	}, nil
}

func (d *Dataset) Len() int {
	return d.Frame.Nrow()
}

func (d *Dataset) Columns() []string {
	return d.Frame.Names()
}

func (d *Dataset) HasColumn(name string) bool {
	for _, n := range d.Frame.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Require reports every missing column at once.
func (d *Dataset) Require(cols ...string) error {
	var result *multierror.Error
	for _, c := range cols {
		if !d.HasColumn(c) {
			result = multierror.Append(result, fmt.Errorf("%s: %w %q", d.Name, ErrMissingColumn, c))
		}
	}
	return result.ErrorOrNil()
}

// Floats returns the column as float64 values. Unparseable cells are NaN.
func (d *Dataset) Floats(col string) ([]float64, error) {
	if !d.HasColumn(col) {
		return nil, fmt.Errorf("%s: %w %q", d.Name, ErrMissingColumn, col)
	}
	s := d.Frame.Col(col)
	if s.Err != nil {
		return nil, fmt.Errorf("%s: column %q: %w", d.Name, col, s.Err)
	}
	return s.Float(), nil
}

func (d *Dataset) Strings(col string) ([]string, error) {
	if !d.HasColumn(col) {
		return nil, fmt.Errorf("%s: %w %q", d.Name, ErrMissingColumn, col)
	}
	s := d.Frame.Col(col)
	if s.Err != nil {
		return nil, fmt.Errorf("%s: column %q: %w", d.Name, col, s.Err)
	}
	return s.Records(), nil
}

// NumericColumns lists the int and float columns in file order, minus exclude.
func (d *Dataset) NumericColumns(exclude ...string) []string {
	skip := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		skip[e] = true
	}
	names := d.Frame.Names()
	types := d.Frame.Types()
	var cols []string
	for i, n := range names {
		if skip[n] {
			continue
		}
		if types[i] == series.Int || types[i] == series.Float {
			cols = append(cols, n)
		}
	}
	return cols
}

// Preview returns the first n rows exactly as they appear in the file.
func (d *Dataset) Preview(n int) models.Preview {
	p := models.Preview{
		Name:    d.Name,
		Columns: append([]string(nil), d.header...),
		Total:   len(d.rows),
	}
	n = min(n, len(d.rows))
	for _, row := range d.rows[:max(n, 0)] {
		p.Rows = append(p.Rows, append([]string(nil), row...))
	}
	return p
}

// MissingCells counts NaN numeric cells and empty text cells.
func (d *Dataset) MissingCells() int {
	missing := 0
	for _, name := range d.Frame.Names() {
		s := d.Frame.Col(name)
		if s.Type() == series.String {
			for _, v := range s.Records() {
				if v == "" {
					missing++
				}
			}
			continue
		}
		for _, nan := range s.IsNaN() {
			if nan {
				missing++
			}
		}
	}
	return missing
}

// DuplicateRows counts rows whose raw text matches an earlier row.
func (d *Dataset) DuplicateRows() int {
	seen := make(map[string]struct{}, len(d.rows))
	dups := 0
	var buf bytes.Buffer
	for _, row := range d.rows {
		buf.Reset()
		for _, cell := range row {
			buf.WriteString(cell)
			buf.WriteByte(0x1f)
		}
		key := buf.String()
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}
	return dups
}

func (d *Dataset) DailyRecords() ([]models.DailyRecord, error) {
	if err := d.Require(DailyColumns...); err != nil {
		return nil, err
	}
	dates, err := d.Strings("dteday")
	if err != nil {
		return nil, err
	}
	temp, _ := d.Floats("temp")
	hum, _ := d.Floats("hum")
	wind, _ := d.Floats("windspeed")
	cnt, _ := d.Floats("cnt")
	season := d.optionalInts("season")
	weather := d.optionalInts("weathersit")

	records := make([]models.DailyRecord, d.Len())
	for i := range records {
		records[i] = models.DailyRecord{
			Date:       dates[i],
			Season:     season[i],
			WeatherSit: weather[i],
			Temp:       temp[i],
			Humidity:   hum[i],
			WindSpeed:  wind[i],
			Count:      cnt[i],
		}
	}
	return records, nil
}

// HourlyRecords requires every hr value to be a whole hour in [0, 23].
func (d *Dataset) HourlyRecords() ([]models.HourlyRecord, error) {
	if err := d.Require(HourlyColumns...); err != nil {
		return nil, err
	}
	hr, _ := d.Floats("hr")
	cnt, _ := d.Floats("cnt")
	temp := d.optionalFloats("temp")
	hum := d.optionalFloats("hum")
	wind := d.optionalFloats("windspeed")
	season := d.optionalInts("season")
	weather := d.optionalInts("weathersit")

	var dates []string
	if d.HasColumn("dteday") {
		dates, _ = d.Strings("dteday")
	} else {
		dates = make([]string, d.Len())
	}

	records := make([]models.HourlyRecord, d.Len())
	for i := range records {
		h := hr[i]
		if math.IsNaN(h) || h != math.Trunc(h) || h < 0 || h > 23 {
			return nil, fmt.Errorf("%s row %d: %w: %v", d.Name, i+1, ErrHourOutOfRange, h)
		}
		records[i] = models.HourlyRecord{
			Date:       dates[i],
			Hour:       int(h),
			Season:     season[i],
			WeatherSit: weather[i],
			Temp:       temp[i],
			Humidity:   hum[i],
			WindSpeed:  wind[i],
			Count:      cnt[i],
		}
	}
	return records, nil
}

func (d *Dataset) optionalFloats(col string) []float64 {
	if v, err := d.Floats(col); err == nil {
		return v
	}
	return make([]float64, d.Len())
}

func (d *Dataset) optionalInts(col string) []int {
	out := make([]int, d.Len())
	v, err := d.Floats(col)
	if err != nil {
		return out
	}
	for i, f := range v {
		if !math.IsNaN(f) {
			out[i] = int(f)
		}
	}
	return out
}
