package dataset

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dayCSV = `instant,dteday,season,weathersit,temp,hum,windspeed,cnt
1,2011-01-01,1,2,0.344167,0.805833,0.160446,985
2,2011-01-02,1,2,0.363478,0.696087,0.248539,801
3,2011-01-03,1,1,0.196364,0.437273,0.248309,1349
`

func TestParse(t *testing.T) {
	ds, err := Parse(Daily, strings.NewReader(dayCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"instant", "dteday", "season", "weathersit", "temp", "hum", "windspeed", "cnt"}, ds.Columns())
	assert.Equal(t, []string{"instant", "season", "weathersit", "temp", "hum", "windspeed", "cnt"}, ds.NumericColumns())
	assert.NotContains(t, ds.NumericColumns("instant"), "instant")

	cnt, err := ds.Floats("cnt")
	require.NoError(t, err)
	assert.Equal(t, []float64{985, 801, 1349}, cnt)

	dates, err := ds.Strings("dteday")
	require.NoError(t, err)
	assert.Equal(t, "2011-01-02", dates[1])
}

func TestRequire_ReportsEveryMissingColumn(t *testing.T) {
	ds, err := Parse(Daily, strings.NewReader("dteday,temp\n2011-01-01,0.3\n"))
	require.NoError(t, err)

	err = ds.Require(DailyColumns...)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	for _, col := range []string{"hum", "windspeed", "cnt"} {
		assert.Contains(t, err.Error(), col)
	}
	assert.NotContains(t, err.Error(), `"temp"`)

	_, err = ds.Floats("cnt")
	assert.ErrorIs(t, err, ErrMissingColumn)
}

func TestPreview(t *testing.T) {
	ds, err := Parse(Daily, strings.NewReader(dayCSV))
	require.NoError(t, err)

	p := ds.Preview(2)
	assert.Equal(t, Daily, p.Name)
	assert.Equal(t, 3, p.Total)
	require.Len(t, p.Rows, 2)
	assert.Equal(t, "2011-01-01", p.Rows[0][1])
	assert.Len(t, p.Rows[0], len(p.Columns))

	assert.Len(t, ds.Preview(10).Rows, 3)
	assert.Empty(t, ds.Preview(0).Rows)
}

func TestPreview_KeepsCellText(t *testing.T) {
	csv := `instant,dteday,hr,temp,atemp,hum,windspeed,cnt
1,2011-01-01,0,0.24,0.2879,0.81,0,16
2,2011-01-01,1,0.22,0.2727,0.8,0.0896,40
`
	ds, err := Parse(Hourly, strings.NewReader(csv))
	require.NoError(t, err)

	p := ds.Preview(1)
	assert.Equal(t, []string{"instant", "dteday", "hr", "temp", "atemp", "hum", "windspeed", "cnt"}, p.Columns)
	require.Len(t, p.Rows, 1)
	assert.Equal(t, []string{"1", "2011-01-01", "0", "0.24", "0.2879", "0.81", "0", "16"}, p.Rows[0])
}

func TestDuplicateRows_ComparesRawText(t *testing.T) {
	csv := `temp,cnt
0.1234567,10
0.1234568,10
0.1234567,10
`
	ds, err := Parse(Daily, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, ds.DuplicateRows())
}

func TestQualityChecks(t *testing.T) {
	csv := `dteday,temp,cnt
2011-01-01,0.3,985
2011-01-01,0.3,985
2011-01-03,,1349
`
	ds, err := Parse(Daily, strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, ds.DuplicateRows())
	assert.Equal(t, 1, ds.MissingCells())

	temp, err := ds.Floats("temp")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(temp[2]))
}

func TestDailyRecords(t *testing.T) {
	ds, err := Parse(Daily, strings.NewReader(dayCSV))
	require.NoError(t, err)

	records, err := ds.DailyRecords()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "2011-01-01", records[0].Date)
	assert.Equal(t, 2, records[0].WeatherSit)
	assert.InDelta(t, 0.344167, records[0].Temp, 1e-9)
	assert.Equal(t, 985.0, records[0].Count)
	assert.Empty(t, records[0].TempCategory)
}

func TestHourlyRecords(t *testing.T) {
	tests := []struct {
		name    string
		csv     string
		wantErr error
	}{
		{"valid", "hr,cnt\n0,16\n23,39\n", nil},
		{"hour 24", "hr,cnt\n0,16\n24,39\n", ErrHourOutOfRange},
		{"negative hour", "hr,cnt\n-1,16\n", ErrHourOutOfRange},
		{"fractional hour", "hr,cnt\n1.5,16\n", ErrHourOutOfRange},
		{"no hr column", "cnt\n16\n", ErrMissingColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Parse(Hourly, strings.NewReader(tt.csv))
			require.NoError(t, err)

			records, err := ds.HourlyRecords()
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "err = %v, want %v", err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 23, records[1].Hour)
		})
	}
}

func TestFetch_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day.csv")
	require.NoError(t, os.WriteFile(path, []byte(dayCSV), 0o644))

	f := NewFetcher()
	data, err := f.Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, dayCSV, string(data))

	data, err = f.Fetch(context.Background(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, dayCSV, string(data))

	_, err = f.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, os.IsNotExist(err) || errors.Is(err, os.ErrNotExist))
}

func TestFetch_HTTPRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(dayCSV))
	}))
	defer srv.Close()

	f := NewFetcher()
	f.maxElapsedTime = 10 * time.Second

	data, err := f.Fetch(context.Background(), srv.URL+"/day.csv")
	require.NoError(t, err)
	assert.Equal(t, dayCSV, string(data))
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetch_HTTPNotFoundIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewFetcher().Fetch(context.Background(), srv.URL+"/day.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	_, err := NewFetcher().Fetch(context.Background(), "s3://bucket/day.csv")
	assert.Error(t, err)
}
