package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/bikeshare/internal/analysis"
	"github.com/lox/bikeshare/internal/dataset"
)

const dayCSV = `dteday,season,weathersit,temp,hum,windspeed,cnt
2011-01-01,1,2,0.1,0.80,0.16,985
2011-01-02,1,2,0.3,0.69,0.25,801
2011-06-01,2,1,0.6,0.55,0.12,4500
2011-07-01,3,1,0.9,0.40,0.10,6000
`

const hourCSV = `dteday,hr,cnt
2011-01-01,3,200
2011-01-02,3,300
2011-01-01,17,12000
2011-01-02,17,13000
`

func testReport(t *testing.T) *analysis.Report {
	t.Helper()
	daily, err := dataset.Parse(dataset.Daily, strings.NewReader(dayCSV))
	require.NoError(t, err)
	hourly, err := dataset.Parse(dataset.Hourly, strings.NewReader(hourCSV))
	require.NoError(t, err)

	r, err := analysis.Build(analysis.Inputs{Daily: daily, Hourly: hourly}, analysis.DefaultSettings())
	require.NoError(t, err)
	return r
}

func testPage(t *testing.T, insight string) *Page {
	t.Helper()
	p, err := NewPage(testReport(t), insight, LinkedCharts)
	require.NoError(t, err)
	return p
}

func TestParseFormat(t *testing.T) {
	for _, f := range Formats {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestWriteHTML_SectionOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, testPage(t, "")))
	html := buf.String()

	order := []string{
		analysis.Title,
		"1. Dataset Overview",
		"Sample rows from day.csv",
		"Sample rows from hour.csv",
		"2. Key Insights",
		"/charts/correlation.png",
		"/charts/temperature.png",
		"/charts/hourly.png",
		"/charts/clusters.png",
		"/charts/distribution.png",
		"8. Conclusions",
		"Copyright",
	}
	last := -1
	for _, s := range order {
		i := strings.Index(html, s)
		require.NotEqual(t, -1, i, "missing %q", s)
		assert.Greater(t, i, last, "%q out of order", s)
		last = i
	}
	assert.NotContains(t, html, "Generated commentary")
}

func TestWriteHTML_Insight(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, testPage(t, "Warm evenings are busiest.")))
	assert.Contains(t, buf.String(), "Generated commentary")
	assert.Contains(t, buf.String(), "Warm evenings are busiest.")
}

func TestWriteMarkdown(t *testing.T) {
	r := testReport(t)

	var buf bytes.Buffer
	require.NoError(t, WriteMarkdown(&buf, r, ""))
	md := buf.String()

	assert.True(t, strings.HasPrefix(md, "# "+analysis.Title))
	for _, s := range Sections {
		assert.Contains(t, md, "## "+s.Heading)
	}
	assert.Contains(t, md, "0-10°C")
	assert.Contains(t, md, "Busy hours")
	assert.Contains(t, md, "Quiet hours")
	assert.Contains(t, md, analysis.Caption)
}

func TestWriteText_DropsMarkup(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatText, testPage(t, "")))
	text := buf.String()

	assert.Contains(t, text, analysis.Title)
	assert.Contains(t, text, "8. Conclusions")
	assert.NotContains(t, text, "<h2>")
	assert.NotContains(t, text, "<table>")
}

func TestWriteJSON(t *testing.T) {
	p := testPage(t, "Some commentary.")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, p))

	var got struct {
		Title       string `json:"title"`
		Fingerprint string `json:"fingerprint"`
		Hourly      []struct {
			Hour    int    `json:"hr"`
			Cluster string `json:"cluster"`
		} `json:"hourly"`
		Insight string `json:"insight"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, analysis.Title, got.Title)
	assert.Equal(t, p.Fingerprint, got.Fingerprint)
	require.Len(t, got.Hourly, analysis.HoursPerDay)
	assert.Equal(t, "busy", got.Hourly[17].Cluster)
	assert.Equal(t, "quiet", got.Hourly[3].Cluster)
	assert.Equal(t, "Some commentary.", got.Insight)
}
