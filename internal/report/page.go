package report

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"

	"github.com/lox/bikeshare/internal/analysis"
	"github.com/lox/bikeshare/internal/charts"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/*.html"))

// Section is one numbered chart section of the page, in display order.
type Section struct {
	Chart   string
	Heading string
}

// Sections follow the two preview tables and the findings list.
var Sections = []Section{
	{charts.Correlation, "3. Correlation Between Variables (day.csv)"},
	{charts.Temperature, "4. Bike Rentals by Temperature"},
	{charts.Hourly, "5. Bike Rentals by Hour (hour.csv)"},
	{charts.Clusters, "6. Manual Clustering: Busy vs Quiet Hours"},
	{charts.Distribution, "7. Distribution of Bike Rentals by Cluster"},
}

// ChartSource returns the image URL for a chart.
type ChartSource func(name string) (template.URL, error)

// LinkedCharts points images at the server's chart routes.
func LinkedCharts(name string) (template.URL, error) {
	return template.URL("/charts/" + name + ".png"), nil
}

// InlineCharts embeds rendered PNGs as data URLs so the page stands alone.
func InlineCharts(r *charts.Renderer) ChartSource {
	return func(name string) (template.URL, error) {
		png, err := r.Render(name)
		if err != nil {
			return "", err
		}
		return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)), nil
	}
}

type ChartView struct {
	Name    string
	Heading string
	Src     template.URL
}

// Page is the view model for the dashboard page.
type Page struct {
	*analysis.Report
	Charts  []ChartView
	Insight string

	// ShareImage is the Open Graph image URL; empty omits the tag.
	ShareImage string
}

func NewPage(r *analysis.Report, insight string, src ChartSource) (*Page, error) {
	p := &Page{Report: r, Insight: insight}
	for _, s := range Sections {
		url, err := src(s.Chart)
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", s.Chart, err)
		}
		p.Charts = append(p.Charts, ChartView{Name: s.Chart, Heading: s.Heading, Src: url})
	}
	return p, nil
}

func WriteHTML(w io.Writer, p *Page) error {
	return pageTemplate.ExecuteTemplate(w, "page.html", p)
}
