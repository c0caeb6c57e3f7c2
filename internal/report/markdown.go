package report

import (
	"io"
	"math"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/lox/bikeshare/internal/analysis"
	"github.com/lox/bikeshare/internal/models"
)

// WriteMarkdown writes the report with each chart replaced by the table of
// figures behind it.
func WriteMarkdown(w io.Writer, r *analysis.Report, insight string) error {
	md := markdown.NewMarkdown(w)

	md.H1(r.Title)
	md.PlainText("")
	md.PlainText(r.Intro)
	md.PlainText("")

	md.H2("1. Dataset Overview")
	md.PlainText("")
	for _, p := range r.Previews {
		writePreview(md, p)
	}

	md.H2("2. Key Insights")
	md.PlainText("")
	md.BulletList(r.Findings...)
	md.PlainText("")

	md.H2(Sections[0].Heading)
	md.PlainText("")
	writeCorrelation(md, r.Correlation)

	md.H2(Sections[1].Heading)
	md.PlainText("")
	writeTemperature(md, r)

	md.H2(Sections[2].Heading)
	md.PlainText("")
	writeHourly(md, r.Hourly)

	md.H2(Sections[3].Heading)
	md.PlainText("")
	writeClusters(md, r)

	md.H2(Sections[4].Heading)
	md.PlainText("")
	writeDistribution(md, r.Distribution)

	md.H2("8. Conclusions")
	md.PlainText("")
	for i, c := range r.Conclusions {
		md.PlainTextf("%d. %s", i+1, c)
		md.PlainText("")
	}
	if insight != "" {
		md.Note(insight)
		md.PlainText("")
	}

	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*%s*", r.Caption)

	return md.Build()
}

func writePreview(md *markdown.Markdown, p models.Preview) {
	md.PlainTextf("**%s** (%d of %d rows)", p.Name, len(p.Rows), p.Total)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: p.Columns,
		Rows:   p.Rows,
	})
	md.PlainText("")
}

func writeCorrelation(md *markdown.Markdown, m models.CorrelationMatrix) {
	header := append([]string{""}, m.Columns...)
	rows := make([][]string, len(m.Columns))
	for i, col := range m.Columns {
		row := []string{"**" + col + "**"}
		for _, v := range m.Values[i] {
			row = append(row, formatCoef(v))
		}
		rows[i] = row
	}
	md.Table(markdown.TableSet{Header: header, Rows: rows})
	md.PlainText("")
}

func writeTemperature(md *markdown.Markdown, r *analysis.Report) {
	rows := make([][]string, len(r.Temperature))
	for i, b := range r.Temperature {
		mean := "-"
		if b.Mean != nil {
			mean = formatCount(*b.Mean)
		}
		rows[i] = []string{b.Label, strconv.Itoa(b.Rows), mean}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Temperature", "Days", "Average rentals"},
		Rows:   rows,
	})
	md.PlainText("")
	if r.Uncategorized > 0 {
		md.Warningf("%d days fell outside the temperature ranges and are not shown.", r.Uncategorized)
		md.PlainText("")
	}
}

func writeHourly(md *markdown.Markdown, hourly []models.HourlyAggregate) {
	rows := make([][]string, len(hourly))
	for i, h := range hourly {
		rows[i] = []string{strconv.Itoa(h.Hour), formatCount(h.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"hr", "cnt"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeClusters(md *markdown.Markdown, r *analysis.Report) {
	md.PlainTextf("Hours with more than %s rentals in total are busy.", formatCount(r.Settings.BusyThreshold))
	md.PlainText("")
	rows := make([][]string, len(r.Hourly))
	for i, h := range r.Hourly {
		rows[i] = []string{strconv.Itoa(h.Hour), formatCount(h.Count), h.Cluster.Label()}
	}
	md.Table(markdown.TableSet{
		Header: []string{"hr", "cnt", "cluster"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writeDistribution(md *markdown.Markdown, stats []models.BoxStats) {
	rows := make([][]string, len(stats))
	for i, b := range stats {
		rows[i] = []string{
			b.Cluster.Label(),
			strconv.Itoa(b.Count),
			formatCount(b.Min),
			formatCount(b.Q1),
			formatCount(b.Median),
			formatCount(b.Q3),
			formatCount(b.Max),
			strconv.Itoa(len(b.Outliers)),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Cluster", "Hours", "Min", "Q1", "Median", "Q3", "Max", "Outliers"},
		Rows:   rows,
	})
	md.PlainText("")
}

func formatCoef(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatCount(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
