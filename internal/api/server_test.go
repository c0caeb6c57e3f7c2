package api_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"image/png"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/lox/bikeshare/internal/analysis"
	"github.com/lox/bikeshare/internal/api"
	"github.com/lox/bikeshare/internal/charts"
	"github.com/lox/bikeshare/internal/dataset"
	"github.com/lox/bikeshare/internal/models"
	"github.com/lox/bikeshare/internal/store"
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

func buildReport(t *testing.T) *analysis.Report {
	t.Helper()
	daily, err := dataset.Parse(dataset.Daily, strings.NewReader(dayCSV))
	if err != nil {
		t.Fatal(err)
	}
	hourly, err := dataset.Parse(dataset.Hourly, strings.NewReader(hourCSV))
	if err != nil {
		t.Fatal(err)
	}
	r, err := analysis.Build(analysis.Inputs{Daily: daily, Hourly: hourly}, analysis.DefaultSettings())
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func setupTestStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s := store.New(db, zap.NewNop())
	if err := s.Migrate(); err != nil {
		t.Fatal(err)
	}
	return s
}

func newServer(t *testing.T, s *store.Store, insight string) (*api.Server, *analysis.Report) {
	t.Helper()
	r := buildReport(t)
	return api.NewServer(r, charts.NewRenderer(r, zap.NewNop()), s, insight, "8080", zap.NewNop()), r
}

func get(t *testing.T, srv *api.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	srv, r := newServer(t, setupTestStore(t), "")

	w := get(t, srv, "/health")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var health api.HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "ok" {
		t.Errorf("status = %q, want ok", health.Status)
	}
	if health.Fingerprint != r.Fingerprint {
		t.Errorf("fingerprint = %q, want %q", health.Fingerprint, r.Fingerprint)
	}
	if !health.Snapshots || health.MigrationVersion < 1 {
		t.Errorf("snapshots = %v, migration = %d", health.Snapshots, health.MigrationVersion)
	}
}

func TestIndexPage(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t, nil, "")

	w := get(t, srv, "/")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "<h1>"+analysis.Title+"</h1>") {
		t.Error("expected page title")
	}
	for _, name := range charts.Names {
		if !strings.Contains(body, `src="/charts/`+name+`.png"`) {
			t.Errorf("expected image for chart %s", name)
		}
	}
	if strings.Contains(body, "Generated commentary") {
		t.Error("expected no insight block without an insight")
	}
	if !strings.Contains(body, `<meta property="og:image" content="/og.png">`) {
		t.Error("expected og:image meta tag")
	}
}

func TestIndexPage_WithInsight(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t, nil, "Rentals peak on warm evenings.")

	body := get(t, srv, "/").Body.String()
	if !strings.Contains(body, "Rentals peak on warm evenings.") {
		t.Error("expected insight text on the page")
	}
}

func TestUnknownPath(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t, nil, "")

	if w := get(t, srv, "/nope"); w.Code != 404 {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestChartEndpoint(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t, nil, "")

	w := get(t, srv, "/charts/hourly.png")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	if _, err := png.Decode(bytes.NewReader(w.Body.Bytes())); err != nil {
		t.Errorf("decode png: %v", err)
	}

	w = get(t, srv, "/og.png")
	if w.Code != 200 {
		t.Fatalf("og.png: expected 200, got %d", w.Code)
	}
	if _, err := png.Decode(bytes.NewReader(w.Body.Bytes())); err != nil {
		t.Errorf("decode og.png: %v", err)
	}

	for _, path := range []string{"/charts/pie.png", "/charts/hourly", "/charts/", "/charts/card.png"} {
		if w := get(t, srv, path); w.Code != 404 {
			t.Errorf("%s: expected 404, got %d", path, w.Code)
		}
	}
}

func TestReportFormats(t *testing.T) {
	t.Parallel()
	srv, r := newServer(t, nil, "")

	tests := []struct {
		path        string
		contentType string
		contains    string
	}{
		{"/report.md", "text/markdown", "# " + analysis.Title},
		{"/report.txt", "text/plain", "8. Conclusions"},
		{"/api/report", "application/json", `"fingerprint": "` + r.Fingerprint + `"`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(t, srv, tt.path)
			if w.Code != 200 {
				t.Fatalf("expected 200, got %d", w.Code)
			}
			if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, tt.contentType) {
				t.Errorf("Content-Type = %q, want %s", ct, tt.contentType)
			}
			if !strings.Contains(w.Body.String(), tt.contains) {
				t.Errorf("body missing %q", tt.contains)
			}
		})
	}
}

func TestSnapshots_Disabled(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t, nil, "")

	if w := get(t, srv, "/api/snapshots"); w.Code != 404 {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestSnapshots(t *testing.T) {
	t.Parallel()
	s := setupTestStore(t)
	srv, r := newServer(t, s, "")

	payload, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveSnapshot(models.Snapshot{ID: "run-1", Fingerprint: r.Fingerprint}, payload); err != nil {
		t.Fatal(err)
	}

	w := get(t, srv, "/api/snapshots")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var snaps []models.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snaps); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snaps) != 1 || snaps[0].Fingerprint != r.Fingerprint {
		t.Errorf("snapshots = %+v", snaps)
	}

	w = get(t, srv, "/api/snapshots/"+r.Fingerprint)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !bytes.Equal(w.Body.Bytes(), payload) {
		t.Error("snapshot payload differs from what was saved")
	}

	if w := get(t, srv, "/api/snapshots/unknown"); w.Code != 404 {
		t.Errorf("expected 404 for unknown fingerprint, got %d", w.Code)
	}
	if w := get(t, srv, "/api/snapshots?limit=abc"); w.Code != 400 {
		t.Errorf("expected 400 for bad limit, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	srv, _ := newServer(t, nil, "")

	get(t, srv, "/charts/temperature.png")
	w := get(t, srv, "/metrics")
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "bikeshare_chart_renders_total") {
		t.Error("expected chart render counter in metrics output")
	}
}
