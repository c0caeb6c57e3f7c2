package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lox/bikeshare/internal/charts"
	"github.com/lox/bikeshare/internal/models"
	"github.com/lox/bikeshare/internal/report"
)

const defaultSnapshotLimit = 20

func (s *Server) page() (*report.Page, error) {
	p, err := report.NewPage(s.report, s.insight, report.LinkedCharts)
	if err != nil {
		return nil, err
	}
	p.ShareImage = "/og.png"
	return p, nil
}

func (s *Server) writeReport(w http.ResponseWriter, f report.Format) {
	p, err := s.page()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	if err := report.Write(w, f, p); err != nil {
		s.logger.Error("write report", zap.String("format", string(f)), zap.Error(err))
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.writeReport(w, report.FormatHTML)
}

func (s *Server) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	s.writeReport(w, report.FormatMarkdown)
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	s.writeReport(w, report.FormatText)
}

func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	s.writeReport(w, report.FormatJSON)
}

// handleChart serves /charts/{name}.png.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	file := strings.TrimPrefix(r.URL.Path, "/charts/")
	name, ok := strings.CutSuffix(file, ".png")
	if !ok || name == "" || name == charts.Card {
		http.NotFound(w, r)
		return
	}
	s.servePNG(w, r, name)
}

func (s *Server) handleShareImage(w http.ResponseWriter, r *http.Request) {
	s.servePNG(w, r, charts.Card)
}

func (s *Server) servePNG(w http.ResponseWriter, r *http.Request, name string) {
	data, err := s.renderer.Render(name)
	if errors.Is(err, charts.ErrUnknownChart) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("render chart", zap.String("chart", name), zap.Error(err))
		http.Error(w, "chart rendering failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("ETag", `"`+s.report.Fingerprint+"-"+name+`"`)
	w.Write(data)
}

func (s *Server) handleAPISnapshots(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSONError(w, http.StatusNotFound, "snapshot storage disabled")
		return
	}

	limit := defaultSnapshotLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSONError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	snaps, err := s.store.GetSnapshots(limit)
	if err != nil {
		s.logger.Error("list snapshots", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snaps == nil {
		snaps = []models.Snapshot{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snaps)
}

// handleAPISnapshot serves the stored report JSON for /api/snapshots/{fingerprint}.
func (s *Server) handleAPISnapshot(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSONError(w, http.StatusNotFound, "snapshot storage disabled")
		return
	}
	fp := strings.TrimPrefix(r.URL.Path, "/api/snapshots/")
	if fp == "" || strings.Contains(fp, "/") {
		http.NotFound(w, r)
		return
	}

	payload, err := s.store.GetSnapshotPayload(fp)
	if err != nil {
		s.logger.Error("read snapshot", zap.String("fingerprint", fp), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if payload == nil {
		writeJSONError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(payload)
}

type HealthStatus struct {
	Status           string `json:"status"`
	Fingerprint      string `json:"fingerprint"`
	BusyHours        []int  `json:"busy_hours"`
	Snapshots        bool   `json:"snapshots"`
	MigrationVersion int    `json:"migration_version,omitempty"`
	Error            string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:      "ok",
		Fingerprint: s.report.Fingerprint,
		BusyHours:   s.report.BusyHours,
		Snapshots:   s.store != nil,
	}
	if s.store != nil {
		v, err := s.store.MigrationVersion()
		if err != nil {
			health.Status = "degraded"
			health.Error = err.Error()
		}
		health.MigrationVersion = v
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn("health: write response", zap.Error(err))
	}
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
