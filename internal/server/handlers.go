package server

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/agencydash/internal/config"
	"github.com/nao1215/agencydash/internal/pipeline"
	"github.com/nao1215/agencydash/internal/report"
	"github.com/nao1215/agencydash/internal/view"
)

// render runs the pipeline for one request. The error is kept in the dashboard.
func (s *Server) render(r *http.Request, req pipeline.Request) *pipeline.Dashboard {
	d, _ := pipeline.Render(r.Context(), s.cfg, req, pipeline.WithLogger(s.logger))
	return d
}

// tableRequest reads the search and sort parameters.
func tableRequest(r *http.Request) pipeline.Request {
	q := r.URL.Query()
	desc, _ := strconv.ParseBool(q.Get(ParamDesc))
	return pipeline.Request{
		Query:      strings.TrimSpace(q.Get(ParamQuery)),
		SortColumn: q.Get(ParamSort),
		Descending: desc,
	}
}

// etag returns the strong entity tag for a dataset fingerprint. The
// configuration digest is mixed in because the views also depend on it.
func (s *Server) etag(fingerprint string) string {
	sum := sha3.Sum256([]byte(fingerprint + "\n" + s.configDigest))
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// viewConfig lists the settings that change a rendered view of the same
// dataset. Localities are sorted so the digest is stable.
func viewConfig(cfg *config.Config, version string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "version=%s\n", version)
	fmt.Fprintf(&b, "delimiter=%q\n", cfg.Delimiter)
	fmt.Fprintf(&b, "reference=%v,%v\n", cfg.Reference.Lat, cfg.Reference.Lon)
	fmt.Fprintf(&b, "zoom=%d\n", cfg.Zoom)
	fmt.Fprintf(&b, "chart=%dx%d\n", cfg.ChartWidth, cfg.ChartHeight)

	names := make([]string, 0, len(cfg.Localities))
	for name := range cfg.Localities {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		c := cfg.Localities[name]
		fmt.Fprintf(&b, "locality=%s=%v,%v\n", name, c.Lat, c.Lon)
	}
	return b.String()
}

// notModified sets ETag and reports whether the client copy is current.
func (s *Server) notModified(w http.ResponseWriter, r *http.Request, d *pipeline.Dashboard) bool {
	fp := d.Fingerprint()
	if fp == "" {
		return false
	}
	tag := s.etag(fp)
	w.Header().Set("ETag", tag)
	w.Header().Set("Cache-Control", "no-cache")

	for _, candidate := range strings.Split(r.Header.Get("If-None-Match"), ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == tag || candidate == "*" {
			w.WriteHeader(http.StatusNotModified)
			return true
		}
	}
	return false
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	d := s.render(r, tableRequest(r))
	status := http.StatusOK
	if d.Failed() {
		status = pageStatus(d.Err)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, newPageData(d, s.cfg, s.version)); err != nil {
		s.logger.Error("failed to render page", "request_id", requestID(r.Context()), "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	s.writeChart(w, r, "image/svg+xml", (*view.Chart).RenderSVG)
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	s.writeChart(w, r, "image/png", (*view.Chart).RenderPNG)
}

func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, contentType string, draw func(*view.Chart, io.Writer, int, int) error) {
	d := s.render(r, pipeline.Request{})
	if d.Failed() {
		s.respondError(w, r, d.Err)
		return
	}
	if s.notModified(w, r, d) {
		return
	}

	var buf bytes.Buffer
	if err := draw(d.Chart, &buf, s.cfg.ChartWidth, s.cfg.ChartHeight); err != nil {
		if errors.Is(err, view.ErrNoBars) {
			s.respondJSON(w, http.StatusNotFound, ErrorResponse{Code: ErrCodeNoData, Message: err.Error()})
			return
		}
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	d := s.render(r, pipeline.Request{})
	if d.Failed() {
		s.respondError(w, r, d.Err)
		return
	}
	if s.notModified(w, r, d) {
		return
	}

	data, err := d.Map.GeoJSON()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	_, _ = w.Write(data)
}

func (s *Server) handleAgencies(w http.ResponseWriter, r *http.Request) {
	d := s.render(r, tableRequest(r))
	if d.Failed() {
		s.respondError(w, r, d.Err)
		return
	}
	if s.notModified(w, r, d) {
		return
	}
	s.respondJSON(w, http.StatusOK, report.NewJSONReport(d, s.version))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, HealthResponse{Status: "OK"})
}
