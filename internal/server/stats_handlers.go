package server

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"gameshow/internal/stats"
	"gameshow/internal/viewer"
)

type statsResponse struct {
	Contestants stats.Snapshot   `json:"contestants"`
	Highlights  stats.Highlights `json:"highlights"`
	Summary     []string         `json:"summary"`
}

func newStatsResponse(snapshot stats.Snapshot) statsResponse {
	h := stats.Rank(snapshot)
	return statsResponse{Contestants: snapshot, Highlights: h, Summary: h.Lines()}
}

// computeStats returns a fresh snapshot, writing the error response
// itself when there is none.
func (s *Server) computeStats(w http.ResponseWriter, r *http.Request) (stats.Snapshot, bool) {
	sess := s.getSession(w, r)
	if sess == nil {
		return nil, false
	}
	snapshot, err := sess.Stats()
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return snapshot, true
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snapshot, ok := s.computeStats(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newStatsResponse(snapshot))
	s.Metrics.ObserveStats("json", time.Since(start))
}

func (s *Server) handleStatsCSV(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "csv", "text/csv; charset=utf-8", stats.WriteCSV)
}

func (s *Server) handleStatsXLSX(w http.ResponseWriter, r *http.Request) {
	s.export(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", stats.WriteXLSX)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	snapshot, ok := s.computeStats(w, r)
	if !ok {
		return
	}
	png, err := stats.RenderChart(snapshot)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
	s.Metrics.ObserveStats("png", time.Since(start))
}

// export renders into a buffer first so a failure can still produce a
// proper error response.
func (s *Server) export(w http.ResponseWriter, r *http.Request, ext, contentType string, write func(io.Writer, stats.Snapshot) error) {
	start := time.Now()
	snapshot, ok := s.computeStats(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := write(&buf, snapshot); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+stats.ExportFileName(time.Now(), ext)+`"`)
	w.Write(buf.Bytes())
	s.Metrics.ObserveStats(ext, time.Since(start))
}

func (s *Server) handleViewerBonus(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, viewer.BonusDisplay(sess.State, r.URL.Query().Get("name")))
}
