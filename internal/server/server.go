package server

import (
	"net/http"
	"strings"

	"gameshow/internal/db"
	"gameshow/internal/kv"
	"gameshow/internal/metrics"
	"gameshow/internal/prefs"
	"gameshow/internal/session"
	"gameshow/internal/templates"

	"github.com/prometheus/client_golang/prometheus"
)

// Archive stores finished games. It is nil when no database is configured.
type Archive interface {
	Ping() error
	ArchiveGame(a db.Archive) (string, error)
	ListGames(limit int) ([]db.GameRecord, error)
	GameResults(gameID string) ([]db.GameResult, error)
}

type Options struct {
	Session  session.Config
	KV       kv.Store
	Archive  Archive
	Registry *prometheus.Registry
}

type Server struct {
	Sessions  *session.Store
	Templates *templates.Library
	Prefs     *prefs.Store
	Archive   Archive
	Metrics   *metrics.Collector
	registry  *prometheus.Registry
}

func New(opts Options) *Server {
	if opts.KV == nil {
		opts.KV = kv.NewMemory()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	s := &Server{
		Templates: templates.New(opts.KV),
		Prefs:     prefs.New(opts.KV),
		Archive:   opts.Archive,
		Metrics:   metrics.New(opts.Registry),
		registry:  opts.Registry,
	}
	cfg := opts.Session
	cfg.SoundEnabled = s.Prefs.SoundEnabled
	cfg.Observers = append(cfg.Observers, s.Metrics)
	s.Sessions = session.NewStore(cfg)
	return s
}

// Close stops the session sweeper.
func (s *Server) Close() {
	s.Sessions.Close()
}

// getSession resolves the session named by the {code} path segment.
func (s *Server) getSession(w http.ResponseWriter, r *http.Request) *session.Session {
	code := strings.ToUpper(r.PathValue("code"))
	sess := s.Sessions.Get(code)
	if sess == nil {
		writeMessage(w, http.StatusNotFound, "session not found")
	}
	return sess
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler(s.registry))

	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{code}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{code}", s.handleDeleteSession)

	mux.HandleFunc("GET /sessions/{code}/setup", s.handleGetSetup)
	mux.HandleFunc("PUT /sessions/{code}/setup", s.handlePutSetup)
	mux.HandleFunc("POST /sessions/{code}/setup/apply-scoring", s.handleApplyScoring)
	mux.HandleFunc("POST /sessions/{code}/setup/rounds/{round}/copy", s.handleCopyRound)
	mux.HandleFunc("POST /sessions/{code}/setup/rounds/{round}/paste", s.handlePasteRound)
	mux.HandleFunc("POST /sessions/{code}/setup/template/{name}", s.handleLoadTemplate)

	mux.HandleFunc("POST /sessions/{code}/start", s.handleStart)
	mux.HandleFunc("POST /sessions/{code}/answers", s.handleMarkAnswer)
	mux.HandleFunc("POST /sessions/{code}/rounds", s.handleSubmitRound)
	mux.HandleFunc("POST /sessions/{code}/rounds/next", s.handleNextRound)
	mux.HandleFunc("POST /sessions/{code}/bonus", s.handleBonus)
	mux.HandleFunc("POST /sessions/{code}/undo", s.handleUndo)
	mux.HandleFunc("POST /sessions/{code}/pause", s.handlePause)
	mux.HandleFunc("POST /sessions/{code}/finish", s.handleFinish)

	mux.HandleFunc("GET /sessions/{code}/stats", s.handleStats)
	mux.HandleFunc("GET /sessions/{code}/stats.csv", s.handleStatsCSV)
	mux.HandleFunc("GET /sessions/{code}/stats.xlsx", s.handleStatsXLSX)
	mux.HandleFunc("GET /sessions/{code}/chart.png", s.handleChart)
	mux.HandleFunc("GET /sessions/{code}/viewer/bonus", s.handleViewerBonus)

	mux.HandleFunc("GET /sessions/{code}/events", s.handleEvents)
	mux.HandleFunc("GET /sessions/{code}/ws", s.handleConsole)

	mux.HandleFunc("GET /templates", s.handleListTemplates)
	mux.HandleFunc("GET /templates/{name}", s.handleGetTemplate)
	mux.HandleFunc("PUT /templates/{name}", s.handleSaveTemplate)
	mux.HandleFunc("DELETE /templates/{name}", s.handleDeleteTemplate)

	mux.HandleFunc("GET /preferences", s.handleGetPreferences)
	mux.HandleFunc("PUT /preferences", s.handlePutPreferences)
	mux.HandleFunc("POST /preferences/sound/toggle", s.handleToggleSound)
	mux.HandleFunc("POST /preferences/dark-mode/toggle", s.handleToggleDarkMode)

	mux.HandleFunc("GET /games", s.handleListGames)
	mux.HandleFunc("GET /games/{id}/results", s.handleGameResults)
	return mux
}
