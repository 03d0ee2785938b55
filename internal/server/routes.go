package server

import (
	"log/slog"
	"net/http"
	"time"

	"gameshow/internal/config"
	"gameshow/internal/db"
	"gameshow/internal/kv"
	"gameshow/internal/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func Run(cfg config.Config) error {
	opts := Options{
		Session: session.Config{
			MaxUndoHistory: cfg.MaxUndoHistory,
			TTL:            cfg.SessionTTL,
		},
		KV:       kv.NewMemory(),
		Registry: prometheus.NewRegistry(),
	}
	opts.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Optional database connection
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			slog.Warn("database unavailable, running in memory", "component", "db", "err", err)
		} else if err := database.Migrate(); err != nil {
			slog.Error("migration failed, running in memory", "component", "db", "err", err)
			database.Close()
		} else {
			opts.KV = database
			opts.Archive = database
			slog.Info("database connected and migrations applied", "component", "db")
		}
	} else {
		slog.Info("DATABASE_URL not set, running without database", "component", "db")
	}

	srv := New(opts)
	defer srv.Close()
	httpServer := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("server listening", "addr", "http://localhost:"+cfg.Port)
	return httpServer.ListenAndServe()
}
