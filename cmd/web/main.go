package main

import (
	"log/slog"
	"os"

	"gameshow/internal/config"
	"gameshow/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if err := server.Run(cfg); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
