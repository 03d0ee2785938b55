package server

import (
	"net/http"
	"strconv"

	"gameshow/internal/prefs"
	"gameshow/internal/setup"
)

const defaultGamesLimit = 20

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	list, err := s.Templates.List()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := s.Templates.Load(r.PathValue("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleSaveTemplate(w http.ResponseWriter, r *http.Request) {
	var body setup.Setup
	if !decode(w, r, &body) {
		return
	}
	if err := body.Validate(); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.Templates.Save(r.PathValue("name"), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.Templates.Delete(r.PathValue("name")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := s.Prefs.Load()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	var p prefs.Preferences
	if !decode(w, r, &p) {
		return
	}
	if err := s.Prefs.Save(p); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleToggleSound(w http.ResponseWriter, r *http.Request) {
	on, err := s.Prefs.ToggleSound()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"soundEnabled": on})
}

func (s *Server) handleToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	on, err := s.Prefs.ToggleDarkMode()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"darkMode": on})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	if s.Archive == nil {
		writeMessage(w, http.StatusServiceUnavailable, "game history requires a database connection")
		return
	}
	limit := defaultGamesLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeMessage(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	games, err := s.Archive.ListGames(limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleGameResults(w http.ResponseWriter, r *http.Request) {
	if s.Archive == nil {
		writeMessage(w, http.StatusServiceUnavailable, "game history requires a database connection")
		return
	}
	results, err := s.Archive.GameResults(r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
