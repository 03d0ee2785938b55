package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"gameshow/internal/gamestate"
	"gameshow/internal/session"
	"gameshow/internal/setup"
	"gameshow/internal/stats"
	"gameshow/internal/templates"
	"gameshow/internal/undo"

	"github.com/go-playground/validator/v10"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "err", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps domain errors to a status code. Anything unrecognised is
// logged and reported as an internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeMessage(w, status, "internal error")
		return
	}
	writeMessage(w, status, err.Error())
}

func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, templates.ErrNotFound),
		errors.Is(err, setup.ErrUnknownRound):
		return http.StatusNotFound
	case errors.Is(err, gamestate.ErrUnknownContestant),
		errors.Is(err, gamestate.ErrInvalidBonus),
		errors.Is(err, gamestate.ErrDuplicateEntry),
		errors.Is(err, templates.ErrEmptyName),
		errors.Is(err, setup.ErrNoFirstRoundScoring):
		return http.StatusBadRequest
	case errors.Is(err, stats.ErrNoGameState),
		errors.Is(err, session.ErrWrongScene),
		errors.Is(err, session.ErrPaused),
		errors.Is(err, session.ErrNoContestants),
		errors.Is(err, gamestate.ErrRoundNotStarted),
		errors.Is(err, undo.ErrNothingToUndo),
		errors.Is(err, setup.ErrNothingCopied):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
