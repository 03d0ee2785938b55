package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"gameshow/internal/db"
	"gameshow/internal/gamestate"
	"gameshow/internal/session"
	"gameshow/internal/setup"
	"gameshow/internal/stats"
)

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.Sessions.Create()
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.Metrics.SessionCreated()
	slog.InfoContext(r.Context(), "session created", "code", sess.Code, "id", sess.ID)
	writeJSON(w, http.StatusCreated, sess.Info())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sess.Info())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	s.Sessions.Delete(sess.Code)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetSetup(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	writeJSON(w, http.StatusOK, sess.Setup())
}

func (s *Server) handlePutSetup(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	var next setup.Setup
	if !decode(w, r, &next) {
		return
	}
	if err := sess.UpdateSetup(next); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Setup())
}

func (s *Server) handleApplyScoring(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	n, err := sess.ApplyScoringToAll()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"updated": n, "setup": sess.Setup()})
}

func (s *Server) handleCopyRound(w http.ResponseWriter, r *http.Request) {
	s.clipboardAction(w, r, (*session.Session).CopyRound)
}

func (s *Server) handlePasteRound(w http.ResponseWriter, r *http.Request) {
	s.clipboardAction(w, r, (*session.Session).PasteRound)
}

func (s *Server) clipboardAction(w http.ResponseWriter, r *http.Request, action func(*session.Session, int) error) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	round, err := strconv.Atoi(r.PathValue("round"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid round number")
		return
	}
	if err := action(sess, round); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Setup())
}

func (s *Server) handleLoadTemplate(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	t, err := s.Templates.Load(r.PathValue("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := sess.UpdateSetup(t.Setup); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Setup())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	if err := sess.Start(); err != nil {
		writeError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "game started", "code", sess.Code)
	writeJSON(w, http.StatusOK, sess.Info())
}

type answerRequest struct {
	Contestant int  `json:"contestant"`
	Correct    bool `json:"correct"`
}

func (s *Server) handleMarkAnswer(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	if err := sess.MarkAnswer(req.Contestant, req.Correct); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type roundRequest struct {
	Entries []gamestate.RoundEntry `json:"entries"`
}

func (s *Server) handleSubmitRound(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	var req roundRequest
	if !decode(w, r, &req) {
		return
	}
	ev, err := sess.SubmitRound(req.Entries)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleNextRound(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	round, err := sess.NextRound()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"round": round})
}

// bonusRequest names the contestant by index or, when Name is set, by
// case-insensitive name.
type bonusRequest struct {
	Contestant int    `json:"contestant"`
	Name       string `json:"name"`
	Points     int    `json:"points"`
	Reason     string `json:"reason"`
}

func (s *Server) handleBonus(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	var req bonusRequest
	if !decode(w, r, &req) {
		return
	}
	idx := req.Contestant
	if req.Name != "" {
		var ok bool
		if idx, ok = sess.State.FindContestant(req.Name); !ok {
			writeMessage(w, http.StatusBadRequest, "unknown contestant")
			return
		}
	}
	rec, err := sess.AwardBonus(idx, req.Points, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	a, err := sess.UndoLast()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"undone": a, "canUndo": sess.Undo.CanUndo()})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	paused, err := sess.TogglePause()
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": paused})
}

type finishResponse struct {
	statsResponse
	GameID string `json:"gameId,omitempty"`
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	sess := s.getSession(w, r)
	if sess == nil {
		return
	}
	snapshot, err := sess.Finish()
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := finishResponse{statsResponse: newStatsResponse(snapshot)}
	resp.GameID = s.archive(r, sess, snapshot)
	slog.InfoContext(r.Context(), "game finished", "code", sess.Code, "game_id", resp.GameID)
	writeJSON(w, http.StatusOK, resp)
}

// archive stores the finished game when a database is configured. A
// failure is logged and does not fail the request.
func (s *Server) archive(r *http.Request, sess *session.Session, snapshot stats.Snapshot) string {
	if s.Archive == nil {
		return ""
	}
	started, ended := sess.Times()
	id, err := s.Archive.ArchiveGame(db.Archive{
		SessionCode:     sess.Code,
		SessionID:       sess.ID,
		CompetitionName: sess.Setup().CompetitionName,
		Rounds:          sess.State.CurrentRound(),
		StartedAt:       started,
		EndedAt:         ended,
		Snapshot:        snapshot,
	})
	if err != nil {
		s.Metrics.ArchiveFailed()
		slog.ErrorContext(r.Context(), "archiving game", "code", sess.Code, "err", err)
		return ""
	}
	return id
}
