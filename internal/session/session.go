package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gameshow/internal/broadcast"
	"gameshow/internal/cues"
	"gameshow/internal/events"
	"gameshow/internal/gamestate"
	"gameshow/internal/setup"
	"gameshow/internal/stats"
	"gameshow/internal/undo"
	"gameshow/internal/wshub"

	"github.com/google/uuid"
)

type Scene string

const (
	SceneSetup   = Scene("setup")
	ScenePlaying = Scene("playing")
	SceneFinal   = Scene("final")
)

var (
	ErrWrongScene    = errors.New("action not allowed in this scene")
	ErrPaused        = errors.New("game is paused")
	ErrNoContestants = errors.New("setup has no contestants")
)

// Info is the summary of a session returned to the host console.
type Info struct {
	Code        string                 `json:"code"`
	ID          string                 `json:"id"`
	Scene       Scene                  `json:"scene"`
	Paused      bool                   `json:"paused"`
	Round       int                    `json:"round"`
	CanUndo     bool                   `json:"canUndo"`
	Contestants []gamestate.Contestant `json:"contestants"`
	Scores      []int                  `json:"scores"`
	CreatedAt   time.Time              `json:"createdAt"`
}

// Session is one game: its setup, live scoring state and the observers
// wired to its event bus.
type Session struct {
	Code        string
	ID          string
	CreatedAt   time.Time
	State       *gamestate.State
	Bus         *events.Bus
	Undo        *undo.History
	Broadcaster *broadcast.Broadcaster
	Hub         *wshub.Hub
	Clipboard   setup.Clipboard

	mu         sync.Mutex
	setup      setup.Setup
	scene      Scene
	paused     bool
	startedAt  time.Time
	endedAt    time.Time
	lastActive time.Time
}

func newSession(code string, cfg Config) *Session {
	bus := events.NewBus()
	state := gamestate.New(bus)
	now := time.Now()
	s := &Session{
		Code:       code,
		ID:         uuid.New().String(),
		CreatedAt:  now,
		State:      state,
		Bus:        bus,
		Hub:        wshub.NewHub(),
		scene:      SceneSetup,
		lastActive: now,
	}
	s.Undo = undo.New(cfg.MaxUndoHistory, state, bus)
	bus.Subscribe(cues.NewPlayer(cfg.soundEnabled(), s.Hub.PlayCue))
	s.Broadcaster = broadcast.NewBroadcaster(bus)
	bus.Subscribe(events.ObserverFunc(s.syncConsole))
	bus.Subscribe(events.ObserverFunc(func(events.Event) { s.markActive() }))
	for _, o := range cfg.Observers {
		bus.Subscribe(o)
	}
	return s
}

// syncConsole keeps the host console's undo and pause controls current.
func (s *Session) syncConsole(ev events.Event) {
	switch e := ev.(type) {
	case events.RoundSubmitted, events.BonusAwarded, events.ActionUndone:
		s.Hub.UndoState(s.Undo.CanUndo())
	case events.PauseChanged:
		s.Hub.PauseState(e.Paused)
	}
}

func (s *Session) markActive() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

// LastActive is when the setup was last edited or the game last
// published an event.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) Scene() Scene {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene
}

func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Setup returns a copy of the current setup.
func (s *Session) Setup() setup.Setup {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copySetup(s.setup)
}

// UpdateSetup replaces the setup. Only allowed before the game starts.
func (s *Session) UpdateSetup(next setup.Setup) error {
	if err := next.Validate(); err != nil {
		return err
	}
	return s.editSetup(func(cur *setup.Setup) error {
		*cur = copySetup(next)
		return nil
	})
}

func (s *Session) ApplyScoringToAll() (int, error) {
	var n int
	err := s.editSetup(func(cur *setup.Setup) error {
		var err error
		n, err = cur.ApplyScoringToAll()
		return err
	})
	return n, err
}

func (s *Session) CopyRound(number int) error {
	return s.editSetup(func(cur *setup.Setup) error {
		return s.Clipboard.Copy(cur, number)
	})
}

func (s *Session) PasteRound(number int) error {
	return s.editSetup(func(cur *setup.Setup) error {
		return s.Clipboard.Paste(cur, number)
	})
}

func (s *Session) editSetup(fn func(*setup.Setup) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scene != SceneSetup {
		return fmt.Errorf("editing setup in %s: %w", s.scene, ErrWrongScene)
	}
	if err := fn(&s.setup); err != nil {
		return err
	}
	s.lastActive = time.Now()
	return nil
}

// Start registers the setup's contestants and opens round 1.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.scene != SceneSetup {
		s.mu.Unlock()
		return fmt.Errorf("starting game in %s: %w", s.scene, ErrWrongScene)
	}
	if len(s.setup.Contestants) == 0 {
		s.mu.Unlock()
		return ErrNoContestants
	}
	for _, c := range s.setup.Contestants {
		s.State.AddContestant(c.Name)
	}
	s.scene = ScenePlaying
	s.startedAt = time.Now()
	s.mu.Unlock()

	s.State.StartRound()
	return nil
}

func (s *Session) NextRound() (int, error) {
	if err := s.guardPlay(); err != nil {
		return 0, err
	}
	return s.State.StartRound(), nil
}

func (s *Session) MarkAnswer(idx int, correct bool) error {
	if err := s.guardPlay(); err != nil {
		return err
	}
	return s.State.MarkAnswer(idx, correct)
}

func (s *Session) SubmitRound(entries []gamestate.RoundEntry) (events.RoundSubmitted, error) {
	if err := s.guardPlay(); err != nil {
		return events.RoundSubmitted{}, err
	}
	return s.State.SubmitRound(entries)
}

func (s *Session) AwardBonus(idx, points int, reason string) (gamestate.BonusRecord, error) {
	if err := s.guardPlay(); err != nil {
		return gamestate.BonusRecord{}, err
	}
	return s.State.AwardBonus(idx, points, reason)
}

// UndoLast reverts the most recent score change. It works while paused.
func (s *Session) UndoLast() (undo.Action, error) {
	if sc := s.Scene(); sc != ScenePlaying {
		return undo.Action{}, fmt.Errorf("undo in %s: %w", sc, ErrWrongScene)
	}
	return s.Undo.Undo()
}

func (s *Session) TogglePause() (bool, error) {
	s.mu.Lock()
	if s.scene != ScenePlaying {
		s.mu.Unlock()
		return false, fmt.Errorf("pausing in %s: %w", s.scene, ErrWrongScene)
	}
	s.paused = !s.paused
	paused := s.paused
	s.mu.Unlock()

	s.Bus.Publish(events.PauseChanged{Paused: paused})
	return paused, nil
}

// Finish ends the game and returns its final statistics.
func (s *Session) Finish() (stats.Snapshot, error) {
	s.mu.Lock()
	if s.scene != ScenePlaying {
		s.mu.Unlock()
		return nil, fmt.Errorf("finishing game in %s: %w", s.scene, ErrWrongScene)
	}
	s.scene = SceneFinal
	s.paused = false
	s.endedAt = time.Now()
	s.mu.Unlock()

	s.Bus.Publish(events.GameEnded{Rounds: s.State.CurrentRound()})
	return stats.Compute(s.State.View())
}

// Stats computes a fresh snapshot. There is no game state before the
// game starts.
func (s *Session) Stats() (stats.Snapshot, error) {
	if s.Scene() == SceneSetup {
		return nil, stats.ErrNoGameState
	}
	return stats.Compute(s.State.View())
}

// Times returns when the game started and ended. Zero values mean the
// game has not reached that point.
func (s *Session) Times() (started, ended time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt, s.endedAt
}

func (s *Session) Info() Info {
	s.mu.Lock()
	scene, paused := s.scene, s.paused
	s.mu.Unlock()

	contestants := s.State.Contestants()
	scores := make([]int, len(contestants))
	for i := range contestants {
		scores[i] = s.State.Score(i)
	}
	return Info{
		Code:        s.Code,
		ID:          s.ID,
		Scene:       scene,
		Paused:      paused,
		Round:       s.State.CurrentRound(),
		CanUndo:     s.Undo.CanUndo(),
		Contestants: contestants,
		Scores:      scores,
		CreatedAt:   s.CreatedAt,
	}
}

func (s *Session) guardPlay() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scene != ScenePlaying {
		return fmt.Errorf("scoring in %s: %w", s.scene, ErrWrongScene)
	}
	if s.paused {
		return ErrPaused
	}
	return nil
}

func copySetup(src setup.Setup) setup.Setup {
	dst := src
	dst.Contestants = append([]setup.ContestantSetup(nil), src.Contestants...)
	dst.Rounds = append([]setup.RoundSetup(nil), src.Rounds...)
	return dst
}
