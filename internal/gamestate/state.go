package gamestate

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gameshow/internal/events"
	"gameshow/internal/stats"
	"gameshow/internal/utility"

	"github.com/google/uuid"
)

var (
	ErrUnknownContestant = errors.New("unknown contestant")
	ErrInvalidBonus      = errors.New("bonus points must be between 1 and 100")
	ErrRoundNotStarted   = errors.New("no round in progress")
	ErrDuplicateEntry    = errors.New("contestant appears twice in one round")
)

const (
	defaultBonusReason = "Bonus Points"
	MaxBonus           = 100
)

type Contestant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type BonusRecord struct {
	Points    int       `json:"points"`
	Reason    string    `json:"reason"`
	Round     int       `json:"round"`
	AwardedAt time.Time `json:"awardedAt"`
}

// RoundEntry is the host's verdict for one contestant in the current round.
type RoundEntry struct {
	Contestant int  `json:"contestant"`
	Points     int  `json:"points"`
	Correct    bool `json:"correct"`
}

// State is the live scoring state of one game. Every mutation publishes
// an event on the bus after the lock is released.
type State struct {
	mu           sync.Mutex
	contestants  []Contestant
	scores       map[int]int
	history      map[int][]stats.RoundResult
	bonuses      map[int][]BonusRecord
	currentRound int
	bus          *events.Bus
	now          func() time.Time
}

func New(bus *events.Bus) *State {
	return &State{
		scores:  make(map[int]int),
		history: make(map[int][]stats.RoundResult),
		bonuses: make(map[int][]BonusRecord),
		bus:     bus,
		now:     time.Now,
	}
}

func (s *State) AddContestant(name string) Contestant {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := Contestant{ID: uuid.New().String(), Name: name, Color: utility.RandomColorHex()}
	s.contestants = append(s.contestants, c)
	return c
}

func (s *State) Contestants() []Contestant {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Contestant, len(s.contestants))
	copy(list, s.contestants)
	return list
}

// FindContestant resolves a contestant index by name, ignoring case.
func (s *State) FindContestant(name string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.contestants {
		if utility.EqualFoldTrim(c.Name, name) {
			return i, true
		}
	}
	return -1, false
}

func (s *State) Score(idx int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores[idx]
}

func (s *State) CurrentRound() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentRound
}

// StartRound advances to the next round and returns its number.
func (s *State) StartRound() int {
	s.mu.Lock()
	s.currentRound++
	round := s.currentRound
	s.mu.Unlock()

	s.bus.Publish(events.RoundStarted{Round: round})
	return round
}

func (s *State) MarkAnswer(idx int, correct bool) error {
	s.mu.Lock()
	valid := s.validIndex(idx)
	s.mu.Unlock()
	if !valid {
		return fmt.Errorf("marking answer for %d: %w", idx, ErrUnknownContestant)
	}
	s.bus.Publish(events.AnswerMarked{Contestant: idx, Correct: correct})
	return nil
}

// SubmitRound records one result per entry for the current round and
// adds the points to each contestant's running score.
func (s *State) SubmitRound(entries []RoundEntry) (events.RoundSubmitted, error) {
	s.mu.Lock()
	if s.currentRound == 0 {
		s.mu.Unlock()
		return events.RoundSubmitted{}, ErrRoundNotStarted
	}
	seen := make(map[int]bool, len(entries))
	for _, e := range entries {
		if !s.validIndex(e.Contestant) {
			s.mu.Unlock()
			return events.RoundSubmitted{}, fmt.Errorf("submitting round for %d: %w", e.Contestant, ErrUnknownContestant)
		}
		if seen[e.Contestant] {
			s.mu.Unlock()
			return events.RoundSubmitted{}, fmt.Errorf("submitting round for %d: %w", e.Contestant, ErrDuplicateEntry)
		}
		seen[e.Contestant] = true
	}

	ev := events.RoundSubmitted{Round: s.currentRound, Changes: make([]events.ScoreChange, 0, len(entries))}
	for _, e := range entries {
		entry := len(s.history[e.Contestant])
		s.history[e.Contestant] = append(s.history[e.Contestant], stats.RoundResult{Points: e.Points, Correct: e.Correct})
		s.scores[e.Contestant] += e.Points
		ev.Changes = append(ev.Changes, events.ScoreChange{Contestant: e.Contestant, Points: e.Points, Correct: e.Correct, Entry: entry})
	}
	s.mu.Unlock()

	s.bus.Publish(ev)
	return ev, nil
}

// AwardBonus adds points to a contestant's score without touching the
// round history.
func (s *State) AwardBonus(idx, points int, reason string) (BonusRecord, error) {
	if points <= 0 || points > MaxBonus {
		return BonusRecord{}, ErrInvalidBonus
	}
	if reason == "" {
		reason = defaultBonusReason
	}

	s.mu.Lock()
	if !s.validIndex(idx) {
		s.mu.Unlock()
		return BonusRecord{}, fmt.Errorf("awarding bonus to %d: %w", idx, ErrUnknownContestant)
	}
	rec := BonusRecord{Points: points, Reason: reason, Round: s.currentRound, AwardedAt: s.now()}
	s.scores[idx] += points
	s.bonuses[idx] = append(s.bonuses[idx], rec)
	s.mu.Unlock()

	s.bus.Publish(events.BonusAwarded{
		Contestant: idx,
		Points:     rec.Points,
		Reason:     rec.Reason,
		Round:      rec.Round,
		AwardedAt:  rec.AwardedAt,
	})
	return rec, nil
}

// RevertRound takes back a round score change and removes the history
// entry it produced. Undo runs newest first, so entry still points at
// that result.
func (s *State) RevertRound(idx, entry, points int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[idx] -= points
	h := s.history[idx]
	if entry >= 0 && entry < len(h) {
		s.history[idx] = append(h[:entry:entry], h[entry+1:]...)
	}
}

// RevertBonus takes back a bonus award and drops the newest matching
// bonus record.
func (s *State) RevertBonus(idx, points int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scores[idx] -= points
	recs := s.bonuses[idx]
	for i := len(recs) - 1; i >= 0; i-- {
		if recs[i].Points == points {
			s.bonuses[idx] = append(recs[:i:i], recs[i+1:]...)
			return
		}
	}
}

func (s *State) Bonuses(idx int) []BonusRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]BonusRecord, len(s.bonuses[idx]))
	copy(list, s.bonuses[idx])
	return list
}

// View copies the state into the read-only form statistics are computed
// from.
func (s *State) View() *stats.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	gs := &stats.GameState{
		Contestants:  make([]stats.Contestant, len(s.contestants)),
		Scores:       make(map[int]int, len(s.scores)),
		RoundHistory: make(map[int][]stats.RoundResult, len(s.history)),
	}
	for i, c := range s.contestants {
		gs.Contestants[i] = stats.Contestant{Name: c.Name, Color: c.Color}
	}
	for idx, v := range s.scores {
		gs.Scores[idx] = v
	}
	for idx, h := range s.history {
		gs.RoundHistory[idx] = append([]stats.RoundResult(nil), h...)
	}
	return gs
}

func (s *State) validIndex(idx int) bool {
	return idx >= 0 && idx < len(s.contestants)
}
