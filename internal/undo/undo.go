package undo

import (
	"errors"
	"sync"
	"time"

	"gameshow/internal/events"
)

var ErrNothingToUndo = errors.New("nothing to undo")

const DefaultMaxHistory = 50

type ActionType string

const (
	ActionScore ActionType = "score"
	ActionBonus ActionType = "bonus"
)

type Action struct {
	Type       ActionType `json:"type"`
	Contestant int        `json:"contestant"`
	Points     int        `json:"points"`
	Round      int        `json:"round,omitempty"`
	Entry      int        `json:"entry,omitempty"`
	Reason     string     `json:"reason,omitempty"`
	RecordedAt time.Time  `json:"recordedAt"`
}

// Reverter applies the inverse of a recorded action to the game.
type Reverter interface {
	RevertRound(idx, entry, points int)
	RevertBonus(idx, points int)
}

// History keeps the most recent score-changing actions so they can be
// taken back one at a time. It fills itself by observing the event bus.
type History struct {
	mu      sync.Mutex
	actions []Action
	max     int
	target  Reverter
	bus     *events.Bus
	now     func() time.Time
}

func New(max int, target Reverter, bus *events.Bus) *History {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	h := &History{
		max:    max,
		target: target,
		bus:    bus,
		now:    time.Now,
	}
	bus.Subscribe(h)
	return h
}

func (h *History) Notify(ev events.Event) {
	switch e := ev.(type) {
	case events.RoundSubmitted:
		for _, c := range e.Changes {
			if c.Points == 0 {
				continue
			}
			h.Record(Action{Type: ActionScore, Contestant: c.Contestant, Points: c.Points, Round: e.Round, Entry: c.Entry})
		}
	case events.BonusAwarded:
		h.Record(Action{Type: ActionBonus, Contestant: e.Contestant, Points: e.Points, Round: e.Round, Reason: e.Reason})
	}
}

// Record appends an action, dropping the oldest once the history is full.
func (h *History) Record(a Action) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if a.RecordedAt.IsZero() {
		a.RecordedAt = h.now()
	}
	h.actions = append(h.actions, a)
	if len(h.actions) > h.max {
		h.actions = h.actions[len(h.actions)-h.max:]
	}
}

// Undo reverts the most recent action.
func (h *History) Undo() (Action, error) {
	h.mu.Lock()
	if len(h.actions) == 0 {
		h.mu.Unlock()
		return Action{}, ErrNothingToUndo
	}
	a := h.actions[len(h.actions)-1]
	h.actions = h.actions[:len(h.actions)-1]
	h.mu.Unlock()

	switch a.Type {
	case ActionScore:
		h.target.RevertRound(a.Contestant, a.Entry, a.Points)
	case ActionBonus:
		h.target.RevertBonus(a.Contestant, a.Points)
	}
	h.bus.Publish(events.ActionUndone{Action: string(a.Type), Contestant: a.Contestant, Points: a.Points})
	return a, nil
}

func (h *History) CanUndo() bool {
	return h.Len() > 0
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.actions)
}

func (h *History) Actions() []Action {
	h.mu.Lock()
	defer h.mu.Unlock()
	list := make([]Action, len(h.actions))
	copy(list, h.actions)
	return list
}
