package events

import (
	"sync"
	"time"
)

type Kind string

const (
	KindAnswerMarked   Kind = "answerMarked"
	KindRoundSubmitted Kind = "roundSubmitted"
	KindBonusAwarded   Kind = "bonusAwarded"
	KindRoundStarted   Kind = "roundStarted"
	KindGameEnded      Kind = "gameEnded"
	KindPauseChanged   Kind = "pauseChanged"
	KindActionUndone   Kind = "actionUndone"
)

// Event is anything published by a game session.
type Event interface {
	Kind() Kind
}

type AnswerMarked struct {
	Contestant int  `json:"contestant"`
	Correct    bool `json:"correct"`
}

// ScoreChange is one contestant's result inside a submitted round.
// Entry is the position of the result in the contestant's round history.
type ScoreChange struct {
	Contestant int  `json:"contestant"`
	Points     int  `json:"points"`
	Correct    bool `json:"correct"`
	Entry      int  `json:"entry"`
}

type RoundSubmitted struct {
	Round   int           `json:"round"`
	Changes []ScoreChange `json:"changes"`
}

type BonusAwarded struct {
	Contestant int       `json:"contestant"`
	Points     int       `json:"points"`
	Reason     string    `json:"reason"`
	Round      int       `json:"round"`
	AwardedAt  time.Time `json:"awardedAt"`
}

type RoundStarted struct {
	Round int `json:"round"`
}

type GameEnded struct {
	Rounds int `json:"rounds"`
}

type PauseChanged struct {
	Paused bool `json:"paused"`
}

type ActionUndone struct {
	Action     string `json:"action"`
	Contestant int    `json:"contestant"`
	Points     int    `json:"points"`
}

func (AnswerMarked) Kind() Kind   { return KindAnswerMarked }
func (RoundSubmitted) Kind() Kind { return KindRoundSubmitted }
func (BonusAwarded) Kind() Kind   { return KindBonusAwarded }
func (RoundStarted) Kind() Kind   { return KindRoundStarted }
func (GameEnded) Kind() Kind      { return KindGameEnded }
func (PauseChanged) Kind() Kind   { return KindPauseChanged }
func (ActionUndone) Kind() Kind   { return KindActionUndone }

type Observer interface {
	Notify(ev Event)
}

type ObserverFunc func(ev Event)

func (f ObserverFunc) Notify(ev Event) { f(ev) }

// Bus delivers every published event to each observer, synchronously and
// in subscription order.
type Bus struct {
	mu        sync.RWMutex
	observers []Observer
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(o Observer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.observers = append(b.observers, o)
}

// Publish may be called from inside an observer; the observer list is
// copied before delivery.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	observers := make([]Observer, len(b.observers))
	copy(observers, b.observers)
	b.mu.RUnlock()

	for _, o := range observers {
		o.Notify(ev)
	}
}
