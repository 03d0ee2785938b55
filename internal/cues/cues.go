// Package cues maps game events to the short tone sequences the host
// console plays.
package cues

import (
	"gameshow/internal/events"
)

type Waveform string

const (
	Sine     Waveform = "sine"
	Sawtooth Waveform = "sawtooth"
)

// Tone is a single note. Duration is in seconds, OffsetMs is the delay
// from the start of the cue.
type Tone struct {
	Frequency float64  `json:"frequency"`
	Duration  float64  `json:"duration"`
	Waveform  Waveform `json:"waveform"`
	OffsetMs  int      `json:"offsetMs"`
}

type Cue struct {
	Name  string `json:"name"`
	Tones []Tone `json:"tones"`
}

var (
	Correct = Cue{Name: "correct", Tones: []Tone{
		{Frequency: 800, Duration: 0.1, Waveform: Sine},
		{Frequency: 1000, Duration: 0.15, Waveform: Sine, OffsetMs: 100},
	}}
	Incorrect = Cue{Name: "incorrect", Tones: []Tone{
		{Frequency: 200, Duration: 0.3, Waveform: Sawtooth},
	}}
	RoundStart = Cue{Name: "roundStart", Tones: []Tone{
		{Frequency: 600, Duration: 0.1, Waveform: Sine},
		{Frequency: 800, Duration: 0.1, Waveform: Sine, OffsetMs: 100},
		{Frequency: 1000, Duration: 0.2, Waveform: Sine, OffsetMs: 200},
	}}
	GameEnd = Cue{Name: "gameEnd", Tones: arpeggio(150, 0.15, 523, 659, 784, 1047)}
	Bonus   = Cue{Name: "bonus", Tones: []Tone{
		{Frequency: 1200, Duration: 0.1, Waveform: Sine},
		{Frequency: 1400, Duration: 0.2, Waveform: Sine, OffsetMs: 100},
	}}
)

func arpeggio(stepMs int, duration float64, freqs ...float64) []Tone {
	tones := make([]Tone, len(freqs))
	for i, f := range freqs {
		tones[i] = Tone{Frequency: f, Duration: duration, Waveform: Sine, OffsetMs: i * stepMs}
	}
	return tones
}

// ForEvent returns the cues an event triggers, in play order.
func ForEvent(ev events.Event) []Cue {
	switch e := ev.(type) {
	case events.AnswerMarked:
		if e.Correct {
			return []Cue{Correct}
		}
		return []Cue{Incorrect}
	case events.RoundSubmitted:
		var out []Cue
		for _, c := range e.Changes {
			switch {
			case c.Points > 0:
				out = append(out, Correct)
			case c.Points < 0:
				out = append(out, Incorrect)
			}
		}
		return out
	case events.RoundStarted:
		return []Cue{RoundStart}
	case events.GameEnded:
		return []Cue{GameEnd}
	case events.BonusAwarded:
		return []Cue{Bonus}
	}
	return nil
}

// Player forwards cues to send while enabled reports true.
type Player struct {
	enabled func() bool
	send    func(Cue)
}

func NewPlayer(enabled func() bool, send func(Cue)) *Player {
	return &Player{enabled: enabled, send: send}
}

func (p *Player) Notify(ev events.Event) {
	cues := ForEvent(ev)
	if len(cues) == 0 || !p.enabled() {
		return
	}
	for _, c := range cues {
		p.send(c)
	}
}
