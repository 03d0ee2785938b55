package undo

import (
	"testing"

	"gameshow/internal/events"
	"gameshow/internal/gamestate"
	"gameshow/internal/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReverter struct {
	rounds  [][3]int
	bonuses [][2]int
}

func (f *fakeReverter) RevertRound(idx, entry, points int) {
	f.rounds = append(f.rounds, [3]int{idx, entry, points})
}

func (f *fakeReverter) RevertBonus(idx, points int) {
	f.bonuses = append(f.bonuses, [2]int{idx, points})
}

func TestHistory_UndoEmpty(t *testing.T) {
	h := New(0, &fakeReverter{}, events.NewBus())

	_, err := h.Undo()
	assert.ErrorIs(t, err, ErrNothingToUndo)
	assert.False(t, h.CanUndo())
}

func TestHistory_RecordsNonZeroRoundChanges(t *testing.T) {
	bus := events.NewBus()
	h := New(10, &fakeReverter{}, bus)

	bus.Publish(events.RoundSubmitted{Round: 2, Changes: []events.ScoreChange{
		{Contestant: 0, Points: 5, Entry: 1},
		{Contestant: 1, Points: 0, Entry: 1},
		{Contestant: 2, Points: -3, Entry: 1},
	}})

	actions := h.Actions()
	require.Len(t, actions, 2)
	assert.Equal(t, ActionScore, actions[0].Type)
	assert.Equal(t, 2, actions[0].Round)
	assert.Equal(t, 2, actions[1].Contestant)
	assert.Equal(t, -3, actions[1].Points)
	assert.Equal(t, 1, actions[1].Entry)
}

func TestHistory_UndoOrder(t *testing.T) {
	bus := events.NewBus()
	rev := &fakeReverter{}
	h := New(10, rev, bus)

	var undone []events.ActionUndone
	bus.Subscribe(events.ObserverFunc(func(ev events.Event) {
		if u, ok := ev.(events.ActionUndone); ok {
			undone = append(undone, u)
		}
	}))

	bus.Publish(events.RoundSubmitted{Round: 1, Changes: []events.ScoreChange{{Contestant: 0, Points: 4, Entry: 0}}})
	bus.Publish(events.BonusAwarded{Contestant: 1, Points: 5, Reason: "fastest"})

	a, err := h.Undo()
	require.NoError(t, err)
	assert.Equal(t, ActionBonus, a.Type)
	assert.Equal(t, [][2]int{{1, 5}}, rev.bonuses)

	a, err = h.Undo()
	require.NoError(t, err)
	assert.Equal(t, ActionScore, a.Type)
	assert.Equal(t, [][3]int{{0, 0, 4}}, rev.rounds)

	require.Len(t, undone, 2)
	assert.Equal(t, "bonus", undone[0].Action)
	assert.False(t, h.CanUndo())
}

func TestHistory_DropsOldest(t *testing.T) {
	h := New(3, &fakeReverter{}, events.NewBus())
	for i := 1; i <= 5; i++ {
		h.Record(Action{Type: ActionScore, Contestant: 0, Points: i})
	}

	actions := h.Actions()
	require.Len(t, actions, 3)
	assert.Equal(t, 3, actions[0].Points)
	assert.Equal(t, 5, actions[2].Points)
	assert.False(t, actions[0].RecordedAt.IsZero())
}

func TestHistory_AgainstGameState(t *testing.T) {
	bus := events.NewBus()
	state := gamestate.New(bus)
	state.AddContestant("Alice")
	h := New(DefaultMaxHistory, state, bus)

	state.StartRound()
	_, err := state.SubmitRound([]gamestate.RoundEntry{{Contestant: 0, Points: 10, Correct: true}})
	require.NoError(t, err)
	state.StartRound()
	_, err = state.SubmitRound([]gamestate.RoundEntry{{Contestant: 0, Points: -4}})
	require.NoError(t, err)
	_, err = state.AwardBonus(0, 5, "showmanship")
	require.NoError(t, err)
	assert.Equal(t, 11, state.Score(0))

	_, err = h.Undo()
	require.NoError(t, err)
	assert.Equal(t, 6, state.Score(0))
	assert.Empty(t, state.Bonuses(0))

	_, err = h.Undo()
	require.NoError(t, err)
	assert.Equal(t, 10, state.Score(0))
	assert.Len(t, state.View().RoundHistory[0], 1)
}

func TestHistory_UndoTwoSubmissionsInOneRound(t *testing.T) {
	bus := events.NewBus()
	state := gamestate.New(bus)
	state.AddContestant("Alice")
	h := New(DefaultMaxHistory, state, bus)

	state.StartRound()
	_, err := state.SubmitRound([]gamestate.RoundEntry{{Contestant: 0, Points: 3, Correct: true}})
	require.NoError(t, err)
	_, err = state.SubmitRound([]gamestate.RoundEntry{{Contestant: 0, Points: -1}})
	require.NoError(t, err)

	_, err = h.Undo()
	require.NoError(t, err)
	assert.Equal(t, 3, state.Score(0))
	assert.Equal(t, []stats.RoundResult{{Points: 3, Correct: true}}, state.View().RoundHistory[0])
}

func TestHistory_UndoAfterSkippedRound(t *testing.T) {
	bus := events.NewBus()
	state := gamestate.New(bus)
	state.AddContestant("Alice")
	h := New(DefaultMaxHistory, state, bus)

	state.StartRound()
	state.StartRound()
	_, err := state.SubmitRound([]gamestate.RoundEntry{{Contestant: 0, Points: 5, Correct: true}})
	require.NoError(t, err)

	_, err = h.Undo()
	require.NoError(t, err)
	assert.Equal(t, 0, state.Score(0))
	assert.Empty(t, state.View().RoundHistory[0])
}

func TestHistory_UndoKeepsLaterZeroPointEntries(t *testing.T) {
	bus := events.NewBus()
	state := gamestate.New(bus)
	state.AddContestant("Alice")
	h := New(DefaultMaxHistory, state, bus)

	state.StartRound()
	_, err := state.SubmitRound([]gamestate.RoundEntry{{Contestant: 0, Points: 4, Correct: true}})
	require.NoError(t, err)
	state.StartRound()
	_, err = state.SubmitRound([]gamestate.RoundEntry{{Contestant: 0, Points: 0}})
	require.NoError(t, err)

	_, err = h.Undo()
	require.NoError(t, err)
	assert.Equal(t, 0, state.Score(0))
	assert.Equal(t, []stats.RoundResult{{Points: 0}}, state.View().RoundHistory[0])
}
