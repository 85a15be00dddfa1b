package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/math-tycoon/internal/errors"
)

func TestMachineTurnCycle(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, PhaseIdle, m.Phase())

	steps := []struct {
		event string
		want  Phase
	}{
		{EventStart, PhaseAwaitingRoll},
		{EventRoll, PhaseMoving},
		{EventAsk, PhaseAwaitingAnswer},
		{EventAnswer, PhaseResolving},
		{EventLand, PhaseResolving},
		{EventOffer, PhaseAwaitingDecision},
		{EventDecide, PhaseResolving},
		{EventEndTurn, PhaseAwaitingRoll},
		{EventGameOver, PhaseGameOver},
	}
	for _, st := range steps {
		if st.event == EventLand {
			// 答完起点题后回到moving再落地
			m.current = PhaseMoving
		}
		require.NoError(t, m.Trigger(st.event), st.event)
		assert.Equal(t, st.want, m.Phase(), st.event)
	}
}

func TestMachineInvalidTransition(t *testing.T) {
	m := NewMachine()

	err := m.Trigger(EventRoll)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidTransition))
	assert.Contains(t, err.Error(), "可用=[start]")
	assert.Equal(t, PhaseIdle, m.Phase())

	require.NoError(t, m.Trigger(EventStart))
	assert.False(t, m.Can(EventAnswer))
	assert.Error(t, m.Trigger(EventDecide))
	assert.Equal(t, PhaseAwaitingRoll, m.Phase())
}

func TestMachineGameOverIsTerminal(t *testing.T) {
	m := NewMachine()
	require.NoError(t, m.Trigger(EventStart))
	require.NoError(t, m.Trigger(EventGameOver))

	assert.Empty(t, m.validEvents())
	assert.False(t, m.Can(EventGameOver))
	assert.Error(t, m.Trigger(EventGameOver))
	assert.Error(t, m.Trigger(EventRoll))
}

func TestMachineValidEvents(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, []string{EventStart}, m.validEvents())

	require.NoError(t, m.Trigger(EventStart))
	assert.Equal(t, []string{EventAsk, EventEndTurn, EventGameOver, EventRoll}, m.validEvents())
}

func TestMachineOnTransition(t *testing.T) {
	m := NewMachine()

	var got []Transition
	m.OnTransition(func(from, to Phase, event string) {
		got = append(got, Transition{From: from, Event: event, To: to})
	})

	require.NoError(t, m.Trigger(EventStart))
	require.NoError(t, m.Trigger(EventRoll))
	assert.Error(t, m.Trigger(EventStart))

	assert.Equal(t, []Transition{
		{From: PhaseIdle, Event: EventStart, To: PhaseAwaitingRoll},
		{From: PhaseAwaitingRoll, Event: EventRoll, To: PhaseMoving},
	}, got)
}
