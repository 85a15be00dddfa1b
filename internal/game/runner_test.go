package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/question"
	"github.com/wfunc/math-tycoon/internal/rng"
)

func newTestRunner(t *testing.T, size int) *Runner {
	e, err := NewEngine(Options{
		Source:   rng.NewScripted(),
		Provider: question.NewLocalGenerator(rng.NewSeeded(1), nil, 0),
		Pacer:    NopPacer{},
	})
	require.NoError(t, err)
	return NewRunner(e, size)
}

func TestRunnerDo(t *testing.T) {
	r := newTestRunner(t, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	require.NoError(t, r.Do(ctx, Command{Kind: InputStart, Mode: ModeVsFriend}))
	snap := r.Engine().Snapshot()
	assert.Equal(t, PhaseAwaitingRoll, snap.Phase)
	assert.Len(t, snap.Players, 2)

	// 快照校验在入队前完成
	err := r.Do(ctx, Command{Kind: InputDecision, Accept: true})
	assert.True(t, errors.Is(err, errors.ErrNoPendingDecision))
}

func TestRunnerRejectsBeforeStart(t *testing.T) {
	r := newTestRunner(t, 4)

	err := r.Submit(Command{Kind: InputRoll})
	assert.True(t, errors.Is(err, errors.ErrGameNotStarted))

	err = r.Submit(Command{Kind: InputStart, Mode: "P_VS_ZOO"})
	assert.True(t, errors.Is(err, errors.ErrInvalidParam))
}

func TestRunnerQueueFull(t *testing.T) {
	r := newTestRunner(t, 1)

	require.NoError(t, r.Submit(Command{Kind: InputStart, Mode: ModeVsAI}))
	err := r.Submit(Command{Kind: InputStart, Mode: ModeVsAI})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrQueueFull))
}

func TestRunnerSubmitExecutes(t *testing.T) {
	r := newTestRunner(t, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go r.Run(ctx)

	require.NoError(t, r.Submit(Command{Kind: InputStart, Mode: ModeVsFriendAndAI}))
	assert.Eventually(t, func() bool {
		return r.Engine().Snapshot().Phase == PhaseAwaitingRoll
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, r.Engine().Snapshot().Players, 3)
}

func TestRunnerDoCanceled(t *testing.T) {
	r := newTestRunner(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Do(ctx, Command{Kind: InputStart, Mode: ModeVsAI})
	assert.True(t, errors.Is(err, errors.ErrCanceled))
}
