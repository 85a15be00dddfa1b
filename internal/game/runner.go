package game

import (
	"context"

	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/logger"
	"go.uber.org/zap"
)

// DefaultQueueSize 指令队列默认长度
const DefaultQueueSize = 16

type job struct {
	cmd  Command
	done chan error // 可为nil
}

// Runner 单协程消费指令队列，保证同一时刻只有一个输入在执行
type Runner struct {
	engine *Engine
	queue  chan job
	log    *zap.Logger
}

// NewRunner 创建指令执行器
func NewRunner(e *Engine, size int) *Runner {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Runner{
		engine: e,
		queue:  make(chan job, size),
		log:    logger.WithModule("game"),
	}
}

// Engine 被驱动的引擎
func (r *Runner) Engine() *Engine {
	return r.engine
}

// Run 执行队列中的指令直到ctx结束
func (r *Runner) Run(ctx context.Context) {
	r.log.Info("指令执行器启动")
	defer r.log.Info("指令执行器停止")

	for {
		select {
		case <-ctx.Done():
			return
		case j := <-r.queue:
			err := r.engine.Execute(ctx, j.cmd)
			if err != nil {
				r.log.Warn("指令执行失败",
					zap.String("kind", string(j.cmd.Kind)),
					zap.Error(err))
			}
			if j.done != nil {
				j.done <- err
			}
		}
	}
}

// Submit 按最新快照校验后入队，不等待执行结果
func (r *Runner) Submit(cmd Command) error {
	if err := r.engine.Snapshot().Check(cmd); err != nil {
		return err
	}
	select {
	case r.queue <- job{cmd: cmd}:
		return nil
	default:
		return errors.New(errors.ErrQueueFull)
	}
}

// Do 入队并等待执行结果
func (r *Runner) Do(ctx context.Context, cmd Command) error {
	if err := r.engine.Snapshot().Check(cmd); err != nil {
		return err
	}
	done := make(chan error, 1)
	select {
	case r.queue <- job{cmd: cmd, done: done}:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.ErrCanceled)
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.ErrCanceled)
	}
}
