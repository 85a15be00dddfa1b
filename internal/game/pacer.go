package game

import (
	"context"
	"time"
)

// Pacer 表现性停顿（掷骰动画、逐格移动、机器人思考），不影响结果
type Pacer interface {
	Pause(ctx context.Context, d time.Duration) error
}

// TimerPacer 真实计时
type TimerPacer struct{}

// Pause 等待d，ctx取消时提前返回
func (TimerPacer) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NopPacer 不等待（测试用）
type NopPacer struct{}

// Pause 立即返回
func (NopPacer) Pause(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}
