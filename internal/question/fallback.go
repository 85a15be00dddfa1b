package question

import (
	"context"

	"github.com/wfunc/math-tycoon/internal/config"
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/models"
	"github.com/wfunc/math-tycoon/internal/rng"
	"go.uber.org/zap"
)

// FallbackProvider 主出题服务失败时回退到本地出题器，错误不会向上暴露
type FallbackProvider struct {
	primary Provider
	local   *LocalGenerator
	log     *zap.Logger
}

// NewFallbackProvider 创建带本地回退的出题服务
func NewFallbackProvider(primary Provider, local *LocalGenerator, log *zap.Logger) *FallbackProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &FallbackProvider{primary: primary, local: local, log: log}
}

// primaryAttempts 超时或服务不可用时主出题服务的最多尝试次数
const primaryAttempts = 2

// Generate 出题
func (p *FallbackProvider) Generate(ctx context.Context, req Request) (*models.Question, error) {
	if p.primary != nil {
		for attempt := 1; attempt <= primaryAttempts; attempt++ {
			q, err := p.primary.Generate(ctx, req)
			if err == nil {
				err = Validate(q)
			}
			if err == nil {
				return q, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !errors.IsRetryable(err) || attempt == primaryAttempts {
				p.log.Warn("出题服务不可用，使用本地出题", zap.Error(err), zap.Int("attempts", attempt))
				break
			}
			p.log.Debug("出题服务失败，重试", zap.Error(err))
		}
	}
	return p.local.Generate(ctx, req)
}

// NewFromConfig 根据配置创建出题服务，远程服务总是带本地回退
func NewFromConfig(cfg config.QuestionConfig, src rng.Source, f *Formatter, log *zap.Logger) Provider {
	local := NewLocalGenerator(src, f, cfg.Delay)
	if cfg.Provider != "remote" {
		return local
	}
	return NewFallbackProvider(NewRemoteProvider(cfg.RemoteURL, cfg.Timeout), local, log)
}
