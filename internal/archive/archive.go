// Package archive 错题本：记录答错的题目，供复习和练习出题使用。
package archive

import (
	"context"
	"strings"

	"github.com/wfunc/math-tycoon/internal/config"
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/models"
)

// DefaultLimit List默认返回条数
const DefaultLimit = 50

// Query 查询条件
type Query struct {
	GameID string
	Op     models.OpKind
	Limit  int
}

func (q Query) limit() int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

// OpCount 某类运算的错题数
type OpCount struct {
	Op    models.OpKind `json:"type"`
	Count int           `json:"count"`
}

// Summary 错题统计
type Summary struct {
	Total int       `json:"total"`
	ByOp  []OpCount `json:"by_type"`
}

// Store 错题存储
type Store interface {
	Record(ctx context.Context, w *models.WrongAnswer) error
	// List 按时间倒序返回
	List(ctx context.Context, q Query) ([]models.WrongAnswer, error)
	Summary(ctx context.Context) (*Summary, error)
	Close() error
}

// Open 按配置创建错题存储
func Open(cfg config.ArchiveConfig) (Store, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite", "sqlite3":
		return OpenSQLite(cfg.DSN, cfg.LogLevel)
	}
	return nil, errors.Newf(errors.ErrConfigValidate, "不支持的错题本驱动: %s", cfg.Driver)
}

func validate(w *models.WrongAnswer) error {
	if w == nil || w.RecordID == "" || w.GameID == "" {
		return errors.New(errors.ErrInvalidParam, "错题记录缺少ID")
	}
	if !w.Op.Valid() {
		return errors.Newf(errors.ErrInvalidParam, "未知运算: %s", w.Op)
	}
	return nil
}

// summarize 按AllOps顺序输出，没有错题的运算也列出
func summarize(counts map[models.OpKind]int) *Summary {
	s := &Summary{ByOp: make([]OpCount, 0, len(models.AllOps))}
	for _, op := range models.AllOps {
		s.ByOp = append(s.ByOp, OpCount{Op: op, Count: counts[op]})
		s.Total += counts[op]
	}
	return s
}
