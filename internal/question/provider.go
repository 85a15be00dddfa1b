// Package question 负责出题：根据具体场景生成带干扰项的数学题。
package question

import (
	"context"

	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/models"
)

// OptionCount 每道题的选项数
const OptionCount = 4

// Override 指定场景的出题参数
type Override struct {
	Subject     string        `json:"subject"`  // 题目主体（玩家名）
	Primary     bool          `json:"primary"`  // 主体是主玩家时用第二人称
	Scenario    string        `json:"scenario"` // 场景描述
	Base        int           `json:"base"`
	Delta       int           `json:"delta"`
	Op          models.OpKind `json:"op"`
	Explanation string        `json:"explanation,omitempty"` // 为空时自动生成
}

// Request 出题请求
type Request struct {
	Mistakes map[models.OpKind]int `json:"mistakes"`
	Override *Override             `json:"override,omitempty"`
	Op       models.OpKind         `json:"op,omitempty"` // 指定运算类型（练习）
}

// Provider 出题服务
type Provider interface {
	Generate(ctx context.Context, req Request) (*models.Question, error)
}

// Validate 校验题目：恰好4个互不相同的正整数选项，且恰有一个等于答案
func Validate(q *models.Question) error {
	if q == nil {
		return errors.New(errors.ErrInvalidQuestion, "题目为空")
	}
	if !q.Op.Valid() {
		return errors.Newf(errors.ErrInvalidQuestion, "未知运算: %s", q.Op)
	}
	if len(q.Options) != OptionCount {
		return errors.Newf(errors.ErrInvalidQuestion, "选项数为 %d", len(q.Options))
	}

	seen := make(map[int]struct{}, OptionCount)
	matches := 0
	for _, o := range q.Options {
		if o <= 0 {
			return errors.Newf(errors.ErrInvalidQuestion, "选项 %d 不是正数", o)
		}
		if _, dup := seen[o]; dup {
			return errors.Newf(errors.ErrInvalidQuestion, "选项 %d 重复", o)
		}
		seen[o] = struct{}{}
		if o == q.Answer {
			matches++
		}
	}
	if matches != 1 {
		return errors.New(errors.ErrInvalidQuestion, "选项中不包含正确答案")
	}
	return nil
}
