package question

import (
	"fmt"

	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/models"
	"github.com/wfunc/math-tycoon/internal/rng"
)

// Contextual 根据场景参数构造题目。
//
// 减法结果不为正时改写题目：不够时问还差多少，刚好够时问是几倍（答案为1）。
func Contextual(o Override, src rng.Source, f *Formatter) (*models.Question, error) {
	if f == nil {
		f = NewFormatter("")
	}

	subject := o.Subject
	if o.Primary || subject == "" {
		subject = "你"
	}
	ask := func(what string) string {
		if subject == "你" {
			return "请计算" + what + "："
		}
		return fmt.Sprintf("请帮 %s 计算%s：", subject, what)
	}

	q := &models.Question{Op: o.Op}
	explain := o.Explanation

	switch o.Op {
	case models.OpAdd:
		if o.Base < 0 || o.Delta <= 0 {
			return nil, invalid(o)
		}
		q.Answer = o.Base + o.Delta
		q.Prompt = fmt.Sprintf("%s\n\n%s 现有: %s\n收入: %s\n\n%s",
			o.Scenario, subject, f.Money(o.Base), f.Money(o.Delta), ask("总金额"))

	case models.OpSub:
		if o.Base < 0 || o.Delta <= 0 {
			return nil, invalid(o)
		}
		switch {
		case o.Base > o.Delta:
			q.Answer = o.Base - o.Delta
			q.Prompt = fmt.Sprintf("%s\n\n%s 现有: %s\n花费: %s\n\n%s",
				o.Scenario, subject, f.Money(o.Base), f.Money(o.Delta), ask("剩余金额"))
		case o.Base < o.Delta:
			q.Answer = o.Delta - o.Base
			q.Prompt = fmt.Sprintf("%s\n\n%s 现有: %s\n需要: %s\n\n%s",
				o.Scenario, subject, f.Money(o.Base), f.Money(o.Delta), ask("还差多少钱"))
			explain = fmt.Sprintf("%d - %d = %d", o.Delta, o.Base, q.Answer)
		default:
			q.Op = models.OpDiv
			q.Answer = 1
			q.Prompt = fmt.Sprintf("%s\n\n%s 现有: %s\n需要: %s\n\n%s",
				o.Scenario, subject, f.Money(o.Base), f.Money(o.Delta), ask("现有的钱是需要的几倍"))
			explain = fmt.Sprintf("%d ÷ %d = 1", o.Base, o.Delta)
		}

	case models.OpMul:
		if o.Base <= 0 || o.Delta <= 0 {
			return nil, invalid(o)
		}
		q.Answer = o.Base * o.Delta
		q.Prompt = fmt.Sprintf("%s\n\n基础金额: %s\n倍数: %d倍\n\n%s",
			o.Scenario, f.Money(o.Base), o.Delta, ask("总金额"))

	case models.OpDiv:
		if o.Base <= 0 || o.Delta <= 0 || o.Base%o.Delta != 0 {
			return nil, invalid(o)
		}
		q.Answer = o.Base / o.Delta
		q.Prompt = fmt.Sprintf("%s\n\n总数: %s\n平均分成: %d份\n\n%s",
			o.Scenario, f.Number(o.Base), o.Delta, ask("每份是多少"))

	default:
		return nil, invalid(o)
	}

	if explain == "" {
		explain = fmt.Sprintf("%d %s %d = %d", o.Base, q.Op.Symbol(), o.Delta, q.Answer)
	}
	q.Explanation = explain
	q.Difficulty = difficulty(q.Op)
	q.Options = Options(q.Answer, src)
	return q, nil
}

func difficulty(op models.OpKind) int {
	if op == models.OpMul || op == models.OpDiv {
		return 2
	}
	return 1
}

func invalid(o Override) error {
	return errors.Newf(errors.ErrInvalidQuestion, "无法构造题目: %s %d %s %d", o.Op, o.Base, o.Op.Symbol(), o.Delta)
}
