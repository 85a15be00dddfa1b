package question

import (
	"context"
	"fmt"
	"time"

	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/models"
	"github.com/wfunc/math-tycoon/internal/rng"
)

const (
	// weakThreshold 错题数超过该值的运算视为薄弱项
	weakThreshold = 2
	// weakPreference 薄弱项被优先选中的概率
	weakPreference = 0.7
)

// LocalGenerator 本地出题器
type LocalGenerator struct {
	src   rng.Source
	fmt   *Formatter
	delay time.Duration // 随机出题的模拟延迟
}

// NewLocalGenerator 创建本地出题器
func NewLocalGenerator(src rng.Source, f *Formatter, delay time.Duration) *LocalGenerator {
	if f == nil {
		f = NewFormatter("")
	}
	return &LocalGenerator{src: src, fmt: f, delay: delay}
}

// Generate 有场景参数时构造场景题，否则按错题分布随机出题
func (g *LocalGenerator) Generate(ctx context.Context, req Request) (*models.Question, error) {
	if req.Override != nil {
		return Contextual(*req.Override, g.src, g.fmt)
	}

	if g.delay > 0 {
		timer := time.NewTimer(g.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), errors.ErrCanceled, "出题被取消")
		}
	}

	op := req.Op
	if !op.Valid() {
		op = g.pickOp(req.Mistakes)
	}
	switch op {
	case models.OpSub:
		return g.sub(), nil
	case models.OpMul:
		return g.mul(), nil
	case models.OpDiv:
		return g.div(), nil
	default:
		return g.add(), nil
	}
}

// pickOp 错题多的运算优先出题
func (g *LocalGenerator) pickOp(mistakes map[models.OpKind]int) models.OpKind {
	var weak models.OpKind
	most := weakThreshold
	for _, op := range models.AllOps {
		if mistakes[op] > most {
			weak, most = op, mistakes[op]
		}
	}
	if weak != "" && g.src.Float64() < weakPreference {
		return weak
	}
	return models.AllOps[g.src.IntN(len(models.AllOps))]
}

func (g *LocalGenerator) between(min, max int) int {
	return min + g.src.IntN(max-min+1)
}

func (g *LocalGenerator) pick(templates []string) string {
	return templates[g.src.IntN(len(templates))]
}

func (g *LocalGenerator) build(op models.OpKind, prompt string, a, b, answer int) *models.Question {
	return &models.Question{
		Prompt:      prompt,
		Answer:      answer,
		Options:     Options(answer, g.src),
		Op:          op,
		Difficulty:  difficulty(op),
		Explanation: fmt.Sprintf("%d %s %d = %d", a, op.Symbol(), b, answer),
	}
}

func (g *LocalGenerator) add() *models.Question {
	a, b := g.between(10, 500), g.between(10, 500)
	prompt := g.pick([]string{
		fmt.Sprintf("你在超市买了%d元的零食和%d元的饮料，一共要付多少钱？", a, b),
		fmt.Sprintf("你的存钱罐里有%d元，妈妈又奖励了你%d元，现在一共有多少钱？", a, b),
		fmt.Sprintf("第一天走了%d步，第二天走了%d步，两天一共走了多少步？", a, b),
	})
	return g.build(models.OpAdd, prompt, a, b, a+b)
}

func (g *LocalGenerator) sub() *models.Question {
	a := g.between(100, 900)
	b := g.between(10, a-10)
	prompt := g.pick([]string{
		fmt.Sprintf("你有%d元，买玩具花掉了%d元，还剩多少钱？", a, b),
		fmt.Sprintf("这本书一共有%d页，你已经看了%d页，还有多少页没看？", a, b),
		fmt.Sprintf("原价%d元的衣服，现在优惠%d元，现价是多少？", a, b),
	})
	return g.build(models.OpSub, prompt, a, b, a-b)
}

func (g *LocalGenerator) mul() *models.Question {
	a, b := g.between(10, 90), g.between(2, 9)
	prompt := g.pick([]string{
		fmt.Sprintf("一张电影票%d元，买%d张需要多少钱？", a, b),
		fmt.Sprintf("每层楼高%d米，这栋楼有%d层，一共高多少米？", b, a),
		fmt.Sprintf("一盒巧克力有%d块，%d盒一共有多少块？", a, b),
	})
	return g.build(models.OpMul, prompt, a, b, a*b)
}

func (g *LocalGenerator) div() *models.Question {
	b := g.between(2, 9)
	answer := g.between(10, 100)
	a := answer * b
	prompt := g.pick([]string{
		fmt.Sprintf("把%d颗糖果平均分给%d个小朋友，每人分到几颗？", a, b),
		fmt.Sprintf("这本故事书%d页，如果每天看%d页，几天能看完？", a, b),
		fmt.Sprintf("%d元可以买%d个同样的笔记本，一个笔记本多少钱？", a, b),
	})
	return g.build(models.OpDiv, prompt, a, b, answer)
}
