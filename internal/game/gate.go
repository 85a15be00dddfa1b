package game

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/logger"
	"github.com/wfunc/math-tycoon/internal/models"
	"github.com/wfunc/math-tycoon/internal/question"
	"go.uber.org/zap"
)

// openGate 为待生效的变动出题并挂起，等待SubmitAnswer
func (e *Engine) openGate(ctx context.Context, g *Gate, o question.Override) error {
	if e.state.Gate != nil {
		return errors.New(errors.ErrGatePending)
	}
	p := e.state.Player(g.PlayerID)
	if p == nil {
		return errors.New(errors.ErrPlayerNotFound, g.PlayerID)
	}

	g.ID = uuid.NewString()
	g.Primary = g.PlayerID == e.state.PrimaryID
	o.Subject = p.Name
	o.Primary = g.Primary

	q, err := e.question(ctx, o)
	if err != nil {
		return err
	}
	g.Question = q

	if err := e.machine.Trigger(EventAsk); err != nil {
		return err
	}
	e.state.Gate = g
	return nil
}

// question 出题；出题服务失败时在本地按场景构造，不阻塞回合
func (e *Engine) question(ctx context.Context, o question.Override) (*models.Question, error) {
	q, err := e.provider.Generate(ctx, question.Request{
		Mistakes: e.state.MistakeCounts(),
		Override: &o,
	})
	if err == nil {
		err = question.Validate(q)
	}
	if err == nil {
		return q, nil
	}
	if ctx.Err() != nil {
		return nil, errors.Wrap(ctx.Err(), errors.ErrCanceled, "出题被取消")
	}

	e.log.Warn("出题失败，使用本地题目", zap.Error(err), zap.String("op", string(o.Op)))
	return question.Contextual(o, e.src, e.fmt)
}

// score 连胜和错题统计：任何一方答错都会中断连胜
func (e *Engine) score(ctx context.Context, g *Gate, option int, correct bool) {
	if correct {
		e.state.Streak++
		return
	}

	e.state.Streak = 0
	q := g.Question
	rec, ok := e.state.Mistakes[q.Op]
	if !ok {
		rec = &models.MistakeRecord{Op: q.Op}
		e.state.Mistakes[q.Op] = rec
	}
	rec.Count++
	rec.LastAt = time.Now()

	if e.recorder == nil {
		return
	}
	w := &models.WrongAnswer{
		RecordID:    uuid.NewString(),
		GameID:      e.state.GameID,
		PlayerID:    g.PlayerID,
		Op:          q.Op,
		Prompt:      q.Prompt,
		Answer:      q.Answer,
		WrongOption: option,
		Explanation: q.Explanation,
		CreatedAt:   rec.LastAt,
	}
	if err := e.recorder.Record(ctx, w); err != nil {
		e.log.Warn("错题归档失败", zap.Error(err), zap.String("game_id", e.state.GameID))
	}
}

// settle 按答题结果执行关卡背后的变动。
//
// 主玩家答错：收益作废、损失照付、租金必须重答。
// 帮其他玩家答错：该玩家“自己算对”，变动照常生效，只中断主玩家的连胜。
func (e *Engine) settle(ctx context.Context, g *Gate, correct bool) error {
	p := e.state.Player(g.PlayerID)
	if p == nil {
		return errors.New(errors.ErrPlayerNotFound, g.PlayerID)
	}

	if g.Effect == EffectJailRelease {
		if !correct {
			e.addLog("❌ 回答错误，下回合继续休息。", models.SeverityDanger)
			return e.endTurn()
		}
		p.Jailed = false
		e.addLog("✅ 回答正确！解除休息状态。", models.SeveritySuccess)
		return e.roll(ctx)
	}

	helped := !g.Primary
	if !correct && helped {
		e.addLog(fmt.Sprintf("❌ 你算错了！%s 自己%s。", p.Name, helpedVerb[g.Effect]), models.SeverityWarning)
		e.addLog("📉 惩罚：你的连胜中断了！", models.SeverityDanger)
	}
	apply := correct || helped
	tile := &e.state.Tiles[g.TileID]

	switch g.Effect {
	case EffectStartBonus:
		if apply {
			if err := e.credit(p, g.Amount); err != nil {
				return err
			}
			e.addLog(fmt.Sprintf("%s 领取工资 %s", p.Name, e.fmt.Money(g.Amount)), models.SeveritySuccess)
		} else {
			e.addLog("❌ 算错了！银行柜员拒绝发放工资。", models.SeverityDanger)
		}
		if err := e.pause(ctx, e.pacingCfg().Settle); err != nil {
			return err
		}
		return e.resolveTile(ctx)

	case EffectPurchase:
		if apply {
			if err := e.purchase(p, tile); err != nil {
				return err
			}
		} else {
			e.addLog("❌ 算错了，交易取消！失去购买机会。", models.SeverityDanger)
		}

	case EffectUpgrade:
		if apply {
			if err := e.upgrade(p, tile, g.Amount); err != nil {
				return err
			}
		} else {
			e.addLog("❌ 算错了，升级取消。", models.SeverityDanger)
		}

	case EffectRent:
		if !apply {
			e.addLog("❌ 必须算对才能继续！再试一次。", models.SeverityDanger)
			if err := e.pause(ctx, e.pacingCfg().Settle); err != nil {
				return err
			}
			return e.askRent(ctx, p, tile, g.Attempt+1)
		}
		if err := e.charge(p, g.Amount, g.CreditorID); err != nil {
			return err
		}

	case EffectChance, EffectInterest, EffectTax:
		if err := e.settleAmount(p, g, correct, apply); err != nil {
			return err
		}

	default:
		return errors.Newf(errors.ErrInvalidParam, "未知关卡: %s", g.Effect)
	}
	return e.endTurn()
}

// settleAmount 运气卡和银行：收益可以因算错而作废，损失不能逃避
func (e *Engine) settleAmount(p *models.Player, g *Gate, correct, apply bool) error {
	bank := g.Effect != EffectChance
	signed := g.Amount
	if !g.Gain {
		signed = -g.Amount
	}

	if g.Gain {
		if !apply {
			if bank {
				e.addLog("❌ 算错了，收益被取消。", models.SeverityDanger)
			} else {
				e.addLog("❌ 算错了，奖金飞走了！(机会取消)", models.SeverityDanger)
			}
			return nil
		}
		if err := e.credit(p, g.Amount); err != nil {
			return err
		}
	} else {
		if !correct && g.Primary {
			if bank {
				e.addLog("❌ 算错了，税还是要交的。", models.SeverityDanger)
			} else {
				e.addLog("❌ 算错了，还是要扣钱！", models.SeverityDanger)
			}
		}
		if err := e.charge(p, g.Amount, ""); err != nil {
			return err
		}
	}

	if !p.Bankrupt {
		sev := models.SeveritySuccess
		if !g.Gain {
			sev = models.SeverityWarning
		}
		e.addLog(fmt.Sprintf("%s (%s)", g.Text, e.fmt.Money(signed)), sev)
	}
	return nil
}

// askJail 休息站出狱题（整除），答对后立即掷骰
func (e *Engine) askJail(ctx context.Context, p *models.Player) error {
	e.state.UpgradingTileID = -1
	rule := e.state.Tiles[p.Position].Jail
	if rule == nil {
		rule = e.jailRule()
	}
	if rule == nil {
		p.Jailed = false
		if err := e.roll(ctx); err != nil {
			return err
		}
		return e.pump(ctx)
	}

	e.addLog(fmt.Sprintf("%s 在休息站，必须回答问题才能离开！", p.Name), models.SeverityWarning)
	logger.LogGameEvent("jail_gate", e.state.GameID, map[string]interface{}{"player": p.ID})
	return e.openGate(ctx, &Gate{
		Effect:   EffectJailRelease,
		PlayerID: p.ID,
		TileID:   p.Position,
	}, question.Override{
		Scenario: rule.Scenario,
		Base:     rule.Dividend,
		Delta:    rule.Divisor,
		Op:       models.OpDiv,
	})
}

// jailRule 棋盘上第一个休息站的规则
func (e *Engine) jailRule() *models.JailRule {
	for i := range e.state.Tiles {
		if e.state.Tiles[i].Jail != nil {
			return e.state.Tiles[i].Jail
		}
	}
	return nil
}
