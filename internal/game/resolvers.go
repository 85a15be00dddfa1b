package game

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/logger"
	"github.com/wfunc/math-tycoon/internal/models"
	"github.com/wfunc/math-tycoon/internal/question"
	"github.com/wfunc/math-tycoon/internal/rng"
)

// resolveTile 结算当前玩家所在的格子
func (e *Engine) resolveTile(ctx context.Context) error {
	p := e.state.ActivePlayer()
	tile := &e.state.Tiles[p.Position]
	e.addLog(fmt.Sprintf("%s 来到了 %s", p.Name, tile.Name), models.SeverityInfo)

	switch tile.Type {
	case models.TileProperty:
		return e.resolveProperty(ctx, p, tile)
	case models.TileChance:
		return e.resolveChance(ctx, p)
	case models.TileBank:
		return e.resolveBank(ctx, p, tile)
	case models.TileJail:
		p.Jailed = true
		e.addLog(fmt.Sprintf("%s 进入休息站，暂停一回合。", p.Name), models.SeverityWarning)
		return e.endTurn()
	}
	return e.endTurn()
}

func (e *Engine) resolveProperty(ctx context.Context, p *models.Player, tile *models.Tile) error {
	switch tile.Owner {
	case "":
		if p.Money < tile.Price {
			e.addLog(fmt.Sprintf("%s 资金不足，买不起这块地。", p.Name), models.SeverityWarning)
			return e.endTurn()
		}
		// 机器人先决定买不买，再出题
		if p.Automated && rng.Chance(e.src, e.rules.DeclineChance) {
			e.addLog(fmt.Sprintf("%s 决定不购买这块地。", p.Name), models.SeverityInfo)
			return e.endTurn()
		}
		return e.openGate(ctx, &Gate{
			Effect:   EffectPurchase,
			PlayerID: p.ID,
			TileID:   tile.ID,
			Amount:   tile.Price,
		}, question.Override{
			Scenario: fmt.Sprintf("%s 想要购买 %s。", p.Name, tile.Name),
			Base:     p.Money,
			Delta:    tile.Price,
			Op:       models.OpSub,
		})

	case p.ID:
		if tile.Level >= e.rules.MaxLevel {
			e.addLog(fmt.Sprintf("%s 已经是顶级了(Lv%d)！", tile.Name, tile.Level), models.SeveritySuccess)
			return e.endTurn()
		}
		cost := e.rules.upgradeCost(tile.Price)
		if p.Money < cost {
			e.addLog(fmt.Sprintf("资金不足 (需 %s)，无法升级。", e.fmt.Money(cost)), models.SeverityWarning)
			return e.endTurn()
		}
		if p.Automated {
			if float64(p.Money) < float64(cost)*e.rules.SavingsFactor {
				e.addLog(fmt.Sprintf("%s 决定保留资金，不升级。", p.Name), models.SeverityInfo)
				return e.endTurn()
			}
			return e.askUpgrade(ctx, p, tile, cost)
		}
		return e.offerUpgrade(p, tile, cost)
	}

	return e.askRent(ctx, p, tile, 0)
}

// offerUpgrade 人类玩家先确认是否升级
func (e *Engine) offerUpgrade(p *models.Player, tile *models.Tile, cost int) error {
	if err := e.machine.Trigger(EventOffer); err != nil {
		return err
	}
	e.state.Decision = &Decision{
		ID:       uuid.NewString(),
		PlayerID: p.ID,
		TileID:   tile.ID,
		Level:    tile.Level,
		Cost:     cost,
		Prompt:   fmt.Sprintf("🏰 %s (Lv%d)\n升级花费: %s\n是否升级？", tile.Name, tile.Level, e.fmt.Money(cost)),
	}
	return nil
}

func (e *Engine) askUpgrade(ctx context.Context, p *models.Player, tile *models.Tile, cost int) error {
	return e.openGate(ctx, &Gate{
		Effect:   EffectUpgrade,
		PlayerID: p.ID,
		TileID:   tile.ID,
		Amount:   cost,
	}, question.Override{
		Scenario: fmt.Sprintf("%s 升级 %s", p.Name, tile.Name),
		Base:     p.Money,
		Delta:    cost,
		Op:       models.OpSub,
	})
}

// askRent 租金 = 基础租金 × 等级；等级大于1时随机出乘法或减法题
func (e *Engine) askRent(ctx context.Context, p *models.Player, tile *models.Tile, attempt int) error {
	owner := e.state.Player(tile.Owner)
	if owner == nil {
		return errors.New(errors.ErrPlayerNotFound, tile.Owner)
	}
	level := tile.Level
	if level < 1 {
		level = 1
	}
	rent := tile.Rent * level

	o := question.Override{
		Scenario: fmt.Sprintf("%s 需支付租金 %s 给 %s。", p.Name, e.fmt.Money(rent), owner.Name),
		Base:     p.Money,
		Delta:    rent,
		Op:       models.OpSub,
	}
	if level > 1 && e.src.IntN(2) == 1 {
		o = question.Override{
			Scenario: fmt.Sprintf("%s 需支付租金给 %s。\n基础租金 %s，等级 %d级。", p.Name, owner.Name, e.fmt.Money(tile.Rent), level),
			Base:     tile.Rent,
			Delta:    level,
			Op:       models.OpMul,
		}
	}

	return e.openGate(ctx, &Gate{
		Effect:     EffectRent,
		PlayerID:   p.ID,
		TileID:     tile.ID,
		Amount:     rent,
		CreditorID: owner.ID,
		Attempt:    attempt,
	}, o)
}

// resolveChance 从事件表随机抽一张运气卡
func (e *Engine) resolveChance(ctx context.Context, p *models.Player) error {
	events := e.board.Chance
	if len(events) == 0 {
		return e.endTurn()
	}
	evt := events[e.src.IntN(len(events))]

	o := question.Override{
		Scenario: fmt.Sprintf("运气卡：%s %s", p.Name, evt.Text),
		Base:     p.Money,
		Delta:    evt.Value(),
		Op:       models.OpSub,
	}
	switch {
	case evt.Computed():
		o.Base, o.Delta, o.Op = evt.A, evt.B, evt.Op
	case evt.IsGain():
		o.Op = models.OpAdd
	}

	return e.openGate(ctx, &Gate{
		Effect:   EffectChance,
		PlayerID: p.ID,
		TileID:   p.Position,
		Amount:   evt.Value(),
		Gain:     evt.IsGain(),
		Text:     evt.Text,
	}, o)
}

// resolveBank 银行发利息（期数×每期）；税务局按地产数收税，没有地产收固定税
func (e *Engine) resolveBank(ctx context.Context, p *models.Player, tile *models.Tile) error {
	rule := tile.Bank
	if rule == nil {
		return e.endTurn()
	}

	g := &Gate{PlayerID: p.ID, TileID: tile.ID, Text: rule.Label}
	o := question.Override{Scenario: fmt.Sprintf("%s %s", p.Name, rule.Label)}

	switch rule.Kind {
	case models.BankInterest:
		g.Effect, g.Gain, g.Amount = EffectInterest, true, rule.Periods*rule.Rate
		o.Base, o.Delta, o.Op = rule.Rate, rule.Periods, models.OpMul

	case models.BankTax:
		g.Effect = EffectTax
		if n := len(p.Properties); n > 0 {
			g.Amount = n * rule.PerProperty
			o.Base, o.Delta, o.Op = rule.PerProperty, n, models.OpMul
		} else {
			g.Amount = rule.Minimum
			o.Base, o.Delta, o.Op = p.Money, rule.Minimum, models.OpSub
		}

	default:
		return e.endTurn()
	}
	return e.openGate(ctx, g, o)
}

// credit 入账并记录特效
func (e *Engine) credit(p *models.Player, amount int) error {
	if err := e.ledger.Credit(p.ID, amount); err != nil {
		return err
	}
	e.addEffect(p.Position, "+"+e.fmt.Money(amount), models.EffectMoneyGain)
	return nil
}

// charge 扣款，余额不足时破产
func (e *Engine) charge(p *models.Player, amount int, creditorID string) error {
	res, err := e.ledger.ChargeOrBankrupt(p.ID, amount, creditorID)
	if err != nil {
		return err
	}
	if res.Paid > 0 {
		e.addEffect(p.Position, e.fmt.Money(-res.Paid), models.EffectMoneyLoss)
	}

	var creditor *models.Player
	if creditorID != "" {
		creditor = e.state.Player(creditorID)
	}
	if creditor != nil && res.Transferred > 0 {
		e.addEffect(creditor.Position, "+"+e.fmt.Money(res.Transferred), models.EffectMoneyGain)
		if res.Bankrupt {
			e.addLog(fmt.Sprintf("%s 破产前将剩余 %s 抵扣给了 %s。", p.Name, e.fmt.Money(res.Transferred), creditor.Name), models.SeverityWarning)
		} else {
			e.addLog(fmt.Sprintf("%s 向 %s 支付了 %s", p.Name, creditor.Name, e.fmt.Money(res.Transferred)), models.SeverityInfo)
		}
	}

	if res.Bankrupt {
		e.addLog(fmt.Sprintf("💸 %s 资金不足，宣告破产！所有资产已被收回。", p.Name), models.SeverityDanger)
		e.addEffect(p.Position, "破产", models.EffectBankrupt)
		logger.LogGameEvent("bankrupt", e.state.GameID, map[string]interface{}{
			"player":    p.ID,
			"creditor":  creditorID,
			"remaining": len(e.ledger.Remaining()),
		})
	}
	return nil
}

// purchase 买地；资金在答题期间不会变化，不足时只记录警告
func (e *Engine) purchase(p *models.Player, tile *models.Tile) error {
	if err := e.ledger.Purchase(p.ID, tile.ID); err != nil {
		if errors.Is(err, errors.ErrInsufficientFunds) {
			e.addLog(fmt.Sprintf("%s 资金不足，买不起这块地。", p.Name), models.SeverityWarning)
			return nil
		}
		return err
	}
	e.addLog(fmt.Sprintf("%s 花费 %s 购买了 %s！", p.Name, e.fmt.Money(tile.Price), tile.Name), models.SeveritySuccess)
	e.addEffect(tile.ID, "🏠 "+e.fmt.Money(-tile.Price), models.EffectBuy)
	return nil
}

func (e *Engine) upgrade(p *models.Player, tile *models.Tile, cost int) error {
	level, err := e.ledger.Upgrade(p.ID, tile.ID, cost, e.rules.MaxLevel)
	if err != nil {
		if errors.Is(err, errors.ErrInsufficientFunds) {
			e.addLog(fmt.Sprintf("资金不足 (需 %s)，无法升级。", e.fmt.Money(cost)), models.SeverityWarning)
			return nil
		}
		return err
	}
	e.state.UpgradingTileID = tile.ID
	e.addLog(fmt.Sprintf("%s 花费 %s 升级了 %s (Lv%d)！", p.Name, e.fmt.Money(cost), tile.Name, level), models.SeveritySuccess)
	e.addEffect(tile.ID, fmt.Sprintf("⬆️ Lv%d", level), models.EffectUpgrade)
	return nil
}
