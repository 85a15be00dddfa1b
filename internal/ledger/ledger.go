// Package ledger 实现对局内的资金与地产变动，是设置破产标记的唯一入口。
package ledger

import (
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/logger"
	"github.com/wfunc/math-tycoon/internal/models"
	"go.uber.org/zap"
)

// Charge 扣款结果
type Charge struct {
	Paid            int  `json:"paid"`             // 从付款方扣除的金额
	Transferred     int  `json:"transferred"`      // 债权人实际收到的金额
	Bankrupt        bool `json:"bankrupt"`         // 付款方因此破产
	CreditorSkipped bool `json:"creditor_skipped"` // 债权人已破产，未入账
}

// Ledger 对局账本
//
// players 和 tiles 与调用方共享底层数组，所有变动都直接写入最新状态。
// Ledger 不是并发安全的，由调用方保证串行访问。
type Ledger struct {
	players []models.Player
	tiles   []models.Tile

	winnerID string
	ended    bool

	log *zap.Logger
}

// New 创建账本
func New(players []models.Player, tiles []models.Tile) *Ledger {
	return &Ledger{
		players: players,
		tiles:   tiles,
		log:     logger.WithModule("ledger"),
	}
}

// Player 按ID查找玩家
func (l *Ledger) Player(id string) (*models.Player, error) {
	for i := range l.players {
		if l.players[i].ID == id {
			return &l.players[i], nil
		}
	}
	return nil, errors.New(errors.ErrPlayerNotFound, id)
}

// Tile 按ID查找格子
func (l *Ledger) Tile(id int) (*models.Tile, error) {
	if id < 0 || id >= len(l.tiles) {
		return nil, errors.Newf(errors.ErrNotFound, "格子 %d", id)
	}
	return &l.tiles[id], nil
}

// Credit 给玩家加钱，已破产的玩家不能再入账
func (l *Ledger) Credit(id string, amount int) error {
	if amount < 0 {
		return errors.Newf(errors.ErrInvalidParam, "入账金额不能为负: %d", amount)
	}
	p, err := l.Player(id)
	if err != nil {
		return err
	}
	if p.Bankrupt {
		return errors.New(errors.ErrPlayerBankrupt, id)
	}

	p.Money += amount
	logger.LogLedgerMutation("credit", id, amount, p.Money)
	return nil
}

// ChargeOrBankrupt 扣款；余额不足时把剩余资金转给债权人（如有）并宣告破产。
// creditorID 为空表示付给银行。
func (l *Ledger) ChargeOrBankrupt(id string, amount int, creditorID string) (Charge, error) {
	var res Charge
	if amount < 0 {
		return res, errors.Newf(errors.ErrInvalidParam, "扣款金额不能为负: %d", amount)
	}

	debtor, err := l.Player(id)
	if err != nil {
		return res, err
	}
	if debtor.Bankrupt {
		return res, errors.New(errors.ErrPlayerBankrupt, id)
	}

	var creditor *models.Player
	if creditorID != "" {
		if creditorID == id {
			return res, errors.New(errors.ErrInvalidParam, "不能向自己付款")
		}
		if creditor, err = l.Player(creditorID); err != nil {
			return res, err
		}
	}

	payable := amount
	if debtor.Money < amount {
		payable = debtor.Money
		res.Bankrupt = true
	}

	debtor.Money -= payable
	res.Paid = payable
	logger.LogLedgerMutation("debit", id, payable, debtor.Money)

	if creditor != nil && payable > 0 {
		if creditor.Bankrupt {
			res.CreditorSkipped = true
			l.log.Warn("债权人已破产，款项未入账",
				zap.String("debtor", id),
				zap.String("creditor", creditorID),
				zap.Int("amount", payable))
		} else {
			creditor.Money += payable
			res.Transferred = payable
			logger.LogLedgerMutation("credit", creditorID, payable, creditor.Money)
		}
	}

	if res.Bankrupt {
		l.declareBankrupt(debtor)
	}
	return res, nil
}

// declareBankrupt 破产：清空资金和地产，收回的地产恢复无主1级
func (l *Ledger) declareBankrupt(p *models.Player) {
	p.Bankrupt = true
	p.Money = 0
	p.Properties = []int{}
	for i := range l.tiles {
		if l.tiles[i].Owner == p.ID {
			l.tiles[i].Reset()
		}
	}

	l.log.Info("玩家破产", zap.String("player_id", p.ID))
	l.checkWinner()
}

// checkWinner 只剩一名未破产玩家时结束对局，只触发一次
func (l *Ledger) checkWinner() {
	if l.ended {
		return
	}
	remaining := l.Remaining()
	if len(remaining) != 1 {
		return
	}
	l.ended = true
	l.winnerID = remaining[0]
	l.log.Info("对局结束", zap.String("winner", l.winnerID))
}

// Remaining 未破产玩家ID（座次顺序）
func (l *Ledger) Remaining() []string {
	var ids []string
	for _, p := range l.players {
		if !p.Bankrupt {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Winner 获胜者，对局未结束时ok为false
func (l *Ledger) Winner() (id string, ok bool) {
	return l.winnerID, l.ended
}

// Purchase 购买无主地产
func (l *Ledger) Purchase(id string, tileID int) error {
	p, err := l.Player(id)
	if err != nil {
		return err
	}
	if p.Bankrupt {
		return errors.New(errors.ErrPlayerBankrupt, id)
	}
	t, err := l.Tile(tileID)
	if err != nil {
		return err
	}
	if t.Type != models.TileProperty || t.Owned() {
		return errors.Newf(errors.ErrInvalidParam, "格子 %d 不可购买", tileID)
	}
	if p.Money < t.Price {
		return errors.Newf(errors.ErrInsufficientFunds, "需要 %d，现有 %d", t.Price, p.Money)
	}

	p.Money -= t.Price
	p.Properties = append(p.Properties, t.ID)
	t.Owner = p.ID
	t.Level = 1
	logger.LogLedgerMutation("purchase", id, t.Price, p.Money)
	return nil
}

// Upgrade 升级自己的地产，返回新等级
func (l *Ledger) Upgrade(id string, tileID int, cost int, maxLevel int) (int, error) {
	p, err := l.Player(id)
	if err != nil {
		return 0, err
	}
	t, err := l.Tile(tileID)
	if err != nil {
		return 0, err
	}
	if t.Owner != id {
		return 0, errors.Newf(errors.ErrInvalidParam, "格子 %d 不属于 %s", tileID, id)
	}
	if t.Level >= maxLevel {
		return t.Level, errors.Newf(errors.ErrInvalidParam, "格子 %d 已是最高等级", tileID)
	}
	if cost < 0 || p.Money < cost {
		return t.Level, errors.Newf(errors.ErrInsufficientFunds, "需要 %d，现有 %d", cost, p.Money)
	}

	p.Money -= cost
	t.Level++
	logger.LogLedgerMutation("upgrade", id, cost, p.Money)
	return t.Level, nil
}
