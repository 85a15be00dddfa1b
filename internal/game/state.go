package game

import (
	"context"
	"time"

	"github.com/wfunc/math-tycoon/internal/config"
	"github.com/wfunc/math-tycoon/internal/models"
)

// Rules 对局规则参数
type Rules struct {
	InitialMoney  int
	StartBonus    int
	DiceSides     int
	MaxLevel      int
	UpgradeRatio  float64
	DeclineChance float64 // 机器人放弃购买的概率
	SavingsFactor float64 // 机器人资金低于 升级费×系数 时不升级
}

// RulesFromConfig 从配置读取规则
func RulesFromConfig(c config.GameConfig) Rules {
	return Rules{
		InitialMoney:  c.InitialMoney,
		StartBonus:    c.StartBonus,
		DiceSides:     c.DiceSides,
		MaxLevel:      c.Property.MaxLevel,
		UpgradeRatio:  c.Property.UpgradeRatio,
		DeclineChance: c.AI.DeclineChance,
		SavingsFactor: c.AI.SavingsFactor,
	}
}

// DefaultRules 默认规则
func DefaultRules() Rules {
	return RulesFromConfig(config.Default().Game)
}

// upgradeCost 升级费用，至少为1
func (r Rules) upgradeCost(price int) int {
	cost := int(float64(price) * r.UpgradeRatio)
	if cost < 1 {
		cost = 1
	}
	return cost
}

// Effect 数学关卡背后待生效的变动
type Effect string

const (
	EffectStartBonus  Effect = "start_bonus"
	EffectPurchase    Effect = "purchase"
	EffectUpgrade     Effect = "upgrade"
	EffectRent        Effect = "rent"
	EffectChance      Effect = "chance"
	EffectInterest    Effect = "bank_interest"
	EffectTax         Effect = "bank_tax"
	EffectJailRelease Effect = "jail_release"
)

// helpedVerb 帮其他玩家算错时，日志中描述玩家“自己”完成的动作
var helpedVerb = map[Effect]string{
	EffectStartBonus: "算对并领了工资",
	EffectPurchase:   "计算完成了购买",
	EffectUpgrade:    "计算并升级了",
	EffectRent:       "支付了租金",
	EffectChance:     "处理了",
	EffectInterest:   "处理了",
	EffectTax:        "处理了",
}

// Gate 挂起的数学关卡：答对才按有利方式生效
type Gate struct {
	ID         string           `json:"id"`
	Effect     Effect           `json:"effect"`
	PlayerID   string           `json:"player_id"` // 受影响的玩家
	Primary    bool             `json:"primary"`   // 受影响的玩家就是主玩家
	TileID     int              `json:"tile_id"`
	Amount     int              `json:"amount"`
	CreditorID string           `json:"creditor_id,omitempty"`
	Gain       bool             `json:"gain"`
	Text       string           `json:"text,omitempty"`
	Question   *models.Question `json:"-"`
	Attempt    int              `json:"attempt"`
}

// Decision 等待人类玩家确认的升级
type Decision struct {
	ID       string `json:"id"`
	PlayerID string `json:"player_id"`
	TileID   int    `json:"tile_id"`
	Level    int    `json:"level"`
	Cost     int    `json:"cost"`
	Prompt   string `json:"prompt"`
}

// State 对局状态，只由Engine在持锁时修改
type State struct {
	GameID    string
	Mode      Mode
	StartedAt time.Time

	Tiles     []models.Tile
	Players   []models.Player
	Active    int
	PrimaryID string

	Log      []models.LogEntry
	Gate     *Gate
	Decision *Decision
	Dice     int

	Streak   int
	Badges   []models.Badge
	Mistakes map[models.OpKind]*models.MistakeRecord
	Effects  []models.VisualEffect

	UpgradingTileID int // -1 表示无
	WinnerID        string

	effectSeq int
	lowWater  bool // 主玩家资金曾低于100
}

// ActivePlayer 当前行动的玩家
func (s *State) ActivePlayer() *models.Player {
	if s.Active < 0 || s.Active >= len(s.Players) {
		return nil
	}
	return &s.Players[s.Active]
}

// Player 按ID查找
func (s *State) Player(id string) *models.Player {
	for i := range s.Players {
		if s.Players[i].ID == id {
			return &s.Players[i]
		}
	}
	return nil
}

// MistakeCounts 按运算类型统计的错题数
func (s *State) MistakeCounts() map[models.OpKind]int {
	counts := make(map[models.OpKind]int, len(s.Mistakes))
	for op, m := range s.Mistakes {
		counts[op] = m.Count
	}
	return counts
}

// Recorder 错题归档
type Recorder interface {
	Record(ctx context.Context, w *models.WrongAnswer) error
}
