package game

import (
	"github.com/wfunc/math-tycoon/internal/errors"
	"github.com/wfunc/math-tycoon/internal/models"
)

// Mode 对局模式
type Mode string

const (
	ModeVsAI          Mode = "P_VS_AI"      // 单人挑战机器人
	ModeVsFriend      Mode = "P_VS_P"       // 双人对战
	ModeVsFriendAndAI Mode = "P_VS_P_VS_AI" // 双人挑战机器人
	ModeCustom        Mode = "CUSTOM"
)

// Valid 是否为预设模式
func (m Mode) Valid() bool {
	switch m {
	case ModeVsAI, ModeVsFriend, ModeVsFriendAndAI:
		return true
	}
	return false
}

func newPlayer(id, name, avatar string, money int, automated bool) models.Player {
	return models.Player{
		ID:         id,
		Name:       name + " (" + avatar + ")",
		Avatar:     avatar,
		Money:      money,
		Properties: []int{},
		Automated:  automated,
	}
}

// Roster 按模式生成座次
func Roster(mode Mode, initialMoney int) ([]models.Player, error) {
	me := newPlayer(models.PlayerOne, "我", "🐼", initialMoney, false)
	friend := newPlayer(models.PlayerTwo, "朋友", "🐰", initialMoney, false)
	bot := newPlayer(models.PlayerAI, "机器人", "🤖", initialMoney, true)

	switch mode {
	case ModeVsAI:
		return []models.Player{me, bot}, nil
	case ModeVsFriend:
		return []models.Player{me, friend}, nil
	case ModeVsFriendAndAI:
		return []models.Player{me, friend, bot}, nil
	}
	return nil, errors.Newf(errors.ErrInvalidRoster, "未知模式: %s", mode)
}

// prepareRoster 校验并规范化座次，返回主玩家ID（第一位人类玩家）
func prepareRoster(players []models.Player, boardSize, initialMoney int) ([]models.Player, string, error) {
	if len(players) < 2 {
		return nil, "", errors.New(errors.ErrInvalidRoster, "至少需要两名玩家")
	}

	out := make([]models.Player, len(players))
	seen := make(map[string]struct{}, len(players))
	primary := ""
	for i, p := range players {
		if p.ID == "" {
			return nil, "", errors.Newf(errors.ErrInvalidRoster, "第 %d 位玩家缺少ID", i+1)
		}
		if _, dup := seen[p.ID]; dup {
			return nil, "", errors.Newf(errors.ErrInvalidRoster, "玩家ID重复: %s", p.ID)
		}
		seen[p.ID] = struct{}{}
		if p.Position < 0 || p.Position >= boardSize {
			return nil, "", errors.Newf(errors.ErrInvalidRoster, "玩家 %s 位置越界: %d", p.ID, p.Position)
		}
		if p.Money < 0 {
			return nil, "", errors.Newf(errors.ErrInvalidRoster, "玩家 %s 资金为负", p.ID)
		}

		c := p.Clone()
		if c.Money == 0 {
			c.Money = initialMoney
		}
		if c.Name == "" {
			c.Name = c.ID
		}
		c.Bankrupt = false
		c.Properties = []int{}
		out[i] = c

		if primary == "" && !c.Automated {
			primary = c.ID
		}
	}
	if primary == "" {
		return nil, "", errors.New(errors.ErrInvalidRoster, "至少需要一名人类玩家")
	}
	return out, primary, nil
}

// NextActive 从current向后找下一位未破产的玩家，最多尝试len(players)次
func NextActive(players []models.Player, current int) int {
	n := len(players)
	if n == 0 {
		return 0
	}
	next := (current + 1) % n
	for attempts := 0; players[next].Bankrupt && attempts < n; attempts++ {
		next = (next + 1) % n
	}
	return next
}
