package game

import (
	"fmt"

	"github.com/wfunc/math-tycoon/internal/models"
)

// 成就阈值
const (
	streakForBadge    = 5
	tycoonMoney       = 5000
	survivorLowWater  = 100
	survivorRecovered = 500
)

// checkBadges 检查主玩家的成就，每个成就只解锁一次
func (e *Engine) checkBadges() {
	s := e.state
	p := s.Player(s.PrimaryID)
	if p == nil {
		return
	}

	if p.Money < survivorLowWater && !p.Bankrupt {
		s.lowWater = true
	}

	for i := range s.Badges {
		b := &s.Badges[i]
		if b.Unlocked {
			continue
		}

		var ok bool
		switch b.ID {
		case models.BadgeFirstProperty:
			ok = len(p.Properties) > 0
		case models.BadgeMathGenius:
			ok = s.Streak >= streakForBadge
		case models.BadgeTycoon:
			ok = p.Money >= tycoonMoney
		case models.BadgeSurvivor:
			ok = s.lowWater && p.Money >= survivorRecovered
		}
		if ok {
			b.Unlocked = true
			e.addLog(fmt.Sprintf("🏅 解锁成就：%s！", b.Name), models.SeveritySuccess)
		}
	}
}
