package models

// 预设玩家ID
const (
	PlayerOne = "P1"
	PlayerTwo = "P2"
	PlayerAI  = "AI"
)

// Player 玩家
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Avatar     string `json:"avatar"`
	Money      int    `json:"money"`
	Position   int    `json:"position"`
	Jailed     bool   `json:"jailed"`
	Bankrupt   bool   `json:"bankrupt"` // 一旦破产不可恢复
	Properties []int  `json:"properties"`
	Automated  bool   `json:"automated"` // 机器人玩家
}

// Owns 是否拥有指定地产
func (p *Player) Owns(tileID int) bool {
	for _, id := range p.Properties {
		if id == tileID {
			return true
		}
	}
	return false
}

// Clone 深拷贝
func (p Player) Clone() Player {
	c := p
	c.Properties = append([]int(nil), p.Properties...)
	if c.Properties == nil {
		c.Properties = []int{}
	}
	return c
}
