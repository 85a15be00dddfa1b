package models

import "time"

// Severity 日志级别（用于展示）
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// LogEntry 游戏事件日志（只追加）
type LogEntry struct {
	Message  string   `json:"message"`
	Severity Severity `json:"type"`
}

// EffectKind 视觉特效类型
type EffectKind string

const (
	EffectMoneyGain EffectKind = "money-gain"
	EffectMoneyLoss EffectKind = "money-loss"
	EffectUpgrade   EffectKind = "upgrade"
	EffectBankrupt  EffectKind = "bankrupt"
	EffectBuy       EffectKind = "buy"
)

// VisualEffect 格子上的特效提示
type VisualEffect struct {
	ID       int        `json:"id"`
	Position int        `json:"position"`
	Text     string     `json:"text"`
	Kind     EffectKind `json:"type"`
}

// MistakeRecord 按运算类型统计的错题次数
type MistakeRecord struct {
	Op     OpKind    `json:"question_type"`
	Count  int       `json:"count"`
	LastAt time.Time `json:"timestamp"`
}

// Badge 成就
type Badge struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
}

// 成就ID
const (
	BadgeFirstProperty = "first_blood"
	BadgeMathGenius    = "math_genius"
	BadgeTycoon        = "tycoon"
	BadgeSurvivor      = "survivor"
)

// DefaultBadges 初始成就列表
func DefaultBadges() []Badge {
	return []Badge{
		{ID: BadgeFirstProperty, Name: "第一桶金", Description: "不仅赚到了钱，还买下了第一块地！", Icon: "🏠"},
		{ID: BadgeMathGenius, Name: "速算小能手", Description: "连续答对5道数学题！", Icon: "⚡"},
		{ID: BadgeTycoon, Name: "上海首富", Description: "总资产超过5000元！", Icon: "💰"},
		{ID: BadgeSurvivor, Name: "绝处逢生", Description: "资金低于100元时成功翻盘", Icon: "🌱"},
	}
}
