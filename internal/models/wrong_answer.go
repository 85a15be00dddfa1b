package models

import (
	"time"
)

// WrongAnswer 错题记录表
type WrongAnswer struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	RecordID    string    `gorm:"uniqueIndex;size:36;not null" json:"id"`
	GameID      string    `gorm:"index;size:36;not null" json:"game_id"`
	PlayerID    string    `gorm:"size:16" json:"player_id"` // 答题时的行动玩家
	Op          OpKind    `gorm:"size:8;index" json:"type"`
	Prompt      string    `gorm:"type:text" json:"question"`
	Answer      int       `json:"answer"`
	WrongOption int       `json:"wrong_option"`
	Explanation string    `gorm:"size:255" json:"explanation"`
	CreatedAt   time.Time `json:"timestamp"`
}

// TableName 指定表名
func (WrongAnswer) TableName() string {
	return "wrong_answers"
}
