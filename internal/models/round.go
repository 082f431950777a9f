package models

import (
	"time"

	"gorm.io/gorm"
)

// Round 表示一個計分回合
type Round struct {
	gorm.Model
	RoundCode        string      `gorm:"uniqueIndex;size:6;not null" json:"round_code"` // 回合碼，供其他玩家加入
	CreatorID        uint        `gorm:"index;not null" json:"creator_id"`
	GameType         string      `gorm:"size:50;not null;default:mahjong" json:"game_type"`
	Multiplier       float64     `gorm:"type:decimal(10,2);not null;default:1" json:"multiplier"` // 倍率，結算時套用
	HasTable         bool        `gorm:"not null;default:false" json:"has_table"`
	TableUserID      *uint       `json:"table_user_id,omitempty"` // 台板使用者 ID，開盤時建立
	MaxParticipants  int         `gorm:"not null;default:4" json:"max_participants"`
	Status           RoundStatus `gorm:"type:varchar(20);not null;default:WAITING" json:"status"`
	StartTime        *time.Time  `json:"start_time,omitempty"`
	EndTime          *time.Time  `json:"end_time,omitempty"`
	TotalAmount      float64     `gorm:"type:decimal(15,2);not null;default:0" json:"total_amount"`
	RoundCount       int         `gorm:"not null;default:0" json:"round_count"`
	AutoStartMinutes int         `gorm:"not null;default:0" json:"auto_start_minutes"` // 小程式會傳入，目前沒有任何元件實作自動開始
}

// RoundStatus 定義回合狀態的類型
//
// 狀態只能沿 WAITING → PLAYING → FINISHED 前進，
// 其中 WAITING ⇄ PLAYING 可經由暫停/恢復往返，FINISHED 為終態。
type RoundStatus string

const (
	RoundStatusWaiting  RoundStatus = "WAITING"
	RoundStatusPlaying  RoundStatus = "PLAYING"
	RoundStatusFinished RoundStatus = "FINISHED"
)
