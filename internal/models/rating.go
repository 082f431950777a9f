package models

import (
	"gorm.io/gorm"
)

// Rating 表示回合結束後參與者之間的互評
type Rating struct {
	gorm.Model
	RoundID    uint       `gorm:"uniqueIndex:idx_round_from_to;not null" json:"round_id"`
	FromUserID uint       `gorm:"uniqueIndex:idx_round_from_to;not null" json:"from_user_id"`
	ToUserID   uint       `gorm:"uniqueIndex:idx_round_from_to;not null" json:"to_user_id"`
	RatingType RatingType `gorm:"type:varchar(20);not null" json:"rating_type"`
	Comment    string     `gorm:"size:500" json:"comment"`
}

// RatingType 定義評價類型
type RatingType string

const (
	RatingTypeLike    RatingType = "like"    // 讚
	RatingTypeDislike RatingType = "dislike" // 貶
)
