package models

import (
	"time"

	"gorm.io/gorm"
)

// Circle 表示一個圈子（使用者的社交群組）
type Circle struct {
	gorm.Model
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:500" json:"description"`
	CircleCode  string `gorm:"uniqueIndex;size:6;not null" json:"circle_code"`
	JoinCode    string `gorm:"uniqueIndex;size:8;not null" json:"join_code"` // 加入圈子用的邀請碼
	CreatorID   uint   `gorm:"index;not null" json:"creator_id"`
	Status      int    `gorm:"not null;default:1" json:"status"` // 1-正常，0-解散
}

// CircleMember 表示使用者在圈子中的成員關係
type CircleMember struct {
	gorm.Model
	CircleID uint      `gorm:"uniqueIndex:idx_circle_user;not null" json:"circle_id"`
	UserID   uint      `gorm:"uniqueIndex:idx_circle_user;index;not null" json:"user_id"`
	Role     int       `gorm:"not null;default:0" json:"role"`   // 0-普通成員，1-管理員，2-創建者
	Status   int       `gorm:"not null;default:1" json:"status"` // 1-正常，0-已退出
	JoinedAt time.Time `json:"joined_at"`
}

const (
	CircleMemberRoleNormal  = 0
	CircleMemberRoleAdmin   = 1
	CircleMemberRoleCreator = 2
)

// CircleLeaderboard 表示圈子排行榜中的一列，每個 (圈子, 成員) 一筆
//
// 首次讀取排行榜或成員首次加入時延遲建立；成員每完成一個回合就會重算。
type CircleLeaderboard struct {
	gorm.Model
	CircleID           uint       `gorm:"uniqueIndex:idx_circle_user_board;not null" json:"circle_id"`
	UserID             uint       `gorm:"uniqueIndex:idx_circle_user_board;index;not null" json:"user_id"`
	Ranking            int        `gorm:"not null;default:0" json:"ranking"`
	Score              float64    `gorm:"type:decimal(15,2);not null;default:0" json:"score"` // 各回合淨值乘以倍率後的累計
	TotalGames         int        `gorm:"not null;default:0" json:"total_games"`
	Wins               int        `gorm:"not null;default:0" json:"wins"`
	Losses             int        `gorm:"not null;default:0" json:"losses"`
	Draws              int        `gorm:"not null;default:0" json:"draws"`
	WinRate            float64    `gorm:"type:decimal(5,2);not null;default:0" json:"win_rate"` // 百分比，兩位小數
	ConsecutiveWins    int        `gorm:"not null;default:0" json:"consecutive_wins"`
	MaxConsecutiveWins int        `gorm:"not null;default:0" json:"max_consecutive_wins"`
	LastGameAt         *time.Time `json:"last_game_at,omitempty"`
	Season             string     `gorm:"size:20;not null;default:2024" json:"season"`
}
