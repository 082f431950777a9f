package models

import (
	"time"

	"gorm.io/gorm"
)

// Participant 表示使用者在某個回合中的參與關係
type Participant struct {
	gorm.Model
	RoundID    uint            `gorm:"uniqueIndex:idx_round_user;not null" json:"round_id"`
	UserID     uint            `gorm:"uniqueIndex:idx_round_user;index;not null" json:"user_id"`
	Role       ParticipantRole `gorm:"type:varchar(20);not null" json:"role"`
	SeatNumber int             `json:"seat_number"` // 僅玩家有座位號，同回合活躍玩家間唯一
	JoinedAt   time.Time       `json:"joined_at"`
	LeftAt     *time.Time      `json:"left_at,omitempty"`
	IsActive   bool            `gorm:"not null;default:true" json:"is_active"`
}

// ParticipantRole 定義參與者角色的類型
type ParticipantRole string

const (
	RolePlayer    ParticipantRole = "PLAYER"    // 玩家
	RoleSpectator ParticipantRole = "SPECTATOR" // 旁觀者
	RoleTable     ParticipantRole = "TABLE"     // 台板（莊家方的虛擬參與者）
)
