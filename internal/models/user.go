package models

import (
	"strings"

	"gorm.io/gorm"
)

// 台板使用者的保留前綴，帶有這些前綴的使用者視為非真人，
// 會被使用者統計與搜尋排除
const (
	TableNicknamePrefix = "台板-"
	TableUsernamePrefix = "table_"
)

// User 表示系統中的使用者
type User struct {
	gorm.Model          // 內嵌 gorm.Model，提供 ID、CreatedAt、UpdatedAt 和 DeletedAt 字段
	Username   string   `gorm:"uniqueIndex;not null" json:"username"` // 用戶名，必須唯一
	Password   string   `json:"-"`                                    // 密碼，json 序列化時會被忽略；台板使用者沒有密碼
	Nickname   string   `json:"nickname"`
	AvatarURL  string   `json:"avatar_url"`
	Role       UserRole `gorm:"type:varchar(20);not null;default:user" json:"role"` // 使用者角色
	Status     int      `gorm:"not null;default:1" json:"status"`                   // 1-正常，0-停用
}

// UserRole 定義使用者角色的類型
type UserRole string

const (
	RoleUser  UserRole = "user"  // 一般使用者
	RoleAdmin UserRole = "admin" // 管理員
)

// IsTableUser 判斷是否為台板使用者（回合開盤時自動建立的虛擬使用者）
func (u *User) IsTableUser() bool {
	return strings.HasPrefix(u.Nickname, TableNicknamePrefix) ||
		strings.HasPrefix(u.Username, TableUsernamePrefix)
}
