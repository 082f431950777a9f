package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Record 表示回合內的一筆計分記錄
//
// 回合結束（FINISHED）後記錄即不可再修改，因為結算只讀取已結束回合的資料。
type Record struct {
	gorm.Model
	RoundID        uint           `gorm:"index;not null" json:"round_id"`
	RecorderID     uint           `gorm:"index;not null" json:"recorder_id"`
	RecordType     RecordType     `gorm:"type:varchar(20);not null" json:"record_type"`
	Amount         float64        `gorm:"type:decimal(15,2);not null" json:"amount"`
	Description    string         `gorm:"size:500" json:"description"`
	Participants   datatypes.JSON `json:"participants"`                    // 涉及的使用者 ID 集合
	SequenceNumber int            `gorm:"not null" json:"sequence_number"` // 同回合內單調遞增
}

// RecordType 定義記錄類型
type RecordType string

const (
	RecordTypeWin     RecordType = "WIN"     // 勝利
	RecordTypeLose    RecordType = "LOSE"    // 失敗
	RecordTypeDraw    RecordType = "DRAW"    // 平局
	RecordTypeSpecial RecordType = "SPECIAL" // 特殊
)

// ParticipantRecord 表示單一使用者在一筆記錄中的金額變動（流水帳）
//
// 同一 (RoundID, UserID) 的流水維持 BalanceAfter = BalanceBefore + AmountChange；
// 一筆 Record 底下各參與者的變動總和不強制為零。
type ParticipantRecord struct {
	gorm.Model
	RecordID      uint    `gorm:"index;not null" json:"record_id"`
	RoundID       uint    `gorm:"index;not null" json:"round_id"`
	UserID        uint    `gorm:"index;not null" json:"user_id"`
	AmountChange  float64 `gorm:"type:decimal(15,2);not null" json:"amount_change"`
	BalanceBefore float64 `gorm:"type:decimal(15,2)" json:"balance_before"`
	BalanceAfter  float64 `gorm:"type:decimal(15,2)" json:"balance_after"`
	IsWinner      bool    `gorm:"not null;default:false" json:"is_winner"`
	Remarks       string  `gorm:"size:500" json:"remarks"`
}
