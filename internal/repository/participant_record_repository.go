package repository

import (
	"chess_rounds/internal/models"
	"chess_rounds/internal/storage"
)

type ParticipantRecordRepository interface {
	// FindFinishedByUser 取得使用者在所有已結束回合中的流水帳，
	// 結算引擎只讀取這些資料
	FindFinishedByUser(userID uint) ([]models.ParticipantRecord, error)
	FindByRoundAndUser(roundID, userID uint) ([]models.ParticipantRecord, error)
	// LastBalance 取得使用者在回合中最近一筆流水的餘額，沒有流水時為 0
	LastBalance(roundID, userID uint) (float64, error)
	// SumByRoundAndUser 使用者在回合中的累計金額變動
	SumByRoundAndUser(roundID, userID uint) (float64, error)
}

type participantRecordRepository struct {
	db *storage.PostgresDB
}

func NewParticipantRecordRepository(db *storage.PostgresDB) ParticipantRecordRepository {
	return &participantRecordRepository{db: db}
}

func (r *participantRecordRepository) FindFinishedByUser(userID uint) ([]models.ParticipantRecord, error) {
	var entries []models.ParticipantRecord
	err := r.db.
		Joins("JOIN rounds ON rounds.id = participant_records.round_id").
		Where("participant_records.user_id = ? AND rounds.status = ?", userID, models.RoundStatusFinished).
		Find(&entries).Error
	return entries, err
}

func (r *participantRecordRepository) FindByRoundAndUser(roundID, userID uint) ([]models.ParticipantRecord, error) {
	var entries []models.ParticipantRecord
	err := r.db.
		Where("round_id = ? AND user_id = ?", roundID, userID).
		Order("created_at asc").
		Find(&entries).Error
	return entries, err
}

func (r *participantRecordRepository) LastBalance(roundID, userID uint) (float64, error) {
	var entry models.ParticipantRecord
	err := r.db.
		Where("round_id = ? AND user_id = ?", roundID, userID).
		Order("id desc").
		Limit(1).
		Find(&entry).Error
	if err != nil {
		return 0, err
	}
	return entry.BalanceAfter, nil
}

func (r *participantRecordRepository) SumByRoundAndUser(roundID, userID uint) (float64, error) {
	var sum float64
	err := r.db.Model(&models.ParticipantRecord{}).
		Where("round_id = ? AND user_id = ?", roundID, userID).
		Select("COALESCE(SUM(amount_change), 0)").
		Scan(&sum).Error
	return sum, err
}
