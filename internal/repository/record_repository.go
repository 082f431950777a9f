package repository

import (
	"gorm.io/gorm"

	"chess_rounds/internal/models"
	"chess_rounds/internal/storage"
)

type RecordRepository interface {
	// CreateWithEntries 在同一交易中寫入計分記錄、各參與者的流水帳，
	// 以及更新後的回合累計欄位
	CreateWithEntries(record *models.Record, entries []*models.ParticipantRecord, round *models.Round) error
	FindByID(id uint) (*models.Record, error)
	FindByRound(roundID uint, offset, limit int) ([]models.Record, int64, error)
	MaxSequence(roundID uint) (int, error)
	Update(record *models.Record) error
	// DeleteWithEntries 刪除記錄與其流水帳，同一交易
	DeleteWithEntries(recordID uint) error
}

type recordRepository struct {
	db *storage.PostgresDB
}

func NewRecordRepository(db *storage.PostgresDB) RecordRepository {
	return &recordRepository{db: db}
}

func (r *recordRepository) CreateWithEntries(record *models.Record, entries []*models.ParticipantRecord, round *models.Round) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		for _, entry := range entries {
			entry.RecordID = record.ID
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}
		return tx.Save(round).Error
	})
}

func (r *recordRepository) FindByID(id uint) (*models.Record, error) {
	var record models.Record
	err := r.db.First(&record, id).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *recordRepository) FindByRound(roundID uint, offset, limit int) ([]models.Record, int64, error) {
	query := r.db.Model(&models.Record{}).Where("round_id = ?", roundID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []models.Record
	err := query.Order("sequence_number asc").Offset(offset).Limit(limit).Find(&records).Error
	return records, total, err
}

func (r *recordRepository) MaxSequence(roundID uint) (int, error) {
	var maxSeq int
	err := r.db.Model(&models.Record{}).
		Where("round_id = ?", roundID).
		Select("COALESCE(MAX(sequence_number), 0)").
		Scan(&maxSeq).Error
	return maxSeq, err
}

func (r *recordRepository) Update(record *models.Record) error {
	return r.db.Save(record).Error
}

func (r *recordRepository) DeleteWithEntries(recordID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("record_id = ?", recordID).Delete(&models.ParticipantRecord{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Record{}, recordID).Error
	})
}
