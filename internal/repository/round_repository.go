package repository

import (
	"fmt"

	"gorm.io/gorm"

	"chess_rounds/internal/apperrors"
	"chess_rounds/internal/models"
	"chess_rounds/internal/storage"
)

type RoundRepository interface {
	Create(round *models.Round) error
	FindByID(id uint) (*models.Round, error)
	FindByCode(code string) (*models.Round, error)
	FindByIDs(ids []uint) ([]models.Round, error)
	ExistsByCode(code string) (bool, error)
	Update(round *models.Round) error
	// DeleteCascade 在單一交易中刪除回合與其所有附屬記錄
	// （流水帳、計分記錄、評價、參與者），任一步驟失敗則整筆回滾
	DeleteCascade(roundID uint) error
	FindByCreator(creatorID uint, offset, limit int) ([]models.Round, int64, error)
	FindByStatus(status models.RoundStatus, offset, limit int) ([]models.Round, int64, error)
	// FindByParticipant 查詢使用者參與過的回合，按建立時間倒序
	FindByParticipant(userID uint, offset, limit int) ([]models.Round, int64, error)
}

type roundRepository struct {
	db *storage.PostgresDB
}

func NewRoundRepository(db *storage.PostgresDB) RoundRepository {
	return &roundRepository{db: db}
}

func (r *roundRepository) Create(round *models.Round) error {
	return r.db.Create(round).Error
}

func (r *roundRepository) FindByID(id uint) (*models.Round, error) {
	var round models.Round
	err := r.db.First(&round, id).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *roundRepository) FindByCode(code string) (*models.Round, error) {
	var round models.Round
	err := r.db.Where("round_code = ?", code).First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *roundRepository) FindByIDs(ids []uint) ([]models.Round, error) {
	var rounds []models.Round
	if len(ids) == 0 {
		return rounds, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&rounds).Error
	return rounds, err
}

func (r *roundRepository) ExistsByCode(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Round{}).Where("round_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *roundRepository) Update(round *models.Round) error {
	return r.db.Save(round).Error
}

func (r *roundRepository) DeleteCascade(roundID uint) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("round_id = ?", roundID).Delete(&models.ParticipantRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("round_id = ?", roundID).Delete(&models.Record{}).Error; err != nil {
			return err
		}
		if err := tx.Where("round_id = ?", roundID).Delete(&models.Rating{}).Error; err != nil {
			return err
		}
		if err := tx.Where("round_id = ?", roundID).Delete(&models.Participant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Round{}, roundID).Error
	})
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrCascadeDeleteFailed, err)
	}
	return nil
}

func (r *roundRepository) FindByCreator(creatorID uint, offset, limit int) ([]models.Round, int64, error) {
	query := r.db.Model(&models.Round{}).Where("creator_id = ?", creatorID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rounds []models.Round
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rounds).Error
	return rounds, total, err
}

func (r *roundRepository) FindByStatus(status models.RoundStatus, offset, limit int) ([]models.Round, int64, error) {
	query := r.db.Model(&models.Round{}).Where("status = ?", status)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rounds []models.Round
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rounds).Error
	return rounds, total, err
}

func (r *roundRepository) FindByParticipant(userID uint, offset, limit int) ([]models.Round, int64, error) {
	query := r.db.Model(&models.Round{}).
		Joins("JOIN participants ON participants.round_id = rounds.id").
		Where("participants.user_id = ? AND participants.deleted_at IS NULL", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rounds []models.Round
	err := query.Order("rounds.created_at DESC").Offset(offset).Limit(limit).Find(&rounds).Error
	return rounds, total, err
}
