package repository

import (
	"gorm.io/gorm"

	"chess_rounds/internal/models"
	"chess_rounds/internal/storage"
)

type CircleRepository interface {
	// CreateWithCreator 建立圈子並把創建者寫入成員表，同一交易
	CreateWithCreator(circle *models.Circle, creator *models.CircleMember) error
	FindByID(id uint) (*models.Circle, error)
	FindByJoinCode(joinCode string) (*models.Circle, error)
	ExistsByCode(code string) (bool, error)
	ExistsByJoinCode(joinCode string) (bool, error)
}

type circleRepository struct {
	db *storage.PostgresDB
}

func NewCircleRepository(db *storage.PostgresDB) CircleRepository {
	return &circleRepository{db: db}
}

func (r *circleRepository) CreateWithCreator(circle *models.Circle, creator *models.CircleMember) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(circle).Error; err != nil {
			return err
		}
		creator.CircleID = circle.ID
		return tx.Create(creator).Error
	})
}

func (r *circleRepository) FindByID(id uint) (*models.Circle, error) {
	var circle models.Circle
	err := r.db.First(&circle, id).Error
	if err != nil {
		return nil, err
	}
	return &circle, nil
}

func (r *circleRepository) FindByJoinCode(joinCode string) (*models.Circle, error) {
	var circle models.Circle
	err := r.db.Where("join_code = ?", joinCode).First(&circle).Error
	if err != nil {
		return nil, err
	}
	return &circle, nil
}

func (r *circleRepository) ExistsByCode(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Circle{}).Where("circle_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *circleRepository) ExistsByJoinCode(joinCode string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Circle{}).Where("join_code = ?", joinCode).Count(&count).Error
	return count > 0, err
}
