package repository

import (
	"chess_rounds/internal/models"
	"chess_rounds/internal/storage"
)

type CircleMemberRepository interface {
	Create(member *models.CircleMember) error
	FindByCircleAndUser(circleID, userID uint) (*models.CircleMember, error)
	FindActiveByCircle(circleID uint) ([]models.CircleMember, error)
	// FindActiveCircleIDsByUser 使用者目前仍在的所有圈子 ID
	FindActiveCircleIDsByUser(userID uint) ([]uint, error)
	Update(member *models.CircleMember) error
}

type circleMemberRepository struct {
	db *storage.PostgresDB
}

func NewCircleMemberRepository(db *storage.PostgresDB) CircleMemberRepository {
	return &circleMemberRepository{db: db}
}

func (r *circleMemberRepository) Create(member *models.CircleMember) error {
	return r.db.Create(member).Error
}

func (r *circleMemberRepository) FindByCircleAndUser(circleID, userID uint) (*models.CircleMember, error) {
	var member models.CircleMember
	err := r.db.Where("circle_id = ? AND user_id = ?", circleID, userID).First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *circleMemberRepository) FindActiveByCircle(circleID uint) ([]models.CircleMember, error) {
	var members []models.CircleMember
	err := r.db.Where("circle_id = ? AND status = ?", circleID, 1).Find(&members).Error
	return members, err
}

func (r *circleMemberRepository) FindActiveCircleIDsByUser(userID uint) ([]uint, error) {
	var circleIDs []uint
	err := r.db.Model(&models.CircleMember{}).
		Where("user_id = ? AND status = ?", userID, 1).
		Pluck("circle_id", &circleIDs).Error
	return circleIDs, err
}

func (r *circleMemberRepository) Update(member *models.CircleMember) error {
	return r.db.Save(member).Error
}
