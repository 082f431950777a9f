package repository

import (
	"chess_rounds/internal/models"
	"chess_rounds/internal/storage"
)

type RatingRepository interface {
	Create(rating *models.Rating) error
	ExistsByRoundFromTo(roundID, fromUserID, toUserID uint) (bool, error)
	FindByRound(roundID uint) ([]models.Rating, error)
}

type ratingRepository struct {
	db *storage.PostgresDB
}

func NewRatingRepository(db *storage.PostgresDB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(rating *models.Rating) error {
	return r.db.Create(rating).Error
}

func (r *ratingRepository) ExistsByRoundFromTo(roundID, fromUserID, toUserID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Rating{}).
		Where("round_id = ? AND from_user_id = ? AND to_user_id = ?", roundID, fromUserID, toUserID).
		Count(&count).Error
	return count > 0, err
}

func (r *ratingRepository) FindByRound(roundID uint) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.Where("round_id = ?", roundID).Order("created_at asc").Find(&ratings).Error
	return ratings, err
}
