package repository

import (
	"chess_rounds/internal/models"
	"chess_rounds/internal/storage"
)

type LeaderboardRepository interface {
	FindByCircleAndUser(circleID, userID uint) (*models.CircleLeaderboard, error)
	FindByCircle(circleID uint) ([]models.CircleLeaderboard, error)
	Save(row *models.CircleLeaderboard) error
	DeleteByCircleAndUser(circleID, userID uint) error
}

type leaderboardRepository struct {
	db *storage.PostgresDB
}

func NewLeaderboardRepository(db *storage.PostgresDB) LeaderboardRepository {
	return &leaderboardRepository{db: db}
}

func (r *leaderboardRepository) FindByCircleAndUser(circleID, userID uint) (*models.CircleLeaderboard, error) {
	var row models.CircleLeaderboard
	err := r.db.Where("circle_id = ? AND user_id = ?", circleID, userID).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *leaderboardRepository) FindByCircle(circleID uint) ([]models.CircleLeaderboard, error) {
	var rows []models.CircleLeaderboard
	err := r.db.Where("circle_id = ?", circleID).Find(&rows).Error
	return rows, err
}

func (r *leaderboardRepository) Save(row *models.CircleLeaderboard) error {
	return r.db.Save(row).Error
}

func (r *leaderboardRepository) DeleteByCircleAndUser(circleID, userID uint) error {
	return r.db.Where("circle_id = ? AND user_id = ?", circleID, userID).
		Delete(&models.CircleLeaderboard{}).Error
}
