package repository

import (
	"gorm.io/gorm"

	"chess_rounds/internal/models"
	"chess_rounds/internal/storage"
)

type UserRepository interface {
	Create(user *models.User) error
	FindByID(id uint) (*models.User, error)
	FindByUsername(username string) (*models.User, error)
	Update(user *models.User) error
	// CountHuman 統計使用者總數，排除台板使用者
	CountHuman() (int64, error)
	// CountActiveHuman 統計狀態正常的使用者數，排除台板使用者
	CountActiveHuman() (int64, error)
	// SearchHuman 依暱稱或用戶名搜尋，排除台板使用者
	SearchHuman(keyword string, offset, limit int) ([]models.User, int64, error)
}

type userRepository struct {
	db *storage.PostgresDB
}

func NewUserRepository(db *storage.PostgresDB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// humanScope 過濾台板使用者的共用條件
func (r *userRepository) humanScope() *gorm.DB {
	return r.db.DB.
		Where("nickname NOT LIKE ?", models.TableNicknamePrefix+"%").
		Where("username NOT LIKE ?", models.TableUsernamePrefix+"%")
}

func (r *userRepository) CountHuman() (int64, error) {
	var count int64
	err := r.humanScope().Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *userRepository) CountActiveHuman() (int64, error) {
	var count int64
	err := r.humanScope().Model(&models.User{}).Where("status = ?", 1).Count(&count).Error
	return count, err
}

func (r *userRepository) SearchHuman(keyword string, offset, limit int) ([]models.User, int64, error) {
	query := r.humanScope().Model(&models.User{}).
		Where("nickname LIKE ? OR username LIKE ?", "%"+keyword+"%", "%"+keyword+"%")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}
