package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"chess_rounds/internal/apperrors"
	"chess_rounds/internal/models"
	"chess_rounds/internal/repository"
)

// UserService 管理使用者帳號與使用者統計
type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Register 註冊新使用者，密碼以 bcrypt 雜湊後儲存
func (s *UserService) Register(username, password, nickname string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: username,
		Password: string(hashedPassword),
		Nickname: nickname,
		Role:     models.RoleUser,
		Status:   1,
	}
	if user.Nickname == "" {
		user.Nickname = username
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login 驗證帳號密碼，成功時回傳使用者
func (s *UserService) Login(username, password string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, errors.New("用戶名或密碼錯誤")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, errors.New("用戶名或密碼錯誤")
	}
	return user, nil
}

// Get 取得使用者資訊
func (s *UserService) Get(userID uint) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile 更新暱稱與頭像
func (s *UserService) UpdateProfile(userID uint, nickname, avatarURL string) (*models.User, error) {
	user, err := s.Get(userID)
	if err != nil {
		return nil, err
	}

	if nickname != "" {
		user.Nickname = nickname
	}
	if avatarURL != "" {
		user.AvatarURL = avatarURL
	}
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Count 使用者總數，台板使用者不計入
func (s *UserService) Count() (int64, error) {
	return s.userRepo.CountHuman()
}

// CountActive 狀態正常的使用者數，台板使用者不計入
func (s *UserService) CountActive() (int64, error) {
	return s.userRepo.CountActiveHuman()
}

// Search 依關鍵字搜尋使用者，台板使用者不會出現在結果中
func (s *UserService) Search(keyword string, offset, limit int) ([]models.User, int64, error) {
	return s.userRepo.SearchHuman(keyword, offset, limit)
}
