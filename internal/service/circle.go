package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"chess_rounds/internal/apperrors"
	"chess_rounds/internal/cache"
	"chess_rounds/internal/models"
	"chess_rounds/internal/repository"
)

// CircleService 管理圈子與成員關係
type CircleService struct {
	circleRepo      repository.CircleRepository
	memberRepo      repository.CircleMemberRepository
	leaderboardRepo repository.LeaderboardRepository
	userRepo        repository.UserRepository
	cache           cache.Cache
}

func NewCircleService(
	circleRepo repository.CircleRepository,
	memberRepo repository.CircleMemberRepository,
	leaderboardRepo repository.LeaderboardRepository,
	userRepo repository.UserRepository,
	c cache.Cache,
) *CircleService {
	return &CircleService{
		circleRepo:      circleRepo,
		memberRepo:      memberRepo,
		leaderboardRepo: leaderboardRepo,
		userRepo:        userRepo,
		cache:           c,
	}
}

// Create 建立圈子，創建者自動成為成員（角色為創建者）
func (s *CircleService) Create(userID uint, name, description string) (*models.Circle, error) {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		return nil, apperrors.ErrUserNotFound
	}

	circleCode, err := s.uniqueCode(6, s.circleRepo.ExistsByCode)
	if err != nil {
		return nil, err
	}
	joinCode, err := s.uniqueCode(8, s.circleRepo.ExistsByJoinCode)
	if err != nil {
		return nil, err
	}

	circle := &models.Circle{
		Name:        name,
		Description: description,
		CircleCode:  circleCode,
		JoinCode:    joinCode,
		CreatorID:   userID,
		Status:      1,
	}
	creator := &models.CircleMember{
		UserID:   userID,
		Role:     models.CircleMemberRoleCreator,
		Status:   1,
		JoinedAt: time.Now(),
	}
	if err := s.circleRepo.CreateWithCreator(circle, creator); err != nil {
		return nil, err
	}
	return circle, nil
}

// JoinByCode 以邀請碼加入圈子
func (s *CircleService) JoinByCode(joinCode string, userID uint) (*models.Circle, error) {
	circle, err := s.circleRepo.FindByJoinCode(joinCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCircleNotFound
		}
		return nil, err
	}

	existing, err := s.memberRepo.FindByCircleAndUser(circle.ID, userID)
	if err == nil {
		if existing.Status == 1 {
			return nil, apperrors.ErrAlreadyMember
		}
		// 曾經退出的成員重新加入
		existing.Status = 1
		existing.JoinedAt = time.Now()
		if err := s.memberRepo.Update(existing); err != nil {
			return nil, err
		}
		return circle, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	member := &models.CircleMember{
		CircleID: circle.ID,
		UserID:   userID,
		Role:     models.CircleMemberRoleNormal,
		Status:   1,
		JoinedAt: time.Now(),
	}
	if err := s.memberRepo.Create(member); err != nil {
		return nil, err
	}
	return circle, nil
}

// Leave 退出圈子；創建者不能退出。
// 退出時移除成員的排行榜列並作廢該圈子的快取
func (s *CircleService) Leave(ctx context.Context, circleID, userID uint) error {
	member, err := s.memberRepo.FindByCircleAndUser(circleID, userID)
	if err != nil || member.Status != 1 {
		return apperrors.ErrNotMember
	}
	if member.Role == models.CircleMemberRoleCreator {
		return apperrors.ErrNotAuthorized
	}

	member.Status = 0
	if err := s.memberRepo.Update(member); err != nil {
		return err
	}

	if err := s.leaderboardRepo.DeleteByCircleAndUser(circleID, userID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, fmt.Sprintf("%s%d:", leaderboardKeyPrefix, circleID))
	return nil
}

// Get 取得圈子資訊
func (s *CircleService) Get(circleID uint) (*models.Circle, error) {
	circle, err := s.circleRepo.FindByID(circleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCircleNotFound
		}
		return nil, err
	}
	return circle, nil
}

// IsMember 使用者是否為圈子的活躍成員
func (s *CircleService) IsMember(circleID, userID uint) bool {
	member, err := s.memberRepo.FindByCircleAndUser(circleID, userID)
	return err == nil && member.Status == 1
}

// IsAdmin 使用者是否為圈子的管理員或創建者
func (s *CircleService) IsAdmin(circleID, userID uint) bool {
	member, err := s.memberRepo.FindByCircleAndUser(circleID, userID)
	return err == nil && member.Status == 1 && member.Role >= models.CircleMemberRoleAdmin
}

// IsCreator 使用者是否為圈子的創建者
func (s *CircleService) IsCreator(circleID, userID uint) bool {
	member, err := s.memberRepo.FindByCircleAndUser(circleID, userID)
	return err == nil && member.Status == 1 && member.Role == models.CircleMemberRoleCreator
}

// Members 圈子的活躍成員清單
func (s *CircleService) Members(circleID uint) ([]models.CircleMember, error) {
	return s.memberRepo.FindActiveByCircle(circleID)
}

func (s *CircleService) uniqueCode(length int, exists func(string) (bool, error)) (string, error) {
	for {
		code := randomCode(length)
		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
}
