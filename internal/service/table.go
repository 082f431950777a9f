package service

import (
	"fmt"
	"time"

	"chess_rounds/internal/models"
	"chess_rounds/internal/repository"
)

// TableService 負責在開盤時建立台板：一個代表莊家方的虛擬使用者，
// 加上一筆 TABLE 角色的參與者記錄
type TableService struct {
	userRepo        repository.UserRepository
	participantRepo repository.ParticipantRepository
}

func NewTableService(userRepo repository.UserRepository, participantRepo repository.ParticipantRepository) *TableService {
	return &TableService{
		userRepo:        userRepo,
		participantRepo: participantRepo,
	}
}

// Provision 為回合建立專屬的台板使用者並加入參與者名單
//
// 台板使用者帶有保留前綴（暱稱「台板-」、用戶名「table_」），
// 使用者統計與搜尋都會依此排除
func (s *TableService) Provision(round *models.Round) (*models.User, error) {
	tableUser := &models.User{
		Username: fmt.Sprintf("%s%s_%d", models.TableUsernamePrefix, round.RoundCode, time.Now().UnixMilli()),
		Nickname: models.TableNicknamePrefix + round.RoundCode,
		Role:     models.RoleUser,
		Status:   1,
	}
	if err := s.userRepo.Create(tableUser); err != nil {
		return nil, err
	}

	tableParticipant := &models.Participant{
		RoundID:  round.ID,
		UserID:   tableUser.ID,
		Role:     models.RoleTable,
		JoinedAt: time.Now(),
		IsActive: true,
	}
	if err := s.participantRepo.Create(tableParticipant); err != nil {
		return nil, err
	}

	return tableUser, nil
}
