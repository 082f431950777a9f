package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"chess_rounds/internal/apperrors"
	"chess_rounds/internal/models"
	"chess_rounds/internal/repository"
	"chess_rounds/pkg/logger"
)

const roundCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CreateRoundInput 建立回合的參數
type CreateRoundInput struct {
	GameType         string
	MaxParticipants  int
	Multiplier       float64
	HasTable         bool
	AutoStartMinutes int
}

// ParticipantInfo 參與者資訊，附帶使用者資料與回合內累計金額
type ParticipantInfo struct {
	ParticipantID uint                   `json:"participant_id"`
	UserID        uint                   `json:"user_id"`
	Nickname      string                 `json:"nickname"`
	AvatarURL     string                 `json:"avatar_url"`
	Role          models.ParticipantRole `json:"role"`
	SeatNumber    int                    `json:"seat_number,omitempty"`
	JoinedAt      time.Time              `json:"joined_at"`
	TotalAmount   float64                `json:"total_amount"`
}

// RoundService 擁有回合狀態機與參與者名單
type RoundService struct {
	roundRepo             repository.RoundRepository
	participantRepo       repository.ParticipantRepository
	participantRecordRepo repository.ParticipantRecordRepository
	memberRepo            repository.CircleMemberRepository
	userRepo              repository.UserRepository
	table                 *TableService
	leaderboard           *LeaderboardService
}

func NewRoundService(
	roundRepo repository.RoundRepository,
	participantRepo repository.ParticipantRepository,
	participantRecordRepo repository.ParticipantRecordRepository,
	memberRepo repository.CircleMemberRepository,
	userRepo repository.UserRepository,
	table *TableService,
	leaderboard *LeaderboardService,
) *RoundService {
	return &RoundService{
		roundRepo:             roundRepo,
		participantRepo:       participantRepo,
		participantRecordRepo: participantRecordRepo,
		memberRepo:            memberRepo,
		userRepo:              userRepo,
		table:                 table,
		leaderboard:           leaderboard,
	}
}

// Create 建立回合，初始狀態為 WAITING，並分配唯一回合碼
func (s *RoundService) Create(creatorID uint, input CreateRoundInput) (*models.Round, error) {
	code, err := s.generateUniqueRoundCode()
	if err != nil {
		return nil, err
	}

	round := &models.Round{
		RoundCode:        code,
		CreatorID:        creatorID,
		GameType:         input.GameType,
		Multiplier:       input.Multiplier,
		HasTable:         input.HasTable,
		MaxParticipants:  input.MaxParticipants,
		Status:           models.RoundStatusWaiting,
		AutoStartMinutes: input.AutoStartMinutes,
	}
	if round.GameType == "" {
		round.GameType = "mahjong"
	}
	if round.MaxParticipants <= 0 {
		round.MaxParticipants = 4
	}
	if round.Multiplier <= 0 {
		round.Multiplier = 1
	}

	if err := s.roundRepo.Create(round); err != nil {
		return nil, err
	}
	return round, nil
}

// Get 取得回合資訊
func (s *RoundService) Get(roundID uint) (*models.Round, error) {
	round, err := s.roundRepo.FindByID(roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoundNotFound
		}
		return nil, err
	}
	return round, nil
}

// Join 以玩家身分加入回合；狀態、重複與人數檢查連同座位分配
// 都在儲存層的同一交易內完成
func (s *RoundService) Join(roundID, userID uint) (*models.Participant, error) {
	// 先取回合讓 NotFound 與狀態錯誤更早回報，交易內會在鎖下重驗
	round, err := s.Get(roundID)
	if err != nil {
		return nil, err
	}
	if round.Status != models.RoundStatusWaiting {
		return nil, apperrors.ErrRoundNotWaiting
	}

	return s.participantRepo.CreatePlayer(roundID, userID)
}

// JoinByCode 以回合碼加入回合
func (s *RoundService) JoinByCode(code string, userID uint) (*models.Participant, error) {
	round, err := s.roundRepo.FindByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoundNotFound
		}
		return nil, err
	}
	return s.Join(round.ID, userID)
}

// Leave 離開回合；創建者不能離開
func (s *RoundService) Leave(roundID, userID uint) error {
	round, err := s.Get(roundID)
	if err != nil {
		return err
	}
	if round.CreatorID == userID {
		return apperrors.ErrCreatorCannotLeave
	}

	participant, err := s.participantRepo.FindByRoundAndUser(roundID, userID)
	if err != nil || !participant.IsActive {
		return apperrors.ErrNotParticipant
	}

	now := time.Now()
	participant.IsActive = false
	participant.LeftAt = &now
	return s.participantRepo.Update(participant)
}

// Start 開始回合（開盤），僅創建者可執行；可在此時覆寫台板與倍率設定。
// 設定了台板時建立台板使用者並加入參與者名單
func (s *RoundService) Start(roundID, userID uint, hasTable *bool, multiplier *float64) error {
	round, err := s.Get(roundID)
	if err != nil {
		return err
	}
	if round.CreatorID != userID {
		return apperrors.ErrNotCreator
	}
	if round.Status != models.RoundStatusWaiting {
		return apperrors.ErrRoundNotWaiting
	}

	if hasTable != nil {
		round.HasTable = *hasTable
	}
	if multiplier != nil && *multiplier > 0 {
		round.Multiplier = *multiplier
	}

	if round.HasTable && round.TableUserID == nil {
		tableUser, err := s.table.Provision(round)
		if err != nil {
			return err
		}
		round.TableUserID = &tableUser.ID
	}

	now := time.Now()
	round.Status = models.RoundStatusPlaying
	round.StartTime = &now
	return s.roundRepo.Update(round)
}

// End 結束回合（收盤），創建者或任一活躍參與者可執行。
// 結束後更新所有活躍玩家所屬圈子的排行榜
func (s *RoundService) End(ctx context.Context, roundID, userID uint) error {
	round, err := s.Get(roundID)
	if err != nil {
		return err
	}
	if round.Status != models.RoundStatusPlaying {
		return apperrors.ErrRoundNotPlaying
	}
	if round.CreatorID != userID {
		participant, err := s.participantRepo.FindByRoundAndUser(roundID, userID)
		if err != nil || !participant.IsActive {
			return apperrors.ErrNotAuthorized
		}
	}

	now := time.Now()
	round.Status = models.RoundStatusFinished
	round.EndTime = &now
	if err := s.roundRepo.Update(round); err != nil {
		return err
	}

	s.refreshLeaderboards(ctx, roundID)
	return nil
}

// refreshLeaderboards 更新回合內活躍玩家所屬圈子的排行榜。
// 更新失敗只記錄，不影響回合收盤；排行榜讀取端最終會補上
func (s *RoundService) refreshLeaderboards(ctx context.Context, roundID uint) {
	players, err := s.participantRepo.FindActiveByRound(roundID, models.RolePlayer)
	if err != nil {
		logger.Error().Err(err).Uint("round_id", roundID).Msg("讀取回合參與者失敗")
		return
	}
	for _, player := range players {
		circleIDs, err := s.memberRepo.FindActiveCircleIDsByUser(player.UserID)
		if err != nil {
			logger.Error().Err(err).Uint("user_id", player.UserID).Msg("讀取使用者圈子失敗")
			continue
		}
		for _, circleID := range circleIDs {
			if err := s.leaderboard.UpdateMember(ctx, circleID, player.UserID); err != nil {
				logger.Error().Err(err).
					Uint("circle_id", circleID).
					Uint("user_id", player.UserID).
					Msg("更新排行榜失敗")
			}
		}
	}
}

// Pause 暫停回合，僅創建者可執行，PLAYING → WAITING
func (s *RoundService) Pause(roundID, userID uint) error {
	round, err := s.Get(roundID)
	if err != nil {
		return err
	}
	if round.CreatorID != userID {
		return apperrors.ErrNotCreator
	}
	if round.Status != models.RoundStatusPlaying {
		return apperrors.ErrRoundNotPlaying
	}

	round.Status = models.RoundStatusWaiting
	return s.roundRepo.Update(round)
}

// Resume 恢復回合，僅創建者可執行，WAITING → PLAYING
func (s *RoundService) Resume(roundID, userID uint) error {
	round, err := s.Get(roundID)
	if err != nil {
		return err
	}
	if round.CreatorID != userID {
		return apperrors.ErrNotCreator
	}
	if round.Status != models.RoundStatusWaiting {
		return apperrors.ErrRoundNotWaiting
	}

	round.Status = models.RoundStatusPlaying
	return s.roundRepo.Update(round)
}

// Delete 刪除回合，僅創建者可執行，且只能刪除等待中的回合。
// 連同參與者、記錄、流水帳與評價一併刪除，整筆交易
func (s *RoundService) Delete(roundID, userID uint) error {
	round, err := s.Get(roundID)
	if err != nil {
		return err
	}
	if round.CreatorID != userID {
		return apperrors.ErrNotCreator
	}
	if round.Status != models.RoundStatusWaiting {
		return apperrors.ErrRoundNotWaiting
	}

	return s.roundRepo.DeleteCascade(roundID)
}

// AdminDelete 管理員刪除回合，不受狀態限制；
// 管理員能力由路由層的 AdminMiddleware 把關
func (s *RoundService) AdminDelete(roundID uint) error {
	if _, err := s.Get(roundID); err != nil {
		return err
	}
	return s.roundRepo.DeleteCascade(roundID)
}

// JoinSpectator 以旁觀者身分加入回合，不占用玩家名額
func (s *RoundService) JoinSpectator(roundID, userID uint) error {
	if _, err := s.Get(roundID); err != nil {
		return err
	}

	existing, err := s.participantRepo.FindByRoundAndUser(roundID, userID)
	if err == nil {
		if existing.Role != models.RoleSpectator {
			return apperrors.ErrAlreadyParticipant
		}
		if existing.IsActive {
			return apperrors.ErrAlreadySpectator
		}
		// 曾經離開過的旁觀者重新加入
		existing.IsActive = true
		existing.LeftAt = nil
		existing.JoinedAt = time.Now()
		return s.participantRepo.Update(existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	spectator := &models.Participant{
		RoundID:  roundID,
		UserID:   userID,
		Role:     models.RoleSpectator,
		JoinedAt: time.Now(),
		IsActive: true,
	}
	return s.participantRepo.Create(spectator)
}

// LeaveSpectator 離開旁觀
func (s *RoundService) LeaveSpectator(roundID, userID uint) error {
	participant, err := s.participantRepo.FindByRoundAndUser(roundID, userID)
	if err != nil || participant.Role != models.RoleSpectator || !participant.IsActive {
		return apperrors.ErrNotSpectator
	}

	now := time.Now()
	participant.IsActive = false
	participant.LeftAt = &now
	return s.participantRepo.Update(participant)
}

// Participants 取得回合的玩家與台板名單（不含旁觀者），
// 附帶使用者資訊與回合內累計金額
func (s *RoundService) Participants(roundID uint) ([]ParticipantInfo, error) {
	participants, err := s.participantRepo.FindActiveByRound(roundID, models.RolePlayer, models.RoleTable)
	if err != nil {
		return nil, err
	}
	return s.decorate(roundID, participants, true)
}

// Spectators 取得回合的活躍旁觀者名單
func (s *RoundService) Spectators(roundID uint) ([]ParticipantInfo, error) {
	spectators, err := s.participantRepo.FindActiveByRound(roundID, models.RoleSpectator)
	if err != nil {
		return nil, err
	}
	return s.decorate(roundID, spectators, false)
}

func (s *RoundService) decorate(roundID uint, participants []models.Participant, withAmount bool) ([]ParticipantInfo, error) {
	infos := make([]ParticipantInfo, 0, len(participants))
	for _, p := range participants {
		info := ParticipantInfo{
			ParticipantID: p.ID,
			UserID:        p.UserID,
			Role:          p.Role,
			SeatNumber:    p.SeatNumber,
			JoinedAt:      p.JoinedAt,
		}
		if user, err := s.userRepo.FindByID(p.UserID); err == nil {
			info.Nickname = user.Nickname
			info.AvatarURL = user.AvatarURL
		}
		if withAmount {
			amount, err := s.participantRecordRepo.SumByRoundAndUser(roundID, p.UserID)
			if err != nil {
				return nil, err
			}
			info.TotalAmount = amount
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// UserRounds 使用者參與過的回合，分頁
func (s *RoundService) UserRounds(userID uint, offset, limit int) ([]models.Round, int64, error) {
	return s.roundRepo.FindByParticipant(userID, offset, limit)
}

// CreatedRounds 使用者建立的回合，分頁
func (s *RoundService) CreatedRounds(creatorID uint, offset, limit int) ([]models.Round, int64, error) {
	return s.roundRepo.FindByCreator(creatorID, offset, limit)
}

// ActiveRounds 進行中的回合，分頁
func (s *RoundService) ActiveRounds(offset, limit int) ([]models.Round, int64, error) {
	return s.roundRepo.FindByStatus(models.RoundStatusPlaying, offset, limit)
}

// generateUniqueRoundCode 產生未使用過的回合碼，6 位大寫字母與數字
func (s *RoundService) generateUniqueRoundCode() (string, error) {
	for {
		code := randomCode(6)
		exists, err := s.roundRepo.ExistsByCode(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
}

func randomCode(length int) string {
	code := make([]byte, length)
	for i := range code {
		code[i] = roundCodeCharset[rand.Intn(len(roundCodeCharset))]
	}
	return string(code)
}
