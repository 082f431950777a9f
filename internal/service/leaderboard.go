package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"chess_rounds/internal/apperrors"
	"chess_rounds/internal/cache"
	"chess_rounds/internal/models"
	"chess_rounds/internal/repository"
	"chess_rounds/pkg/logger"
)

const (
	defaultSeason        = "2024"
	leaderboardCacheTTL  = 5 * time.Minute
	leaderboardKeyPrefix = "leaderboard:"
)

// LeaderboardRow 排行榜的一列，附帶成員的使用者資訊
type LeaderboardRow struct {
	Rank               int        `json:"rank"`
	UserID             uint       `json:"user_id"`
	Nickname           string     `json:"nickname"`
	AvatarURL          string     `json:"avatar_url"`
	Score              float64    `json:"score"`
	TotalGames         int        `json:"total_games"`
	Wins               int        `json:"wins"`
	Losses             int        `json:"losses"`
	Draws              int        `json:"draws"`
	WinRate            float64    `json:"win_rate"`
	ConsecutiveWins    int        `json:"consecutive_wins"`
	MaxConsecutiveWins int        `json:"max_consecutive_wins"`
	LastGameAt         *time.Time `json:"last_game_at,omitempty"`
}

// LeaderboardPage 排行榜的分頁結果
type LeaderboardPage struct {
	Rows     []LeaderboardRow `json:"rows"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// LeaderboardService 維護每個圈子的排行榜並提供排名查詢
//
// 排名採用 dense rank：排序鍵完全相同的列共享名次，
// 下一個不同的鍵取「前一名次 +1」而不是列序號 +1。
type LeaderboardService struct {
	leaderboardRepo repository.LeaderboardRepository
	memberRepo      repository.CircleMemberRepository
	circleRepo      repository.CircleRepository
	userRepo        repository.UserRepository
	settlement      *SettlementService
	cache           cache.Cache
}

func NewLeaderboardService(
	leaderboardRepo repository.LeaderboardRepository,
	memberRepo repository.CircleMemberRepository,
	circleRepo repository.CircleRepository,
	userRepo repository.UserRepository,
	settlement *SettlementService,
	c cache.Cache,
) *LeaderboardService {
	return &LeaderboardService{
		leaderboardRepo: leaderboardRepo,
		memberRepo:      memberRepo,
		circleRepo:      circleRepo,
		userRepo:        userRepo,
		settlement:      settlement,
		cache:           c,
	}
}

// Leaderboard 回傳圈子排行榜的一頁，只有圈子成員可以查詢
//
// 結果會先走快取；排行榜為空時延遲初始化後重查
func (s *LeaderboardService) Leaderboard(ctx context.Context, circleID, userID uint, sortBy, sortOrder string, page, pageSize int) (*LeaderboardPage, error) {
	member, err := s.memberRepo.FindByCircleAndUser(circleID, userID)
	if err != nil || member.Status != 1 {
		return nil, apperrors.ErrNotMember
	}

	if sortBy == "" {
		sortBy = "score"
	}
	if sortOrder == "" {
		sortOrder = "desc"
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	cacheKey := fmt.Sprintf("%s%d:%s:%s:%d:%d", leaderboardKeyPrefix, circleID, sortBy, sortOrder, page, pageSize)
	if cached, ok := s.cache.Get(ctx, cacheKey); ok {
		var result LeaderboardPage
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return &result, nil
		}
	}

	rows, err := s.leaderboardRepo.FindByCircle(circleID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		if err := s.EnsureInitialized(ctx, circleID); err != nil {
			return nil, err
		}
		rows, err = s.leaderboardRepo.FindByCircle(circleID)
		if err != nil {
			return nil, err
		}
	}

	sortRows(rows, sortBy, sortOrder)
	ranks := denseRanks(rows, sortBy)

	total := len(rows)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	result := &LeaderboardPage{
		Rows:     make([]LeaderboardRow, 0, end-start),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for i := start; i < end; i++ {
		result.Rows = append(result.Rows, s.toRow(rows[i], ranks[i]))
	}

	if data, err := json.Marshal(result); err == nil {
		s.cache.Put(ctx, cacheKey, string(data), leaderboardCacheTTL)
	}
	return result, nil
}

// EnsureInitialized 為每個還沒有排行榜記錄的活躍成員建立初始列，
// 依成員的歷史流水結算；沒有歷史時為零值列
func (s *LeaderboardService) EnsureInitialized(ctx context.Context, circleID uint) error {
	members, err := s.memberRepo.FindActiveByCircle(circleID)
	if err != nil {
		return err
	}

	for _, member := range members {
		_, err := s.leaderboardRepo.FindByCircleAndUser(circleID, member.UserID)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		row := &models.CircleLeaderboard{
			CircleID: circleID,
			UserID:   member.UserID,
			Season:   defaultSeason,
		}
		if err := s.fillFromSettlement(row); err != nil {
			return err
		}
		if err := s.leaderboardRepo.Save(row); err != nil {
			return err
		}
	}

	if err := s.updateRankings(circleID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, fmt.Sprintf("%s%d:", leaderboardKeyPrefix, circleID))
	return nil
}

// UpdateMember 重算單一成員的排行榜列，冪等；
// 非成員直接跳過（回合結束時會對所有參與者呼叫）
func (s *LeaderboardService) UpdateMember(ctx context.Context, circleID, userID uint) error {
	member, err := s.memberRepo.FindByCircleAndUser(circleID, userID)
	if err != nil || member.Status != 1 {
		logger.Warn().Uint("circle_id", circleID).Uint("user_id", userID).
			Msg("不是圈子成員，跳過排行榜更新")
		return nil
	}

	row, err := s.leaderboardRepo.FindByCircleAndUser(circleID, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		row = &models.CircleLeaderboard{
			CircleID: circleID,
			UserID:   userID,
			Season:   defaultSeason,
		}
	}

	if err := s.fillFromSettlement(row); err != nil {
		return err
	}
	if err := s.leaderboardRepo.Save(row); err != nil {
		return err
	}

	if err := s.updateRankings(circleID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, fmt.Sprintf("%s%d:", leaderboardKeyPrefix, circleID))
	return nil
}

// Refresh 重算圈子內所有成員的排行榜列並重排名次，
// 只有圈子創建者或管理員可以執行
func (s *LeaderboardService) Refresh(ctx context.Context, circleID, userID uint) error {
	member, err := s.memberRepo.FindByCircleAndUser(circleID, userID)
	if err != nil || member.Status != 1 || member.Role < models.CircleMemberRoleAdmin {
		return apperrors.ErrNotAuthorized
	}

	members, err := s.memberRepo.FindActiveByCircle(circleID)
	if err != nil {
		return err
	}
	for _, m := range members {
		row, err := s.leaderboardRepo.FindByCircleAndUser(circleID, m.UserID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			row = &models.CircleLeaderboard{
				CircleID: circleID,
				UserID:   m.UserID,
				Season:   defaultSeason,
			}
		}
		if err := s.fillFromSettlement(row); err != nil {
			return err
		}
		if err := s.leaderboardRepo.Save(row); err != nil {
			return err
		}
	}

	if err := s.updateRankings(circleID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, fmt.Sprintf("%s%d:", leaderboardKeyPrefix, circleID))
	logger.Info().Uint("circle_id", circleID).Msg("排行榜刷新完成")
	return nil
}

func (s *LeaderboardService) fillFromSettlement(row *models.CircleLeaderboard) error {
	settlement, err := s.settlement.SettleUser(row.UserID)
	if err != nil {
		return err
	}
	row.Score = settlement.Score
	row.TotalGames = settlement.TotalRounds
	row.Wins = settlement.Wins
	row.Losses = settlement.Losses
	row.Draws = settlement.Draws
	row.WinRate = settlement.WinRate
	row.ConsecutiveWins = settlement.ConsecutiveWins
	row.MaxConsecutiveWins = settlement.MaxConsecutiveWins
	row.LastGameAt = settlement.LastGameAt
	return nil
}

// updateRankings 依預設排序鍵重排整個圈子的名次並寫回
func (s *LeaderboardService) updateRankings(circleID uint) error {
	rows, err := s.leaderboardRepo.FindByCircle(circleID)
	if err != nil {
		return err
	}

	sortRows(rows, "score", "desc")
	ranks := denseRanks(rows, "score")
	for i := range rows {
		if rows[i].Ranking == ranks[i] {
			continue
		}
		rows[i].Ranking = ranks[i]
		if err := s.leaderboardRepo.Save(&rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *LeaderboardService) toRow(row models.CircleLeaderboard, rank int) LeaderboardRow {
	result := LeaderboardRow{
		Rank:               rank,
		UserID:             row.UserID,
		Score:              row.Score,
		TotalGames:         row.TotalGames,
		Wins:               row.Wins,
		Losses:             row.Losses,
		Draws:              row.Draws,
		WinRate:            row.WinRate,
		ConsecutiveWins:    row.ConsecutiveWins,
		MaxConsecutiveWins: row.MaxConsecutiveWins,
		LastGameAt:         row.LastGameAt,
	}
	if user, err := s.userRepo.FindByID(row.UserID); err == nil {
		result.Nickname = user.Nickname
		result.AvatarURL = user.AvatarURL
	}
	return result
}

// sortKey 排序鍵。不論主鍵為何，完整比較順位固定是
// (score, winRate, totalGames)；主鍵為 winRate 時把 winRate 提到最前
func sortKey(row models.CircleLeaderboard, sortBy string) [3]float64 {
	if sortBy == "winRate" {
		return [3]float64{row.WinRate, row.Score, float64(row.TotalGames)}
	}
	return [3]float64{row.Score, row.WinRate, float64(row.TotalGames)}
}

func sortRows(rows []models.CircleLeaderboard, sortBy, sortOrder string) {
	asc := sortOrder == "asc"
	sort.SliceStable(rows, func(i, j int) bool {
		ki := sortKey(rows[i], sortBy)
		kj := sortKey(rows[j], sortBy)
		for n := 0; n < len(ki); n++ {
			if ki[n] == kj[n] {
				continue
			}
			if asc {
				return ki[n] < kj[n]
			}
			return ki[n] > kj[n]
		}
		return false
	})
}

// denseRanks 對已排序的列計算 dense rank：
// 鍵相同共享名次，下一個不同的鍵取前一名次 +1
func denseRanks(rows []models.CircleLeaderboard, sortBy string) []int {
	ranks := make([]int, len(rows))
	rank := 0
	var prev [3]float64
	for i, row := range rows {
		key := sortKey(row, sortBy)
		if i == 0 || key != prev {
			rank++
			prev = key
		}
		ranks[i] = rank
	}
	return ranks
}
