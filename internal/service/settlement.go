package service

import (
	"math"
	"sort"
	"time"

	"chess_rounds/internal/models"
	"chess_rounds/internal/repository"
)

// RoundResult 單一回合對某個使用者的勝負判定
type RoundResult string

const (
	RoundResultWin  RoundResult = "WIN"
	RoundResultLose RoundResult = "LOSE"
	RoundResultDraw RoundResult = "DRAW"
)

// RoundOutcome 使用者在單一已結束回合中的淨結果
type RoundOutcome struct {
	RoundID     uint
	RawNet      float64     // 流水帳變動總和，未乘倍率
	AdjustedNet float64     // RawNet × 回合倍率
	Result      RoundResult // 依 RawNet 正負判定
	EndTime     *time.Time
}

// UserSettlement 使用者所有已結束回合的累計統計
type UserSettlement struct {
	TotalRounds        int
	Wins               int
	Losses             int
	Draws              int
	Score              float64 // Σ AdjustedNet
	WinRate            float64 // 百分比，兩位小數
	ConsecutiveWins    int
	MaxConsecutiveWins int
	LastGameAt         *time.Time
}

// SettlementService 把使用者的流水帳（僅限已結束回合）
// 結算成逐回合勝負與累計統計
//
// 關鍵規則是按「回合」而不是按「記錄」分組：使用者在同一回合中
// 先贏一筆再輸一筆，仍然只算一個回合的勝或負，取決於淨值正負。
type SettlementService struct {
	participantRecordRepo repository.ParticipantRecordRepository
	roundRepo             repository.RoundRepository
}

func NewSettlementService(participantRecordRepo repository.ParticipantRecordRepository, roundRepo repository.RoundRepository) *SettlementService {
	return &SettlementService{
		participantRecordRepo: participantRecordRepo,
		roundRepo:             roundRepo,
	}
}

// SettleUser 結算使用者所有已結束回合
func (s *SettlementService) SettleUser(userID uint) (*UserSettlement, error) {
	entries, err := s.participantRecordRepo.FindFinishedByUser(userID)
	if err != nil {
		return nil, err
	}

	outcomes, err := s.outcomesByRound(entries)
	if err != nil {
		return nil, err
	}
	return s.accumulate(outcomes), nil
}

// outcomesByRound 把流水帳按回合分組並計算每回合的淨結果，
// 回傳依回合結束時間由舊到新排序的結果
func (s *SettlementService) outcomesByRound(entries []models.ParticipantRecord) ([]RoundOutcome, error) {
	grouped := make(map[uint]float64)
	for _, entry := range entries {
		grouped[entry.RoundID] += entry.AmountChange
	}

	roundIDs := make([]uint, 0, len(grouped))
	for roundID := range grouped {
		roundIDs = append(roundIDs, roundID)
	}
	rounds, err := s.roundRepo.FindByIDs(roundIDs)
	if err != nil {
		return nil, err
	}
	roundByID := make(map[uint]models.Round, len(rounds))
	for _, round := range rounds {
		roundByID[round.ID] = round
	}

	outcomes := make([]RoundOutcome, 0, len(grouped))
	for roundID, rawNet := range grouped {
		round, ok := roundByID[roundID]
		if !ok {
			continue
		}
		multiplier := round.Multiplier
		if multiplier == 0 {
			multiplier = 1
		}
		outcome := RoundOutcome{
			RoundID:     roundID,
			RawNet:      rawNet,
			AdjustedNet: rawNet * multiplier,
			EndTime:     round.EndTime,
		}
		switch {
		case rawNet > 0:
			outcome.Result = RoundResultWin
		case rawNet < 0:
			outcome.Result = RoundResultLose
		default:
			outcome.Result = RoundResultDraw
		}
		outcomes = append(outcomes, outcome)
	}

	// 連勝統計需要按時間順序走訪
	sort.Slice(outcomes, func(i, j int) bool {
		ti := timeOrZero(outcomes[i].EndTime)
		tj := timeOrZero(outcomes[j].EndTime)
		if ti.Equal(tj) {
			return outcomes[i].RoundID < outcomes[j].RoundID
		}
		return ti.Before(tj)
	})
	return outcomes, nil
}

func (s *SettlementService) accumulate(outcomes []RoundOutcome) *UserSettlement {
	settlement := &UserSettlement{TotalRounds: len(outcomes)}

	consecutive := 0
	for _, outcome := range outcomes {
		settlement.Score += outcome.AdjustedNet

		switch outcome.Result {
		case RoundResultWin:
			settlement.Wins++
			consecutive++
			if consecutive > settlement.MaxConsecutiveWins {
				settlement.MaxConsecutiveWins = consecutive
			}
		case RoundResultLose:
			settlement.Losses++
			consecutive = 0
		default:
			settlement.Draws++
			consecutive = 0
		}

		if outcome.EndTime != nil {
			if settlement.LastGameAt == nil || outcome.EndTime.After(*settlement.LastGameAt) {
				endTime := *outcome.EndTime
				settlement.LastGameAt = &endTime
			}
		}
	}
	settlement.ConsecutiveWins = consecutive

	if settlement.TotalRounds > 0 {
		rate := float64(settlement.Wins) / float64(settlement.TotalRounds) * 100
		settlement.WinRate = math.Round(rate*100) / 100
	}
	return settlement
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
