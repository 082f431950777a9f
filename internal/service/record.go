package service

import (
	"encoding/json"
	"errors"
	"math"

	"gorm.io/gorm"

	"chess_rounds/internal/apperrors"
	"chess_rounds/internal/models"
	"chess_rounds/internal/repository"
)

// ParticipantDelta 一筆記錄中單一參與者的金額變動
type ParticipantDelta struct {
	UserID       uint    `json:"user_id" binding:"required"`
	AmountChange float64 `json:"amount_change"`
	Remarks      string  `json:"remarks"`
}

// AppendRecordInput 新增計分記錄的參數
type AppendRecordInput struct {
	RecordType  models.RecordType
	TotalAmount float64
	Description string
	Deltas      []ParticipantDelta
}

// RecordService 管理回合內的計分記錄與對應的流水帳
type RecordService struct {
	recordRepo            repository.RecordRepository
	roundRepo             repository.RoundRepository
	participantRecordRepo repository.ParticipantRecordRepository
}

func NewRecordService(
	recordRepo repository.RecordRepository,
	roundRepo repository.RoundRepository,
	participantRecordRepo repository.ParticipantRecordRepository,
) *RecordService {
	return &RecordService{
		recordRepo:            recordRepo,
		roundRepo:             roundRepo,
		participantRecordRepo: participantRecordRepo,
	}
}

// Append 寫入一筆計分記錄與每個參與者的流水帳
//
// 流水帳維持 (回合, 使用者) 的連續餘額：
// balanceAfter = balanceBefore + amountChange。
// 各參與者變動的總和不強制為零
func (s *RecordService) Append(roundID, recorderID uint, input AppendRecordInput) (*models.Record, error) {
	round, err := s.roundRepo.FindByID(roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoundNotFound
		}
		return nil, err
	}
	if round.Status != models.RoundStatusPlaying {
		return nil, apperrors.ErrRoundNotPlaying
	}

	maxSeq, err := s.recordRepo.MaxSequence(roundID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]uint, 0, len(input.Deltas))
	for _, delta := range input.Deltas {
		userIDs = append(userIDs, delta.UserID)
	}
	participantsJSON, err := json.Marshal(userIDs)
	if err != nil {
		return nil, err
	}

	record := &models.Record{
		RoundID:        roundID,
		RecorderID:     recorderID,
		RecordType:     input.RecordType,
		Amount:         input.TotalAmount,
		Description:    input.Description,
		Participants:   participantsJSON,
		SequenceNumber: maxSeq + 1,
	}

	entries := make([]*models.ParticipantRecord, 0, len(input.Deltas))
	for _, delta := range input.Deltas {
		balanceBefore, err := s.participantRecordRepo.LastBalance(roundID, delta.UserID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &models.ParticipantRecord{
			RoundID:       roundID,
			UserID:        delta.UserID,
			AmountChange:  delta.AmountChange,
			BalanceBefore: balanceBefore,
			BalanceAfter:  balanceBefore + delta.AmountChange,
			IsWinner:      delta.AmountChange > 0,
			Remarks:       delta.Remarks,
		})
	}

	round.TotalAmount += math.Abs(input.TotalAmount)
	round.RoundCount++

	if err := s.recordRepo.CreateWithEntries(record, entries, round); err != nil {
		return nil, err
	}
	return record, nil
}

// RoundRecords 回合內的記錄，按序號排序並分頁
func (s *RecordService) RoundRecords(roundID uint, offset, limit int) ([]models.Record, int64, error) {
	return s.recordRepo.FindByRound(roundID, offset, limit)
}

// UserRoundRecords 使用者在回合內的流水帳
func (s *RecordService) UserRoundRecords(roundID, userID uint) ([]models.ParticipantRecord, error) {
	return s.participantRecordRepo.FindByRoundAndUser(roundID, userID)
}

// Update 修改記錄，僅記錄者可執行；回合結束後記錄不可再修改
func (s *RecordService) Update(recordID, userID uint, recordType models.RecordType, amount float64, description string) (*models.Record, error) {
	record, err := s.mutableRecord(recordID, userID)
	if err != nil {
		return nil, err
	}

	record.RecordType = recordType
	record.Amount = amount
	record.Description = description
	if err := s.recordRepo.Update(record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete 刪除記錄與其流水帳，僅記錄者可執行；回合結束後不可刪除
func (s *RecordService) Delete(recordID, userID uint) error {
	record, err := s.mutableRecord(recordID, userID)
	if err != nil {
		return err
	}
	return s.recordRepo.DeleteWithEntries(record.ID)
}

// mutableRecord 取出記錄並確認仍可修改：
// 結算只讀取已結束的回合，所以 FINISHED 就是記錄凍結的時點
func (s *RecordService) mutableRecord(recordID, userID uint) (*models.Record, error) {
	record, err := s.recordRepo.FindByID(recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecordNotFound
		}
		return nil, err
	}
	if record.RecorderID != userID {
		return nil, apperrors.ErrNotAuthorized
	}

	round, err := s.roundRepo.FindByID(record.RoundID)
	if err != nil {
		return nil, err
	}
	if round.Status == models.RoundStatusFinished {
		return nil, apperrors.ErrRoundFinished
	}
	return record, nil
}
