package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chess_rounds/internal/apperrors"
	"chess_rounds/internal/models"
	"chess_rounds/internal/storage"
)

type ParticipantRepository interface {
	Create(participant *models.Participant) error
	// CreatePlayer 以玩家身分加入回合。人數上限檢查與座位分配
	// 在同一交易內進行，並鎖定回合列，避免並發加入互相穿越
	CreatePlayer(roundID, userID uint) (*models.Participant, error)
	FindByRoundAndUser(roundID, userID uint) (*models.Participant, error)
	FindActiveByRound(roundID uint, roles ...models.ParticipantRole) ([]models.Participant, error)
	ExistsByRoundAndUser(roundID, userID uint) (bool, error)
	CountActivePlayers(roundID uint) (int64, error)
	Update(participant *models.Participant) error
}

type participantRepository struct {
	db *storage.PostgresDB
}

func NewParticipantRepository(db *storage.PostgresDB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) Create(participant *models.Participant) error {
	return r.db.Create(participant).Error
}

func (r *participantRepository) CreatePlayer(roundID, userID uint) (*models.Participant, error) {
	participant := &models.Participant{
		RoundID:  roundID,
		UserID:   userID,
		Role:     models.RolePlayer,
		JoinedAt: time.Now(),
		IsActive: true,
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var round models.Round
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&round, roundID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.ErrRoundNotFound
			}
			return err
		}
		if round.Status != models.RoundStatusWaiting {
			return apperrors.ErrRoundNotWaiting
		}

		var exists int64
		if err := tx.Model(&models.Participant{}).
			Where("round_id = ? AND user_id = ?", roundID, userID).
			Count(&exists).Error; err != nil {
			return err
		}
		if exists > 0 {
			return apperrors.ErrAlreadyParticipant
		}

		var active int64
		if err := tx.Model(&models.Participant{}).
			Where("round_id = ? AND role = ? AND is_active = ?", roundID, models.RolePlayer, true).
			Count(&active).Error; err != nil {
			return err
		}
		if active >= int64(round.MaxParticipants) {
			return apperrors.ErrRoundFull
		}

		// 座位號取目前最大值 +1
		var maxSeat int
		if err := tx.Model(&models.Participant{}).
			Where("round_id = ?", roundID).
			Select("COALESCE(MAX(seat_number), 0)").
			Scan(&maxSeat).Error; err != nil {
			return err
		}
		participant.SeatNumber = maxSeat + 1

		return tx.Create(participant).Error
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

func (r *participantRepository) FindByRoundAndUser(roundID, userID uint) (*models.Participant, error) {
	var participant models.Participant
	err := r.db.Where("round_id = ? AND user_id = ?", roundID, userID).First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *participantRepository) FindActiveByRound(roundID uint, roles ...models.ParticipantRole) ([]models.Participant, error) {
	query := r.db.Where("round_id = ? AND is_active = ?", roundID, true)
	if len(roles) > 0 {
		query = query.Where("role IN ?", roles)
	}

	var participants []models.Participant
	err := query.Order("seat_number asc").Find(&participants).Error
	return participants, err
}

func (r *participantRepository) ExistsByRoundAndUser(roundID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Participant{}).
		Where("round_id = ? AND user_id = ?", roundID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *participantRepository) CountActivePlayers(roundID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Participant{}).
		Where("round_id = ? AND role = ? AND is_active = ?", roundID, models.RolePlayer, true).
		Count(&count).Error
	return count, err
}

func (r *participantRepository) Update(participant *models.Participant) error {
	return r.db.Save(participant).Error
}
