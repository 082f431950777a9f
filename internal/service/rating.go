package service

import (
	"errors"

	"gorm.io/gorm"

	"chess_rounds/internal/apperrors"
	"chess_rounds/internal/models"
	"chess_rounds/internal/repository"
)

// RatingService 管理回合結束後參與者之間的互評
type RatingService struct {
	ratingRepo      repository.RatingRepository
	roundRepo       repository.RoundRepository
	participantRepo repository.ParticipantRepository
}

func NewRatingService(
	ratingRepo repository.RatingRepository,
	roundRepo repository.RoundRepository,
	participantRepo repository.ParticipantRepository,
) *RatingService {
	return &RatingService{
		ratingRepo:      ratingRepo,
		roundRepo:       roundRepo,
		participantRepo: participantRepo,
	}
}

// Rate 對同回合的另一位參與者評價，每對 (回合, 評價者, 被評者) 只能一次，
// 且僅限已結束的回合
func (s *RatingService) Rate(roundID, fromUserID, toUserID uint, ratingType models.RatingType, comment string) (*models.Rating, error) {
	if fromUserID == toUserID {
		return nil, apperrors.ErrCannotRateSelf
	}

	round, err := s.roundRepo.FindByID(roundID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRoundNotFound
		}
		return nil, err
	}
	if round.Status != models.RoundStatusFinished {
		return nil, apperrors.ErrRoundNotFinished
	}

	for _, userID := range []uint{fromUserID, toUserID} {
		exists, err := s.participantRepo.ExistsByRoundAndUser(roundID, userID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, apperrors.ErrNotParticipant
		}
	}

	rated, err := s.ratingRepo.ExistsByRoundFromTo(roundID, fromUserID, toUserID)
	if err != nil {
		return nil, err
	}
	if rated {
		return nil, apperrors.ErrAlreadyRated
	}

	rating := &models.Rating{
		RoundID:    roundID,
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		RatingType: ratingType,
		Comment:    comment,
	}
	if err := s.ratingRepo.Create(rating); err != nil {
		return nil, err
	}
	return rating, nil
}

// RoundRatings 回合的所有評價
func (s *RatingService) RoundRatings(roundID uint) ([]models.Rating, error) {
	return s.ratingRepo.FindByRound(roundID)
}
