package service

import (
	"chess_rounds/internal/cache"
	"chess_rounds/internal/repository"
)

type Services struct {
	User        *UserService
	Round       *RoundService
	Record      *RecordService
	Circle      *CircleService
	Settlement  *SettlementService
	Leaderboard *LeaderboardService
	Rating      *RatingService
}

func NewServices(repos *repository.Repositories, c cache.Cache) *Services {
	settlement := NewSettlementService(repos.ParticipantRecord, repos.Round)
	leaderboard := NewLeaderboardService(repos.Leaderboard, repos.CircleMember, repos.Circle, repos.User, settlement, c)
	table := NewTableService(repos.User, repos.Participant)

	userService := NewUserService(repos.User)
	roundService := NewRoundService(repos.Round, repos.Participant, repos.ParticipantRecord, repos.CircleMember, repos.User, table, leaderboard)
	recordService := NewRecordService(repos.Record, repos.Round, repos.ParticipantRecord)
	circleService := NewCircleService(repos.Circle, repos.CircleMember, repos.Leaderboard, repos.User, c)
	ratingService := NewRatingService(repos.Rating, repos.Round, repos.Participant)

	return &Services{
		User:        userService,
		Round:       roundService,
		Record:      recordService,
		Circle:      circleService,
		Settlement:  settlement,
		Leaderboard: leaderboard,
		Rating:      ratingService,
	}
}
