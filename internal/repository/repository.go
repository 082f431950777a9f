package repository

import "chess_rounds/internal/storage"

type Repositories struct {
	User              UserRepository
	Round             RoundRepository
	Participant       ParticipantRepository
	Record            RecordRepository
	ParticipantRecord ParticipantRecordRepository
	Circle            CircleRepository
	CircleMember      CircleMemberRepository
	Leaderboard       LeaderboardRepository
	Rating            RatingRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		User:              NewUserRepository(db),
		Round:             NewRoundRepository(db),
		Participant:       NewParticipantRepository(db),
		Record:            NewRecordRepository(db),
		ParticipantRecord: NewParticipantRecordRepository(db),
		Circle:            NewCircleRepository(db),
		CircleMember:      NewCircleMemberRepository(db),
		Leaderboard:       NewLeaderboardRepository(db),
		Rating:            NewRatingRepository(db),
	}
}
