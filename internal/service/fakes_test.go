package service

import (
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"chess_rounds/internal/apperrors"
	"chess_rounds/internal/cache"
	"chess_rounds/internal/models"
	"chess_rounds/internal/repository"
)

// memStore 測試用的記憶體資料層，所有 fake repository 共用同一份資料
type memStore struct {
	mu sync.Mutex

	users        map[uint]*models.User
	rounds       map[uint]*models.Round
	participants []*models.Participant
	records      map[uint]*models.Record
	entries      []*models.ParticipantRecord
	circles      map[uint]*models.Circle
	members      []*models.CircleMember
	boards       []*models.CircleLeaderboard
	ratings      []*models.Rating

	nextID uint
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[uint]*models.User),
		rounds:  make(map[uint]*models.Round),
		records: make(map[uint]*models.Record),
		circles: make(map[uint]*models.Circle),
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

// newTestServices 以 fake repository 與記憶體快取組裝整套服務
func newTestServices(s *memStore) *Services {
	return NewServices(newTestRepos(s), cache.NewMemoryCache())
}

// newTestRepos 把全部 fake repository 組成服務層期望的集合
func newTestRepos(s *memStore) *repository.Repositories {
	return &repository.Repositories{
		User:              &fakeUserRepo{s},
		Round:             &fakeRoundRepo{s},
		Participant:       &fakeParticipantRepo{s},
		Record:            &fakeRecordRepo{s},
		ParticipantRecord: &fakeParticipantRecordRepo{s},
		Circle:            &fakeCircleRepo{s},
		CircleMember:      &fakeCircleMemberRepo{s},
		Leaderboard:       &fakeLeaderboardRepo{s},
		Rating:            &fakeRatingRepo{s},
	}
}

// addUser 直接塞一個可用的使用者，省去每個測試重複註冊
func (s *memStore) addUser(nickname string) *models.User {
	user := &models.User{Username: nickname, Nickname: nickname, Status: 1}
	_ = (&fakeUserRepo{s}).Create(user)
	return user
}

// addFinishedRound 直接塞一個已結束的回合，結算測試用
func (s *memStore) addFinishedRound(multiplier float64, endTime time.Time) *models.Round {
	round := &models.Round{
		Multiplier: multiplier,
		Status:     models.RoundStatusFinished,
		EndTime:    &endTime,
	}
	_ = (&fakeRoundRepo{s}).Create(round)
	return round
}

// addEntry 直接塞一筆流水帳
func (s *memStore) addEntry(roundID, userID uint, amountChange float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, &models.ParticipantRecord{
		Model:        gorm.Model{ID: s.id()},
		RoundID:      roundID,
		UserID:       userID,
		AmountChange: amountChange,
	})
}

type fakeUserRepo struct{ s *memStore }

func (r *fakeUserRepo) Create(user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user.ID == 0 {
		user.ID = r.s.id()
	}
	copied := *user
	r.s.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) FindByID(id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) FindByUsername(username string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, user := range r.s.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *user
	r.s.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) CountHuman() (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, user := range r.s.users {
		if !user.IsTableUser() {
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepo) CountActiveHuman() (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, user := range r.s.users {
		if !user.IsTableUser() && user.Status == 1 {
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepo) SearchHuman(keyword string, offset, limit int) ([]models.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []models.User
	ids := make([]uint, 0, len(r.s.users))
	for id := range r.s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		user := r.s.users[id]
		if user.IsTableUser() {
			continue
		}
		if keyword == "" || strings.Contains(user.Nickname, keyword) || strings.Contains(user.Username, keyword) {
			matched = append(matched, *user)
		}
	}
	total := int64(len(matched))
	return page(matched, offset, limit), total, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset > len(items) {
		offset = len(items)
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

type fakeRoundRepo struct{ s *memStore }

func (r *fakeRoundRepo) Create(round *models.Round) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if round.ID == 0 {
		round.ID = r.s.id()
	}
	round.CreatedAt = time.Now()
	copied := *round
	r.s.rounds[round.ID] = &copied
	return nil
}

func (r *fakeRoundRepo) FindByID(id uint) (*models.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	round, ok := r.s.rounds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *round
	return &copied, nil
}

func (r *fakeRoundRepo) FindByCode(code string) (*models.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, round := range r.s.rounds {
		if round.RoundCode == code {
			copied := *round
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRoundRepo) FindByIDs(ids []uint) ([]models.Round, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var rounds []models.Round
	for _, id := range ids {
		if round, ok := r.s.rounds[id]; ok {
			rounds = append(rounds, *round)
		}
	}
	return rounds, nil
}

func (r *fakeRoundRepo) ExistsByCode(code string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, round := range r.s.rounds {
		if round.RoundCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRoundRepo) Update(round *models.Round) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	copied := *round
	r.s.rounds[round.ID] = &copied
	return nil
}

func (r *fakeRoundRepo) DeleteCascade(roundID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.rounds[roundID]; !ok {
		return apperrors.ErrCascadeDeleteFailed
	}
	delete(r.s.rounds, roundID)
	r.s.participants = filterInPlace(r.s.participants, func(p *models.Participant) bool { return p.RoundID != roundID })
	r.s.entries = filterInPlace(r.s.entries, func(e *models.ParticipantRecord) bool { return e.RoundID != roundID })
	r.s.ratings = filterInPlace(r.s.ratings, func(rt *models.Rating) bool { return rt.RoundID != roundID })
	for id, record := range r.s.records {
		if record.RoundID == roundID {
			delete(r.s.records, id)
		}
	}
	return nil
}

func filterInPlace[T any](items []*T, keep func(*T) bool) []*T {
	out := items[:0]
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func (r *fakeRoundRepo) FindByCreator(creatorID uint, offset, limit int) ([]models.Round, int64, error) {
	return r.filter(offset, limit, func(round *models.Round) bool { return round.CreatorID == creatorID })
}

func (r *fakeRoundRepo) FindByStatus(status models.RoundStatus, offset, limit int) ([]models.Round, int64, error) {
	return r.filter(offset, limit, func(round *models.Round) bool { return round.Status == status })
}

func (r *fakeRoundRepo) FindByParticipant(userID uint, offset, limit int) ([]models.Round, int64, error) {
	r.s.mu.Lock()
	joined := make(map[uint]bool)
	for _, p := range r.s.participants {
		if p.UserID == userID {
			joined[p.RoundID] = true
		}
	}
	r.s.mu.Unlock()
	return r.filter(offset, limit, func(round *models.Round) bool { return joined[round.ID] })
}

func (r *fakeRoundRepo) filter(offset, limit int, match func(*models.Round) bool) ([]models.Round, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]uint, 0, len(r.s.rounds))
	for id := range r.s.rounds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var matched []models.Round
	for _, id := range ids {
		if match(r.s.rounds[id]) {
			matched = append(matched, *r.s.rounds[id])
		}
	}
	total := int64(len(matched))
	return page(matched, offset, limit), total, nil
}

type fakeParticipantRepo struct{ s *memStore }

func (r *fakeParticipantRepo) Create(participant *models.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if participant.ID == 0 {
		participant.ID = r.s.id()
	}
	copied := *participant
	r.s.participants = append(r.s.participants, &copied)
	return nil
}

// CreatePlayer 鏡像儲存層的原子加入：狀態、重複與人數檢查
// 和座位分配在同一把鎖下完成
func (r *fakeParticipantRepo) CreatePlayer(roundID, userID uint) (*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	round, ok := r.s.rounds[roundID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if round.Status != models.RoundStatusWaiting {
		return nil, apperrors.ErrRoundNotWaiting
	}

	var activePlayers int
	maxSeat := 0
	for _, p := range r.s.participants {
		if p.RoundID != roundID {
			continue
		}
		if p.UserID == userID {
			return nil, apperrors.ErrAlreadyParticipant
		}
		if p.Role == models.RolePlayer && p.IsActive {
			activePlayers++
		}
		if p.SeatNumber > maxSeat {
			maxSeat = p.SeatNumber
		}
	}
	if activePlayers >= round.MaxParticipants {
		return nil, apperrors.ErrRoundFull
	}

	participant := &models.Participant{
		RoundID:    roundID,
		UserID:     userID,
		Role:       models.RolePlayer,
		SeatNumber: maxSeat + 1,
		JoinedAt:   time.Now(),
		IsActive:   true,
	}
	participant.ID = r.s.id()
	r.s.participants = append(r.s.participants, participant)
	copied := *participant
	return &copied, nil
}

func (r *fakeParticipantRepo) FindByRoundAndUser(roundID, userID uint) (*models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.participants {
		if p.RoundID == roundID && p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeParticipantRepo) FindActiveByRound(roundID uint, roles ...models.ParticipantRole) ([]models.Participant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []models.Participant
	for _, p := range r.s.participants {
		if p.RoundID != roundID || !p.IsActive {
			continue
		}
		if len(roles) > 0 && !roleIn(p.Role, roles) {
			continue
		}
		matched = append(matched, *p)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].SeatNumber < matched[j].SeatNumber })
	return matched, nil
}

func roleIn(role models.ParticipantRole, roles []models.ParticipantRole) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func (r *fakeParticipantRepo) ExistsByRoundAndUser(roundID, userID uint) (bool, error) {
	_, err := r.FindByRoundAndUser(roundID, userID)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakeParticipantRepo) CountActivePlayers(roundID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, p := range r.s.participants {
		if p.RoundID == roundID && p.Role == models.RolePlayer && p.IsActive {
			count++
		}
	}
	return count, nil
}

func (r *fakeParticipantRepo) Update(participant *models.Participant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, p := range r.s.participants {
		if p.ID == participant.ID {
			copied := *participant
			r.s.participants[i] = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeRecordRepo struct{ s *memStore }

func (r *fakeRecordRepo) CreateWithEntries(record *models.Record, entries []*models.ParticipantRecord, round *models.Round) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if record.ID == 0 {
		record.ID = r.s.id()
	}
	record.CreatedAt = time.Now()
	copiedRecord := *record
	r.s.records[record.ID] = &copiedRecord

	for _, entry := range entries {
		entry.RecordID = record.ID
		if entry.ID == 0 {
			entry.ID = r.s.id()
		}
		copied := *entry
		r.s.entries = append(r.s.entries, &copied)
	}

	copiedRound := *round
	r.s.rounds[round.ID] = &copiedRound
	return nil
}

func (r *fakeRecordRepo) FindByID(id uint) (*models.Record, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	record, ok := r.s.records[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *fakeRecordRepo) FindByRound(roundID uint, offset, limit int) ([]models.Record, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []models.Record
	for _, record := range r.s.records {
		if record.RoundID == roundID {
			matched = append(matched, *record)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].SequenceNumber < matched[j].SequenceNumber })
	total := int64(len(matched))
	return page(matched, offset, limit), total, nil
}

func (r *fakeRecordRepo) MaxSequence(roundID uint) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	maxSeq := 0
	for _, record := range r.s.records {
		if record.RoundID == roundID && record.SequenceNumber > maxSeq {
			maxSeq = record.SequenceNumber
		}
	}
	return maxSeq, nil
}

func (r *fakeRecordRepo) Update(record *models.Record) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.records[record.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *record
	r.s.records[record.ID] = &copied
	return nil
}

func (r *fakeRecordRepo) DeleteWithEntries(recordID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.records, recordID)
	r.s.entries = filterInPlace(r.s.entries, func(e *models.ParticipantRecord) bool { return e.RecordID != recordID })
	return nil
}

type fakeParticipantRecordRepo struct{ s *memStore }

func (r *fakeParticipantRecordRepo) FindFinishedByUser(userID uint) ([]models.ParticipantRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []models.ParticipantRecord
	for _, entry := range r.s.entries {
		if entry.UserID != userID {
			continue
		}
		round, ok := r.s.rounds[entry.RoundID]
		if !ok || round.Status != models.RoundStatusFinished {
			continue
		}
		matched = append(matched, *entry)
	}
	return matched, nil
}

func (r *fakeParticipantRecordRepo) FindByRoundAndUser(roundID, userID uint) ([]models.ParticipantRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []models.ParticipantRecord
	for _, entry := range r.s.entries {
		if entry.RoundID == roundID && entry.UserID == userID {
			matched = append(matched, *entry)
		}
	}
	return matched, nil
}

func (r *fakeParticipantRecordRepo) LastBalance(roundID, userID uint) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	balance := 0.0
	var lastID uint
	for _, entry := range r.s.entries {
		if entry.RoundID == roundID && entry.UserID == userID && entry.ID > lastID {
			lastID = entry.ID
			balance = entry.BalanceAfter
		}
	}
	return balance, nil
}

func (r *fakeParticipantRecordRepo) SumByRoundAndUser(roundID, userID uint) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := 0.0
	for _, entry := range r.s.entries {
		if entry.RoundID == roundID && entry.UserID == userID {
			sum += entry.AmountChange
		}
	}
	return sum, nil
}

type fakeCircleRepo struct{ s *memStore }

func (r *fakeCircleRepo) CreateWithCreator(circle *models.Circle, creator *models.CircleMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if circle.ID == 0 {
		circle.ID = r.s.id()
	}
	copiedCircle := *circle
	r.s.circles[circle.ID] = &copiedCircle

	creator.CircleID = circle.ID
	creator.ID = r.s.id()
	copiedMember := *creator
	r.s.members = append(r.s.members, &copiedMember)
	return nil
}

func (r *fakeCircleRepo) FindByID(id uint) (*models.Circle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	circle, ok := r.s.circles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *circle
	return &copied, nil
}

func (r *fakeCircleRepo) FindByJoinCode(joinCode string) (*models.Circle, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, circle := range r.s.circles {
		if circle.JoinCode == joinCode {
			copied := *circle
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCircleRepo) ExistsByCode(code string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, circle := range r.s.circles {
		if circle.CircleCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCircleRepo) ExistsByJoinCode(joinCode string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, circle := range r.s.circles {
		if circle.JoinCode == joinCode {
			return true, nil
		}
	}
	return false, nil
}

type fakeCircleMemberRepo struct{ s *memStore }

func (r *fakeCircleMemberRepo) Create(member *models.CircleMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if member.ID == 0 {
		member.ID = r.s.id()
	}
	copied := *member
	r.s.members = append(r.s.members, &copied)
	return nil
}

func (r *fakeCircleMemberRepo) FindByCircleAndUser(circleID, userID uint) (*models.CircleMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, member := range r.s.members {
		if member.CircleID == circleID && member.UserID == userID {
			copied := *member
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCircleMemberRepo) FindActiveByCircle(circleID uint) ([]models.CircleMember, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []models.CircleMember
	for _, member := range r.s.members {
		if member.CircleID == circleID && member.Status == 1 {
			matched = append(matched, *member)
		}
	}
	return matched, nil
}

func (r *fakeCircleMemberRepo) FindActiveCircleIDsByUser(userID uint) ([]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uint
	for _, member := range r.s.members {
		if member.UserID == userID && member.Status == 1 {
			ids = append(ids, member.CircleID)
		}
	}
	return ids, nil
}

func (r *fakeCircleMemberRepo) Update(member *models.CircleMember) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, m := range r.s.members {
		if m.ID == member.ID {
			copied := *member
			r.s.members[i] = &copied
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeLeaderboardRepo struct{ s *memStore }

func (r *fakeLeaderboardRepo) FindByCircleAndUser(circleID, userID uint) (*models.CircleLeaderboard, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.boards {
		if row.CircleID == circleID && row.UserID == userID {
			copied := *row
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeLeaderboardRepo) FindByCircle(circleID uint) ([]models.CircleLeaderboard, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []models.CircleLeaderboard
	for _, row := range r.s.boards {
		if row.CircleID == circleID {
			matched = append(matched, *row)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].UserID < matched[j].UserID })
	return matched, nil
}

func (r *fakeLeaderboardRepo) Save(row *models.CircleLeaderboard) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, existing := range r.s.boards {
		if existing.CircleID == row.CircleID && existing.UserID == row.UserID {
			if row.ID == 0 {
				row.ID = existing.ID
			}
			copied := *row
			r.s.boards[i] = &copied
			return nil
		}
	}
	if row.ID == 0 {
		row.ID = r.s.id()
	}
	copied := *row
	r.s.boards = append(r.s.boards, &copied)
	return nil
}

func (r *fakeLeaderboardRepo) DeleteByCircleAndUser(circleID, userID uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.boards = filterInPlace(r.s.boards, func(row *models.CircleLeaderboard) bool {
		return !(row.CircleID == circleID && row.UserID == userID)
	})
	return nil
}

type fakeRatingRepo struct{ s *memStore }

func (r *fakeRatingRepo) Create(rating *models.Rating) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rating.ID == 0 {
		rating.ID = r.s.id()
	}
	copied := *rating
	r.s.ratings = append(r.s.ratings, &copied)
	return nil
}

func (r *fakeRatingRepo) ExistsByRoundFromTo(roundID, fromUserID, toUserID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rating := range r.s.ratings {
		if rating.RoundID == roundID && rating.FromUserID == fromUserID && rating.ToUserID == toUserID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRatingRepo) FindByRound(roundID uint) ([]models.Rating, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var matched []models.Rating
	for _, rating := range r.s.ratings {
		if rating.RoundID == roundID {
			matched = append(matched, *rating)
		}
	}
	return matched, nil
}
