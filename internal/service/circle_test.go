package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chess_rounds/internal/apperrors"
	"chess_rounds/internal/models"
)

func TestCreateCircle(t *testing.T) {
	store := newMemStore()
	services := newTestServices(store)
	creator := store.addUser("圈主")

	circle, err := services.Circle.Create(creator.ID, "牌友圈", "週五固定局")
	require.NoError(t, err)

	assert.Len(t, circle.CircleCode, 6)
	assert.Len(t, circle.JoinCode, 8)
	assert.True(t, services.Circle.IsMember(circle.ID, creator.ID))
	assert.True(t, services.Circle.IsAdmin(circle.ID, creator.ID))
	assert.True(t, services.Circle.IsCreator(circle.ID, creator.ID))

	members, err := services.Circle.Members(circle.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, models.CircleMemberRoleCreator, members[0].Role)
}

func TestCreateCircleUnknownUser(t *testing.T) {
	store := newMemStore()
	services := newTestServices(store)

	_, err := services.Circle.Create(999, "牌友圈", "")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestJoinCircleByCode(t *testing.T) {
	store := newMemStore()
	services := newTestServices(store)
	creator := store.addUser("圈主")
	member := store.addUser("成員")

	circle, err := services.Circle.Create(creator.ID, "牌友圈", "")
	require.NoError(t, err)

	joined, err := services.Circle.JoinByCode(circle.JoinCode, member.ID)
	require.NoError(t, err)
	assert.Equal(t, circle.ID, joined.ID)
	assert.True(t, services.Circle.IsMember(circle.ID, member.ID))
	assert.False(t, services.Circle.IsAdmin(circle.ID, member.ID))

	_, err = services.Circle.JoinByCode(circle.JoinCode, member.ID)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyMember)

	_, err = services.Circle.JoinByCode("WRONGCODE", member.ID)
	assert.ErrorIs(t, err, apperrors.ErrCircleNotFound)
}

func TestLeaveCircle(t *testing.T) {
	store := newMemStore()
	services := newTestServices(store)
	creator := store.addUser("圈主")
	member := store.addUser("成員")

	circle, err := services.Circle.Create(creator.ID, "牌友圈", "")
	require.NoError(t, err)
	_, err = services.Circle.JoinByCode(circle.JoinCode, member.ID)
	require.NoError(t, err)

	// 圈主不能退出
	assert.ErrorIs(t, services.Circle.Leave(context.Background(), circle.ID, creator.ID), apperrors.ErrNotAuthorized)

	require.NoError(t, services.Circle.Leave(context.Background(), circle.ID, member.ID))
	assert.False(t, services.Circle.IsMember(circle.ID, member.ID))

	// 已退出再退出
	assert.ErrorIs(t, services.Circle.Leave(context.Background(), circle.ID, member.ID), apperrors.ErrNotMember)
}

func TestLeaveCircleRemovesLeaderboardRow(t *testing.T) {
	store := newMemStore()
	services := newTestServices(store)
	creator := store.addUser("圈主")
	member := store.addUser("成員")

	circle, err := services.Circle.Create(creator.ID, "牌友圈", "")
	require.NoError(t, err)
	_, err = services.Circle.JoinByCode(circle.JoinCode, member.ID)
	require.NoError(t, err)

	round := store.addFinishedRound(1, time.Now())
	store.addEntry(round.ID, member.ID, 10)
	require.NoError(t, services.Leaderboard.UpdateMember(context.Background(), circle.ID, member.ID))

	require.NoError(t, services.Circle.Leave(context.Background(), circle.ID, member.ID))

	page, err := services.Leaderboard.Leaderboard(context.Background(), circle.ID, creator.ID, "", "", 1, 20)
	require.NoError(t, err)
	for _, row := range page.Rows {
		assert.NotEqual(t, member.ID, row.UserID)
	}
}

func TestRejoinCircle(t *testing.T) {
	store := newMemStore()
	services := newTestServices(store)
	creator := store.addUser("圈主")
	member := store.addUser("成員")

	circle, err := services.Circle.Create(creator.ID, "牌友圈", "")
	require.NoError(t, err)
	_, err = services.Circle.JoinByCode(circle.JoinCode, member.ID)
	require.NoError(t, err)
	require.NoError(t, services.Circle.Leave(context.Background(), circle.ID, member.ID))

	// 退出過的成員用同一組邀請碼回歸，沿用原本的成員列
	_, err = services.Circle.JoinByCode(circle.JoinCode, member.ID)
	require.NoError(t, err)
	assert.True(t, services.Circle.IsMember(circle.ID, member.ID))

	members, err := services.Circle.Members(circle.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}
