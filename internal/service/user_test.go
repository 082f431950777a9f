package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chess_rounds/internal/apperrors"
)

func TestRegisterAndLogin(t *testing.T) {
	store := newMemStore()
	services := newTestServices(store)

	user, err := services.User.Register("player1", "secret", "")
	require.NoError(t, err)
	assert.Equal(t, "player1", user.Nickname) // 暱稱缺省時用用戶名
	assert.NotEqual(t, "secret", user.Password)

	loggedIn, err := services.User.Login("player1", "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestLoginWrongCredentials(t *testing.T) {
	store := newMemStore()
	services := newTestServices(store)

	_, err := services.User.Register("player1", "secret", "小明")
	require.NoError(t, err)

	// 帳號錯與密碼錯回同一個訊息，不洩漏帳號是否存在
	_, badUser := services.User.Login("nobody", "secret")
	_, badPass := services.User.Login("player1", "wrong")
	require.Error(t, badUser)
	require.Error(t, badPass)
	assert.Equal(t, badUser.Error(), badPass.Error())
}

func TestUpdateProfile(t *testing.T) {
	store := newMemStore()
	services := newTestServices(store)
	user := store.addUser("舊名")

	updated, err := services.User.UpdateProfile(user.ID, "新名", "https://example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "新名", updated.Nickname)
	assert.Equal(t, "https://example.com/a.png", updated.AvatarURL)

	// 留空的欄位維持原值
	kept, err := services.User.UpdateProfile(user.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "新名", kept.Nickname)

	_, err = services.User.UpdateProfile(999, "x", "")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
