// Package apperrors 定義業務層的錯誤，handler 透過 errors.Is 對應 HTTP 狀態碼
package apperrors

import (
	"errors"
	"net/http"
)

// NotFound：資源不存在，直接回傳，不重試
var (
	ErrRoundNotFound  = errors.New("回合不存在")
	ErrCircleNotFound = errors.New("圈子不存在")
	ErrRecordNotFound = errors.New("記錄不存在")
	ErrUserNotFound   = errors.New("使用者不存在")
)

// StateConflict：操作與回合當前狀態不符
var (
	ErrRoundNotWaiting  = errors.New("回合已開始或已結束")
	ErrRoundNotPlaying  = errors.New("回合不在進行中")
	ErrRoundFinished    = errors.New("回合已結束，無法修改")
	ErrRoundNotFinished = errors.New("回合尚未結束，無法評價")
)

// Capacity/Duplicate：人數已滿或重複操作
var (
	ErrRoundFull          = errors.New("回合人數已滿，無法加入")
	ErrAlreadyParticipant = errors.New("您已經是該回合的參與者")
	ErrAlreadySpectator   = errors.New("您已經是該回合的旁觀者")
	ErrAlreadyMember      = errors.New("您已經是該圈子的成員")
	ErrAlreadyRated       = errors.New("您已經評價過該參與者")
	ErrCannotRateSelf     = errors.New("不能評價自己")
)

// Permission：呼叫者沒有執行該操作的權限
var (
	ErrNotCreator         = errors.New("只有創建者可以執行此操作")
	ErrNotParticipant     = errors.New("您不是該回合的參與者")
	ErrNotSpectator       = errors.New("您不是該回合的旁觀者")
	ErrCreatorCannotLeave = errors.New("創建者不能離開回合")
	ErrNotMember          = errors.New("您不是該圈子的成員")
	ErrNotAuthorized      = errors.New("沒有權限執行此操作")
)

// ErrCascadeDeleteFailed 級聯刪除途中失敗，整筆交易回滾
var ErrCascadeDeleteFailed = errors.New("刪除回合相關記錄失敗")

// StatusCode 將業務錯誤對應到 HTTP 狀態碼，未知錯誤視為基礎設施錯誤
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrRoundNotFound),
		errors.Is(err, ErrCircleNotFound),
		errors.Is(err, ErrRecordNotFound),
		errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrRoundNotWaiting),
		errors.Is(err, ErrRoundNotPlaying),
		errors.Is(err, ErrRoundFinished),
		errors.Is(err, ErrRoundNotFinished),
		errors.Is(err, ErrRoundFull),
		errors.Is(err, ErrAlreadyParticipant),
		errors.Is(err, ErrAlreadySpectator),
		errors.Is(err, ErrAlreadyMember),
		errors.Is(err, ErrAlreadyRated),
		errors.Is(err, ErrCannotRateSelf):
		return http.StatusConflict
	case errors.Is(err, ErrNotCreator),
		errors.Is(err, ErrNotParticipant),
		errors.Is(err, ErrNotSpectator),
		errors.Is(err, ErrCreatorCannotLeave),
		errors.Is(err, ErrNotMember),
		errors.Is(err, ErrNotAuthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
