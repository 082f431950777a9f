package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chess_rounds/internal/apperrors"
	"chess_rounds/internal/models"
	"chess_rounds/internal/service"
)

// RoundHandler 處理與回合相關的請求
type RoundHandler struct {
	roundService  *service.RoundService
	ratingService *service.RatingService
}

// NewRoundHandler 創建一個新的 RoundHandler 實例
func NewRoundHandler(roundService *service.RoundService, ratingService *service.RatingService) *RoundHandler {
	return &RoundHandler{roundService: roundService, ratingService: ratingService}
}

// CreateRound 處理創建新回合的請求
func (h *RoundHandler) CreateRound(c *gin.Context) {
	var input struct {
		GameType         string  `json:"game_type"`
		MaxParticipants  int     `json:"max_participants"`
		Multiplier       float64 `json:"multiplier"`
		HasTable         bool    `json:"has_table"`
		AutoStartMinutes int     `json:"auto_start_minutes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("userID")
	round, err := h.roundService.Create(userID, service.CreateRoundInput{
		GameType:         input.GameType,
		MaxParticipants:  input.MaxParticipants,
		Multiplier:       input.Multiplier,
		HasTable:         input.HasTable,
		AutoStartMinutes: input.AutoStartMinutes,
	})
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, round)
}

// GetRound 處理獲取回合訊息的請求
func (h *RoundHandler) GetRound(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	round, err := h.roundService.Get(roundID)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, round)
}

// ListRounds 依 type 查詢參數列出回合：joined（預設）、created、active
func (h *RoundHandler) ListRounds(c *gin.Context) {
	userID := c.GetUint("userID")
	offset, limit := pagination(c)

	var (
		rounds interface{}
		total  int64
		err    error
	)
	switch c.DefaultQuery("type", "joined") {
	case "created":
		rounds, total, err = h.roundService.CreatedRounds(userID, offset, limit)
	case "active":
		rounds, total, err = h.roundService.ActiveRounds(offset, limit)
	default:
		rounds, total, err = h.roundService.UserRounds(userID, offset, limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查詢回合失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rounds": rounds, "total": total})
}

// JoinRound 處理加入回合的請求
func (h *RoundHandler) JoinRound(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	userID := c.GetUint("userID")
	participant, err := h.roundService.Join(roundID, userID)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, participant)
}

// JoinRoundByCode 處理以回合碼加入回合的請求
func (h *RoundHandler) JoinRoundByCode(c *gin.Context) {
	var input struct {
		RoundCode string `json:"round_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("userID")
	participant, err := h.roundService.JoinByCode(input.RoundCode, userID)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, participant)
}

// LeaveRound 處理離開回合的請求
func (h *RoundHandler) LeaveRound(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	userID := c.GetUint("userID")
	if err := h.roundService.Leave(roundID, userID); err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "成功離開回合"})
}

// StartRound 處理開始回合的請求，可在開始時覆寫台板與倍率設定
func (h *RoundHandler) StartRound(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	var input struct {
		HasTable   *bool    `json:"has_table"`
		Multiplier *float64 `json:"multiplier"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	userID := c.GetUint("userID")
	if err := h.roundService.Start(roundID, userID, input.HasTable, input.Multiplier); err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "回合已開始"})
}

// EndRound 處理結束回合的請求
func (h *RoundHandler) EndRound(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	userID := c.GetUint("userID")
	if err := h.roundService.End(c.Request.Context(), roundID, userID); err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "回合已結束"})
}

// PauseRound 處理暫停回合的請求
func (h *RoundHandler) PauseRound(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	userID := c.GetUint("userID")
	if err := h.roundService.Pause(roundID, userID); err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "回合已暫停"})
}

// ResumeRound 處理恢復回合的請求
func (h *RoundHandler) ResumeRound(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	userID := c.GetUint("userID")
	if err := h.roundService.Resume(roundID, userID); err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "回合已恢復"})
}

// DeleteRound 處理創建者刪除回合的請求，僅限等待中的回合
func (h *RoundHandler) DeleteRound(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	userID := c.GetUint("userID")
	if err := h.roundService.Delete(roundID, userID); err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "回合已刪除"})
}

// JoinSpectator 處理以旁觀者身分加入回合的請求
func (h *RoundHandler) JoinSpectator(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	userID := c.GetUint("userID")
	if err := h.roundService.JoinSpectator(roundID, userID); err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "成功加入旁觀"})
}

// LeaveSpectator 處理旁觀者離開回合的請求
func (h *RoundHandler) LeaveSpectator(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	userID := c.GetUint("userID")
	if err := h.roundService.LeaveSpectator(roundID, userID); err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "成功離開旁觀"})
}

// Participants 處理獲取回合參與者名單的請求
func (h *RoundHandler) Participants(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	participants, err := h.roundService.Participants(roundID)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

// Spectators 處理獲取回合旁觀者名單的請求
func (h *RoundHandler) Spectators(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	spectators, err := h.roundService.Spectators(roundID)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"spectators": spectators})
}

// RateParticipant 處理回合結束後對其他參與者評價的請求
func (h *RoundHandler) RateParticipant(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	var input struct {
		ToUserID   uint   `json:"to_user_id" binding:"required"`
		RatingType string `json:"rating_type" binding:"required,oneof=like dislike"`
		Comment    string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("userID")
	rating, err := h.ratingService.Rate(roundID, userID, input.ToUserID, models.RatingType(input.RatingType), input.Comment)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, rating)
}

// RoundRatings 處理獲取回合所有評價的請求
func (h *RoundHandler) RoundRatings(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	ratings, err := h.ratingService.RoundRatings(roundID)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}
