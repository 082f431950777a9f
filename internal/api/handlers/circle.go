package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chess_rounds/internal/apperrors"
	"chess_rounds/internal/service"
)

// CircleHandler 處理與圈子及排行榜相關的請求
type CircleHandler struct {
	circleService      *service.CircleService
	leaderboardService *service.LeaderboardService
}

// NewCircleHandler 創建一個新的 CircleHandler 實例
func NewCircleHandler(circleService *service.CircleService, leaderboardService *service.LeaderboardService) *CircleHandler {
	return &CircleHandler{circleService: circleService, leaderboardService: leaderboardService}
}

// CreateCircle 處理創建圈子的請求
func (h *CircleHandler) CreateCircle(c *gin.Context) {
	var input struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("userID")
	circle, err := h.circleService.Create(userID, input.Name, input.Description)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, circle)
}

// JoinCircle 處理以加入碼加入圈子的請求
func (h *CircleHandler) JoinCircle(c *gin.Context) {
	var input struct {
		JoinCode string `json:"join_code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("userID")
	circle, err := h.circleService.JoinByCode(input.JoinCode, userID)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, circle)
}

// GetCircle 處理獲取圈子訊息的請求
func (h *CircleHandler) GetCircle(c *gin.Context) {
	circleID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的圈子ID"})
		return
	}

	circle, err := h.circleService.Get(circleID)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, circle)
}

// CircleMembers 處理獲取圈子成員名單的請求
func (h *CircleHandler) CircleMembers(c *gin.Context) {
	circleID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的圈子ID"})
		return
	}

	members, err := h.circleService.Members(circleID)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// LeaveCircle 處理離開圈子的請求，創建者不能離開
func (h *CircleHandler) LeaveCircle(c *gin.Context) {
	circleID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的圈子ID"})
		return
	}

	userID := c.GetUint("userID")
	if err := h.circleService.Leave(c.Request.Context(), circleID, userID); err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "成功離開圈子"})
}

// Leaderboard 處理查詢圈子排行榜的請求，僅限圈子成員
func (h *CircleHandler) Leaderboard(c *gin.Context) {
	circleID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的圈子ID"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	userID := c.GetUint("userID")
	board, err := h.leaderboardService.Leaderboard(
		c.Request.Context(),
		circleID,
		userID,
		c.DefaultQuery("sort_by", "score"),
		c.DefaultQuery("sort_order", "desc"),
		page,
		pageSize,
	)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, board)
}

// RefreshLeaderboard 處理強制重算排行榜的請求，僅限圈子管理員
func (h *CircleHandler) RefreshLeaderboard(c *gin.Context) {
	circleID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的圈子ID"})
		return
	}

	userID := c.GetUint("userID")
	if err := h.leaderboardService.Refresh(c.Request.Context(), circleID, userID); err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "排行榜已重新計算"})
}
