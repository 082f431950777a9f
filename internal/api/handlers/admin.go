package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chess_rounds/internal/apperrors"
	"chess_rounds/internal/service"
)

// AdminHandler 處理管理員專屬的請求
type AdminHandler struct {
	roundService *service.RoundService
	userService  *service.UserService
}

// NewAdminHandler 創建一個新的 AdminHandler 實例
func NewAdminHandler(roundService *service.RoundService, userService *service.UserService) *AdminHandler {
	return &AdminHandler{roundService: roundService, userService: userService}
}

// DeleteRound 管理員刪除任意狀態的回合及其關聯資料
func (h *AdminHandler) DeleteRound(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	if err := h.roundService.AdminDelete(roundID); err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "回合已刪除"})
}

// Statistics 使用者統計，台板使用者不計入
func (h *AdminHandler) Statistics(c *gin.Context) {
	total, err := h.userService.Count()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "統計失敗"})
		return
	}

	active, err := h.userService.CountActive()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "統計失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_users":  total,
		"active_users": active,
	})
}
