package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chess_rounds/internal/apperrors"
	"chess_rounds/internal/models"
	"chess_rounds/internal/service"
)

// RecordHandler 處理與計分記錄相關的請求
type RecordHandler struct {
	recordService *service.RecordService
}

// NewRecordHandler 創建一個新的 RecordHandler 實例
func NewRecordHandler(recordService *service.RecordService) *RecordHandler {
	return &RecordHandler{recordService: recordService}
}

// AppendRecord 處理新增計分記錄的請求
func (h *RecordHandler) AppendRecord(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	var input struct {
		RecordType  string                     `json:"record_type" binding:"required,oneof=WIN LOSE DRAW SPECIAL"`
		TotalAmount float64                    `json:"total_amount"`
		Description string                     `json:"description"`
		Deltas      []service.ParticipantDelta `json:"participants" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("userID")
	record, err := h.recordService.Append(roundID, userID, service.AppendRecordInput{
		RecordType:  models.RecordType(input.RecordType),
		TotalAmount: input.TotalAmount,
		Description: input.Description,
		Deltas:      input.Deltas,
	})
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, record)
}

// RoundRecords 處理獲取回合計分記錄列表的請求
func (h *RecordHandler) RoundRecords(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	offset, limit := pagination(c)
	records, total, err := h.recordService.RoundRecords(roundID, offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查詢記錄失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": records, "total": total})
}

// MyRoundRecords 處理獲取當前使用者在回合內流水帳的請求
func (h *RecordHandler) MyRoundRecords(c *gin.Context) {
	roundID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的回合ID"})
		return
	}

	userID := c.GetUint("userID")
	entries, err := h.recordService.UserRoundRecords(roundID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "查詢記錄失敗"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": entries})
}

// UpdateRecord 處理修改計分記錄的請求，僅限記錄人且回合未結束
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	recordID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的記錄ID"})
		return
	}

	var input struct {
		RecordType  string  `json:"record_type" binding:"required,oneof=WIN LOSE DRAW SPECIAL"`
		Amount      float64 `json:"amount"`
		Description string  `json:"description"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetUint("userID")
	record, err := h.recordService.Update(recordID, userID, models.RecordType(input.RecordType), input.Amount, input.Description)
	if err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, record)
}

// DeleteRecord 處理刪除計分記錄的請求，僅限記錄人且回合未結束
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	recordID, ok := idParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "不存在的記錄ID"})
		return
	}

	userID := c.GetUint("userID")
	if err := h.recordService.Delete(recordID, userID); err != nil {
		c.JSON(apperrors.StatusCode(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "記錄已刪除"})
}
