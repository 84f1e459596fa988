package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/stardrophere/Financial-System/internal/models"
	"github.com/stardrophere/Financial-System/internal/store"
	"github.com/stardrophere/Financial-System/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecordHandler 负责收支记录的增删改查
type RecordHandler struct {
	Store *store.RecordStore
	Log   *zap.Logger
}

func NewRecordHandler(s *store.RecordStore, log *zap.Logger) *RecordHandler {
	return &RecordHandler{Store: s, Log: log}
}

type createRecordReq struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Category string  `json:"category" binding:"required,max=32"`
	Kind     string  `json:"kind" binding:"required,oneof=income expense"`
	Note     string  `json:"note" binding:"max=255"`
	// 交易时间，毫秒时间戳，缺省为当前时间
	TimeStamp *int64 `json:"timeStamp"`
}

// 更新请求全部用指针：没传的字段保持原值（patch 语义）
type updateRecordReq struct {
	Amount    *float64 `json:"amount" binding:"omitempty,gt=0"`
	Category  *string  `json:"category" binding:"omitempty,max=32"`
	Kind      *string  `json:"kind" binding:"omitempty,oneof=income expense"`
	Note      *string  `json:"note" binding:"omitempty,max=255"`
	TimeStamp *int64   `json:"timeStamp"`
}

func recordJSON(r *models.Record) gin.H {
	occurred := r.OccurredAt.In(util.CST)
	return gin.H{
		"id":        r.ID,
		"amount":    util.CentToYuan(r.AmountCent),
		"category":  r.Category,
		"kind":      r.Kind,
		"note":      r.Note,
		"date":      occurred.Format("2006-01-02 15:04"),
		"timeStamp": occurred.UnixMilli(),
	}
}

// occurredFromMilli 校验并转换毫秒时间戳
func occurredFromMilli(ts int64) (time.Time, bool) {
	if ts <= 0 {
		return time.Time{}, false
	}
	return util.FromMilli(ts), true
}

// CreateRecord 记一笔
func (h *RecordHandler) CreateRecord(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	var req createRecordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "参数错误。")
		return
	}

	occurredAt := util.NowCST()
	if req.TimeStamp != nil {
		t, ok := occurredFromMilli(*req.TimeStamp)
		if !ok {
			util.Error(c, http.StatusBadRequest, "无效的时间戳。")
			return
		}
		occurredAt = t
	}

	rec := models.Record{
		UserID:     user.ID,
		Kind:       req.Kind,
		Category:   strings.TrimSpace(req.Category),
		AmountCent: util.YuanToCent(req.Amount),
		Note:       req.Note,
		OccurredAt: occurredAt,
	}
	if err := h.Store.Create(&rec); err != nil {
		writeError(c, h.Log, "添加记录", user.ID, err, "记录添加失败。")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "记录添加成功。",
		"id":      rec.ID,
	})
}

// ListRecords 返回当前用户的全部记录
func (h *RecordHandler) ListRecords(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	recs, err := h.Store.ListByOwner(user.ID)
	if err != nil {
		writeError(c, h.Log, "查询记录", user.ID, err, "获取记录失败。")
		return
	}

	items := make([]gin.H, 0, len(recs))
	for i := range recs {
		items = append(items, recordJSON(&recs[i]))
	}
	c.JSON(http.StatusOK, items)
}

// UpdateRecord 更新单条记录，未提供的字段保持不变
func (h *RecordHandler) UpdateRecord(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "ID 不合法。")
		return
	}

	var req updateRecordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, "参数错误。")
		return
	}

	patch := store.RecordPatch{
		Kind: req.Kind,
		Note: req.Note,
	}
	if req.Amount != nil {
		cent := util.YuanToCent(*req.Amount)
		patch.AmountCent = &cent
	}
	if req.Category != nil {
		category := strings.TrimSpace(*req.Category)
		if category == "" {
			util.Error(c, http.StatusBadRequest, "类别不能为空。")
			return
		}
		patch.Category = &category
	}
	if req.TimeStamp != nil {
		t, ok := occurredFromMilli(*req.TimeStamp)
		if !ok {
			util.Error(c, http.StatusBadRequest, "无效的时间戳。")
			return
		}
		patch.OccurredAt = &t
	}

	rec, err := h.Store.Update(user.ID, uint(id), patch)
	if err != nil {
		writeError(c, h.Log, "更新记录", user.ID, err, "记录更新失败。")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "记录更新成功。",
		"updated_date": rec.OccurredAt.In(util.CST).Format("2006-01-02 15:04"),
	})
}

// DeleteRecord 删除单条记录
func (h *RecordHandler) DeleteRecord(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, "ID 不合法。")
		return
	}

	if err := h.Store.Delete(user.ID, uint(id)); err != nil {
		writeError(c, h.Log, "删除记录", user.ID, err, "记录删除失败。")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "记录删除成功。"})
}
