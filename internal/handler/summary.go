package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/stardrophere/Financial-System/internal/summary"
	"github.com/stardrophere/Financial-System/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SummaryHandler 负责汇总查询接口
type SummaryHandler struct {
	Engine *summary.Engine
	Log    *zap.Logger
}

func NewSummaryHandler(engine *summary.Engine, log *zap.Logger) *SummaryHandler {
	return &SummaryHandler{Engine: engine, Log: log}
}

// GetSummary 按粒度汇总收支。
// GET /api/summary?period=month&start_date=2024-01-01&end_date=2024-12-31
func (h *SummaryHandler) GetSummary(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	period := strings.ToLower(c.DefaultQuery("period", "overall"))

	buckets, err := h.Engine.Summarize(user.ID, period,
		c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		writeError(c, h.Log, "获取汇总信息", user.ID, err, "获取汇总信息时出错。")
		return
	}

	items := make([]gin.H, 0, len(buckets))
	for _, b := range buckets {
		item := gin.H{
			"total_income":  util.CentToYuan(b.TotalIncomeCent),
			"total_expense": util.CentToYuan(b.TotalExpenseCent),
			"balance":       util.CentToYuan(b.BalanceCent),
		}
		// 键字段按粒度逐级带上，overall 不带任何键
		switch summary.Period(period) {
		case summary.PeriodYear:
			item["year"] = b.Year
		case summary.PeriodMonth:
			item["year"], item["month"] = b.Year, b.Month
		case summary.PeriodDay, summary.PeriodCustom:
			item["year"], item["month"], item["day"] = b.Year, b.Month, b.Day
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"period":  period,
		"summary": items,
	})
}

// GetSummaryPie 按类别汇总收支（饼图数据）。
// GET /api/summary_pie?period=month&year=2024&month=1
func (h *SummaryHandler) GetSummaryPie(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	period := strings.ToLower(c.DefaultQuery("period", "overall"))

	year, err := queryInt(c, "year")
	if err != nil {
		util.Error(c, http.StatusBadRequest, "无效的 year 参数。")
		return
	}
	month, err := queryInt(c, "month")
	if err != nil {
		util.Error(c, http.StatusBadRequest, "无效的 month 参数。")
		return
	}
	day, err := queryInt(c, "day")
	if err != nil {
		util.Error(c, http.StatusBadRequest, "无效的 day 参数。")
		return
	}

	breakdown, err := h.Engine.SummarizeByCategory(user.ID, period, year, month, day)
	if err != nil {
		writeError(c, h.Log, "获取分类汇总信息", user.ID, err, "获取分类汇总信息时出错。")
		return
	}

	resp := gin.H{
		"period":             period,
		"income_categories":  categoriesJSON(breakdown.Income),
		"expense_categories": categoriesJSON(breakdown.Expense),
	}
	if period != string(summary.PeriodOverall) {
		resp["year"] = year
	}
	if period == string(summary.PeriodMonth) || period == string(summary.PeriodDay) {
		resp["month"] = month
	}
	if period == string(summary.PeriodDay) {
		resp["day"] = day
	}

	c.JSON(http.StatusOK, resp)
}

func categoriesJSON(list []summary.CategoryAmount) []gin.H {
	out := make([]gin.H, 0, len(list))
	for _, ca := range list {
		out = append(out, gin.H{
			"category": ca.Category,
			"amount":   util.CentToYuan(ca.AmountCent),
		})
	}
	return out
}

// queryInt 读取整数查询参数，缺省返回 0
func queryInt(c *gin.Context, name string) (int, error) {
	s := c.Query(name)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
