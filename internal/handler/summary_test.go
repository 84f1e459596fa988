package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stardrophere/Financial-System/internal/store"
	"github.com/stardrophere/Financial-System/internal/summary"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newSummaryRouter(t *testing.T) (*store.RecordStore, uint, *gin.Engine) {
	t.Helper()
	db, user := newTestDB(t)
	s := store.NewRecordStore(db)
	h := NewSummaryHandler(summary.NewEngine(s, zap.NewNop()), zap.NewNop())

	r := authedEngine(user)
	r.GET("/api/summary", h.GetSummary)
	r.GET("/api/summary_pie", h.GetSummaryPie)
	return s, user.ID, r
}

func TestGetSummaryMonth(t *testing.T) {
	s, uid, r := newSummaryRouter(t)
	seedStoreRecord(t, s, uid, "2024-01-10 09:00", 2000, "salary", "income")
	seedStoreRecord(t, s, uid, "2024-01-15 12:00", 150, "food", "expense")
	seedStoreRecord(t, s, uid, "2024-02-02 18:00", 80, "transport", "expense")

	code, body := doJSON(t, r, httptest.NewRequest(http.MethodGet, "/api/summary?period=month", nil))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "month", body["period"])

	items, ok := body["summary"].([]any)
	require.True(t, ok, "summary 应为数组")
	require.Len(t, items, 2)

	jan, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2024), jan["year"])
	assert.Equal(t, float64(1), jan["month"])
	assert.Equal(t, 2000.0, jan["total_income"])
	assert.Equal(t, 150.0, jan["total_expense"])
	assert.Equal(t, 1850.0, jan["balance"])
	assert.NotContains(t, jan, "day")

	feb, ok := items[1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(2), feb["month"])
	assert.Equal(t, -80.0, feb["balance"])
}

func TestGetSummaryOverallDefault(t *testing.T) {
	s, uid, r := newSummaryRouter(t)
	seedStoreRecord(t, s, uid, "2023-06-01 09:00", 300, "salary", "income")
	seedStoreRecord(t, s, uid, "2024-06-01 09:00", 120, "food", "expense")

	// 不带 period 参数应等价于 overall
	code, body := doJSON(t, r, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "overall", body["period"])

	items, ok := body["summary"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	row := items[0].(map[string]any)
	assert.Equal(t, 300.0, row["total_income"])
	assert.Equal(t, 120.0, row["total_expense"])
	assert.Equal(t, 180.0, row["balance"])
	assert.NotContains(t, row, "year")
}

func TestGetSummaryOverallEmpty(t *testing.T) {
	_, _, r := newSummaryRouter(t)

	// 没有任何记录时 overall 仍返回一条全零汇总
	code, body := doJSON(t, r, httptest.NewRequest(http.MethodGet, "/api/summary?period=overall", nil))
	require.Equal(t, http.StatusOK, code)
	items, ok := body["summary"].([]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	row := items[0].(map[string]any)
	assert.Equal(t, 0.0, row["total_income"])
	assert.Equal(t, 0.0, row["total_expense"])
	assert.Equal(t, 0.0, row["balance"])
}

func TestGetSummaryDateRange(t *testing.T) {
	s, uid, r := newSummaryRouter(t)
	seedStoreRecord(t, s, uid, "2024-01-05 10:00", 100, "food", "expense")
	seedStoreRecord(t, s, uid, "2024-01-31 23:30", 50, "food", "expense")
	seedStoreRecord(t, s, uid, "2024-02-01 00:30", 70, "food", "expense")

	code, body := doJSON(t, r, httptest.NewRequest(http.MethodGet,
		"/api/summary?period=custom&start_date=2024-01-01&end_date=2024-01-31", nil))
	require.Equal(t, http.StatusOK, code)

	// 结束日期整天都算在范围内
	items, ok := body["summary"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	var total float64
	for _, it := range items {
		total += it.(map[string]any)["total_expense"].(float64)
	}
	assert.Equal(t, 150.0, total)
}

func TestGetSummaryBadRequests(t *testing.T) {
	_, _, r := newSummaryRouter(t)

	cases := []struct {
		name string
		url  string
	}{
		{"非法粒度", "/api/summary?period=week"},
		{"只给开始日期", "/api/summary?period=day&start_date=2024-01-01"},
		{"日期格式错误", "/api/summary?period=day&start_date=2024/01/01&end_date=2024/01/31"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := doJSON(t, r, httptest.NewRequest(http.MethodGet, tc.url, nil))
			assert.Equal(t, http.StatusBadRequest, code)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetSummaryPieMonth(t *testing.T) {
	s, uid, r := newSummaryRouter(t)
	seedStoreRecord(t, s, uid, "2024-01-10 09:00", 2000, "salary", "income")
	seedStoreRecord(t, s, uid, "2024-01-15 12:00", 100, "food", "expense")
	seedStoreRecord(t, s, uid, "2024-01-20 12:00", 50, "food", "expense")
	seedStoreRecord(t, s, uid, "2024-01-22 08:00", 30, "transport", "expense")
	seedStoreRecord(t, s, uid, "2024-02-02 08:00", 999, "food", "expense")

	code, body := doJSON(t, r, httptest.NewRequest(http.MethodGet,
		"/api/summary_pie?period=month&year=2024&month=1", nil))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "month", body["period"])
	assert.Equal(t, float64(2024), body["year"])
	assert.Equal(t, float64(1), body["month"])
	assert.NotContains(t, body, "day")

	income, ok := body["income_categories"].([]any)
	require.True(t, ok)
	require.Len(t, income, 1)
	assert.Equal(t, "salary", income[0].(map[string]any)["category"])
	assert.Equal(t, 2000.0, income[0].(map[string]any)["amount"])

	expense, ok := body["expense_categories"].([]any)
	require.True(t, ok)
	require.Len(t, expense, 2)
	// 类别按名称排序，结果稳定
	assert.Equal(t, "food", expense[0].(map[string]any)["category"])
	assert.Equal(t, 150.0, expense[0].(map[string]any)["amount"])
	assert.Equal(t, "transport", expense[1].(map[string]any)["category"])
}

func TestGetSummaryPieOverall(t *testing.T) {
	s, uid, r := newSummaryRouter(t)
	seedStoreRecord(t, s, uid, "2023-03-01 09:00", 10, "food", "expense")
	seedStoreRecord(t, s, uid, "2024-03-01 09:00", 20, "food", "expense")

	code, body := doJSON(t, r, httptest.NewRequest(http.MethodGet, "/api/summary_pie?period=overall", nil))
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, body, "year")

	expense := body["expense_categories"].([]any)
	require.Len(t, expense, 1)
	assert.Equal(t, 30.0, expense[0].(map[string]any)["amount"])
}

func TestGetSummaryPieBadRequests(t *testing.T) {
	_, _, r := newSummaryRouter(t)

	cases := []struct {
		name string
		url  string
	}{
		{"缺少 year", "/api/summary_pie?period=year"},
		{"缺少 month", "/api/summary_pie?period=month&year=2024"},
		{"缺少 day", "/api/summary_pie?period=day&year=2024&month=1"},
		{"不支持 custom", "/api/summary_pie?period=custom&year=2024"},
		{"year 非数字", "/api/summary_pie?period=year&year=abc"},
		{"非法日期", "/api/summary_pie?period=day&year=2024&month=2&day=31"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := doJSON(t, r, httptest.NewRequest(http.MethodGet, tc.url, nil))
			assert.Equal(t, http.StatusBadRequest, code)
			assert.NotEmpty(t, body["error"])
		})
	}
}
