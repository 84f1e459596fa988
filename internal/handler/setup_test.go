package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stardrophere/Financial-System/internal/config"
	"github.com/stardrophere/Financial-System/internal/database"
	"github.com/stardrophere/Financial-System/internal/models"
	"github.com/stardrophere/Financial-System/internal/store"
	"github.com/stardrophere/Financial-System/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// newTestDB 初始化临时数据库并创建一个测试用户
func newTestDB(t *testing.T) (*gorm.DB, *models.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Init(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "handler_test.db"),
	})
	if err != nil {
		t.Fatalf("init test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	user := &models.User{Username: "tester", PasswordHash: "unused"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create test user: %v", err)
	}
	return db, user
}

// authedEngine 返回一个把 user 直接放进 context 的 gin 引擎，绕过 JWT 中间件
func authedEngine(user *models.User) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("currentUser", user)
		c.Next()
	})
	return r
}

func seedStoreRecord(t *testing.T, s *store.RecordStore, owner uint, datetime string, yuan float64, category, kind string) {
	t.Helper()
	tm, err := time.ParseInLocation("2006-01-02 15:04", datetime, util.CST)
	if err != nil {
		t.Fatalf("parse time %q: %v", datetime, err)
	}
	rec := &models.Record{
		UserID:     owner,
		Kind:       kind,
		Category:   category,
		AmountCent: util.YuanToCent(yuan),
		OccurredAt: tm,
	}
	if err := s.Create(rec); err != nil {
		t.Fatalf("seed record: %v", err)
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func unmarshalBody(w *httptest.ResponseRecorder, v any) error {
	return json.Unmarshal(w.Body.Bytes(), v)
}

// doJSON 执行一次请求并把 JSON 响应体解析成 map
func doJSON(t *testing.T, r *gin.Engine, req *http.Request) (int, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	body, err := io.ReadAll(w.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var m map[string]any
	if len(body) > 0 && body[0] == '{' {
		if err := json.Unmarshal(body, &m); err != nil {
			t.Fatalf("unmarshal body %s: %v", body, err)
		}
	}
	return w.Code, m
}
