package router

import (
	"github.com/stardrophere/Financial-System/internal/config"
	"github.com/stardrophere/Financial-System/internal/handler"
	"github.com/stardrophere/Financial-System/internal/middleware"
	"github.com/stardrophere/Financial-System/internal/store"
	"github.com/stardrophere/Financial-System/internal/summary"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and the API route table.
func SetupRouter(cfg *config.Config, db *gorm.DB, log *zap.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	recordStore := store.NewRecordStore(db)
	engine := summary.NewEngine(recordStore, log)

	api := r.Group("/api")

	// 注册/登录（不需要鉴权）
	authHandler := handler.NewAuthHandler(db, cfg.JWT, log)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// 需要登录才能访问的接口
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret, db))

	protected.GET("/me", handler.GetMe)

	recordHandler := handler.NewRecordHandler(recordStore, log)
	protected.POST("/records", recordHandler.CreateRecord)
	protected.GET("/records", recordHandler.ListRecords)
	protected.PUT("/records/:id", recordHandler.UpdateRecord)
	protected.DELETE("/records/:id", recordHandler.DeleteRecord)

	summaryHandler := handler.NewSummaryHandler(engine, log)
	protected.GET("/summary", summaryHandler.GetSummary)
	protected.GET("/summary_pie", summaryHandler.GetSummaryPie)

	uploadHandler := handler.NewUploadHandler(recordStore, cfg.Upload.Dir, log)
	protected.POST("/upload", uploadHandler.ImportWorkbook)

	exportHandler := handler.NewExportHandler(recordStore, log)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	return r
}
