package handler

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/stardrophere/Financial-System/internal/models"
	"github.com/stardrophere/Financial-System/internal/store"
	"github.com/stardrophere/Financial-System/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// 导出表头与导入要求的列一致，导出的文件可以直接再导入
var exportHeaders = []string{"时间", "类别", "金额", "类型", "备注"}

// ExportHandler 负责账目导出
type ExportHandler struct {
	Store *store.RecordStore
	Log   *zap.Logger
}

func NewExportHandler(s *store.RecordStore, log *zap.Logger) *ExportHandler {
	return &ExportHandler{Store: s, Log: log}
}

func exportRow(r *models.Record) []string {
	kindText := "支出"
	if r.Kind == models.KindIncome {
		kindText = "收入"
	}
	return []string{
		r.OccurredAt.In(util.CST).Format("2006-01-02 15:04"),
		r.Category,
		strconv.FormatFloat(util.CentToYuan(r.AmountCent), 'f', 2, 64),
		kindText,
		r.Note,
	}
}

// ExportCSV 导出账目为 CSV
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	recs, err := h.Store.ListByOwner(user.ID)
	if err != nil {
		writeError(c, h.Log, "导出 CSV", user.ID, err, "导出失败。")
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"records_%s.csv\"",
		time.Now().Format("20060102")))

	// UTF-8 BOM（让 Excel 正确识别中文）
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for i := range recs {
		writer.Write(exportRow(&recs[i]))
	}
}

// ExportXLSX 导出账目为 XLSX
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	recs, err := h.Store.ListByOwner(user.ID)
	if err != nil {
		writeError(c, h.Log, "导出 XLSX", user.ID, err, "导出失败。")
		return
	}

	f := excelize.NewFile()
	// 重命名默认工作表，保证导入方读第一张表时就是数据表
	sheetName := "收支明细"
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		writeError(c, h.Log, "导出 XLSX", user.ID, err, "导出失败。")
		return
	}

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx := range recs {
		row := exportRow(&recs[idx])
		for i, v := range row {
			cell := fmt.Sprintf("%c%d", 'A'+i, idx+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 18)
	f.SetColWidth(sheetName, "B", "B", 15)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 10)
	f.SetColWidth(sheetName, "E", "E", 30)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"records_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		h.Log.Error("导出 XLSX 写入失败", zap.Uint("user_id", user.ID), zap.Error(err))
	}
}
