package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/stardrophere/Financial-System/internal/models"
	"github.com/stardrophere/Financial-System/internal/store"
	"github.com/stardrophere/Financial-System/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// 导入文件必须包含的列
var requiredColumns = []string{"时间", "类别", "金额", "类型", "备注"}

// 类型列取值映射
var kindMapping = map[string]string{
	"收入": models.KindIncome,
	"支出": models.KindExpense,
}

// 时间列兼容手工编辑和导出文件的几种写法
var importTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// UploadHandler 负责 Excel 批量导入
type UploadHandler struct {
	Store *store.RecordStore
	Dir   string
	Log   *zap.Logger
}

func NewUploadHandler(s *store.RecordStore, dir string, log *zap.Logger) *UploadHandler {
	return &UploadHandler{Store: s, Dir: dir, Log: log}
}

// ImportWorkbook 接收 .xls/.xlsx 文件并批量导入记录。
// 单行出错只跳过该行并记日志，不会中断整批导入。
func (h *UploadHandler) ImportWorkbook(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		util.Error(c, http.StatusBadRequest, "未找到文件。")
		return
	}
	if fileHeader.Filename == "" {
		util.Error(c, http.StatusBadRequest, "未选择文件。")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".xls" && ext != ".xlsx" {
		util.Error(c, http.StatusBadRequest, "无效的文件类型。只能上传 .xls 或 .xlsx 文件。")
		return
	}

	// 临时落盘后再解析，uuid 文件名避免同名覆盖
	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		writeError(c, h.Log, "创建上传目录", user.ID, err, "处理文件时出错。")
		return
	}
	dst := filepath.Join(h.Dir, uuid.New().String()+ext)
	if err := c.SaveUploadedFile(fileHeader, dst); err != nil {
		writeError(c, h.Log, "保存上传文件", user.ID, err, "处理文件时出错。")
		return
	}
	defer os.Remove(dst)

	imported, err := h.importFile(user.ID, dst)
	if err != nil {
		writeError(c, h.Log, "导入上传文件", user.ID, err, "处理文件时出错。")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":          "文件上传并导入成功。",
		"imported_records": imported,
	})
}

func (h *UploadHandler) importFile(ownerID uint, path string) (int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, util.InvalidArgf("无法解析 Excel 文件。")
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return 0, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return 0, util.InvalidArgf("Excel 文件为空。")
	}

	// 表头 -> 列号
	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return 0, util.InvalidArgf("Excel 文件缺少必要的列。缺少列：%s", strings.Join(missing, "、"))
	}

	records := make([]models.Record, 0, len(rows)-1)
	for idx, row := range rows[1:] {
		rec, err := parseRow(ownerID, row, col)
		if err != nil {
			// 一行坏数据不应拖垮整批
			h.Log.Warn("导入行失败",
				zap.Uint("user_id", ownerID),
				zap.Int("row", idx+2),
				zap.Error(err))
			continue
		}
		records = append(records, *rec)
	}

	return h.Store.CreateBatch(records)
}

// parseRow 把一行表格数据转成记录，任何字段不合法都返回错误
func parseRow(ownerID uint, row []string, col map[string]int) (*models.Record, error) {
	get := func(name string) string {
		i := col[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	amount, err := strconv.ParseFloat(get("金额"), 64)
	if err != nil || amount <= 0 {
		return nil, fmt.Errorf("无效的金额：%q", get("金额"))
	}

	kind, ok := kindMapping[get("类型")]
	if !ok {
		return nil, fmt.Errorf("无效的类型：%q", get("类型"))
	}

	category := get("类别")
	if category == "" {
		return nil, errors.New("类别为空")
	}

	occurredAt := util.NowCST()
	if ts := get("时间"); ts != "" {
		occurredAt, err = parseImportTime(ts)
		if err != nil {
			return nil, err
		}
	}

	return &models.Record{
		UserID:     ownerID,
		Kind:       kind,
		Category:   category,
		AmountCent: util.YuanToCent(amount),
		Note:       get("备注"),
		OccurredAt: occurredAt,
	}, nil
}

func parseImportTime(s string) (time.Time, error) {
	for _, layout := range importTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, util.CST); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析时间：%q", s)
}
