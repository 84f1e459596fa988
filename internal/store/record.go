package store

import (
	"fmt"
	"time"

	"github.com/stardrophere/Financial-System/internal/models"
	"github.com/stardrophere/Financial-System/internal/util"

	"gorm.io/gorm"
)

// Filter 描述一次记录检索的附加条件，各条件之间是与的关系。
// Start/End 为 nil 表示不限；Year/Month/Day 为 0 表示不限；Kind 为空表示收入支出都要。
type Filter struct {
	Start *time.Time // occurred_at >= Start
	End   *time.Time // occurred_at <= End
	Year  int        // 按东八区日历精确匹配年
	Month int        // 精确匹配月（需同时给 Year）
	Day   int        // 精确匹配日（需同时给 Year、Month）
	Kind  string     // income / expense
}

// calendarRange 把 Year/Month/Day 精确匹配换算成东八区的半开时间区间。
// 等价于 SQL 里的 extract(year|month|day) = v，但不依赖数据库的时区行为。
func (f Filter) calendarRange() (from, to time.Time, ok bool) {
	if f.Year == 0 {
		return time.Time{}, time.Time{}, false
	}
	switch {
	case f.Month == 0:
		from = time.Date(f.Year, 1, 1, 0, 0, 0, 0, util.CST)
		return from, from.AddDate(1, 0, 0), true
	case f.Day == 0:
		from = time.Date(f.Year, time.Month(f.Month), 1, 0, 0, 0, 0, util.CST)
		return from, from.AddDate(0, 1, 0), true
	default:
		from = time.Date(f.Year, time.Month(f.Month), f.Day, 0, 0, 0, 0, util.CST)
		return from, from.AddDate(0, 0, 1), true
	}
}

// RecordPatch 部分更新：nil 字段保持原值不变。
type RecordPatch struct {
	AmountCent *int64
	Category   *string
	Kind       *string
	Note       *string
	OccurredAt *time.Time
}

// RecordStore 负责收支记录的持久化，所有查询都以 owner 为边界。
type RecordStore struct {
	db *gorm.DB
}

func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

// Find 返回 ownerID 名下满足过滤条件的全部记录，顺序不保证。
func (s *RecordStore) Find(ownerID uint, f Filter) ([]models.Record, error) {
	q := s.db.Where("user_id = ?", ownerID)
	if f.Start != nil {
		q = q.Where("occurred_at >= ?", f.Start.In(util.CST))
	}
	if f.End != nil {
		q = q.Where("occurred_at <= ?", f.End.In(util.CST))
	}
	if from, to, ok := f.calendarRange(); ok {
		q = q.Where("occurred_at >= ? AND occurred_at < ?", from, to)
	}
	if f.Kind != "" {
		q = q.Where("kind = ?", f.Kind)
	}

	var recs []models.Record
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	return recs, nil
}

// ListByOwner 返回用户的全部记录，按交易时间倒序。
func (s *RecordStore) ListByOwner(ownerID uint) ([]models.Record, error) {
	var recs []models.Record
	if err := s.db.Where("user_id = ?", ownerID).
		Order("occurred_at DESC, id DESC").
		Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return recs, nil
}

func (s *RecordStore) Create(rec *models.Record) error {
	rec.OccurredAt = rec.OccurredAt.In(util.CST)
	if err := s.db.Create(rec).Error; err != nil {
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// CreateBatch 批量插入导入的记录，返回插入条数。
// 行级校验由调用方完成，这里收到的都是合法记录。
func (s *RecordStore) CreateBatch(recs []models.Record) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	for i := range recs {
		recs[i].OccurredAt = recs[i].OccurredAt.In(util.CST)
	}
	if err := s.db.Create(&recs).Error; err != nil {
		return 0, fmt.Errorf("create records: %w", err)
	}
	return len(recs), nil
}

// Get 查询用户名下的单条记录，不存在时返回 gorm.ErrRecordNotFound。
func (s *RecordStore) Get(ownerID, id uint) (*models.Record, error) {
	var rec models.Record
	if err := s.db.Where("id = ? AND user_id = ?", id, ownerID).
		First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update 按 patch 语义更新：只覆盖 patch 中非 nil 的字段。
func (s *RecordStore) Update(ownerID, id uint, p RecordPatch) (*models.Record, error) {
	rec, err := s.Get(ownerID, id)
	if err != nil {
		return nil, err
	}

	if p.AmountCent != nil {
		rec.AmountCent = *p.AmountCent
	}
	if p.Category != nil {
		rec.Category = *p.Category
	}
	if p.Kind != nil {
		rec.Kind = *p.Kind
	}
	if p.Note != nil {
		rec.Note = *p.Note
	}
	if p.OccurredAt != nil {
		rec.OccurredAt = p.OccurredAt.In(util.CST)
	}

	if err := s.db.Save(rec).Error; err != nil {
		return nil, fmt.Errorf("save record: %w", err)
	}
	return rec, nil
}

// Delete 删除用户名下的单条记录，不存在时返回 gorm.ErrRecordNotFound。
func (s *RecordStore) Delete(ownerID, id uint) error {
	res := s.db.Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.Record{})
	if res.Error != nil {
		return fmt.Errorf("delete record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
