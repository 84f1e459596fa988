// Package summary 实现汇总聚合引擎：按粒度把一个用户的收支记录
// 分组求和（收入、支出、结余），以及按类别的饼图汇总。
// 引擎只读不写，本身无状态，可以被并发调用。
package summary

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/stardrophere/Financial-System/internal/models"
	"github.com/stardrophere/Financial-System/internal/store"
	"github.com/stardrophere/Financial-System/internal/util"

	"go.uber.org/zap"
)

// Period 汇总粒度
type Period string

const (
	PeriodYear    Period = "year"
	PeriodMonth   Period = "month"
	PeriodDay     Period = "day"
	PeriodOverall Period = "overall"
	PeriodCustom  Period = "custom" // 与 day 相同的分组键，只是调用方通常会带时间范围
)

// ParsePeriod 解析粒度参数，非法值直接报参数错误，不会触发任何数据访问。
func ParsePeriod(s string) (Period, error) {
	switch p := Period(strings.ToLower(s)); p {
	case PeriodYear, PeriodMonth, PeriodDay, PeriodOverall, PeriodCustom:
		return p, nil
	default:
		return "", util.InvalidArgf("无效的 period 参数。可选值为 'year'、'month'、'day'、'overall' 或 'custom'。")
	}
}

// RecordSource 是引擎需要的数据来源，*store.RecordStore 满足该接口。
type RecordSource interface {
	Find(ownerID uint, f store.Filter) ([]models.Record, error)
}

// Bucket 一个时间段的汇总结果。Year/Month/Day 是否有意义取决于粒度，
// overall 粒度下三者均为零值。
type Bucket struct {
	Year  int
	Month int
	Day   int

	TotalIncomeCent  int64
	TotalExpenseCent int64
	BalanceCent      int64
}

// CategoryAmount 某一类别的合计金额。
type CategoryAmount struct {
	Category   string
	AmountCent int64
}

// CategoryBreakdown 饼图汇总：收入、支出各自按类别求和。
// 没有记录的类别不会出现在列表里（不补零）。
type CategoryBreakdown struct {
	Income  []CategoryAmount
	Expense []CategoryAmount
}

// Engine 汇总聚合引擎。
type Engine struct {
	src RecordSource
	log *zap.Logger
}

func NewEngine(src RecordSource, log *zap.Logger) *Engine {
	return &Engine{src: src, log: log}
}

// groupKey 分组键，按 (年, 月, 日) 字典序排序
type groupKey struct {
	y, m, d int
}

// keyFor 返回粒度对应的分组键提取函数。
// 五种粒度共用同一个折叠流程，差异只在这里。
func keyFor(p Period) func(t time.Time) groupKey {
	switch p {
	case PeriodYear:
		return func(t time.Time) groupKey { return groupKey{y: t.Year()} }
	case PeriodMonth:
		return func(t time.Time) groupKey { return groupKey{y: t.Year(), m: int(t.Month())} }
	case PeriodOverall:
		return func(time.Time) groupKey { return groupKey{} }
	default: // day 和 custom 都按 (年, 月, 日) 分组
		return func(t time.Time) groupKey { return groupKey{y: t.Year(), m: int(t.Month()), d: t.Day()} }
	}
}

// parseDateRange 解析可选的日期范围。两个都为空表示不限；只给一个按参数错误处理。
// 结束日期含当天 23:59，与旧接口保持一致。
func parseDateRange(startStr, endStr string) (start, end *time.Time, err error) {
	if startStr == "" && endStr == "" {
		return nil, nil, nil
	}
	if startStr == "" || endStr == "" {
		return nil, nil, util.InvalidArgf("start_date 和 end_date 必须同时提供。")
	}

	s, err := util.ParseDate(startStr)
	if err != nil {
		return nil, nil, util.InvalidArgf("无效的 start_date，应为 YYYY-MM-DD。")
	}
	e, err := util.ParseDate(endStr)
	if err != nil {
		return nil, nil, util.InvalidArgf("无效的 end_date，应为 YYYY-MM-DD。")
	}
	e = e.Add(23*time.Hour + 59*time.Minute)
	return &s, &e, nil
}

// Summarize 按粒度汇总用户的收支。start/end 为可选的 YYYY-MM-DD 字符串，
// 两者要么都给、要么都不给；给了就在任何粒度下都作为范围过滤条件。
// 返回的桶按 (年, 月, 日) 升序；overall 恒返回一个桶，即使没有任何记录。
func (e *Engine) Summarize(ownerID uint, period, startDate, endDate string) ([]Bucket, error) {
	p, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}

	start, end, err := parseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	recs, err := e.src.Find(ownerID, store.Filter{Start: start, End: end})
	if err != nil {
		e.log.Error("获取汇总记录失败",
			zap.Uint("user_id", ownerID),
			zap.String("period", string(p)),
			zap.Error(err))
		return nil, fmt.Errorf("summarize: %w", err)
	}

	key := keyFor(p)
	groups := make(map[groupKey]*Bucket)
	for i := range recs {
		r := &recs[i]
		k := key(r.OccurredAt.In(util.CST))
		b, ok := groups[k]
		if !ok {
			b = &Bucket{Year: k.y, Month: k.m, Day: k.d}
			groups[k] = b
		}
		if r.Kind == models.KindIncome {
			b.TotalIncomeCent += r.AmountCent
		} else {
			b.TotalExpenseCent += r.AmountCent
		}
	}

	// overall 没有记录时也要给出一个全零的桶
	if p == PeriodOverall && len(groups) == 0 {
		groups[groupKey{}] = &Bucket{}
	}

	buckets := make([]Bucket, 0, len(groups))
	for _, b := range groups {
		b.BalanceCent = b.TotalIncomeCent - b.TotalExpenseCent
		buckets = append(buckets, *b)
	}
	sort.Slice(buckets, func(i, j int) bool {
		a, b := buckets[i], buckets[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.Day < b.Day
	})
	return buckets, nil
}

// SummarizeByCategory 按类别汇总指定时间段内的收支（饼图数据）。
// period 不支持 custom；year/month/day 按粒度逐级必填，是精确匹配而非范围。
func (e *Engine) SummarizeByCategory(ownerID uint, period string, year, month, day int) (*CategoryBreakdown, error) {
	p, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	if p == PeriodCustom {
		return nil, util.InvalidArgf("无效的 period 参数。可选值为 'year'、'month'、'day' 或 'overall'。")
	}

	f := store.Filter{}
	switch p {
	case PeriodYear:
		if year == 0 {
			return nil, util.InvalidArgf("缺少必要的参数：year。")
		}
		f.Year = year
	case PeriodMonth:
		if year == 0 || month == 0 {
			return nil, util.InvalidArgf("缺少必要的参数：year 或 month。")
		}
		f.Year, f.Month = year, month
	case PeriodDay:
		if year == 0 || month == 0 || day == 0 {
			return nil, util.InvalidArgf("缺少必要的参数：year、month 或 day。")
		}
		f.Year, f.Month, f.Day = year, month, day
	}
	if err := validateCalendar(p, year, month, day); err != nil {
		return nil, err
	}

	recs, err := e.src.Find(ownerID, f)
	if err != nil {
		e.log.Error("获取分类汇总记录失败",
			zap.Uint("user_id", ownerID),
			zap.String("period", string(p)),
			zap.Error(err))
		return nil, fmt.Errorf("summarize by category: %w", err)
	}

	income := make(map[string]int64)
	expense := make(map[string]int64)
	for i := range recs {
		r := &recs[i]
		if r.Kind == models.KindIncome {
			income[r.Category] += r.AmountCent
		} else {
			expense[r.Category] += r.AmountCent
		}
	}

	return &CategoryBreakdown{
		Income:  sortedCategories(income),
		Expense: sortedCategories(expense),
	}, nil
}

// validateCalendar 拒绝 2024-02-31 这类会被 time.Date 归一化到下个月的日期，
// 否则精确匹配会悄悄落到错误的区间上。
func validateCalendar(p Period, year, month, day int) error {
	switch p {
	case PeriodMonth:
		if month < 1 || month > 12 {
			return util.InvalidArgf("无效的 month 参数。")
		}
	case PeriodDay:
		if month < 1 || month > 12 {
			return util.InvalidArgf("无效的 month 参数。")
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, util.CST)
		if t.Year() != year || int(t.Month()) != month || t.Day() != day {
			return util.InvalidArgf("无效的日期：%d-%d-%d。", year, month, day)
		}
	}
	return nil
}

func sortedCategories(m map[string]int64) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(m))
	for c, v := range m {
		out = append(out, CategoryAmount{Category: c, AmountCent: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}
