package util

import "time"

// CST 固定东八区。所有交易时间（occurred_at）都按该时区解释，
// 与数据库里的写入、查询保持同一偏移，避免跨时区串行比较出错。
var CST = time.FixedZone("CST", 8*60*60)

// NowCST 返回东八区的当前时间。
func NowCST() time.Time {
	return time.Now().In(CST)
}

// ParseDate 解析 YYYY-MM-DD 格式的日期（东八区零点）。
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, CST)
}

// FromMilli 把毫秒时间戳转换为东八区时间。
func FromMilli(ms int64) time.Time {
	return time.UnixMilli(ms).In(CST)
}
