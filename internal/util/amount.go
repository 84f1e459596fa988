package util

import "math"

// 金额用分存储，避免浮点误差，比如 12.34 元 = 1234 分

// YuanToCent 把元（浮点数）转换为分，四舍五入到分。
func YuanToCent(yuan float64) int64 {
	return int64(math.Round(yuan * 100))
}

// CentToYuan 把分转换为元，接口返回时使用。
func CentToYuan(cent int64) float64 {
	return float64(cent) / 100.0
}
