package models

import "time"

// 收支方向
const (
	KindIncome  = "income"
	KindExpense = "expense"
)

// Record 表示一笔收支记录
// 金额用分存储，避免浮点误差，比如 12.34 元 = 1234 分
type Record struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"index;not null"`
	Kind       string    `gorm:"size:16;index;not null"` // income / expense
	Category   string    `gorm:"size:32;not null"`
	AmountCent int64     `gorm:"not null"`
	OccurredAt time.Time `gorm:"index;not null"` // 交易发生时间（东八区），区别于 CreatedAt
	Note       string    `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
