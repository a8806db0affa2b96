package entity

import "time"

// Expense is one ledger entry. Despite the name it also records income (Type == KindIncome).
type Expense struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"index;not null"`
	CategoryID  uint      `gorm:"index;not null"`
	Amount      float64   `gorm:"not null"`
	Type        Kind      `gorm:"size:10;not null"`
	Description string    `gorm:"size:255"`
	PaymentMode string    `gorm:"size:50"`
	Date        time.Time `gorm:"index;not null"`
	CreatedAt   time.Time
}
