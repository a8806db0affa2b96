// Package entity defines the ledger records owned by users.
package entity

import "time"

// Kind distinguishes spending from earnings.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// Category groups ledger entries. A nil UserID marks a system default shared by everyone.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	Type      Kind   `gorm:"size:10;not null"`
	UserID    *uint  `gorm:"index"`
	IsDefault bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}
