package models

import "time"

type Expense struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"type:varchar(100);not null" json:"title"`
	Category   string    `gorm:"type:varchar(50);not null" json:"category"` // groceries, gas, staff, maintenance, other
	Amount     float64   `gorm:"type:decimal(12,2);not null" json:"amount"`
	SpentAt    string    `gorm:"type:varchar(10);not null;index" json:"spent_at"` // YYYY-MM-DD
	Notes      string    `gorm:"type:text" json:"notes"`
	RecordedBy uint      `gorm:"not null" json:"recorded_by"`
	Recorder   User      `gorm:"foreignKey:RecordedBy;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}
