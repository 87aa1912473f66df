package models

import "time"

// Invoice bills one user for the meals confirmed in one month. Line items are
// kept in a separate table so the PDF can list per-slot counts.
type Invoice struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	UserID        uint    `gorm:"not null;index" json:"user_id"`
	User          User    `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user"`
	Month         string  `gorm:"type:varchar(7);not null;index" json:"month"` // YYYY-MM
	InvoiceNumber string  `gorm:"type:varchar(50);unique;not null" json:"invoice_number"`
	TotalAmount   float64 `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	Status        string  `gorm:"type:varchar(20);not null;default:'unpaid'" json:"status"` // unpaid, paid, void

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items"`

	GeneratedBy uint      `gorm:"not null" json:"generated_by"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

type InvoiceItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	InvoiceID uint    `gorm:"not null" json:"invoice_id"`
	Invoice   Invoice `gorm:"-" json:"-"`

	MealSlot    string  `gorm:"type:varchar(20);not null" json:"meal_slot"`
	PortionSize string  `gorm:"type:varchar(10);not null" json:"portion_size"`
	MealCount   int     `gorm:"not null" json:"meal_count"`
	UnitPrice   float64 `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal    float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
