package models

import "time"

type InventoryItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(100);unique;not null" json:"name"`
	Unit         string    `gorm:"type:varchar(20);not null" json:"unit"` // kg, litre, pcs
	Quantity     float64   `gorm:"type:decimal(10,2);not null;default:0" json:"quantity"`
	LowThreshold float64   `gorm:"type:decimal(10,2);not null;default:0" json:"low_threshold"`
	UpdatedBy    *uint     `json:"updated_by,omitempty"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

// Low reports whether the stock has fallen to or under the threshold.
func (i *InventoryItem) Low() bool {
	return i.LowThreshold > 0 && i.Quantity <= i.LowThreshold
}
