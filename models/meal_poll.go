package models

import "time"

// MealPoll is one attendance vote opportunity for a calendar date and meal slot.
// PollDate is stored as a plain YYYY-MM-DD string so lookups can address the
// column by name regardless of driver date handling.
type MealPoll struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PollDate  string    `gorm:"column:poll_date;type:varchar(10);not null;uniqueIndex:idx_poll_date_slot" json:"poll_date"`
	MealSlot  string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_poll_date_slot" json:"meal_slot"` // breakfast, lunch, dinner
	Title     string    `gorm:"type:varchar(100);not null" json:"title"`
	Status    string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (MealPoll) TableName() string {
	return "polls"
}

// MealSlots in display order.
var MealSlots = []string{"breakfast", "lunch", "dinner"}

func ValidMealSlot(slot string) bool {
	for _, s := range MealSlots {
		if s == slot {
			return true
		}
	}
	return false
}
