package models

import "time"

// ConfirmationStatus is the closed set of states a poll response moves through.
type ConfirmationStatus string

const (
	StatusPending           ConfirmationStatus = "pending"
	StatusAwaitingAdmin     ConfirmationStatus = "awaiting_admin_confirmation"
	StatusConfirmedAttended ConfirmationStatus = "confirmed_attended"
	StatusNoShow            ConfirmationStatus = "no_show"
	StatusRejected          ConfirmationStatus = "rejected"
	StatusCancelled         ConfirmationStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed from s.
func (s ConfirmationStatus) Terminal() bool {
	switch s {
	case StatusPending, StatusAwaitingAdmin:
		return false
	}
	return true
}

// PollResponse is a single user's attendance claim against a poll. PollID stays
// nullable: responses created before the polls table existed have none, and the
// column itself may be absent on older schemas (see services.CapabilityCache).
type PollResponse struct {
	ID             uint               `gorm:"primaryKey" json:"id"`
	UserID         uint               `gorm:"not null;index" json:"user_id"`
	User           User               `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	PollID         *uint              `gorm:"column:poll_id;index" json:"poll_id,omitempty"`
	Date           string             `gorm:"type:varchar(10);not null;index" json:"date"`
	MealSlot       string             `gorm:"type:varchar(20);not null" json:"meal_slot"`
	PortionSize    string             `gorm:"type:varchar(10);not null;default:'full'" json:"portion_size"` // half, full
	Present        bool               `gorm:"not null;default:false" json:"present"`
	Confirmation   ConfirmationStatus `gorm:"column:confirmation_status;type:varchar(40);not null;default:'pending'" json:"confirmation_status"`
	AttendedAt     *time.Time         `json:"attended_at,omitempty"`
	ActualMealTime *time.Time         `json:"actual_meal_time,omitempty"`
	ConfirmedBy    *uint              `json:"confirmed_by,omitempty"`
	ConfirmedAt    *time.Time         `json:"confirmed_at,omitempty"`
	AdminNotes     *string            `gorm:"type:text" json:"admin_notes,omitempty"`
	CreatedAt      time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"not null" json:"updated_at"`
}

func (PollResponse) TableName() string {
	return "poll_responses"
}
