package services

import (
	"errors"
	"time"

	"github.com/yeremiapane/canteen-app/models"
	"gorm.io/gorm"
)

// Actions accepted by the confirmation state machine.
const (
	ActionMarkAttended    = "mark_attended"
	ActionCancel          = "cancel"
	ActionConfirmAttended = "confirm_attended"
	ActionNoShow          = "no_show"
	ActionReject          = "reject"
)

var (
	// userTransitions: self-report actions available to the response owner.
	userTransitions = map[string]models.ConfirmationStatus{
		ActionMarkAttended: models.StatusAwaitingAdmin,
		ActionCancel:       models.StatusCancelled,
	}
	// adminTransitions: confirmation actions available to admins. no_show and
	// reject are reachable without a prior self-report so admins can close out
	// users who never opened the app.
	adminTransitions = map[string]models.ConfirmationStatus{
		ActionConfirmAttended: models.StatusConfirmedAttended,
		ActionNoShow:          models.StatusNoShow,
		ActionReject:          models.StatusRejected,
	}

	UserActions  = []string{ActionMarkAttended, ActionCancel}
	AdminActions = []string{ActionConfirmAttended, ActionNoShow, ActionReject}
)

// Confirmer drives the lifecycle of a poll response: user self-report, then
// admin confirmation. A response never reaches confirmed_attended without both
// parties acting, while admins can mark no_show/reject unilaterally.
type Confirmer struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewConfirmer(db *gorm.DB) *Confirmer {
	return &Confirmer{DB: db, Now: time.Now}
}

// SelfReport applies a user action to the caller's own response.
// mark_attended stamps AttendedAt with the current time (a fresh self-report
// overwrites any earlier one); cancel clears it.
func (cf *Confirmer) SelfReport(responseID, callerID uint, action string) (*models.PollResponse, error) {
	next, ok := userTransitions[action]
	if !ok {
		return nil, &ValidationError{Action: action, Valid: UserActions}
	}

	resp, err := cf.load(responseID)
	if err != nil {
		return nil, err
	}
	if resp.UserID != callerID {
		return nil, ErrUnauthorized
	}
	if resp.Confirmation.Terminal() {
		return nil, ErrAlreadyFinal
	}

	now := cf.Now()
	resp.Confirmation = next
	switch action {
	case ActionMarkAttended:
		resp.AttendedAt = &now
	case ActionCancel:
		resp.AttendedAt = nil
	}
	resp.UpdatedAt = now

	if err := cf.save(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// AdminConfirm applies an admin action to any response. ConfirmedBy/At and
// AdminNotes are written for every action; confirm_attended additionally
// backfills AttendedAt and ActualMealTime, but only when the user never set
// them. An existing self-report timestamp is never overwritten.
func (cf *Confirmer) AdminConfirm(responseID, adminID uint, isAdmin bool, action string, notes *string) (*models.PollResponse, error) {
	next, ok := adminTransitions[action]
	if !ok {
		return nil, &ValidationError{Action: action, Valid: AdminActions}
	}
	if !isAdmin {
		return nil, ErrUnauthorized
	}

	resp, err := cf.load(responseID)
	if err != nil {
		return nil, err
	}
	if resp.Confirmation.Terminal() {
		return nil, ErrAlreadyFinal
	}

	now := cf.Now()
	resp.Confirmation = next
	resp.ConfirmedBy = &adminID
	resp.ConfirmedAt = &now
	resp.AdminNotes = notes
	if action == ActionConfirmAttended {
		if resp.AttendedAt == nil {
			resp.AttendedAt = &now
		}
		if resp.ActualMealTime == nil {
			resp.ActualMealTime = &now
		}
	}
	resp.UpdatedAt = now

	if err := cf.save(resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (cf *Confirmer) load(responseID uint) (*models.PollResponse, error) {
	var resp models.PollResponse
	if err := cf.DB.First(&resp, responseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &resp, nil
}

// save writes every lifecycle column explicitly so cleared pointers (cancel,
// notes set back to null) reach the database as NULL.
func (cf *Confirmer) save(resp *models.PollResponse) error {
	return cf.DB.Model(resp).Select(
		"confirmation_status", "attended_at", "actual_meal_time",
		"confirmed_by", "confirmed_at", "admin_notes", "updated_at",
	).Updates(map[string]any{
		"confirmation_status": resp.Confirmation,
		"attended_at":         resp.AttendedAt,
		"actual_meal_time":    resp.ActualMealTime,
		"confirmed_by":        resp.ConfirmedBy,
		"confirmed_at":        resp.ConfirmedAt,
		"admin_notes":         resp.AdminNotes,
		"updated_at":          resp.UpdatedAt,
	}).Error
}
