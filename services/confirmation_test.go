package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/canteen-app/models"
)

func setupConfirmerDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:confirmer_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.MealPoll{}, &models.PollResponse{}); err != nil {
		t.Fatal(err)
	}
	return db
}

func seedResponse(t *testing.T, db *gorm.DB, userID uint) *models.PollResponse {
	resp := models.PollResponse{
		UserID:       userID,
		Date:         "2024-01-01",
		MealSlot:     "lunch",
		PortionSize:  "full",
		Present:      true,
		Confirmation: models.StatusPending,
	}
	if err := db.Create(&resp).Error; err != nil {
		t.Fatal(err)
	}
	return &resp
}

func fixedConfirmer(db *gorm.DB, at time.Time) *Confirmer {
	cf := NewConfirmer(db)
	cf.Now = func() time.Time { return at }
	return cf
}

func TestSelfReportMarkAttended(t *testing.T) {
	db := setupConfirmerDB(t)
	resp := seedResponse(t, db, 10)
	now := time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC)
	cf := fixedConfirmer(db, now)

	updated, err := cf.SelfReport(resp.ID, 10, ActionMarkAttended)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingAdmin, updated.Confirmation)
	assert.NotNil(t, updated.AttendedAt)
	assert.True(t, updated.AttendedAt.Equal(now))
	assert.True(t, updated.UpdatedAt.Equal(now))
}

func TestSelfReportCancelClearsAttendedAt(t *testing.T) {
	db := setupConfirmerDB(t)
	resp := seedResponse(t, db, 10)
	cf := fixedConfirmer(db, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))

	_, err := cf.SelfReport(resp.ID, 10, ActionMarkAttended)
	assert.NoError(t, err)

	updated, err := cf.SelfReport(resp.ID, 10, ActionCancel)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Confirmation)
	assert.Nil(t, updated.AttendedAt)

	var stored models.PollResponse
	assert.NoError(t, db.First(&stored, resp.ID).Error)
	assert.Nil(t, stored.AttendedAt)
}

func TestSelfReportOwnershipEnforced(t *testing.T) {
	db := setupConfirmerDB(t)
	resp := seedResponse(t, db, 10)
	cf := fixedConfirmer(db, time.Now())

	_, err := cf.SelfReport(resp.ID, 99, ActionMarkAttended)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var stored models.PollResponse
	assert.NoError(t, db.First(&stored, resp.ID).Error)
	assert.Equal(t, models.StatusPending, stored.Confirmation)
	assert.Nil(t, stored.AttendedAt)
}

func TestSelfReportInvalidAction(t *testing.T) {
	db := setupConfirmerDB(t)
	resp := seedResponse(t, db, 10)
	cf := fixedConfirmer(db, time.Now())

	_, err := cf.SelfReport(resp.ID, 10, "delete")
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"mark_attended", "cancel"}, ve.Valid)
}

func TestSelfReportNotFound(t *testing.T) {
	db := setupConfirmerDB(t)
	cf := fixedConfirmer(db, time.Now())

	_, err := cf.SelfReport(12345, 10, ActionMarkAttended)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdminConfirmBackfillsMissingTimestamps(t *testing.T) {
	db := setupConfirmerDB(t)
	resp := seedResponse(t, db, 10)
	now := time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC)
	cf := fixedConfirmer(db, now)
	notes := "confirmed at counter"

	updated, err := cf.AdminConfirm(resp.ID, 1, true, ActionConfirmAttended, &notes)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusConfirmedAttended, updated.Confirmation)
	assert.True(t, updated.AttendedAt.Equal(now))
	assert.True(t, updated.ActualMealTime.Equal(now))
	assert.Equal(t, uint(1), *updated.ConfirmedBy)
	assert.True(t, updated.ConfirmedAt.Equal(now))
	assert.Equal(t, "confirmed at counter", *updated.AdminNotes)
}

func TestAdminConfirmPreservesSelfReportedTimestamp(t *testing.T) {
	db := setupConfirmerDB(t)
	resp := seedResponse(t, db, 10)
	t1 := time.Date(2024, 1, 1, 12, 15, 0, 0, time.UTC)
	cf := fixedConfirmer(db, t1)

	_, err := cf.SelfReport(resp.ID, 10, ActionMarkAttended)
	assert.NoError(t, err)

	t2 := time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC)
	cf.Now = func() time.Time { return t2 }
	updated, err := cf.AdminConfirm(resp.ID, 1, true, ActionConfirmAttended, nil)
	assert.NoError(t, err)

	// the user's own timestamp stays; only confirmation fields move
	assert.True(t, updated.AttendedAt.Equal(t1))
	assert.True(t, updated.ConfirmedAt.Equal(t2))
	assert.Nil(t, updated.AdminNotes)
}

func TestAdminNoShowWithoutSelfReport(t *testing.T) {
	db := setupConfirmerDB(t)
	resp := seedResponse(t, db, 10)
	now := time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC)
	cf := fixedConfirmer(db, now)

	updated, err := cf.AdminConfirm(resp.ID, 2, true, ActionNoShow, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusNoShow, updated.Confirmation)
	// no backfill outside confirm_attended
	assert.Nil(t, updated.AttendedAt)
	assert.Nil(t, updated.ActualMealTime)
	assert.Equal(t, uint(2), *updated.ConfirmedBy)
}

func TestAdminConfirmRequiresAdminRole(t *testing.T) {
	db := setupConfirmerDB(t)
	resp := seedResponse(t, db, 10)
	cf := fixedConfirmer(db, time.Now())

	_, err := cf.AdminConfirm(resp.ID, 10, false, ActionReject, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAdminConfirmInvalidAction(t *testing.T) {
	db := setupConfirmerDB(t)
	resp := seedResponse(t, db, 10)
	cf := fixedConfirmer(db, time.Now())

	_, err := cf.AdminConfirm(resp.ID, 1, true, "approve", nil)
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"confirm_attended", "no_show", "reject"}, ve.Valid)
}

func TestNoTransitionOutOfTerminalState(t *testing.T) {
	db := setupConfirmerDB(t)
	resp := seedResponse(t, db, 10)
	cf := fixedConfirmer(db, time.Now())

	_, err := cf.AdminConfirm(resp.ID, 1, true, ActionReject, nil)
	assert.NoError(t, err)

	_, err = cf.SelfReport(resp.ID, 10, ActionMarkAttended)
	assert.ErrorIs(t, err, ErrAlreadyFinal)
	_, err = cf.AdminConfirm(resp.ID, 1, true, ActionConfirmAttended, nil)
	assert.ErrorIs(t, err, ErrAlreadyFinal)
}
