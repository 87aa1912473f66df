package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/canteen-app/hub"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/services"
	"github.com/yeremiapane/canteen-app/utils"
)

type ResponseController struct {
	DB        *gorm.DB
	Resolver  *services.PollResolver
	Confirmer *services.Confirmer
}

func NewResponseController(db *gorm.DB, resolver *services.PollResolver) *ResponseController {
	return &ResponseController{
		DB:        db,
		Resolver:  resolver,
		Confirmer: services.NewConfirmer(db),
	}
}

// CastResponse -> create or update the caller's response for a date+slot.
// The poll is resolved (and lazily created) first; its id is attached only
// when the schema supports the poll_id column.
func (rc *ResponseController) CastResponse(c *gin.Context) {
	userID := c.GetUint("user_id")

	type reqBody struct {
		Date        string `json:"date" binding:"required"`
		MealSlot    string `json:"meal_slot" binding:"required"`
		PortionSize string `json:"portion_size" binding:"required,oneof=half full"`
		Present     bool   `json:"present"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if _, err := time.Parse("2006-01-02", body.Date); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("date must be YYYY-MM-DD"))
		return
	}
	if !models.ValidMealSlot(body.MealSlot) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("meal_slot must be one of breakfast, lunch, dinner"))
		return
	}

	ensured, err := rc.Resolver.EnsurePollForSlot(body.Date, body.MealSlot)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var resp models.PollResponse
	err = rc.DB.Where("user_id = ? AND date = ? AND meal_slot = ?", userID, body.Date, body.MealSlot).
		First(&resp).Error
	switch {
	case err == nil:
		// update the existing vote
		resp.PortionSize = body.PortionSize
		resp.Present = body.Present
		resp.UpdatedAt = time.Now()
	case errors.Is(err, gorm.ErrRecordNotFound):
		resp = models.PollResponse{
			UserID:       userID,
			Date:         body.Date,
			MealSlot:     body.MealSlot,
			PortionSize:  body.PortionSize,
			Present:      body.Present,
			Confirmation: models.StatusPending,
		}
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	// poll id stays advisory: legacy polls have none, and old schemas have no
	// column to put it in
	if ensured.Poll.ID != nil && rc.Resolver.ResponsesSupportPollID() {
		resp.PollID = ensured.Poll.ID
	}

	if err := rc.DB.Save(&resp).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	hub.BroadcastResponseUpdate(resp)
	utils.RespondJSON(c, http.StatusOK, "Response recorded", gin.H{
		"response": resp,
		"poll":     ensured.Poll,
	})
}

// GetMyResponses -> the caller's responses, optionally filtered by ?date=
func (rc *ResponseController) GetMyResponses(c *gin.Context) {
	userID := c.GetUint("user_id")

	tx := rc.DB.Where("user_id = ?", userID)
	if date := c.Query("date"); date != "" {
		tx = tx.Where("date = ?", date)
	}

	var responses []models.PollResponse
	if err := tx.Order("date desc, meal_slot asc").Find(&responses).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "My responses", responses)
}

// SelfReport -> PATCH /responses/:response_id/attendance {action}
func (rc *ResponseController) SelfReport(c *gin.Context) {
	userID := c.GetUint("user_id")
	responseID, err := strconv.Atoi(c.Param("response_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid response id"))
		return
	}

	type reqBody struct {
		Action string `json:"action" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	resp, err := rc.Confirmer.SelfReport(uint(responseID), userID, body.Action)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	hub.BroadcastResponseUpdate(*resp)
	utils.RespondJSON(c, http.StatusOK, "Attendance updated", resp)
}

// GetResponsesForDate -> admin list, ?date= required
func (rc *ResponseController) GetResponsesForDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("date query parameter required"))
		return
	}

	var responses []models.PollResponse
	if err := rc.DB.Preload("User").Where("date = ?", date).
		Order("meal_slot asc, user_id asc").Find(&responses).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Responses for date", responses)
}

// AdminConfirm -> PATCH /admin/responses/:response_id/confirm {action, admin_notes}
func (rc *ResponseController) AdminConfirm(c *gin.Context) {
	adminID := c.GetUint("user_id")
	isAdmin := c.GetString("role") == "admin"

	responseID, err := strconv.Atoi(c.Param("response_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid response id"))
		return
	}

	type reqBody struct {
		Action     string  `json:"action" binding:"required"`
		AdminNotes *string `json:"admin_notes"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	resp, err := rc.Confirmer.AdminConfirm(uint(responseID), adminID, isAdmin, body.Action, body.AdminNotes)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Response %d -> %s by admin %d", resp.ID, resp.Confirmation, adminID)
	hub.BroadcastConfirmationUpdate(*resp)
	utils.RespondJSON(c, http.StatusOK, "Confirmation updated", resp)
}
