package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/canteen-app/hub"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/services"
	"github.com/yeremiapane/canteen-app/utils"
)

type PollController struct {
	Resolver *services.PollResolver
}

func NewPollController(resolver *services.PollResolver) *PollController {
	return &PollController{Resolver: resolver}
}

// GetPollsForDate -> list polls for ?date= (defaults to today)
func (pc *PollController) GetPollsForDate(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("date must be YYYY-MM-DD"))
		return
	}

	result, err := pc.Resolver.FetchPollsForDate(date)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if result.Warning != "" {
		utils.InfoLogger.Printf("Poll fetch degraded for %s: %s", date, result.Warning)
	}
	utils.RespondJSON(c, http.StatusOK, "Polls for date", result)
}

// EnsurePoll -> admin resolves/creates the canonical poll for a date+slot
func (pc *PollController) EnsurePoll(c *gin.Context) {
	type reqBody struct {
		Date     string `json:"date" binding:"required"`
		MealSlot string `json:"meal_slot" binding:"required"`
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

	result, err := pc.Resolver.EnsurePollForSlot(body.Date, body.MealSlot)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if result.Poll.IsLegacy {
		utils.InfoLogger.Printf("Polls table missing, legacy poll for %s/%s", body.Date, body.MealSlot)
	} else {
		hub.BroadcastPollUpdate(result.Poll)
	}
	utils.RespondJSON(c, http.StatusOK, "Poll resolved", result)
}

// ResetSchemaCache -> clears the memoized poll_id capability after a migration
func (pc *PollController) ResetSchemaCache(c *gin.Context) {
	pc.Resolver.Caps.Reset()
	utils.RespondJSON(c, http.StatusOK, "Schema capability cache reset", nil)
}
