package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/canteen-app/hub"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/utils"
)

type AdminController struct {
	DB *gorm.DB
}

func NewAdminController(db *gorm.DB) *AdminController {
	return &AdminController{DB: db}
}

// GetDashboardStats collects the numbers the admin dashboard shows.
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	roleInterface, exists := c.Get("role")
	if !exists {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("no role found"))
		return
	}
	if role, ok := roleInterface.(string); !ok || role != "admin" {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized access"))
		return
	}

	today := time.Now().Format("2006-01-02")
	month := time.Now().Format("2006-01")

	var stats struct {
		TotalUsers     int64 `json:"total_users"`
		TodayResponses int64 `json:"today_responses"`
		ResponseStats  struct {
			Pending       int64 `json:"pending"`
			AwaitingAdmin int64 `json:"awaiting_admin_confirmation"`
			Confirmed     int64 `json:"confirmed_attended"`
			NoShow        int64 `json:"no_show"`
			Rejected      int64 `json:"rejected"`
			Cancelled     int64 `json:"cancelled"`
		} `json:"response_stats"`
		TodayMeals struct {
			Breakfast int64 `json:"breakfast"`
			Lunch     int64 `json:"lunch"`
			Dinner    int64 `json:"dinner"`
		} `json:"today_meals"`
		Inventory struct {
			TotalItems int64 `json:"total_items"`
			LowStock   int64 `json:"low_stock"`
		} `json:"inventory"`
		Finance struct {
			MonthExpenses float64 `json:"month_expenses"`
			MonthInvoiced float64 `json:"month_invoiced"`
			UnpaidTotal   float64 `json:"unpaid_total"`
		} `json:"finance"`
	}

	ac.DB.Model(&models.User{}).Count(&stats.TotalUsers)
	ac.DB.Model(&models.PollResponse{}).Where("date = ?", today).Count(&stats.TodayResponses)

	statusCounts := map[models.ConfirmationStatus]*int64{
		models.StatusPending:           &stats.ResponseStats.Pending,
		models.StatusAwaitingAdmin:     &stats.ResponseStats.AwaitingAdmin,
		models.StatusConfirmedAttended: &stats.ResponseStats.Confirmed,
		models.StatusNoShow:            &stats.ResponseStats.NoShow,
		models.StatusRejected:          &stats.ResponseStats.Rejected,
		models.StatusCancelled:         &stats.ResponseStats.Cancelled,
	}
	for status, target := range statusCounts {
		ac.DB.Model(&models.PollResponse{}).
			Where("date = ? AND confirmation_status = ?", today, status).Count(target)
	}

	ac.DB.Model(&models.PollResponse{}).
		Where("date = ? AND meal_slot = ? AND present = ?", today, "breakfast", true).
		Count(&stats.TodayMeals.Breakfast)
	ac.DB.Model(&models.PollResponse{}).
		Where("date = ? AND meal_slot = ? AND present = ?", today, "lunch", true).
		Count(&stats.TodayMeals.Lunch)
	ac.DB.Model(&models.PollResponse{}).
		Where("date = ? AND meal_slot = ? AND present = ?", today, "dinner", true).
		Count(&stats.TodayMeals.Dinner)

	ac.DB.Model(&models.InventoryItem{}).Count(&stats.Inventory.TotalItems)
	ac.DB.Model(&models.InventoryItem{}).
		Where("low_threshold > 0 AND quantity <= low_threshold").
		Count(&stats.Inventory.LowStock)

	ac.DB.Model(&models.Expense{}).
		Where("spent_at LIKE ?", month+"%").
		Select("COALESCE(SUM(amount), 0)").Row().Scan(&stats.Finance.MonthExpenses)
	ac.DB.Model(&models.Invoice{}).
		Where("month = ? AND status <> ?", month, "void").
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&stats.Finance.MonthInvoiced)
	ac.DB.Model(&models.Invoice{}).
		Where("status = ?", "unpaid").
		Select("COALESCE(SUM(total_amount), 0)").Row().Scan(&stats.Finance.UnpaidTotal)

	hub.BroadcastDashboardUpdate(stats)
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}
