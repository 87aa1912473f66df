package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wcharczuk/go-chart/v2"
	"gorm.io/gorm"

	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/utils"
)

type ExpenseController struct {
	DB *gorm.DB
}

func NewExpenseController(db *gorm.DB) *ExpenseController {
	return &ExpenseController{DB: db}
}

// GetAllExpenses -> optionally filtered by ?month=YYYY-MM
func (ec *ExpenseController) GetAllExpenses(c *gin.Context) {
	tx := ec.DB.Order("spent_at desc")
	if month := c.Query("month"); month != "" {
		tx = tx.Where("spent_at LIKE ?", month+"%")
	}

	var expenses []models.Expense
	if err := tx.Find(&expenses).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All expenses", expenses)
}

// CreateExpense
func (ec *ExpenseController) CreateExpense(c *gin.Context) {
	type reqBody struct {
		Title    string  `json:"title" binding:"required"`
		Category string  `json:"category" binding:"required,oneof=groceries gas staff maintenance other"`
		Amount   float64 `json:"amount" binding:"required,gt=0"`
		SpentAt  string  `json:"spent_at" binding:"required"`
		Notes    string  `json:"notes"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if _, err := time.Parse("2006-01-02", body.SpentAt); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("spent_at must be YYYY-MM-DD"))
		return
	}

	expense := models.Expense{
		Title:      body.Title,
		Category:   body.Category,
		Amount:     body.Amount,
		SpentAt:    body.SpentAt,
		Notes:      body.Notes,
		RecordedBy: c.GetUint("user_id"),
	}

	if err := ec.DB.Create(&expense).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Expense recorded", expense)
}

// UpdateExpense
func (ec *ExpenseController) UpdateExpense(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("expense_id"))

	type reqBody struct {
		Title    *string  `json:"title"`
		Category *string  `json:"category"`
		Amount   *float64 `json:"amount"`
		SpentAt  *string  `json:"spent_at"`
		Notes    *string  `json:"notes"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var expense models.Expense
	if err := ec.DB.First(&expense, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if body.Title != nil {
		expense.Title = *body.Title
	}
	if body.Category != nil {
		expense.Category = *body.Category
	}
	if body.Amount != nil {
		expense.Amount = *body.Amount
	}
	if body.SpentAt != nil {
		expense.SpentAt = *body.SpentAt
	}
	if body.Notes != nil {
		expense.Notes = *body.Notes
	}

	if err := ec.DB.Save(&expense).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Expense updated", expense)
}

// DeleteExpense
func (ec *ExpenseController) DeleteExpense(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("expense_id"))

	if err := ec.DB.Delete(&models.Expense{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Expense deleted", gin.H{"expense_id": id})
}

type categoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// GetMonthlySummary -> per-category totals for ?month=YYYY-MM
func (ec *ExpenseController) GetMonthlySummary(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	totals, err := ec.categoryTotals(month)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var grand float64
	for _, t := range totals {
		grand += t.Total
	}

	utils.RespondJSON(c, http.StatusOK, "Monthly expense summary", gin.H{
		"month":       month,
		"categories":  totals,
		"grand_total": grand,
	})
}

// GetMonthlyChart -> PNG bar chart of category totals for ?month=YYYY-MM
func (ec *ExpenseController) GetMonthlyChart(c *gin.Context) {
	month := c.Query("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	totals, err := ec.categoryTotals(month)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if len(totals) == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("no expenses recorded for "+month))
		return
	}

	bars := make([]chart.Value, 0, len(totals))
	var maxTotal float64
	for _, t := range totals {
		bars = append(bars, chart.Value{Value: t.Total, Label: t.Category})
		if t.Total > maxTotal {
			maxTotal = t.Total
		}
	}

	graph := chart.BarChart{
		Title:    "Expenses " + month,
		Height:   512,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		// a single category leaves go-chart with a zero-width value range,
		// which Render rejects; pin the axis to [0, max]
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: maxTotal},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		utils.ErrorLogger.Printf("Error rendering expense chart: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (ec *ExpenseController) categoryTotals(month string) ([]categoryTotal, error) {
	var totals []categoryTotal
	err := ec.DB.Model(&models.Expense{}).
		Select("category, COALESCE(SUM(amount), 0) as total").
		Where("spent_at LIKE ?", month+"%").
		Group("category").
		Order("category asc").
		Scan(&totals).Error
	return totals, err
}
