package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/canteen-app/hub"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/utils"
)

type InvoiceController struct {
	DB *gorm.DB
}

func NewInvoiceController(db *gorm.DB) *InvoiceController {
	return &InvoiceController{DB: db}
}

// mealPrice reads per-portion pricing from the environment with sane defaults.
func mealPrice(portion string) float64 {
	key := "MEAL_PRICE_FULL"
	fallback := 60.0
	if portion == "half" {
		key = "MEAL_PRICE_HALF"
		fallback = 35.0
	}
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

// GenerateInvoice -> bill one user for a month's confirmed meals
func (ic *InvoiceController) GenerateInvoice(c *gin.Context) {
	type reqBody struct {
		UserID uint   `json:"user_id" binding:"required"`
		Month  string `json:"month" binding:"required"` // YYYY-MM
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if _, err := time.Parse("2006-01", body.Month); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("month must be YYYY-MM"))
		return
	}

	var user models.User
	if err := ic.DB.First(&user, body.UserID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var existing models.Invoice
	if err := ic.DB.Where("user_id = ? AND month = ? AND status <> ?",
		body.UserID, body.Month, "void").First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusConflict,
			fmt.Errorf("invoice %s already exists for this month", existing.InvoiceNumber))
		return
	}

	// billable = meals the admin actually confirmed
	type slotCount struct {
		MealSlot    string
		PortionSize string
		Count       int
	}
	var counts []slotCount
	if err := ic.DB.Model(&models.PollResponse{}).
		Select("meal_slot, portion_size, COUNT(*) as count").
		Where("user_id = ? AND date LIKE ? AND confirmation_status = ?",
			body.UserID, body.Month+"%", models.StatusConfirmedAttended).
		Group("meal_slot, portion_size").
		Order("meal_slot asc, portion_size asc").
		Scan(&counts).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if len(counts) == 0 {
		utils.RespondError(c, http.StatusNotFound,
			errors.New("no confirmed meals for this user in "+body.Month))
		return
	}

	invoiceNumber := fmt.Sprintf("INV/%s/%s",
		strings.ReplaceAll(body.Month, "-", ""),
		strings.ToUpper(uuid.NewString()[:8]))

	invoice := models.Invoice{
		UserID:        body.UserID,
		Month:         body.Month,
		InvoiceNumber: invoiceNumber,
		Status:        "unpaid",
		GeneratedBy:   c.GetUint("user_id"),
	}
	for _, sc := range counts {
		price := mealPrice(sc.PortionSize)
		invoice.Items = append(invoice.Items, models.InvoiceItem{
			MealSlot:    sc.MealSlot,
			PortionSize: sc.PortionSize,
			MealCount:   sc.Count,
			UnitPrice:   price,
			Subtotal:    float64(sc.Count) * price,
		})
		invoice.TotalAmount += float64(sc.Count) * price
	}

	if err := ic.DB.Create(&invoice).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Invoice %s generated for user %d (%s)",
		invoice.InvoiceNumber, invoice.UserID, utils.FormatCurrency(invoice.TotalAmount))
	hub.BroadcastInvoiceGenerated(invoice)

	utils.RespondJSON(c, http.StatusCreated, "Invoice generated", invoice)
}

// GetAllInvoices -> admin list, optional ?month= and ?user_id=
func (ic *InvoiceController) GetAllInvoices(c *gin.Context) {
	tx := ic.DB.Preload("Items").Preload("User").Order("created_at desc")
	if month := c.Query("month"); month != "" {
		tx = tx.Where("month = ?", month)
	}
	if userID := c.Query("user_id"); userID != "" {
		tx = tx.Where("user_id = ?", userID)
	}

	var invoices []models.Invoice
	if err := tx.Find(&invoices).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All invoices", invoices)
}

// GetMyInvoices -> the caller's own invoices
func (ic *InvoiceController) GetMyInvoices(c *gin.Context) {
	var invoices []models.Invoice
	if err := ic.DB.Preload("Items").
		Where("user_id = ?", c.GetUint("user_id")).
		Order("month desc").Find(&invoices).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "My invoices", invoices)
}

// MarkPaid -> admin flips an invoice to paid
func (ic *InvoiceController) MarkPaid(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("invoice_id"))

	var invoice models.Invoice
	if err := ic.DB.First(&invoice, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if invoice.Status == "paid" {
		utils.RespondError(c, http.StatusConflict, errors.New("invoice already paid"))
		return
	}

	invoice.Status = "paid"
	if err := ic.DB.Save(&invoice).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Invoice marked paid", invoice)
}

// GetInvoicePDF -> streams the PDF document. Users can only fetch their own;
// admins can fetch any.
func (ic *InvoiceController) GetInvoicePDF(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("invoice_id"))

	var invoice models.Invoice
	if err := ic.DB.Preload("Items").Preload("User").First(&invoice, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if c.GetString("role") != "admin" && invoice.UserID != c.GetUint("user_id") {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, "Canteen Meal Invoice")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, "Invoice No: "+invoice.InvoiceNumber)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Billed To: "+invoice.User.Name+" ("+invoice.User.Email+")")
	pdf.Ln(7)
	pdf.Cell(0, 7, "Month: "+invoice.Month)
	pdf.Ln(7)
	pdf.Cell(0, 7, "Generated: "+invoice.CreatedAt.Format("2006-01-02 15:04"))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(50, 8, "Meal Slot", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Portion", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 8, "Meals", "1", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, "Unit Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(45, 8, "Subtotal", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, item := range invoice.Items {
		pdf.CellFormat(50, 8, item.MealSlot, "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, item.PortionSize, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 8, strconv.Itoa(item.MealCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 8, utils.FormatCurrency(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 8, utils.FormatCurrency(item.Subtotal), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(145, 10, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(45, 10, utils.FormatCurrency(invoice.TotalAmount), "1", 1, "R", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 9)
	pdf.Cell(0, 6, "Status: "+invoice.Status+". Please settle unpaid invoices at the canteen office.")

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition",
		fmt.Sprintf("inline; filename=%s.pdf", strings.ReplaceAll(invoice.InvoiceNumber, "/", "-")))
	if err := pdf.Output(c.Writer); err != nil {
		utils.ErrorLogger.Printf("Error rendering invoice PDF: %v", err)
	}
}
