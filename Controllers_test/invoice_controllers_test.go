package Controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/yeremiapane/canteen-app/controllers"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/utils"
)

func setupInvoiceRouter(db *gorm.DB, userID, adminID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()

	invCtrl := controllers.NewInvoiceController(db)

	userGroup := router.Group("/", fakeAuth(userID, "user"))
	userGroup.GET("/invoices/me", invCtrl.GetMyInvoices)
	userGroup.GET("/invoices/:invoice_id/pdf", invCtrl.GetInvoicePDF)

	adminGroup := router.Group("/admin", fakeAuth(adminID, "admin"))
	adminGroup.POST("/invoices", invCtrl.GenerateInvoice)
	adminGroup.GET("/invoices", invCtrl.GetAllInvoices)
	adminGroup.POST("/invoices/:invoice_id/paid", invCtrl.MarkPaid)

	return router
}

func seedConfirmedMeals(t *testing.T, db *gorm.DB, userID uint) {
	rows := []models.PollResponse{
		{UserID: userID, Date: "2024-01-02", MealSlot: "lunch", PortionSize: "full", Present: true, Confirmation: models.StatusConfirmedAttended},
		{UserID: userID, Date: "2024-01-03", MealSlot: "lunch", PortionSize: "full", Present: true, Confirmation: models.StatusConfirmedAttended},
		{UserID: userID, Date: "2024-01-03", MealSlot: "dinner", PortionSize: "half", Present: true, Confirmation: models.StatusConfirmedAttended},
		// not billable
		{UserID: userID, Date: "2024-01-04", MealSlot: "lunch", PortionSize: "full", Present: true, Confirmation: models.StatusNoShow},
		{UserID: userID, Date: "2024-02-01", MealSlot: "lunch", PortionSize: "full", Present: true, Confirmation: models.StatusConfirmedAttended},
	}
	for i := range rows {
		assert.NoError(t, db.Create(&rows[i]).Error)
	}
}

func TestGenerateInvoiceBillsConfirmedMeals(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB(t)
	user := seedUser(t, db, "budi", "user")
	admin := seedUser(t, db, "admin", "admin")
	router := setupInvoiceRouter(db, user.ID, admin.ID)
	seedConfirmedMeals(t, db, user.ID)

	w := doJSON(router, "POST", "/admin/invoices", map[string]interface{}{
		"user_id": user.ID,
		"month":   "2024-01",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var invoice models.Invoice
	assert.NoError(t, db.Preload("Items").Where("user_id = ?", user.ID).First(&invoice).Error)
	assert.Equal(t, "2024-01", invoice.Month)
	assert.Equal(t, "unpaid", invoice.Status)
	assert.Contains(t, invoice.InvoiceNumber, "INV/202401/")
	assert.Len(t, invoice.Items, 2)
	// 1 half dinner at 35 + 2 full lunches at 60
	assert.Equal(t, 155.0, invoice.TotalAmount)

	// one live invoice per user per month
	w = doJSON(router, "POST", "/admin/invoices", map[string]interface{}{
		"user_id": user.ID,
		"month":   "2024-01",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGenerateInvoiceNoConfirmedMeals(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB(t)
	user := seedUser(t, db, "budi", "user")
	admin := seedUser(t, db, "admin", "admin")
	router := setupInvoiceRouter(db, user.ID, admin.ID)

	w := doJSON(router, "POST", "/admin/invoices", map[string]interface{}{
		"user_id": user.ID,
		"month":   "2024-01",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkPaid(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB(t)
	user := seedUser(t, db, "budi", "user")
	admin := seedUser(t, db, "admin", "admin")
	router := setupInvoiceRouter(db, user.ID, admin.ID)
	seedConfirmedMeals(t, db, user.ID)

	w := doJSON(router, "POST", "/admin/invoices", map[string]interface{}{
		"user_id": user.ID,
		"month":   "2024-01",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var invoice models.Invoice
	assert.NoError(t, db.Where("user_id = ?", user.ID).First(&invoice).Error)

	w = doJSON(router, "POST", fmt.Sprintf("/admin/invoices/%d/paid", invoice.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	assert.NoError(t, db.First(&invoice, invoice.ID).Error)
	assert.Equal(t, "paid", invoice.Status)

	w = doJSON(router, "POST", fmt.Sprintf("/admin/invoices/%d/paid", invoice.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestInvoicePDFOwnership(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB(t)
	user := seedUser(t, db, "budi", "user")
	other := seedUser(t, db, "siti", "user")
	admin := seedUser(t, db, "admin", "admin")
	router := setupInvoiceRouter(db, user.ID, admin.ID)
	seedConfirmedMeals(t, db, other.ID)

	w := doJSON(router, "POST", "/admin/invoices", map[string]interface{}{
		"user_id": other.ID,
		"month":   "2024-01",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var invoice models.Invoice
	assert.NoError(t, db.Where("user_id = ?", other.ID).First(&invoice).Error)

	// the first user must not read someone else's invoice
	w = doJSON(router, "GET", fmt.Sprintf("/invoices/%d/pdf", invoice.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var myResp map[string]interface{}
	w = doJSON(router, "GET", "/invoices/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &myResp))
	assert.Len(t, myResp["data"].([]interface{}), 0)
}

func TestInvoicePDFRendersForOwner(t *testing.T) {
	utils.InitLogger()
	db := setupTestDB(t)
	user := seedUser(t, db, "budi", "user")
	admin := seedUser(t, db, "admin", "admin")
	router := setupInvoiceRouter(db, user.ID, admin.ID)
	seedConfirmedMeals(t, db, user.ID)

	w := doJSON(router, "POST", "/admin/invoices", map[string]interface{}{
		"user_id": user.ID,
		"month":   "2024-01",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var invoice models.Invoice
	assert.NoError(t, db.Where("user_id = ?", user.ID).First(&invoice).Error)

	w = doJSON(router, "GET", fmt.Sprintf("/invoices/%d/pdf", invoice.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, len(w.Body.Bytes()) > 500)
}
