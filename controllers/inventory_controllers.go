package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/canteen-app/hub"
	"github.com/yeremiapane/canteen-app/models"
	"github.com/yeremiapane/canteen-app/utils"
)

type InventoryController struct {
	DB *gorm.DB
}

func NewInventoryController(db *gorm.DB) *InventoryController {
	return &InventoryController{DB: db}
}

// GetAllItems
func (ic *InventoryController) GetAllItems(c *gin.Context) {
	var items []models.InventoryItem
	if err := ic.DB.Order("name asc").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All inventory items", items)
}

// GetLowStockItems -> items at or under their threshold
func (ic *InventoryController) GetLowStockItems(c *gin.Context) {
	var items []models.InventoryItem
	if err := ic.DB.Where("low_threshold > 0 AND quantity <= low_threshold").
		Order("name asc").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Low stock items", items)
}

// CreateItem
func (ic *InventoryController) CreateItem(c *gin.Context) {
	type reqBody struct {
		Name         string  `json:"name" binding:"required"`
		Unit         string  `json:"unit" binding:"required"`
		Quantity     float64 `json:"quantity"`
		LowThreshold float64 `json:"low_threshold"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	userID := c.GetUint("user_id")
	item := models.InventoryItem{
		Name:         body.Name,
		Unit:         body.Unit,
		Quantity:     body.Quantity,
		LowThreshold: body.LowThreshold,
		UpdatedBy:    &userID,
	}

	if err := ic.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Inventory item created", item)
}

// UpdateItem -> partial update; broadcasts when stock drops under threshold
func (ic *InventoryController) UpdateItem(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("item_id"))

	type reqBody struct {
		Name         *string  `json:"name"`
		Unit         *string  `json:"unit"`
		Quantity     *float64 `json:"quantity"`
		LowThreshold *float64 `json:"low_threshold"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var item models.InventoryItem
	if err := ic.DB.First(&item, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if body.Name != nil {
		item.Name = *body.Name
	}
	if body.Unit != nil {
		item.Unit = *body.Unit
	}
	if body.Quantity != nil {
		item.Quantity = *body.Quantity
	}
	if body.LowThreshold != nil {
		item.LowThreshold = *body.LowThreshold
	}
	userID := c.GetUint("user_id")
	item.UpdatedBy = &userID

	if err := ic.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if item.Low() {
		utils.InfoLogger.Printf("Inventory low: %s (%.2f %s)", item.Name, item.Quantity, item.Unit)
		hub.BroadcastInventoryLow(item)
	}

	utils.RespondJSON(c, http.StatusOK, "Inventory item updated", item)
}

// DeleteItem
func (ic *InventoryController) DeleteItem(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("item_id"))

	if err := ic.DB.Delete(&models.InventoryItem{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Inventory item deleted", gin.H{"item_id": id})
}
