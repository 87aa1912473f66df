package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/canteen-app/utils"
)

func InvoiceLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		utils.InfoLogger.Printf("Rendering invoice ID: %s", c.Param("invoice_id"))

		c.Next()

		if c.Writer.Status() == 200 {
			utils.InfoLogger.Printf("Invoice rendered successfully: %s", c.Param("invoice_id"))
		} else {
			utils.ErrorLogger.Printf("Failed to render invoice: %s", c.Param("invoice_id"))
		}
	}
}
