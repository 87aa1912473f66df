package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/canteen-app/services"
	"github.com/yeremiapane/canteen-app/utils"
)

// respondServiceError maps the typed failures of the poll services onto HTTP
// statuses; anything unclassified is a store failure and surfaces as 500 with
// its diagnostic text intact.
func respondServiceError(c *gin.Context, err error) {
	var ve *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrUnauthorized):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, services.ErrAlreadyFinal):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"status":        false,
			"message":       ve.Error(),
			"valid_actions": ve.Valid,
		})
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
