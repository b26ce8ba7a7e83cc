// File: /controllers/confirmation_controller.go
package controllers

import (
	"net/http"

	"convoy-api/models"
	"convoy-api/services"
	"convoy-api/utils"

	"github.com/gin-gonic/gin"
)

type CancelConfirmationRequest struct {
	Via services.CancelVia `json:"via"`
}

type ConfirmationController struct {
	confirmations *services.ConfirmationService
}

func NewConfirmationController(confirmations *services.ConfirmationService) *ConfirmationController {
	return &ConfirmationController{confirmations: confirmations}
}

func (cc *ConfirmationController) GetConfirmation(c *gin.Context) {
	pending, ok := cc.confirmations.Pending(c.Param("token"))
	if !ok {
		utils.SendAppError(c, models.NewAppError(models.CodeConfirmationUnknown, "This confirmation has expired or was already used"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"confirmation": pending})
}

// Confirm runs the held action and answers with its notice.
func (cc *ConfirmationController) Confirm(c *gin.Context) {
	result, err := cc.confirmations.Confirm(c.Request.Context(), c.Param("token"))
	if err != nil {
		utils.SendErrorNotice(c, err)
		return
	}
	utils.SendNotice(c, http.StatusOK, result.Notice, result.Data)
}

// Cancel discards the held action. An empty body counts as the cancel button.
func (cc *ConfirmationController) Cancel(c *gin.Context) {
	req := CancelConfirmationRequest{Via: services.CancelButton}
	if c.Request.ContentLength > 0 {
		if err := utils.BindStrictJSON(c, &req); err != nil {
			utils.SendAppError(c, err)
			return
		}
	}

	if err := cc.confirmations.Cancel(c.Param("token"), req.Via); err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
