// File: /controllers/admin_registration_controller.go
package controllers

import (
	"net/http"

	"convoy-api/models"
	"convoy-api/services"
	"convoy-api/utils"

	"github.com/gin-gonic/gin"
)

// UpdateStatusRequest changes a registration's status. Filter and DetailID
// describe the screen the admin is on so the answer can refresh it.
type UpdateStatusRequest struct {
	Status   models.RegistrationStatus `json:"status"`
	Filter   models.RegistrationFilter `json:"filter"`
	DetailID string                    `json:"detail_id"`
}

type AdminRegistrationController struct {
	registrations *services.RegistrationAdminService
}

func NewAdminRegistrationController(registrations *services.RegistrationAdminService) *AdminRegistrationController {
	return &AdminRegistrationController{registrations: registrations}
}

// GetRegistrations lists registrations filtered by ?event_slug= and ?status=.
func (ac *AdminRegistrationController) GetRegistrations(c *gin.Context) {
	var filter models.RegistrationFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.SendAppError(c, models.NewValidationError("Invalid filter"))
		return
	}

	result, err := ac.registrations.List(c.Request.Context(), filter)
	if err != nil {
		utils.SendErrorNotice(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (ac *AdminRegistrationController) GetSlugOptions(c *gin.Context) {
	options, err := ac.registrations.FilterOptions(c.Request.Context())
	if err != nil {
		utils.SendErrorNotice(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slugs": options})
}

// GetStatusCounts feeds the dashboard counters.
func (ac *AdminRegistrationController) GetStatusCounts(c *gin.Context) {
	counts, err := ac.registrations.StatusCounts(c.Request.Context())
	if err != nil {
		utils.SendErrorNotice(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"counts": counts})
}

func (ac *AdminRegistrationController) GetRegistration(c *gin.Context) {
	reg, err := ac.registrations.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"registration": reg})
}

func (ac *AdminRegistrationController) UpdateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := utils.BindStrictJSON(c, &req); err != nil {
		utils.SendErrorNotice(c, err)
		return
	}

	result, err := ac.registrations.SetStatus(c.Request.Context(), c.Param("id"), req.Status, req.Filter, req.DetailID)
	if err != nil {
		utils.SendErrorNotice(c, err)
		return
	}
	utils.SendNotice(c, http.StatusOK, *result.Notice, result)
}
