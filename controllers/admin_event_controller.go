// File: /controllers/admin_event_controller.go
package controllers

import (
	"net/http"

	"convoy-api/models"
	"convoy-api/services"
	"convoy-api/utils"

	"github.com/gin-gonic/gin"
)

// CoverField is the multipart field carrying a cover image.
const CoverField = "file"

type AdminEventController struct {
	events *services.EventService
}

func NewAdminEventController(events *services.EventService) *AdminEventController {
	return &AdminEventController{events: events}
}

func (ac *AdminEventController) GetEvents(c *gin.Context) {
	events, err := ac.events.ListEvents(c.Request.Context())
	if err != nil {
		utils.SendErrorNotice(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// CreateEvent takes the full event form. The slug is derived from the title
// and may not be supplied.
func (ac *AdminEventController) CreateEvent(c *gin.Context) {
	var input models.EventInput
	if err := utils.BindStrictJSON(c, &input); err != nil {
		utils.SendErrorNotice(c, err)
		return
	}

	result, err := ac.events.CreateEvent(c.Request.Context(), input)
	if err != nil {
		utils.SendErrorNotice(c, err)
		return
	}
	utils.SendNotice(c, http.StatusCreated, result.Notice, result)
}

func (ac *AdminEventController) UpdateEvent(c *gin.Context) {
	var upd models.EventUpdate
	if err := utils.BindStrictJSON(c, &upd); err != nil {
		utils.SendErrorNotice(c, err)
		return
	}

	result, err := ac.events.UpdateEvent(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		utils.SendErrorNotice(c, err)
		return
	}
	utils.SendNotice(c, http.StatusOK, result.Notice, result)
}

// ActivateEvent only opens a confirmation; nothing changes until it is confirmed.
func (ac *AdminEventController) ActivateEvent(c *gin.Context) {
	pending, err := ac.events.RequestActivation(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendErrorNotice(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"confirmation": pending})
}

func (ac *AdminEventController) DeactivateEvent(c *gin.Context) {
	pending, err := ac.events.RequestDeactivation(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.SendErrorNotice(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"confirmation": pending})
}

// GetHealth reports how many events are active. Anything but exactly one is
// answered with 409 so monitors can alert on it.
func (ac *AdminEventController) GetHealth(c *gin.Context) {
	report, err := ac.events.ActiveState(c.Request.Context())
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"healthy": report.Healthy(), "report": report})
}

func (ac *AdminEventController) UploadCover(c *gin.Context) {
	fh, err := c.FormFile(CoverField)
	if err != nil {
		utils.SendErrorNotice(c, models.NewValidationError("Please choose an image to upload"))
		return
	}

	file, closer, err := openUpload(fh)
	if err != nil {
		utils.SendErrorNotice(c, models.NewUserFacingError("Could not read the uploaded image", err))
		return
	}
	defer closer.Close()

	url, err := ac.events.UploadCover(c.Request.Context(), file)
	if err != nil {
		utils.SendErrorNotice(c, err)
		return
	}
	utils.SendNotice(c, http.StatusCreated, models.SuccessNotice("Image uploaded"), gin.H{"url": url})
}
