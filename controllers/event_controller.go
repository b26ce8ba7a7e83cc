// File: /controllers/event_controller.go
package controllers

import (
	"net/http"

	"convoy-api/services"
	"convoy-api/utils"

	"github.com/gin-gonic/gin"
)

// EventController serves the public, read-only event pages.
type EventController struct {
	events *services.EventService
}

func NewEventController(events *services.EventService) *EventController {
	return &EventController{events: events}
}

func (ec *EventController) GetEvents(c *gin.Context) {
	events, err := ec.events.ListPublished(c.Request.Context())
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// GetActiveEvent returns 404 when no event is active and 500 when the lookup
// itself failed.
func (ec *EventController) GetActiveEvent(c *gin.Context) {
	event, err := ec.events.GetActive(c.Request.Context())
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": event})
}

func (ec *EventController) GetEvent(c *gin.Context) {
	event, err := ec.events.GetPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": event})
}
