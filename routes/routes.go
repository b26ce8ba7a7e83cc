// File: /routes/routes.go
package routes

import (
	"context"
	"net/http"
	"strings"

	"convoy-api/config"
	"convoy-api/controllers"
	"convoy-api/middleware"
	"convoy-api/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services is everything the HTTP surface needs.
type Services struct {
	Events        *services.EventService
	Registrations *services.RegistrationService
	Admin         *services.RegistrationAdminService
	Confirmations *services.ConfirmationService
	Limiter       *middleware.RateLimiter
	// Ping checks the store for /health; nil skips the check.
	Ping func(ctx context.Context) error
}

func SetupRoutes(r *gin.Engine, cfg *config.Config, svc Services) {
	eventController := controllers.NewEventController(svc.Events)
	registrationController := controllers.NewRegistrationController(svc.Registrations)
	adminEventController := controllers.NewAdminEventController(svc.Events)
	confirmationController := controllers.NewConfirmationController(svc.Confirmations)
	adminRegistrationController := controllers.NewAdminRegistrationController(svc.Admin)

	limiter := svc.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, 5)
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Timeout(cfg.RequestTimeout))

	v1.GET("/health", func(c *gin.Context) {
		if svc.Ping != nil {
			if err := svc.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": "unreachable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// Public routes
	events := v1.Group("/events")
	{
		events.GET("", eventController.GetEvents)
		events.GET("/active", eventController.GetActiveEvent)
		events.GET("/:slug", eventController.GetEvent)
	}

	registrations := v1.Group("/registrations")
	{
		registrations.GET("/form", registrationController.GetForm)
		registrations.POST("", middleware.RateLimit(limiter), registrationController.Submit)
	}

	// Admin routes
	admin := v1.Group("/admin")
	admin.Use(middleware.AdminAuth(cfg.JWTSecret, cfg.AdminEmailList()))
	{
		adminEvents := admin.Group("/events", middleware.RequireJSON())
		{
			adminEvents.GET("", adminEventController.GetEvents)
			adminEvents.POST("", adminEventController.CreateEvent)
			adminEvents.GET("/health", adminEventController.GetHealth)
			adminEvents.PUT("/:id", adminEventController.UpdateEvent)
			adminEvents.POST("/:id/activate", adminEventController.ActivateEvent)
			adminEvents.POST("/:id/deactivate", adminEventController.DeactivateEvent)
		}

		admin.POST("/uploads/cover", adminEventController.UploadCover)

		confirmations := admin.Group("/confirmations", middleware.RequireJSON())
		{
			confirmations.GET("/:token", confirmationController.GetConfirmation)
			confirmations.POST("/:token/confirm", confirmationController.Confirm)
			confirmations.POST("/:token/cancel", confirmationController.Cancel)
		}

		adminRegistrations := admin.Group("/registrations", middleware.RequireJSON())
		{
			adminRegistrations.GET("", adminRegistrationController.GetRegistrations)
			adminRegistrations.GET("/slugs", adminRegistrationController.GetSlugOptions)
			adminRegistrations.GET("/counts", adminRegistrationController.GetStatusCounts)
			adminRegistrations.GET("/:id", adminRegistrationController.GetRegistration)
			adminRegistrations.PUT("/:id/status", adminRegistrationController.UpdateStatus)
		}
	}
}

// SetupCORS answers preflight requests and sets CORS headers for the
// configured origins. "*" allows any origin.
func SetupCORS(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(origin, "/")] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := allowed[origin]; ok || allowAll {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
				c.Header("Access-Control-Expose-Headers", "X-Request-ID")
				c.Header("Access-Control-Max-Age", "600")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
