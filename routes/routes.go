package routes

import (
	"net/http"

	"vltava/handlers"
	"vltava/middleware"
	"vltava/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterTourRoutes registers catalogue and quote endpoints.
func RegisterTourRoutes(r *gin.Engine, th *handlers.TourHandler) {
	api := r.Group("/api/tours")
	{
		api.GET("", th.ListTours)
		api.GET("/:id", th.GetTour)
		api.GET("/:id/quote", th.Quote)
	}
}

// RegisterBookingRoutes sets up the endpoints for the booking flow.
func RegisterBookingRoutes(r *gin.Engine, bh *handlers.BookingHandler) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.POST("/session", bh.StartSession)
		bookingGroup.PUT("/session/:sessionID/schedule", bh.UpdateSchedule)
		bookingGroup.PUT("/session/:sessionID/customer", bh.UpdateCustomer)
		bookingGroup.POST("/session/:sessionID/back", bh.Back)
		bookingGroup.DELETE("/session/:sessionID", bh.CancelSession)
		bookingGroup.POST("/confirm", bh.Confirm)
	}
	// Direct submission, used by clients replaying their own saved attempts.
	r.POST("/booking", bh.SubmitBooking)
}

// RegisterOpsRoutes sets up the operational read API for the dashboard.
func RegisterOpsRoutes(r *gin.Engine, oh *handlers.OpsHandler) {
	opsGroup := r.Group("/api/ops")
	{
		opsGroup.POST("/token", oh.IssueToken)

		protected := opsGroup.Group("")
		protected.Use(middleware.OpsAuthMiddleware())
		protected.GET("/metrics", oh.GetMetrics)
		protected.GET("/error-rate", oh.GetErrorRate)
		protected.GET("/health", oh.GetHealth)
	}
}

// RegisterHealthRoute registers a liveness endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "infrastructure": utils.GetHealthStatus()})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, th *handlers.TourHandler, bh *handlers.BookingHandler, oh *handlers.OpsHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: false,
	}))

	RegisterHealthRoute(r)
	RegisterTourRoutes(r, th)
	RegisterBookingRoutes(r, bh)
	RegisterOpsRoutes(r, oh)
}
