package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/luxsuv/booking-web/internal/web/handlers"
	"github.com/luxsuv/booking-web/internal/web/middleware"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
)

// SetupRoutes configures all web routes
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, sessionMW gin.HandlerFunc, nrApp *newrelic.Application) {
	// Add New Relic middleware if enabled
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}

	// Health check
	r.GET("/health", h.Health)

	r.Use(sessionMW)

	// Entry points are never guarded; the request layer never navigates,
	// so these pages stay reachable after a 401-triggered clear.
	r.GET("/", h.Landing)
	r.GET("/register", h.ShowRegister)
	r.POST("/register", h.Register)
	r.GET("/verify-email", h.VerifyEmail)
	r.GET("/login", h.ShowLogin)
	r.POST("/login", h.Login)
	r.POST("/logout", h.Logout)

	guest := r.Group("/guest")
	{
		guest.GET("/access", h.ShowGuestAccess)
		guest.POST("/access/request", h.RequestGuestAccess)
		guest.POST("/access/verify", h.VerifyGuestAccess)

		// Booking without an account; the manage token in the reply is
		// the only credential for the new booking.
		guest.GET("/book", h.ShowGuestBookingForm)
		guest.POST("/book", h.CreateGuestBooking)

		bookings := guest.Group("/bookings")
		{
			bookings.GET("", middleware.RequireGuest(false), h.GuestBookings)
			bookings.GET("/:id", middleware.RequireGuest(true), h.GuestBookingDetail)
			bookings.POST("/:id", middleware.RequireGuest(true), h.UpdateGuestBooking)
			bookings.POST("/:id/cancel", middleware.RequireGuest(true), h.CancelGuestBooking)
		}
	}

	rider := r.Group("/rider", middleware.RequireRider())
	{
		rider.GET("/bookings", h.RiderBookings)
		rider.GET("/bookings/new", h.ShowRiderBookingForm)
		rider.POST("/bookings", h.CreateRiderBooking)
		rider.GET("/bookings/:id", h.RiderBookingDetail)
		rider.POST("/bookings/:id", h.UpdateRiderBooking)
		rider.POST("/bookings/:id/cancel", h.CancelRiderBooking)
	}

	// Live status stream
	r.GET("/ws/bookings/:id", h.WatchBooking)
}
