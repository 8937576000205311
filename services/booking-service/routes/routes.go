package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/stayshop/services/booking-service/controllers"
	"github.com/yashrajoria/stayshop/services/common/auth"
	"github.com/yashrajoria/stayshop/services/common/middleware"
)

// Controllers bundles the handlers mounted by RegisterRoutes.
type Controllers struct {
	Rooms    *controllers.RoomController
	Bookings *controllers.BookingController
	Admin    *controllers.AdminController
}

// RegisterRoutes sets up every booking-service route. loginLimiter may be nil.
func RegisterRoutes(r *gin.Engine, ctl Controllers, loginLimiter *middleware.RateLimiter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "booking-service"})
	})

	r.GET("/", ctl.Rooms.Index)
	r.GET("/booking/:room_id", ctl.Rooms.RoomPage)
	r.POST("/booking/:room_id", ctl.Rooms.AddBooking)
	r.GET("/reviews", ctl.Rooms.Reviews)
	r.POST("/review/:room_id", ctl.Rooms.AddReview)
	r.POST("/delete-review-image/:review_id", ctl.Rooms.DeleteReviewImage)

	r.GET("/my-bookings", ctl.Bookings.MyBookings)
	r.GET("/checkout", ctl.Bookings.Checkout)
	r.GET("/payment", ctl.Bookings.Checkout)
	r.POST("/payment", ctl.Bookings.Pay)
	r.GET("/payment-success", ctl.Bookings.PaymentSuccess)
	r.POST("/clear-bookings", ctl.Bookings.ClearBookings)
	r.POST("/cancel-booking/:index", ctl.Bookings.CancelBooking)

	login := r.Group("/login")
	if loginLimiter != nil {
		login.Use(middleware.RateLimit(loginLimiter, http.MethodPost))
	}
	login.GET("", ctl.Admin.LoginPage)
	login.POST("", ctl.Admin.Login)
	r.GET("/logout", ctl.Admin.Logout)

	admin := r.Group("/admin")
	admin.Use(auth.RequireAdmin("/login"))
	admin.GET("", ctl.Admin.Dashboard)
	admin.GET("/bookings", ctl.Admin.Bookings)
	admin.POST("/add", ctl.Admin.AddRoom)
	admin.POST("/delete/:room_id", ctl.Admin.DeleteRoom)
	admin.POST("/bookings/:id/status", ctl.Admin.UpdateBookingStatus)
}
