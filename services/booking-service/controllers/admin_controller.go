package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/stayshop/pkg/session"
	"github.com/yashrajoria/stayshop/services/booking-service/services"
	"github.com/yashrajoria/stayshop/services/common/auth"
	apperrors "github.com/yashrajoria/stayshop/services/common/errors"
)

// AdminController serves login and the admin pages.
type AdminController struct {
	bookings services.BookingService
	creds    auth.Credentials
}

func NewAdminController(bookings services.BookingService, creds auth.Credentials) *AdminController {
	return &AdminController{bookings: bookings, creds: creds}
}

// LoginPage handles GET /login.
func (ac *AdminController) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, page(c, nil))
}

// Login handles POST /login.
func (ac *AdminController) Login(c *gin.Context) {
	if !ac.creds.CheckCredentials(c.PostForm("username"), c.PostForm("password")) {
		redirect(c, "/login", session.FlashDanger, "Invalid credentials")
		return
	}
	session.FromContext(c).Admin = true
	c.Redirect(http.StatusSeeOther, "/admin")
}

// Logout handles GET /logout.
func (ac *AdminController) Logout(c *gin.Context) {
	session.FromContext(c).Admin = false
	c.Redirect(http.StatusSeeOther, "/")
}

// Dashboard handles GET /admin.
func (ac *AdminController) Dashboard(c *gin.Context) {
	rooms, err := ac.bookings.ListRooms(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, page(c, gin.H{"rooms": rooms}))
}

// Bookings handles GET /admin/bookings.
func (ac *AdminController) Bookings(c *gin.Context) {
	all, summary, err := ac.bookings.AdminBookings(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, page(c, gin.H{"bookings": all, "customer_summary": summary}))
}

// AddRoom handles POST /admin/add.
func (ac *AdminController) AddRoom(c *gin.Context) {
	_, err := ac.bookings.CreateRoom(c.Request.Context(), services.RoomInput{
		Name:          c.PostForm("name"),
		RoomType:      c.PostForm("room_type"),
		Capacity:      c.PostForm("capacity"),
		PricePerNight: c.PostForm("price_per_night"),
		ImageURL:      c.PostForm("image_url"),
		Amenities:     c.PostForm("amenities"),
	})
	if err != nil {
		fail(c, err, "/admin")
		return
	}
	redirect(c, "/admin", session.FlashSuccess, "Room added")
}

// DeleteRoom handles POST /admin/delete/:room_id.
func (ac *AdminController) DeleteRoom(c *gin.Context) {
	id, ok := idParam(c, "room_id")
	if !ok {
		redirect(c, "/admin", session.FlashWarning, "Room not found.")
		return
	}
	if err := ac.bookings.DeleteRoom(c.Request.Context(), id); err != nil {
		fail(c, err, "/admin")
		return
	}
	redirect(c, "/admin", session.FlashSuccess, "Room deleted")
}

// UpdateBookingStatus handles POST /admin/bookings/:id/status.
func (ac *AdminController) UpdateBookingStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		redirect(c, "/admin/bookings", session.FlashWarning, "Booking not found.")
		return
	}
	b, err := ac.bookings.UpdateBookingStatus(c.Request.Context(), id, c.PostForm("status"))
	if err != nil {
		fail(c, err, "/admin/bookings")
		return
	}
	redirect(c, "/admin/bookings", session.FlashSuccess, "Booking marked "+string(b.Status))
}
