package controllers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/stayshop/pkg/cart"
	"github.com/yashrajoria/stayshop/pkg/session"
	"github.com/yashrajoria/stayshop/services/booking-service/services"
	apperrors "github.com/yashrajoria/stayshop/services/common/errors"
	"github.com/yashrajoria/stayshop/services/common/validation"
)

// RoomController serves the public room and review pages.
type RoomController struct {
	bookings services.BookingService
	reviews  services.ReviewService
}

func NewRoomController(bookings services.BookingService, reviews services.ReviewService) *RoomController {
	return &RoomController{bookings: bookings, reviews: reviews}
}

// Index handles GET /.
func (rc *RoomController) Index(c *gin.Context) {
	rooms, err := rc.bookings.ListRooms(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, page(c, gin.H{"rooms": rooms}))
}

// RoomPage handles GET /booking/:room_id.
func (rc *RoomController) RoomPage(c *gin.Context) {
	id, ok := idParam(c, "room_id")
	if !ok {
		redirect(c, "/", session.FlashWarning, "Room not found.")
		return
	}
	room, err := rc.bookings.GetRoom(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			redirect(c, "/", session.FlashWarning, "Room not found.")
			return
		}
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, page(c, gin.H{"room": room}))
}

// stayForm bounds match the bookings columns.
type stayForm struct {
	CheckIn  string `form:"check_in" validate:"max=32"`
	CheckOut string `form:"check_out" validate:"max=32"`
	Guests   int    `form:"guests" validate:"min=0,max=20"`
}

// AddBooking handles POST /booking/:room_id.
func (rc *RoomController) AddBooking(c *gin.Context) {
	id, ok := idParam(c, "room_id")
	if !ok {
		redirect(c, "/", session.FlashWarning, "Room not found.")
		return
	}
	form := stayForm{
		CheckIn:  strings.TrimSpace(c.PostForm("check_in")),
		CheckOut: strings.TrimSpace(c.PostForm("check_out")),
		Guests:   atoiDefault(c.PostForm("guests"), 1),
	}
	if problems := validation.Check(form); problems != nil {
		redirect(c, "/booking/"+c.Param("room_id"), session.FlashDanger, "Please check: "+strings.Join(problems.Fields(), ", "))
		return
	}
	stay := cart.Stay{CheckIn: form.CheckIn, CheckOut: form.CheckOut, Guests: form.Guests}

	sess := session.FromContext(c)
	line, err := rc.bookings.AddStay(c.Request.Context(), &sess.Cart, id, stay)
	if err != nil {
		fail(c, err, "/")
		return
	}
	redirect(c, "/my-bookings", session.FlashSuccess, "Booking for "+line.Name+" added")
}

// Reviews handles GET /reviews.
func (rc *RoomController) Reviews(c *gin.Context) {
	grouped, err := rc.reviews.GroupedReviews(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, page(c, gin.H{"grouped": grouped}))
}

// AddReview handles POST /review/:room_id (multipart).
func (rc *RoomController) AddReview(c *gin.Context) {
	id, ok := idParam(c, "room_id")
	if !ok {
		redirect(c, "/", session.FlashWarning, "Room not found.")
		return
	}

	in := services.ReviewInput{
		Name:    c.PostForm("review_name"),
		Rating:  c.PostForm("rating"),
		Comment: c.PostForm("comment"),
	}
	upload, tooLarge := readUpload(c, "review_image")
	in.Image = upload

	sess := session.FromContext(c)
	res, err := rc.reviews.AddReview(c.Request.Context(), id, sess.ID, in)
	if err != nil {
		fail(c, err, back(c, "/"))
		return
	}
	if res.ImageRejected || tooLarge {
		session.AddFlash(c, session.FlashWarning, "Could not save the image. Use a PNG, JPG, JPEG, GIF or WEBP file up to 5 MB.")
	}
	redirect(c, back(c, "/"), session.FlashSuccess, "Thank you for your review!")
}

// DeleteReviewImage handles POST /delete-review-image/:review_id.
func (rc *RoomController) DeleteReviewImage(c *gin.Context) {
	id, ok := idParam(c, "review_id")
	if !ok {
		redirect(c, back(c, "/reviews"), session.FlashWarning, "Review not found.")
		return
	}
	sess := session.FromContext(c)
	if err := rc.reviews.DeleteImage(c.Request.Context(), id, sess.ID); err != nil {
		fail(c, err, back(c, "/reviews"))
		return
	}
	redirect(c, back(c, "/reviews"), session.FlashSuccess, "Image deleted")
}

// readUpload reads an optional form file. The second result reports a file
// that exceeded the size cap and was dropped.
func readUpload(c *gin.Context, field string) (*services.Upload, bool) {
	fh, err := c.FormFile(field)
	if err != nil || fh.Filename == "" {
		return nil, false
	}
	if fh.Size > services.MaxImageSize {
		return nil, true
	}
	f, err := fh.Open()
	if err != nil {
		return nil, true
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, services.MaxImageSize+1))
	if err != nil {
		return nil, true
	}
	return &services.Upload{Filename: fh.Filename, Body: body}, false
}
