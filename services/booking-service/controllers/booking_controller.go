package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/stayshop/pkg/cart"
	"github.com/yashrajoria/stayshop/pkg/session"
	"github.com/yashrajoria/stayshop/services/booking-service/services"
	apperrors "github.com/yashrajoria/stayshop/services/common/errors"
	"github.com/yashrajoria/stayshop/services/common/validation"
)

// BookingController serves the visitor's pending bookings and payment.
type BookingController struct {
	bookings services.BookingService
}

func NewBookingController(bookings services.BookingService) *BookingController {
	return &BookingController{bookings: bookings}
}

// MyBookings handles GET /my-bookings.
func (bc *BookingController) MyBookings(c *gin.Context) {
	sess := session.FromContext(c)
	summary := cart.ComputeTotals(sess.Cart.Items)

	email := ""
	if sess.Customer != nil {
		email = sess.Customer.Email
	}
	history, err := bc.bookings.CustomerBookings(c.Request.Context(), email)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, page(c, gin.H{
		"bookings":            summary.Lines,
		"total_price":         summary.Total,
		"historical_bookings": history,
	}))
}

// Checkout handles GET /checkout and GET /payment.
func (bc *BookingController) Checkout(c *gin.Context) {
	sess := session.FromContext(c)
	if sess.Cart.Len() == 0 {
		redirect(c, "/", session.FlashWarning, "There are no bookings to pay for.")
		return
	}
	summary := cart.ComputeTotals(sess.Cart.Items)
	c.JSON(http.StatusOK, page(c, gin.H{
		"bookings":    summary.Lines,
		"total_price": summary.Total,
		"count":       summary.Count,
	}))
}

type paymentForm struct {
	FullName   string `form:"full_name" validate:"required,max=120"`
	Email      string `form:"email" validate:"required,max=254"`
	CardNumber string `form:"card_number" validate:"required,max=32"`
}

// Pay handles POST /payment.
func (bc *BookingController) Pay(c *gin.Context) {
	form := paymentForm{
		FullName:   strings.TrimSpace(c.PostForm("full_name")),
		Email:      strings.TrimSpace(c.PostForm("email")),
		CardNumber: strings.TrimSpace(c.PostForm("card_number")),
	}
	if problems := validation.Check(form); problems != nil {
		msg := "Please fill in all payment details."
		if !problems.Missing() {
			msg = "Please check: " + strings.Join(problems.Fields(), ", ")
		}
		redirect(c, "/checkout", session.FlashDanger, msg)
		return
	}
	fullName, email, card := form.FullName, form.Email, form.CardNumber

	sess := session.FromContext(c)
	customer := cart.Customer{Name: fullName, Email: email}
	receipt, err := bc.bookings.Checkout(c.Request.Context(), &sess.Cart, customer, card)
	if err != nil {
		path := "/checkout"
		if sess.Cart.Len() == 0 {
			path = "/"
		}
		fail(c, err, path)
		return
	}

	ids := make([]uint, 0, len(receipt.Bookings))
	for _, b := range receipt.Bookings {
		ids = append(ids, b.ID)
	}
	sess.Customer = &customer
	sess.Payment = &session.PaymentInfo{
		FullName:   fullName,
		Email:      email,
		Total:      receipt.Summary.Total,
		OrderCount: len(receipt.Bookings),
		OrderIDs:   ids,
		Lines:      receipt.Summary.Lines,
		Reference:  receipt.Reference,
		Status:     "success",
	}
	redirect(c, "/payment-success", session.FlashSuccess, "Payment successful")
}

// PaymentSuccess handles GET /payment-success.
func (bc *BookingController) PaymentSuccess(c *gin.Context) {
	sess := session.FromContext(c)
	if sess.Payment == nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.JSON(http.StatusOK, page(c, gin.H{
		"payment_info": sess.Payment,
		"bookings":     sess.Payment.Lines,
	}))
}

// ClearBookings handles POST /clear-bookings.
func (bc *BookingController) ClearBookings(c *gin.Context) {
	sess := session.FromContext(c)
	sess.Cart.Clear()
	sess.Payment = nil
	redirect(c, "/", session.FlashInfo, "Bookings and payment details cleared")
}

// CancelBooking handles POST /cancel-booking/:index.
func (bc *BookingController) CancelBooking(c *gin.Context) {
	index := atoiDefault(c.Param("index"), -1)
	sess := session.FromContext(c)
	if sess.Cart.RemoveAt(index) {
		session.AddFlash(c, session.FlashInfo, "Booking cancelled")
	}
	c.Redirect(http.StatusSeeOther, "/my-bookings")
}
