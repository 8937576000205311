package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/stayshop/pkg/cart"
	"github.com/yashrajoria/stayshop/pkg/session"
	apperrors "github.com/yashrajoria/stayshop/services/common/errors"
	"github.com/yashrajoria/stayshop/services/common/validation"
	"github.com/yashrajoria/stayshop/services/shop-service/services"
)

// ShopController serves the catalog, the cart and checkout.
type ShopController struct {
	shop services.ShopService
}

func NewShopController(shop services.ShopService) *ShopController {
	return &ShopController{shop: shop}
}

// Catalog handles GET / and GET /products.
func (sc *ShopController) Catalog(c *gin.Context) {
	catalog, err := sc.shop.ListProducts(c.Request.Context(), c.Query("category"))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, page(c, gin.H{
		"products":   catalog.Products,
		"categories": catalog.Categories,
		"category":   catalog.Category,
	}))
}

// Product handles GET /products/:id.
func (sc *ShopController) Product(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		redirect(c, "/", session.FlashWarning, "Product not found.")
		return
	}
	p, err := sc.shop.GetProduct(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "/")
		return
	}
	c.JSON(http.StatusOK, page(c, gin.H{"product": p}))
}

// Cart handles GET /cart.
func (sc *ShopController) Cart(c *gin.Context) {
	summary := cart.ComputeTotals(session.FromContext(c).Cart.Items)
	c.JSON(http.StatusOK, page(c, gin.H{
		"items":       summary.Lines,
		"total_price": summary.Total,
		"count":       summary.Count,
	}))
}

// AddToCart handles POST /cart/add/:product_id.
func (sc *ShopController) AddToCart(c *gin.Context) {
	id, ok := idParam(c, "product_id")
	if !ok {
		redirect(c, "/", session.FlashWarning, "Product not found.")
		return
	}
	qty := atoiDefault(c.DefaultPostForm("quantity", "1"), 1)
	line, err := sc.shop.AddToCart(c.Request.Context(), &session.FromContext(c).Cart, id, qty)
	if err != nil {
		fail(c, err, "/")
		return
	}
	redirect(c, "/cart", session.FlashSuccess, line.Name+" added to cart")
}

// UpdateCart handles POST /cart/update/:product_id.
func (sc *ShopController) UpdateCart(c *gin.Context) {
	id, ok := idParam(c, "product_id")
	if ok {
		delta := atoiDefault(c.PostForm("delta"), 0)
		if err := sc.shop.UpdateCart(c.Request.Context(), &session.FromContext(c).Cart, id, delta); err != nil {
			fail(c, err, "/cart")
			return
		}
	}
	c.Redirect(http.StatusSeeOther, "/cart")
}

// RemoveFromCart handles POST /cart/remove/:product_id.
func (sc *ShopController) RemoveFromCart(c *gin.Context) {
	if id, ok := idParam(c, "product_id"); ok {
		session.FromContext(c).Cart.Remove(id)
	}
	redirect(c, "/cart", session.FlashInfo, "Item removed")
}

// ClearCart handles POST /cart/clear.
func (sc *ShopController) ClearCart(c *gin.Context) {
	session.FromContext(c).Cart.Clear()
	redirect(c, "/", session.FlashInfo, "Cart cleared")
}

// CheckoutPage handles GET /checkout.
func (sc *ShopController) CheckoutPage(c *gin.Context) {
	sess := session.FromContext(c)
	if sess.Cart.Len() == 0 {
		redirect(c, "/", session.FlashWarning, "Your cart is empty.")
		return
	}
	summary := cart.ComputeTotals(sess.Cart.Items)
	c.JSON(http.StatusOK, page(c, gin.H{
		"items":       summary.Lines,
		"total_price": summary.Total,
		"count":       summary.Count,
		"customer":    sess.Customer,
	}))
}

type checkoutForm struct {
	FullName string `form:"full_name" validate:"required,max=120"`
	Email    string `form:"email" validate:"required,max=254"`
}

// Checkout handles POST /checkout.
func (sc *ShopController) Checkout(c *gin.Context) {
	form := checkoutForm{
		FullName: strings.TrimSpace(c.PostForm("full_name")),
		Email:    strings.TrimSpace(c.PostForm("email")),
	}
	if problems := validation.Check(form); problems != nil {
		msg := "Please enter your name and email."
		if !problems.Missing() {
			msg = "Please check: " + strings.Join(problems.Fields(), ", ")
		}
		redirect(c, "/checkout", session.FlashDanger, msg)
		return
	}
	fullName, email := form.FullName, form.Email

	sess := session.FromContext(c)
	customer := cart.Customer{Name: fullName, Email: email}
	receipt, err := sc.shop.Checkout(c.Request.Context(), &sess.Cart, customer)
	if err != nil {
		path := "/checkout"
		if sess.Cart.Len() == 0 {
			path = "/"
		}
		fail(c, err, path)
		return
	}

	ids := make([]uint, 0, len(receipt.Orders))
	for _, o := range receipt.Orders {
		ids = append(ids, o.ID)
	}
	sess.Customer = &customer
	sess.Payment = &session.PaymentInfo{
		FullName:   fullName,
		Email:      email,
		Total:      receipt.Summary.Total,
		OrderCount: len(receipt.Orders),
		OrderIDs:   ids,
		Lines:      receipt.Summary.Lines,
		Status:     "success",
	}
	redirect(c, "/orders", session.FlashSuccess, "Order placed")
}

// Orders handles GET /orders.
func (sc *ShopController) Orders(c *gin.Context) {
	sess := session.FromContext(c)
	email := ""
	if sess.Customer != nil {
		email = sess.Customer.Email
	}
	orders, err := sc.shop.CustomerOrders(c.Request.Context(), email)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, page(c, gin.H{
		"orders":     orders,
		"last_order": sess.Payment,
	}))
}
