package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/stayshop/pkg/session"
	"github.com/yashrajoria/stayshop/services/common/auth"
	apperrors "github.com/yashrajoria/stayshop/services/common/errors"
	"github.com/yashrajoria/stayshop/services/shop-service/services"
)

// AdminController serves login and product/order administration.
type AdminController struct {
	shop  services.ShopService
	creds auth.Credentials
}

func NewAdminController(shop services.ShopService, creds auth.Credentials) *AdminController {
	return &AdminController{shop: shop, creds: creds}
}

func (ac *AdminController) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, page(c, nil))
}

func (ac *AdminController) Login(c *gin.Context) {
	if !ac.creds.CheckCredentials(c.PostForm("username"), c.PostForm("password")) {
		redirect(c, "/login", session.FlashDanger, "Invalid credentials")
		return
	}
	session.FromContext(c).Admin = true
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (ac *AdminController) Logout(c *gin.Context) {
	session.FromContext(c).Admin = false
	c.Redirect(http.StatusSeeOther, "/")
}

// Dashboard handles GET /admin.
func (ac *AdminController) Dashboard(c *gin.Context) {
	catalog, err := ac.shop.ListProducts(c.Request.Context(), "")
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, page(c, gin.H{"products": catalog.Products}))
}

func productInput(c *gin.Context) services.ProductInput {
	return services.ProductInput{
		Name:        c.PostForm("name"),
		Category:    c.PostForm("category"),
		Price:       c.PostForm("price"),
		Stock:       c.PostForm("stock"),
		ImageURL:    c.PostForm("image_url"),
		Description: c.PostForm("description"),
	}
}

// AddProduct handles POST /admin/add.
func (ac *AdminController) AddProduct(c *gin.Context) {
	if _, err := ac.shop.CreateProduct(c.Request.Context(), productInput(c)); err != nil {
		fail(c, err, "/admin")
		return
	}
	redirect(c, "/admin", session.FlashSuccess, "Product added")
}

// EditProduct handles POST /admin/edit/:id.
func (ac *AdminController) EditProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		redirect(c, "/admin", session.FlashWarning, "Product not found.")
		return
	}
	if _, err := ac.shop.UpdateProduct(c.Request.Context(), id, productInput(c)); err != nil {
		fail(c, err, "/admin")
		return
	}
	redirect(c, "/admin", session.FlashSuccess, "Product updated")
}

// DeleteProduct handles POST /admin/delete/:id.
func (ac *AdminController) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		redirect(c, "/admin", session.FlashWarning, "Product not found.")
		return
	}
	if err := ac.shop.DeleteProduct(c.Request.Context(), id); err != nil {
		fail(c, err, "/admin")
		return
	}
	redirect(c, "/admin", session.FlashSuccess, "Product deleted")
}

// Orders handles GET /admin/orders.
func (ac *AdminController) Orders(c *gin.Context) {
	orders, err := ac.shop.AdminOrders(c.Request.Context())
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, page(c, gin.H{"orders": orders}))
}

// UpdateOrderStatus handles POST /admin/orders/:id/status.
func (ac *AdminController) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		redirect(c, "/admin/orders", session.FlashWarning, "Order not found.")
		return
	}
	o, err := ac.shop.UpdateOrderStatus(c.Request.Context(), id, c.PostForm("status"))
	if err != nil {
		fail(c, err, "/admin/orders")
		return
	}
	redirect(c, "/admin/orders", session.FlashSuccess, "Order marked "+string(o.Status))
}
