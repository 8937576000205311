package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yashrajoria/stayshop/services/common/auth"
	"github.com/yashrajoria/stayshop/services/common/middleware"
	"github.com/yashrajoria/stayshop/services/shop-service/controllers"
)

// RegisterRoutes sets up every shop-service route. loginLimiter may be nil.
func RegisterRoutes(r *gin.Engine, shop *controllers.ShopController, admin *controllers.AdminController, loginLimiter *middleware.RateLimiter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "shop-service"})
	})

	r.GET("/", shop.Catalog)
	r.GET("/products", shop.Catalog)
	r.GET("/products/:id", shop.Product)

	cartGroup := r.Group("/cart")
	{
		cartGroup.GET("", shop.Cart)
		cartGroup.POST("/add/:product_id", shop.AddToCart)
		cartGroup.POST("/update/:product_id", shop.UpdateCart)
		cartGroup.POST("/remove/:product_id", shop.RemoveFromCart)
		cartGroup.POST("/clear", shop.ClearCart)
	}

	r.GET("/checkout", shop.CheckoutPage)
	r.POST("/checkout", shop.Checkout)
	r.GET("/orders", shop.Orders)

	login := r.Group("/login")
	if loginLimiter != nil {
		login.Use(middleware.RateLimit(loginLimiter, http.MethodPost))
	}
	login.GET("", admin.LoginPage)
	login.POST("", admin.Login)
	r.GET("/logout", admin.Logout)

	adminGroup := r.Group("/admin")
	adminGroup.Use(auth.RequireAdmin("/login"))
	{
		adminGroup.GET("", admin.Dashboard)
		adminGroup.POST("/add", admin.AddProduct)
		adminGroup.POST("/edit/:id", admin.EditProduct)
		adminGroup.POST("/delete/:id", admin.DeleteProduct)
		adminGroup.GET("/orders", admin.Orders)
		adminGroup.POST("/orders/:id/status", admin.UpdateOrderStatus)
	}
}
