package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ibrahem-ghaybour/storefront/controllers"
	"github.com/ibrahem-ghaybour/storefront/middleware"
)

// Handlers bundles every controller the router mounts.
type Handlers struct {
	Auth       *controllers.AuthController
	Users      *controllers.UserController
	Products   *controllers.ProductController
	Categories *controllers.CategoryController
	Locations  *controllers.LocationController
	Addresses  *controllers.AddressController
	Reviews    *controllers.ReviewController
	Wishlist   *controllers.WishlistController
	Settings   *controllers.SettingsController
	Cart       *controllers.CartController
	Orders     *controllers.OrderController
	Stats      *controllers.StatsController
}

func Register(r *gin.Engine, h *Handlers, jwtSecret []byte) {
	api := r.Group("/api")
	{
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)

		// Public catalog and reference data.
		api.GET("/products", h.Products.List)
		api.GET("/products/:id", h.Products.Get)
		api.GET("/products/:id/reviews", h.Reviews.ListForProduct)
		api.GET("/categories", h.Categories.List)
		api.GET("/governorates", h.Locations.ListGovernorates)
		api.GET("/cities", h.Locations.ListCities)
		api.GET("/settings", h.Settings.Get)

		// Guest checkout provisions a customer account for the order owner.
		api.POST("/orders/guest", h.Orders.CreateGuest)

		protected := api.Group("/")
		protected.Use(middleware.RequireAuth(jwtSecret))
		{
			protected.GET("/auth/me", h.Auth.Me)

			protected.GET("/cart", h.Cart.Get)
			protected.POST("/cart/add", h.Cart.Add)
			protected.PATCH("/cart/item/:productId", h.Cart.SetQuantity)
			protected.DELETE("/cart/item/:productId", h.Cart.Remove)
			protected.DELETE("/cart", h.Cart.Clear)
			protected.POST("/cart/checkout", h.Orders.Checkout)

			protected.POST("/orders", h.Orders.Create)
			protected.GET("/orders", h.Orders.List)
			protected.GET("/orders/:id", h.Orders.Get)
			protected.POST("/orders/:id/cancel", h.Orders.Cancel)

			protected.GET("/addresses", h.Addresses.List)
			protected.POST("/addresses", h.Addresses.Create)
			protected.PUT("/addresses/:id", h.Addresses.Update)
			protected.PATCH("/addresses/:id/default", h.Addresses.SetDefault)
			protected.DELETE("/addresses/:id", h.Addresses.Delete)

			protected.POST("/reviews", h.Reviews.Create)
			protected.DELETE("/reviews/:id", h.Reviews.Delete)

			protected.GET("/wishlist", h.Wishlist.Get)
			protected.POST("/wishlist", h.Wishlist.Add)
			protected.DELETE("/wishlist/:productId", h.Wishlist.Remove)

			elevated := protected.Group("/")
			elevated.Use(middleware.RequireElevated())
			{
				elevated.PATCH("/orders/:id/status", h.Orders.SetStatus)
				elevated.PATCH("/orders/status/bulk", h.Orders.BulkSetStatus)
				elevated.DELETE("/orders/bulk", h.Orders.BulkDelete)

				elevated.GET("/stats/dashboard", h.Stats.Dashboard)

				elevated.POST("/products", h.Products.Create)
				elevated.PUT("/products/:id", h.Products.Update)
				elevated.DELETE("/products/:id", h.Products.Delete)

				elevated.POST("/categories", h.Categories.Create)
				elevated.PUT("/categories/:id", h.Categories.Update)
				elevated.DELETE("/categories/:id", h.Categories.Delete)

				elevated.POST("/governorates", h.Locations.CreateGovernorate)
				elevated.DELETE("/governorates/:id", h.Locations.DeleteGovernorate)
				elevated.POST("/cities", h.Locations.CreateCity)
				elevated.DELETE("/cities/:id", h.Locations.DeleteCity)

				elevated.PUT("/settings", h.Settings.Update)

				elevated.GET("/users", h.Users.List)
				elevated.GET("/users/:id", h.Users.Get)
				elevated.PATCH("/users/:id/role", h.Users.UpdateRole)
				elevated.DELETE("/users/:id", h.Users.Delete)
			}
		}
	}
}
