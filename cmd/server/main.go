package main

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ibrahem-ghaybour/storefront/config"
	"github.com/ibrahem-ghaybour/storefront/controllers"
	"github.com/ibrahem-ghaybour/storefront/database"
	"github.com/ibrahem-ghaybour/storefront/middleware"
	"github.com/ibrahem-ghaybour/storefront/routes"
	"github.com/ibrahem-ghaybour/storefront/services"
)

func main() {
	config.LoadEnv()

	log := logrus.StandardLogger()
	if config.GetEnv("ENV", "development") == "production" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	jwtSecret := []byte(config.GetEnv("JWT_SECRET", ""))
	if len(jwtSecret) == 0 {
		log.Fatal("JWT_SECRET is not set")
	}

	manager := database.NewManager(
		config.GetEnv("MONGO_URI", "mongodb://localhost:27017"),
		config.GetEnv("DB_NAME", "storefront"),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	db, err := manager.Database(ctx)
	if err != nil {
		log.WithError(err).Fatal("MongoDB connection failed")
	}
	defer manager.Disconnect(context.Background())

	cols := database.NewCollections(db)
	if err := cols.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Fatal("index creation failed")
	}

	// Stores and services.
	settingsTTL := config.GetEnvDuration("SETTINGS_CACHE_TTL", 60*time.Second)
	settings := services.NewSettingsService(database.NewSettingsStore(cols.Settings), settingsTTL, nil)
	catalog := database.NewCatalogStore(cols.Products)
	cartStore := database.NewCartStore(cols.Carts)
	carts := services.NewCartService(cartStore, catalog, settings, log)
	orders := services.NewOrderService(
		database.NewOrderStore(cols.Orders),
		cartStore,
		catalog,
		database.NewAddressStore(cols.Addresses),
		database.NewUserStore(cols.Users),
		database.NewSequence(cols.Counters),
		settings,
		log,
	)
	stats := services.NewStatsService(database.NewStatsStore(cols.Orders, cols.Users), nil)

	handlers := &routes.Handlers{
		Auth:       controllers.NewAuthController(cols.Users, jwtSecret, 72*time.Hour),
		Users:      controllers.NewUserController(cols.Users),
		Products:   controllers.NewProductController(cols.Products),
		Categories: controllers.NewCategoryController(cols.Categories),
		Locations:  controllers.NewLocationController(cols.Governorates, cols.Cities),
		Addresses:  controllers.NewAddressController(cols.Addresses),
		Reviews:    controllers.NewReviewController(cols.Reviews, cols.Products),
		Wishlist:   controllers.NewWishlistController(cols.Wishlists, cols.Products),
		Settings:   controllers.NewSettingsController(settings),
		Cart:       controllers.NewCartController(carts),
		Orders:     controllers.NewOrderController(orders),
		Stats:      controllers.NewStatsController(stats),
	}

	r := gin.Default()
	r.SetTrustedProxies(nil)
	r.Use(middleware.RequestLog(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.GetEnv("CORS_ORIGIN", "*")},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	routes.Register(r, handlers, jwtSecret)

	port := config.GetEnv("PORT", "8080")
	if err := r.Run(":" + port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
