package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/FranciscoImeroni/dionisio-cart-api/config"
	cartControllers "github.com/FranciscoImeroni/dionisio-cart-api/controllers/cart"
	checkoutControllers "github.com/FranciscoImeroni/dionisio-cart-api/controllers/checkout"
	orderControllers "github.com/FranciscoImeroni/dionisio-cart-api/controllers/order"
	"github.com/FranciscoImeroni/dionisio-cart-api/routes"
	"github.com/FranciscoImeroni/dionisio-cart-api/storage"
)

func main() {
	log.Println("✅ Starting cart service...")

	// Load environment variables
	_ = godotenv.Load()
	cfg := config.Load()

	// Init storage backend
	kv := initStorage(cfg)

	// Core components
	cartStore := cartControllers.NewStore(kv)
	client := &http.Client{Timeout: cfg.ClientTimeout}
	hub := orderControllers.NewHub()

	deps := routes.Deps{
		Config:   cfg,
		Cart:     cartStore,
		Checkout: checkoutControllers.NewDispatcher(cartStore, kv, client, cfg.CheckoutAPIURL),
		Orders:   orderControllers.NewDispatcher(cartStore, kv, client, cfg.OrderAPIURL, hub),
		Hub:      hub,
	}

	// Gin setup
	r := gin.Default()

	// CORS settings: the storefront calls this API from the browser
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY", "X-Guest-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	routes.SetupRoutes(r, deps)

	// Start server
	log.Printf("🚀 Server running on port %s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

// initStorage picks the key-value backend from config.
func initStorage(cfg config.Config) storage.Store {
	switch cfg.StorageDriver {
	case "postgres":
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			log.Fatalf("❌ DB connection failed: %v", err)
		}
		kv, err := storage.NewGorm(db)
		if err != nil {
			log.Fatalf("❌ AutoMigrate failed: %v", err)
		}
		return kv
	case "file":
		kv, err := storage.NewFile(cfg.StorageDir)
		if err != nil {
			log.Fatalf("❌ Storage dir init failed: %v", err)
		}
		return kv
	default:
		return storage.NewMemory()
	}
}
