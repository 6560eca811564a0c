package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/FranciscoImeroni/dionisio-cart-api/auth"
	"github.com/FranciscoImeroni/dionisio-cart-api/config"
	cartControllers "github.com/FranciscoImeroni/dionisio-cart-api/controllers/cart"
	checkoutControllers "github.com/FranciscoImeroni/dionisio-cart-api/controllers/checkout"
	orderControllers "github.com/FranciscoImeroni/dionisio-cart-api/controllers/order"
	"github.com/FranciscoImeroni/dionisio-cart-api/middleware"
)

// Deps bundles everything the route groups need.
type Deps struct {
	Config   config.Config
	Cart     *cartControllers.Store
	Checkout *checkoutControllers.Dispatcher
	Orders   *orderControllers.Dispatcher
	Hub      *orderControllers.Hub
}

// SetupRoutes is the single entry-point that wires up the cart, checkout,
// order and admin route groups.
func SetupRoutes(r *gin.Engine, deps Deps) {
	// Public: hand out guest ids so visitors get a cart before login
	r.POST("/auth/guest", auth.CreateGuestID())

	SetupCartRoutes(r, deps)
	SetupOrderRoutes(r, deps)

	// Admin routes (API-key-protected)
	admin := r.Group("/admin")
	admin.Use(middleware.ValidateAPIKey(deps.Config.AdminAPIKey))
	{
		admin.GET("/cart/:owner", cartControllers.GetOwnerCart(deps.Cart)) // GET /admin/cart/:owner
	}
}
