package routes

import (
	"github.com/gin-gonic/gin"

	orderControllers "github.com/FranciscoImeroni/dionisio-cart-api/controllers/order"
	"github.com/FranciscoImeroni/dionisio-cart-api/middleware"
)

// SetupOrderRoutes registers the direct-order endpoints. Placing an order
// requires an authenticated user.
func SetupOrderRoutes(r *gin.Engine, deps Deps) {
	orders := r.Group("/orders")
	{
		// Create a new order for the authenticated user's cart
		orders.POST("/place",
			middleware.RequireUser(deps.Config.JWTSecret, deps.Config.LoginRoute),
			orderControllers.PlaceOrderHandler(deps.Orders, deps.Config.LandingRoute),
		)

		// websocket endpoint for real-time order updates
		orders.GET("/ws", orderControllers.OrderWebSocketHandler(deps.Hub))
	}
}
