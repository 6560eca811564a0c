package routes

import (
	"github.com/gin-gonic/gin"

	cartControllers "github.com/FranciscoImeroni/dionisio-cart-api/controllers/cart"
	checkoutControllers "github.com/FranciscoImeroni/dionisio-cart-api/controllers/checkout"
	"github.com/FranciscoImeroni/dionisio-cart-api/middleware"
)

// SetupCartRoutes registers all "/cart/*" endpoints. Works for authenticated
// users and guests alike; the owner middleware sorts out who is who.
func SetupCartRoutes(r *gin.Engine, deps Deps) {
	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.ResolveOwner(deps.Config.JWTSecret))
	{
		cartGroup.GET("/", cartControllers.GetCart(deps.Cart))                      // GET /cart
		cartGroup.POST("/", cartControllers.PutCartItem(deps.Cart))                 // POST /cart
		cartGroup.PATCH("/quantity", cartControllers.ChangeQuantity(deps.Cart))     // PATCH /cart/quantity
		cartGroup.DELETE("/:product_id", cartControllers.RemoveCartItem(deps.Cart)) // DELETE /cart/:product_id
		cartGroup.DELETE("/", cartControllers.ClearCart(deps.Cart))                 // DELETE /cart

		// Checkout rides on the same owner resolution as the cart it reads.
		cartGroup.POST("/checkout", checkoutControllers.CheckoutHandler(deps.Checkout)) // POST /cart/checkout
	}
}
