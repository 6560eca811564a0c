package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// POST /auth/guest
//
// Hands out an anonymous owner id so a visitor gets a cart before logging
// in. Real user authentication is an external concern; the cart service only
// verifies tokens it is given.
func CreateGuestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		guestID := "guest_" + uuid.NewString()
		c.JSON(http.StatusOK, gin.H{"guest_id": guestID})
	}
}
