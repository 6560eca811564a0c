package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by the middleware below.
const (
	// OwnerKey holds the storage owner id: the authenticated user's subject
	// or a guest id.
	OwnerKey = "owner"
	// UserIDKey holds the authenticated user id (the token's sub claim).
	UserIDKey = "user_id"
)

func parseToken(tokenString, secret string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}
	return claims.GetSubject()
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// RequireUser guards routes that need an authenticated user. Requests without
// a valid token get 401 and the login route to redirect to; a valid token
// without a subject claim is rejected too, since orders must be bound to a
// user identifier.
func RequireUser(secret, loginRoute string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing", "redirect": loginRoute})
			c.Abort()
			return
		}

		sub, err := parseToken(tokenString, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "redirect": loginRoute})
			c.Abort()
			return
		}
		if sub == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has no user identifier", "redirect": loginRoute})
			c.Abort()
			return
		}

		c.Set(UserIDKey, sub)
		c.Set(OwnerKey, sub)
		c.Next()
	}
}

// ResolveOwner identifies the cart owner for routes that work for guests as
// well: a valid bearer token wins, otherwise an X-Guest-ID header or guest_id
// query parameter is accepted.
func ResolveOwner(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			sub, err := parseToken(tokenString, secret)
			if err != nil || sub == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				c.Abort()
				return
			}
			c.Set(UserIDKey, sub)
			c.Set(OwnerKey, sub)
			c.Next()
			return
		}

		guestID := c.GetHeader("X-Guest-ID")
		if guestID == "" {
			guestID = c.Query("guest_id")
		}
		if guestID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "guest_id is required"})
			c.Abort()
			return
		}

		c.Set(OwnerKey, guestID)
		c.Next()
	}
}
