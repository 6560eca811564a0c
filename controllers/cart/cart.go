package cartControllers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FranciscoImeroni/dionisio-cart-api/middleware"
	"github.com/FranciscoImeroni/dionisio-cart-api/models"
	"github.com/FranciscoImeroni/dionisio-cart-api/storage"
)

// Store owns the persisted cart state for every owner. All mutations load the
// serialized cart, apply the change in memory and rewrite the full sequence,
// so the persisted form is never partially written.
type Store struct {
	kv storage.Store
}

func NewStore(kv storage.Store) *Store {
	return &Store{kv: kv}
}

// Load reads the owner's cart from persistence. An absent or malformed
// payload yields an empty cart, never an error: a broken document must not
// take the cart page down.
func (s *Store) Load(ctx context.Context, owner string) (models.Cart, error) {
	raw, ok, err := s.kv.Get(ctx, owner, storage.KeyCart)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if !ok || raw == "" {
		return models.Cart{}, nil
	}

	var cart models.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		log.Printf("malformed cart for owner %s, treating as empty: %v", owner, err)
		return models.Cart{}, nil
	}
	return cart, nil
}

func (s *Store) save(ctx context.Context, owner string, cart models.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("serialize cart: %w", err)
	}
	if err := s.kv.Set(ctx, owner, storage.KeyCart, string(raw)); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	return nil
}

// Put seeds or replaces a line item. An existing product id keeps its place
// in the sequence and takes the new quantity under the stock guard; a new id
// is appended.
func (s *Store) Put(ctx context.Context, owner string, item models.CartLineItem) (models.Cart, error) {
	cart, err := s.Load(ctx, owner)
	if err != nil {
		return nil, err
	}

	quantity, err := item.CheckQuantity(item.Quantity)
	if err != nil {
		return cart, err
	}
	item.Quantity = quantity

	if i, ok := cart.Find(item.ProductID); ok {
		cart[i] = item
	} else {
		cart = append(cart, item)
	}

	if err := s.save(ctx, owner, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// SetQuantity applies a delta to a line item's quantity. A result above the
// stock ceiling rejects the whole change with models.ErrStockExceeded; a
// result below one is clamped to one. Unknown product ids are a no-op.
func (s *Store) SetQuantity(ctx context.Context, owner, productID string, delta int) (models.Cart, error) {
	cart, err := s.Load(ctx, owner)
	if err != nil {
		return nil, err
	}

	i, ok := cart.Find(productID)
	if !ok {
		return cart, nil
	}

	quantity, err := cart[i].CheckQuantity(cart[i].Quantity + delta)
	if err != nil {
		return cart, err
	}
	cart[i].Quantity = quantity

	if err := s.save(ctx, owner, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Remove filters the matching line item out. Removing an id that is not in
// the cart is a no-op, not an error.
func (s *Store) Remove(ctx context.Context, owner, productID string) (models.Cart, error) {
	cart, err := s.Load(ctx, owner)
	if err != nil {
		return nil, err
	}

	kept := cart[:0]
	for _, item := range cart {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	if len(kept) == len(cart) {
		return cart, nil
	}
	cart = kept

	if err := s.save(ctx, owner, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the owner's cart. Used after a successful order submission.
func (s *Store) Clear(ctx context.Context, owner string) error {
	return s.save(ctx, owner, models.Cart{})
}

// -------- Handlers --------

type QuantityInput struct {
	ProductID string `json:"productId" binding:"required"`
	Delta     int    `json:"delta" binding:"required"`
}

func cartResponse(cart models.Cart) gin.H {
	return gin.H{"items": cart, "total": cart.Total()}
}

// GET /cart
func GetCart(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString(middleware.OwnerKey)

		cart, err := store.Load(c.Request.Context(), owner)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

// POST /cart
func PutCartItem(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString(middleware.OwnerKey)

		var input models.CartLineItem
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		cart, err := store.Put(c.Request.Context(), owner, input)
		if err == models.ErrStockExceeded {
			c.JSON(http.StatusConflict, gin.H{"warning": stockWarning(input.Name, input.Stock)})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

// PATCH /cart/quantity
func ChangeQuantity(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString(middleware.OwnerKey)

		var input QuantityInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}

		cart, err := store.SetQuantity(c.Request.Context(), owner, input.ProductID, input.Delta)
		if err == models.ErrStockExceeded {
			name, stock := input.ProductID, 0
			if i, ok := cart.Find(input.ProductID); ok {
				name, stock = cart[i].Name, cart[i].Stock
			}
			c.JSON(http.StatusConflict, gin.H{"warning": stockWarning(name, stock)})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update quantity"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

// DELETE /cart/:product_id
func RemoveCartItem(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString(middleware.OwnerKey)
		productID := c.Param("product_id")

		cart, err := store.Remove(c.Request.Context(), owner, productID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

// DELETE /cart
func ClearCart(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString(middleware.OwnerKey)

		if err := store.Clear(c.Request.Context(), owner); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// GET /admin/cart/:owner
func GetOwnerCart(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.Param("owner")
		if owner == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "owner is required"})
			return
		}

		cart, err := store.Load(c.Request.Context(), owner)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
			return
		}
		c.JSON(http.StatusOK, cartResponse(cart))
	}
}

func stockWarning(name string, stock int) string {
	return fmt.Sprintf("Only %d of %s in stock", stock, name)
}
