package orderControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	cartControllers "github.com/FranciscoImeroni/dionisio-cart-api/controllers/cart"
	"github.com/FranciscoImeroni/dionisio-cart-api/middleware"
	"github.com/FranciscoImeroni/dionisio-cart-api/models"
	"github.com/FranciscoImeroni/dionisio-cart-api/storage"
)

// ErrEmptyCart rejects an order submission before any network call is made.
var ErrEmptyCart = errors.New("cart is empty")

// CreateOrderRequest is the body sent to the order-creation endpoint. The
// order is bound to the authenticated user's identifier.
type CreateOrderRequest struct {
	UserID   string             `json:"userId"`
	OrderRef string             `json:"orderRef"`
	Items    []models.OrderItem `json:"items"`
}

// Result is what a successful submission hands back to the page.
type Result struct {
	OrderRef string `json:"orderRef"`
}

// Dispatcher submits direct orders to the external order-creation endpoint.
// On success the cart is cleared; on failure it is left untouched so the user
// can re-submit. Rapid repeated submissions for the same user coalesce into a
// single in-flight request, so a double click cannot place two orders.
type Dispatcher struct {
	store  *cartControllers.Store
	kv     storage.Store
	client *http.Client
	apiURL string
	group  singleflight.Group
	hub    *Hub
}

func NewDispatcher(store *cartControllers.Store, kv storage.Store, client *http.Client, apiURL string, hub *Hub) *Dispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Dispatcher{store: store, kv: kv, client: client, apiURL: apiURL, hub: hub}
}

// Generate unique order reference
func generateOrderRef() string {
	return time.Now().Format("20060102150405") + "-" + uuid.NewString()
}

// Submit places an order for the user's current cart.
func (d *Dispatcher) Submit(ctx context.Context, userID string) (Result, error) {
	// The flight is shared: a coalesced duplicate must not fail because the
	// caller who started it disconnected, so the flight detaches from the
	// triggering request and relies on the client timeout instead.
	flightCtx := context.WithoutCancel(ctx)
	result, err, _ := d.group.Do(userID, func() (interface{}, error) {
		return d.submit(flightCtx, userID)
	})
	if err != nil {
		return Result{}, err
	}
	return result.(Result), nil
}

func (d *Dispatcher) submit(ctx context.Context, userID string) (Result, error) {
	cart, err := d.store.Load(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if len(cart) == 0 {
		return Result{}, ErrEmptyCart
	}

	order := CreateOrderRequest{
		UserID:   userID,
		OrderRef: generateOrderRef(),
		Items:    models.OrderItemsFromCart(cart),
	}
	payload, err := json.Marshal(order)
	if err != nil {
		return Result{}, fmt.Errorf("serialize order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return Result{}, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("failed to reach order endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("order endpoint error (%d): %s", resp.StatusCode, string(body))
	}

	if err := d.store.Clear(ctx, userID); err != nil {
		// The order went through; a stale cart is recoverable, losing the
		// order is not.
		log.Printf("order %s placed but cart for user %s not cleared: %v", order.OrderRef, userID, err)
	}

	// A pending checkout snapshot no longer reflects anything purchasable.
	if err := d.kv.Delete(ctx, userID, storage.KeyCheckoutItems); err != nil {
		log.Printf("stale checkout snapshot for user %s not removed: %v", userID, err)
	}

	d.hub.BroadcastOrder(order)

	return Result{OrderRef: order.OrderRef}, nil
}

// -------- Handlers --------

// POST /orders/place
func PlaceOrderHandler(d *Dispatcher, landingRoute string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(middleware.UserIDKey)
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "User identifier unavailable"})
			return
		}

		result, err := d.Submit(c.Request.Context(), userID)
		if err == ErrEmptyCart {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
			return
		}
		if err != nil {
			log.Printf("order submission failed for user %s: %v", userID, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Order could not be placed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":  "Order placed successfully",
			"orderRef": result.OrderRef,
			"redirect": landingRoute,
		})
	}
}
