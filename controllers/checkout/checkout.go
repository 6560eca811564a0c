package checkoutControllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	cartControllers "github.com/FranciscoImeroni/dionisio-cart-api/controllers/cart"
	"github.com/FranciscoImeroni/dionisio-cart-api/middleware"
	"github.com/FranciscoImeroni/dionisio-cart-api/models"
	"github.com/FranciscoImeroni/dionisio-cart-api/storage"
)

// ErrEmptyCart aborts a checkout before any network call is made.
var ErrEmptyCart = errors.New("cart is empty")

// SessionRequest is the body sent to the payment session endpoint.
type SessionRequest struct {
	CartItems []models.CheckoutItem `json:"cartItems"`
}

// SessionResponse represents the payment provider's reply: a hosted payment
// URL on success, an error message otherwise.
type SessionResponse struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// Dispatcher forwards cart contents to the external payment session endpoint
// and hands back the redirect URL. The cart itself is never cleared here:
// payment completion is the provider's business, so checkout stays retryable.
type Dispatcher struct {
	store  *cartControllers.Store
	kv     storage.Store
	client *http.Client
	apiURL string
}

func NewDispatcher(store *cartControllers.Store, kv storage.Store, client *http.Client, apiURL string) *Dispatcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Dispatcher{store: store, kv: kv, client: client, apiURL: apiURL}
}

// CreateSession reads the persisted cart and opens a payment session for it.
// On success the submitted items are snapshotted under the checkoutItems key
// so the post-payment page can show what was bought.
func (d *Dispatcher) CreateSession(ctx context.Context, owner string) (string, error) {
	cart, err := d.store.Load(ctx, owner)
	if err != nil {
		return "", err
	}
	if len(cart) == 0 {
		return "", ErrEmptyCart
	}

	items := models.CheckoutItemsFromCart(cart)
	payload, err := json.Marshal(SessionRequest{CartItems: items})
	if err != nil {
		return "", fmt.Errorf("serialize checkout payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.apiURL, bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("build checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach payment endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("payment endpoint error (%d): %s", resp.StatusCode, string(body))
	}

	var session SessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return "", fmt.Errorf("failed to parse payment response: %w", err)
	}
	if session.Error != "" {
		return "", fmt.Errorf("payment endpoint rejected checkout: %s", session.Error)
	}
	if session.URL == "" {
		return "", errors.New("payment endpoint returned empty redirect URL")
	}

	snapshot, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("serialize checkout snapshot: %w", err)
	}
	if err := d.kv.Set(ctx, owner, storage.KeyCheckoutItems, string(snapshot)); err != nil {
		return "", fmt.Errorf("persist checkout snapshot: %w", err)
	}

	return session.URL, nil
}

// POST /cart/checkout
//
// Transport failures are logged, never surfaced: no dialog body, a bare 502,
// the cart untouched so the user simply retries.
func CheckoutHandler(d *Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetString(middleware.OwnerKey)

		url, err := d.CreateSession(c.Request.Context(), owner)
		if err == ErrEmptyCart {
			log.Printf("checkout skipped for owner %s: cart is empty", owner)
			c.Status(http.StatusNoContent)
			return
		}
		if err != nil {
			log.Printf("checkout failed for owner %s: %v", owner, err)
			c.Status(http.StatusBadGateway)
			return
		}

		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}
