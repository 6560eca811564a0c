package orderControllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartControllers "github.com/FranciscoImeroni/dionisio-cart-api/controllers/cart"
	"github.com/FranciscoImeroni/dionisio-cart-api/middleware"
	"github.com/FranciscoImeroni/dionisio-cart-api/models"
	"github.com/FranciscoImeroni/dionisio-cart-api/storage"
)

const userID = "auth0|user-1"

func seededStore(t *testing.T, items ...models.CartLineItem) (*cartControllers.Store, storage.Store) {
	t.Helper()

	kv := storage.NewMemory()
	store := cartControllers.NewStore(kv)
	for _, item := range items {
		_, err := store.Put(t.Context(), userID, item)
		require.NoError(t, err)
	}
	return store, kv
}

func lineItem(id string, price float64, quantity, stock int) models.CartLineItem {
	return models.CartLineItem{
		ProductID: id,
		Name:      "Product " + id,
		Price:     decimal.NewFromFloat(price),
		Quantity:  quantity,
		Stock:     stock,
	}
}

func TestSubmitSuccessClearsCart(t *testing.T) {
	store, kv := seededStore(t, lineItem("A", 5, 2, 5), lineItem("B", 3, 1, 2))

	var got CreateOrderRequest
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer endpoint.Close()

	d := NewDispatcher(store, kv, endpoint.Client(), endpoint.URL, nil)

	result, err := d.Submit(t.Context(), userID)
	require.NoError(t, err)
	assert.NotEmpty(t, result.OrderRef)

	// order is bound to the user and carries (productId, quantity) pairs
	assert.Equal(t, userID, got.UserID)
	require.Len(t, got.Items, 2)
	assert.Equal(t, models.OrderItem{ProductID: "A", Quantity: 2}, got.Items[0])
	assert.Equal(t, models.OrderItem{ProductID: "B", Quantity: 1}, got.Items[1])

	cart, err := store.Load(t.Context(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart, "cart must be cleared after a successful order")
	assert.True(t, cart.Total().IsZero())
}

func TestSubmitSuccessRemovesStaleCheckoutSnapshot(t *testing.T) {
	store, kv := seededStore(t, lineItem("A", 5, 2, 5))
	require.NoError(t, kv.Set(t.Context(), userID, storage.KeyCheckoutItems, `[{"productId":"A"}]`))

	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer endpoint.Close()

	d := NewDispatcher(store, kv, endpoint.Client(), endpoint.URL, nil)

	_, err := d.Submit(t.Context(), userID)
	require.NoError(t, err)

	_, ok, err := kv.Get(t.Context(), userID, storage.KeyCheckoutItems)
	require.NoError(t, err)
	assert.False(t, ok, "a pending checkout snapshot must not outlive the order")
}

func TestSubmitFailureKeepsCart(t *testing.T) {
	store, kv := seededStore(t, lineItem("A", 5, 2, 5))
	require.NoError(t, kv.Set(t.Context(), userID, storage.KeyCheckoutItems, `[{"productId":"A"}]`))

	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of stock", http.StatusConflict)
	}))
	defer endpoint.Close()

	d := NewDispatcher(store, kv, endpoint.Client(), endpoint.URL, nil)

	_, err := d.Submit(t.Context(), userID)
	require.Error(t, err)

	cart, err := store.Load(t.Context(), userID)
	require.NoError(t, err)
	assert.Len(t, cart, 1, "failed submission must leave the cart unchanged")

	_, ok, err := kv.Get(t.Context(), userID, storage.KeyCheckoutItems)
	require.NoError(t, err)
	assert.True(t, ok, "failed submission must not touch the checkout snapshot")
}

func TestSubmitEmptyCartMakesNoRequest(t *testing.T) {
	kv := storage.NewMemory()
	store := cartControllers.NewStore(kv)

	var calls atomic.Int32
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer endpoint.Close()

	d := NewDispatcher(store, kv, endpoint.Client(), endpoint.URL, nil)

	_, err := d.Submit(t.Context(), userID)
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, calls.Load())
}

func TestSubmitSurvivesCallerDisconnect(t *testing.T) {
	store, kv := seededStore(t, lineItem("A", 10, 1, 1))

	started := make(chan struct{})
	release := make(chan struct{})
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.WriteHeader(http.StatusCreated)
	}))
	defer endpoint.Close()

	d := NewDispatcher(store, kv, endpoint.Client(), endpoint.URL, nil)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan struct{})
	var result Result
	var err error
	go func() {
		defer close(done)
		result, err = d.Submit(ctx, userID)
	}()

	// drop the triggering request while the flight is in progress
	<-started
	cancel()
	time.Sleep(50 * time.Millisecond) // let the cancellation propagate
	close(release)
	<-done

	require.NoError(t, err, "an in-flight order must not die with its caller")
	assert.NotEmpty(t, result.OrderRef)

	cart, err := store.Load(t.Context(), userID)
	require.NoError(t, err)
	assert.Empty(t, cart)
}

func TestDuplicateSubmissionsCoalesce(t *testing.T) {
	store, kv := seededStore(t, lineItem("A", 10, 1, 1))

	var calls atomic.Int32
	var once sync.Once
	started := make(chan struct{})
	release := make(chan struct{})
	endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		once.Do(func() { close(started) })
		<-release
		w.WriteHeader(http.StatusCreated)
	}))
	defer endpoint.Close()

	d := NewDispatcher(store, kv, endpoint.Client(), endpoint.URL, nil)

	var wg sync.WaitGroup
	results := make([]Result, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i == 1 {
				<-started // join while the first request is in flight
				time.Sleep(50 * time.Millisecond)
			}
			results[i], errs[i] = d.Submit(t.Context(), userID)
		}()
	}

	go func() {
		<-started
		time.Sleep(100 * time.Millisecond)
		close(release)
	}()
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.Equal(t, int32(1), calls.Load(), "a double click must not place two orders")
	assert.Equal(t, results[0].OrderRef, results[1].OrderRef)
}

func TestPlaceOrderHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(d *Dispatcher, user string) *gin.Engine {
		r := gin.New()
		r.POST("/orders/place", func(c *gin.Context) {
			if user != "" {
				c.Set(middleware.UserIDKey, user)
			}
		}, PlaceOrderHandler(d, "/thanks"))
		return r
	}

	t.Run("success responds with acknowledgment and landing redirect", func(t *testing.T) {
		store, kv := seededStore(t, lineItem("A", 10, 1, 1))
		endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		}))
		defer endpoint.Close()

		d := NewDispatcher(store, kv, endpoint.Client(), endpoint.URL, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders/place", nil)
		newRouter(d, userID).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Order placed successfully", body["message"])
		assert.Equal(t, "/thanks", body["redirect"])
		assert.NotEmpty(t, body["orderRef"])
	})

	t.Run("failure responds with error and keeps cart", func(t *testing.T) {
		store, kv := seededStore(t, lineItem("A", 10, 1, 1))
		endpoint := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusInternalServerError)
		}))
		defer endpoint.Close()

		d := NewDispatcher(store, kv, endpoint.Client(), endpoint.URL, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders/place", nil)
		newRouter(d, userID).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)

		cart, err := store.Load(t.Context(), userID)
		require.NoError(t, err)
		assert.Len(t, cart, 1)
	})

	t.Run("missing user identifier is rejected", func(t *testing.T) {
		store, kv := seededStore(t, lineItem("A", 10, 1, 1))
		d := NewDispatcher(store, kv, nil, "http://unused.invalid", nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/orders/place", nil)
		newRouter(d, "").ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
