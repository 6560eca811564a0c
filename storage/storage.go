// Package storage provides the persistent key-value backing for cart state.
// It mirrors browser local storage: string keys, string values, scoped to an
// owner (an authenticated user id or a guest id).
package storage

import "context"

// Well-known keys used by the cart page.
const (
	KeyCart          = "cart"          // serialized cart line-item sequence
	KeyCheckoutItems = "checkoutItems" // snapshot of items sent to checkout
)

// Store is the injectable persistence interface. Implementations must treat
// each Set as a full rewrite of the value under (owner, key).
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, owner, key string) (string, bool, error)
	// Set stores value under (owner, key), replacing any previous value.
	Set(ctx context.Context, owner, key, value string) error
	// Delete removes (owner, key). Deleting an absent key is not an error.
	Delete(ctx context.Context, owner, key string) error
}
