package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medigo/backend/internal/domain"
	apperrors "github.com/medigo/backend/pkg/errors"
)

const (
	keyPrefix = "cart:"

	// maxReplaceAttempts bounds the WATCH/MULTI retry loop in ReplaceItems.
	maxReplaceAttempts = 5
)

// CartStore implements repository.CartStore with one JSON document per user
// stored under cart:{userID}. Documents never expire.
type CartStore struct {
	client redis.UniversalClient
}

// NewCartStore creates a Redis-backed cart store.
func NewCartStore(client redis.UniversalClient) *CartStore {
	return &CartStore{client: client}
}

func cartKey(userID string) string {
	return keyPrefix + userID
}

// Fetch retrieves the cart for userID. Stored product IDs are canonicalized
// on decode and any duplicate or empty lines left by older writers are merged
// or dropped.
func (s *CartStore) Fetch(ctx context.Context, userID string) (*domain.Cart, error) {
	data, err := s.client.Get(ctx, cartKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("cart", userID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}
	return decodeCart(userID, data)
}

// Create stores a new cart document. It fails with AlreadyExists rather than
// overwrite a cart written by a concurrent caller.
func (s *CartStore) Create(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	created, err := s.client.SetNX(ctx, cartKey(cart.UserID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("redis setnx cart: %w", err)
	}
	if !created {
		return apperrors.AlreadyExists("cart", "userId", cart.UserID)
	}
	return nil
}

// ReplaceItems swaps the item list and updatedAt of an existing document if
// its version still equals expectedVersion, and writes version+1. The read
// and write run under WATCH so a rewrite racing with the transaction aborts
// it; the retry then sees the bumped version and reports a conflict.
func (s *CartStore) ReplaceItems(ctx context.Context, userID string, items []domain.CartItem, updatedAt time.Time, expectedVersion int64) error {
	key := cartKey(userID)

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return apperrors.NotFound("cart", userID)
			}
			return fmt.Errorf("redis get cart: %w", err)
		}

		cart, err := decodeCart(userID, data)
		if err != nil {
			return err
		}
		if cart.Version != expectedVersion {
			return apperrors.Conflict(fmt.Sprintf("cart version is %d, expected %d", cart.Version, expectedVersion))
		}
		cart.Items = items
		if cart.Items == nil {
			cart.Items = []domain.CartItem{}
		}
		cart.UpdatedAt = updatedAt
		cart.Version = expectedVersion + 1

		updated, err := json.Marshal(cart)
		if err != nil {
			return fmt.Errorf("marshal cart: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxReplaceAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		return fmt.Errorf("redis replace cart items: %w", err)
	}

	return apperrors.Conflict("cart was modified concurrently, please retry")
}

// Ping reports whether the underlying Redis connection is healthy.
func (s *CartStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func decodeCart(userID string, data []byte) (*domain.Cart, error) {
	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	if cart.UserID == "" {
		cart.UserID = userID
	}
	cart.Normalize()
	return &cart, nil
}
