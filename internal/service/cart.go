package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/medigo/backend/internal/domain"
	"github.com/medigo/backend/internal/repository"
	apperrors "github.com/medigo/backend/pkg/errors"
)

// CartEventPublisher announces committed cart changes.
type CartEventPublisher interface {
	PublishCartUpdated(ctx context.Context, cart *domain.Cart) error
}

// AddItemInput holds the parameters for adding an item to the cart.
type AddItemInput struct {
	ProductID string
	Name      string
	Price     json.RawMessage
	Image     string
	Quantity  int
}

// maxMutationAttempts bounds how often a cart mutation is rerun after losing
// a version check to a concurrent writer.
const maxMutationAttempts = 10

// CartService implements the cart operations. It keeps no cart state of its
// own: every call re-reads the stored document.
type CartService struct {
	store    repository.CartStore
	locker   Locker
	events   CartEventPublisher
	logger   *slog.Logger
	lockWait time.Duration
	now      func() time.Time
}

// NewCartService creates a new cart service. lockWait bounds how long a
// mutation waits for the per-user lock; zero means wait for as long as the
// request context allows. events may be nil.
func NewCartService(store repository.CartStore, locker Locker, events CartEventPublisher, logger *slog.Logger, lockWait time.Duration) *CartService {
	return &CartService{
		store:    store,
		locker:   locker,
		events:   events,
		logger:   logger,
		lockWait: lockWait,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetItems returns the items in the user's cart, or an empty list when the
// user has no cart.
func (s *CartService) GetItems(ctx context.Context, userID string) (items []domain.CartItem, err error) {
	defer func() { recordOperation("get", err) }()

	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	cart, err := s.store.Fetch(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return []domain.CartItem{}, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart.CloneItems(), nil
}

// AddItem adds quantity units of a product to the user's cart, creating the
// cart on first use. An existing item with the same product ID is incremented
// and keeps its original attributes; otherwise the item is appended.
func (s *CartService) AddItem(ctx context.Context, userID string, input AddItemInput) (items []domain.CartItem, err error) {
	defer func() { recordOperation("add", err) }()

	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	productID, err := parseProductID(input.ProductID)
	if err != nil {
		return nil, err
	}
	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}
	if quantity > domain.MaxItemQuantity {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", domain.MaxItemQuantity))
	}

	attrs := domain.ItemAttributes{Name: input.Name, Price: input.Price, Image: input.Image}

	var cart *domain.Cart
	err = s.mutate(ctx, userID, func() error {
		cart = nil
		now := s.now()

		existing, err := s.store.Fetch(ctx, userID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("get cart: %w", err)
		}

		if existing == nil {
			created := domain.NewCart(userID, domain.NewCartItem(productID, attrs, quantity), now)
			err := s.store.Create(ctx, created)
			if err == nil {
				cart = created
				return nil
			}
			if !errors.Is(err, apperrors.ErrAlreadyExists) {
				return fmt.Errorf("create cart: %w", err)
			}

			// Another instance created the cart between our read and write.
			existing, err = s.store.Fetch(ctx, userID)
			if err != nil {
				return fmt.Errorf("get cart: %w", err)
			}
		}

		items := existing.CloneItems()
		if idx := existing.FindItemIndex(productID); idx >= 0 {
			combined := items[idx].Quantity + quantity
			if combined > domain.MaxItemQuantity {
				return apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", domain.MaxItemQuantity))
			}
			items[idx].Quantity = combined
		} else {
			items = append(items, domain.NewCartItem(productID, attrs, quantity))
		}

		if err := s.save(ctx, userID, existing, items, now); err != nil {
			return err
		}
		cart = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("user_id", userID),
		slog.String("product_id", productID.String()),
		slog.Int("quantity", quantity),
	)

	return cart.CloneItems(), nil
}

// SetQuantity overwrites the quantity of an item already in the cart. A
// quantity below 1 removes the item. A missing cart yields an empty list and
// a missing item leaves the cart untouched.
func (s *CartService) SetQuantity(ctx context.Context, userID, rawProductID string, quantity int) (items []domain.CartItem, err error) {
	defer func() { recordOperation("set_quantity", err) }()

	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	productID, err := parseProductID(rawProductID)
	if err != nil {
		return nil, err
	}
	if quantity > domain.MaxItemQuantity {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", domain.MaxItemQuantity))
	}

	var (
		cart    *domain.Cart
		changed bool
	)
	err = s.mutate(ctx, userID, func() error {
		cart, changed = nil, false
		existing, err := s.store.Fetch(ctx, userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("get cart: %w", err)
		}
		cart = existing

		idx := existing.FindItemIndex(productID)
		if idx < 0 {
			return nil
		}

		items := existing.CloneItems()
		if quantity < 1 {
			items = append(items[:idx], items[idx+1:]...)
		} else {
			items[idx].Quantity = quantity
		}

		if err := s.save(ctx, userID, existing, items, s.now()); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return []domain.CartItem{}, nil
	}

	if changed {
		s.publishUpdated(ctx, cart)
		s.logger.InfoContext(ctx, "cart item quantity updated",
			slog.String("user_id", userID),
			slog.String("product_id", productID.String()),
			slog.Int("quantity", quantity),
		)
	}

	return cart.CloneItems(), nil
}

// RemoveItem deletes an item from the user's cart. Removing an item that is
// not present still rewrites the cart, so repeated calls are harmless.
func (s *CartService) RemoveItem(ctx context.Context, userID, rawProductID string) (items []domain.CartItem, err error) {
	defer func() { recordOperation("remove", err) }()

	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	productID, err := parseProductID(rawProductID)
	if err != nil {
		return nil, err
	}

	var cart *domain.Cart
	err = s.mutate(ctx, userID, func() error {
		cart = nil
		existing, err := s.store.Fetch(ctx, userID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return fmt.Errorf("get cart: %w", err)
		}

		items := make([]domain.CartItem, 0, len(existing.Items))
		for _, item := range existing.Items {
			if item.ProductID != productID {
				items = append(items, item)
			}
		}

		if err := s.save(ctx, userID, existing, items, s.now()); err != nil {
			return err
		}
		cart = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return []domain.CartItem{}, nil
	}

	s.publishUpdated(ctx, cart)

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("user_id", userID),
		slog.String("product_id", productID.String()),
	)

	return cart.CloneItems(), nil
}

// mutate runs one read-modify-write cycle under the user's lock. The lock
// only serializes the common case; a cycle whose write loses the version
// check is rerun against the fresh document, up to maxMutationAttempts times.
func (s *CartService) mutate(ctx context.Context, userID string, cycle func() error) error {
	return s.withUserLock(ctx, userID, func() error {
		var err error
		for attempt := 1; attempt <= maxMutationAttempts; attempt++ {
			err = cycle()
			if !errors.Is(err, apperrors.ErrConflict) {
				return err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.DebugContext(ctx, "cart changed underneath, retrying",
				slog.String("user_id", userID),
				slog.Int("attempt", attempt),
			)
		}
		return err
	})
}

// save writes items over cart if cart is still the stored version and
// updates cart to match what was committed.
func (s *CartService) save(ctx context.Context, userID string, cart *domain.Cart, items []domain.CartItem, now time.Time) error {
	if err := s.store.ReplaceItems(ctx, userID, items, now, cart.Version); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	cart.Items = items
	cart.UpdatedAt = now
	cart.Version++
	return nil
}

// withUserLock runs fn while holding the lock for userID.
func (s *CartService) withUserLock(ctx context.Context, userID string, fn func() error) error {
	lockCtx := ctx
	if s.lockWait > 0 {
		var cancel context.CancelFunc
		lockCtx, cancel = context.WithTimeout(ctx, s.lockWait)
		defer cancel()
	}

	start := time.Now()
	unlock, err := s.locker.Lock(lockCtx, userID)
	CartLockWaitSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			s.logger.WarnContext(ctx, "timed out waiting for cart lock",
				slog.String("user_id", userID),
				slog.Duration("wait", s.lockWait),
			)
			return apperrors.ServiceUnavailable("cart is busy, please retry")
		}
		return fmt.Errorf("acquire cart lock: %w", err)
	}
	defer unlock()

	return fn()
}

func (s *CartService) publishUpdated(ctx context.Context, cart *domain.Cart) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishCartUpdated(ctx, cart); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish cart.updated event",
			slog.String("user_id", cart.UserID),
			slog.String("error", err.Error()),
		)
	}
}

func validateUserID(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.InvalidInput("userId is required")
	}
	return nil
}

func parseProductID(raw string) (domain.ProductID, error) {
	id, err := domain.ParseProductID(raw)
	if err != nil {
		return "", apperrors.InvalidInput("productId is required")
	}
	return id, nil
}
