package repository

import (
	"context"
	"time"

	"github.com/medigo/backend/internal/domain"
)

// CartStore is keyed document storage holding one cart per user ID. It does
// not validate documents; the cart service owns the invariants.
type CartStore interface {
	// Fetch returns the cart for userID, or an error wrapping
	// apperrors.ErrNotFound when there is none.
	Fetch(ctx context.Context, userID string) (*domain.Cart, error)

	// Create stores a new cart. It never overwrites: if a cart already exists
	// for the user it fails with apperrors.ErrAlreadyExists.
	Create(ctx context.Context, cart *domain.Cart) error

	// ReplaceItems overwrites the item list and update timestamp of an
	// existing cart whose stored version equals expectedVersion, and bumps the
	// version by one. It fails with apperrors.ErrConflict when the stored
	// version differs, and with apperrors.ErrNotFound when there is no cart.
	// It never creates a cart.
	ReplaceItems(ctx context.Context, userID string, items []domain.CartItem, updatedAt time.Time, expectedVersion int64) error
}

// UserRepository persists registered users.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
}

// ConsultationRepository persists consultation requests.
type ConsultationRepository interface {
	Create(ctx context.Context, c *domain.Consultation) error
}

// LabBookingRepository persists lab-test bookings.
type LabBookingRepository interface {
	Create(ctx context.Context, b *domain.LabBooking) error
}
