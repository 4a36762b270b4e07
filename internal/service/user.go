package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medigo/backend/internal/domain"
	"github.com/medigo/backend/internal/repository"
	apperrors "github.com/medigo/backend/pkg/errors"
)

// UserEventPublisher announces new registrations.
type UserEventPublisher interface {
	PublishUserRegistered(ctx context.Context, user *domain.User) error
}

// RegisterInput holds the parameters for registering a user.
type RegisterInput struct {
	Name  string
	Email string
	Type  domain.UserType
}

// UserService registers users.
type UserService struct {
	repo   repository.UserRepository
	events UserEventPublisher
	logger *slog.Logger
	now    func() time.Time
}

// NewUserService creates a new user service. events may be nil.
func NewUserService(repo repository.UserRepository, events UserEventPublisher, logger *slog.Logger) *UserService {
	return &UserService{
		repo:   repo,
		events: events,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register stores a new user and publishes user.registered. A publish failure
// is logged and does not fail the registration.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if email == "" {
		return nil, apperrors.InvalidInput("email is required")
	}

	userType := input.Type
	switch userType {
	case "":
		userType = domain.UserTypeCustomer
	case domain.UserTypeCustomer, domain.UserTypeStore:
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf("type must be %q or %q", domain.UserTypeCustomer, domain.UserTypeStore))
	}

	user := &domain.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Type:      userType,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.events != nil {
		if err := s.events.PublishUserRegistered(ctx, user); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish user.registered event",
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID),
		slog.String("type", string(user.Type)),
	)

	return user, nil
}
