package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/medigo/backend/internal/domain"
	"github.com/medigo/backend/internal/repository"
	apperrors "github.com/medigo/backend/pkg/errors"
)

// ConsultationInput holds the parameters for requesting a consultation.
type ConsultationInput struct {
	Name     string
	Age      int
	Gender   string
	Symptoms string
	Date     string
	Time     string
}

// LabBookingInput holds the parameters for booking a lab test.
type LabBookingInput struct {
	UserID     string
	TestID     string
	Name       string
	Price      decimal.NullDecimal
	Fasting    string
	ReportTime string
	Includes   []string
	Quantity   int
}

// BookingService records consultation requests and lab-test bookings.
type BookingService struct {
	consultations repository.ConsultationRepository
	labs          repository.LabBookingRepository
	logger        *slog.Logger
	now           func() time.Time
}

// NewBookingService creates a new booking service.
func NewBookingService(consultations repository.ConsultationRepository, labs repository.LabBookingRepository, logger *slog.Logger) *BookingService {
	return &BookingService{
		consultations: consultations,
		labs:          labs,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RequestConsultation stores a consultation request stamped with the
// submission time.
func (s *BookingService) RequestConsultation(ctx context.Context, input ConsultationInput) (*domain.Consultation, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if strings.TrimSpace(input.Symptoms) == "" {
		return nil, apperrors.InvalidInput("symptoms are required")
	}
	if input.Age < 0 {
		return nil, apperrors.InvalidInput("age must not be negative")
	}

	c := &domain.Consultation{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(input.Name),
		Age:         input.Age,
		Gender:      input.Gender,
		Symptoms:    input.Symptoms,
		Date:        input.Date,
		Time:        input.Time,
		SubmittedAt: s.now(),
	}

	if err := s.consultations.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create consultation: %w", err)
	}

	s.logger.InfoContext(ctx, "consultation requested",
		slog.String("consultation_id", c.ID),
		slog.String("date", c.Date),
	)

	return c, nil
}

// BookLabTest stores a lab-test booking. A missing or non-positive quantity
// books a single test.
func (s *BookingService) BookLabTest(ctx context.Context, input LabBookingInput) (*domain.LabBooking, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, apperrors.InvalidInput("userId is required")
	}
	if strings.TrimSpace(input.TestID) == "" {
		return nil, apperrors.InvalidInput("testId is required")
	}
	if input.Price.Valid && input.Price.Decimal.IsNegative() {
		return nil, apperrors.InvalidInput("price must not be negative")
	}

	quantity := input.Quantity
	if quantity < 1 {
		quantity = 1
	}
	includes := input.Includes
	if includes == nil {
		includes = []string{}
	}

	b := &domain.LabBooking{
		ID:         uuid.NewString(),
		UserID:     input.UserID,
		TestID:     input.TestID,
		Name:       input.Name,
		Price:      input.Price,
		Fasting:    input.Fasting,
		ReportTime: input.ReportTime,
		Includes:   includes,
		Quantity:   quantity,
		CreatedAt:  s.now(),
	}

	if err := s.labs.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create lab booking: %w", err)
	}

	s.logger.InfoContext(ctx, "lab test booked",
		slog.String("booking_id", b.ID),
		slog.String("user_id", b.UserID),
		slog.String("test_id", b.TestID),
		slog.Int("quantity", b.Quantity),
	)

	return b, nil
}
