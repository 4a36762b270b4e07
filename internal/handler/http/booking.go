package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/medigo/backend/internal/domain"
	"github.com/medigo/backend/internal/service"
	"github.com/medigo/backend/pkg/httputil"
	"github.com/medigo/backend/pkg/validator"
)

// BookingService is the booking behaviour the handler depends on.
type BookingService interface {
	RequestConsultation(ctx context.Context, input service.ConsultationInput) (*domain.Consultation, error)
	BookLabTest(ctx context.Context, input service.LabBookingInput) (*domain.LabBooking, error)
}

// BookingHandler handles consultation and lab-test bookings.
type BookingHandler struct {
	service BookingService
	logger  *slog.Logger
}

// NewBookingHandler creates a new booking HTTP handler.
func NewBookingHandler(svc BookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{service: svc, logger: logger}
}

// ConsultationRequest is the JSON body of POST /consultation.
type ConsultationRequest struct {
	Name     string      `json:"name" validate:"required,max=200"`
	Age      json.Number `json:"age"`
	Gender   string      `json:"gender" validate:"max=32"`
	Symptoms string      `json:"symptoms" validate:"required,max=4000"`
	Date     string      `json:"date" validate:"max=64"`
	Time     string      `json:"time" validate:"max=64"`
}

// ConsultationResponse is returned after a consultation request is stored.
type ConsultationResponse struct {
	Message        string `json:"message"`
	ConsultationID string `json:"consultationId"`
}

// LabBookingRequest is the JSON body of POST /lab.
type LabBookingRequest struct {
	UserID     looseString         `json:"userId" validate:"required"`
	TestID     looseString         `json:"testId" validate:"required"`
	Name       string              `json:"name" validate:"max=200"`
	Price      decimal.NullDecimal `json:"price"`
	Fasting    looseString         `json:"fasting"`
	ReportTime string              `json:"reportTime" validate:"max=64"`
	Includes   []string            `json:"includes" validate:"max=100"`
	Quantity   json.Number         `json:"quantity"`
}

// LabBookingResponse is returned after a lab test is booked. testId carries
// the stored booking's ID, not the catalogue test ID from the request; older
// clients read it under that name.
type LabBookingResponse struct {
	Message   string `json:"message"`
	TestID    string `json:"testId"`
	BookingID string `json:"bookingId"`
}

// RequestConsultation handles POST /consultation.
func (h *BookingHandler) RequestConsultation(w http.ResponseWriter, r *http.Request) {
	var req ConsultationRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}
	age, err := optionalInt("age", req.Age)
	if err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	c, err := h.service.RequestConsultation(r.Context(), service.ConsultationInput{
		Name:     req.Name,
		Age:      age,
		Gender:   req.Gender,
		Symptoms: req.Symptoms,
		Date:     req.Date,
		Time:     req.Time,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ConsultationResponse{
		Message:        "Consultation request stored successfully",
		ConsultationID: c.ID,
	})
}

// BookLabTest handles POST /lab.
func (h *BookingHandler) BookLabTest(w http.ResponseWriter, r *http.Request) {
	var req LabBookingRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}
	quantity, err := optionalInt("quantity", req.Quantity)
	if err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	b, err := h.service.BookLabTest(r.Context(), service.LabBookingInput{
		UserID:     string(req.UserID),
		TestID:     string(req.TestID),
		Name:       req.Name,
		Price:      req.Price,
		Fasting:    string(req.Fasting),
		ReportTime: req.ReportTime,
		Includes:   req.Includes,
		Quantity:   quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, LabBookingResponse{
		Message:   "Lab test booked successfully",
		TestID:    b.ID,
		BookingID: b.ID,
	})
}
