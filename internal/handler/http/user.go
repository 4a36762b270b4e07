package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/medigo/backend/internal/domain"
	"github.com/medigo/backend/internal/service"
	"github.com/medigo/backend/pkg/httputil"
	"github.com/medigo/backend/pkg/validator"
)

// UserService is the registration behaviour the handler depends on.
type UserService interface {
	Register(ctx context.Context, input service.RegisterInput) (*domain.User, error)
}

// UserHandler handles user registration.
type UserHandler struct {
	service UserService
	logger  *slog.Logger
}

// NewUserHandler creates a new user HTTP handler.
func NewUserHandler(svc UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{service: svc, logger: logger}
}

// RegisterRequest is the JSON body of POST /login.
type RegisterRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"required,email,max=320"`
	Type  string `json:"type" validate:"omitempty,oneof=user store"`
}

// RegisterResponse is returned after a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// Register handles POST /login.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	user, err := h.service.Register(r.Context(), service.RegisterInput{
		Name:  req.Name,
		Email: req.Email,
		Type:  domain.UserType(req.Type),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, RegisterResponse{
		Message: "User inserted successfully",
		UserID:  user.ID,
	})
}
