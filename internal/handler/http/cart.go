package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/medigo/backend/internal/domain"
	"github.com/medigo/backend/internal/service"
	"github.com/medigo/backend/pkg/httputil"
	"github.com/medigo/backend/pkg/validator"
)

// CartService is the cart behaviour the handler depends on.
type CartService interface {
	GetItems(ctx context.Context, userID string) ([]domain.CartItem, error)
	AddItem(ctx context.Context, userID string, input service.AddItemInput) ([]domain.CartItem, error)
	SetQuantity(ctx context.Context, userID, productID string, quantity int) ([]domain.CartItem, error)
	RemoveItem(ctx context.Context, userID, productID string) ([]domain.CartItem, error)
}

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// AddItemRequest is the JSON body of POST /cart/add. productId may be a
// number or a string; quantity may be a number or a numeric string. price is
// passed through untouched.
type AddItemRequest struct {
	UserID    string           `json:"userId"`
	ProductID domain.ProductID `json:"productId"`
	Name      string           `json:"name"`
	Price     json.RawMessage  `json:"price"`
	Image     string           `json:"image"`
	Quantity  json.RawMessage  `json:"quantity"`
}

// SetQuantityRequest is the JSON body of PUT /cart. quantity must be a JSON
// number.
type SetQuantityRequest struct {
	UserID    string           `json:"userId"`
	ProductID domain.ProductID `json:"productId"`
	Quantity  json.RawMessage  `json:"quantity"`
}

// ItemsResponse is the body returned by every cart endpoint.
type ItemsResponse struct {
	Items []domain.CartItem `json:"items"`
}

// GetItems handles GET /cart/{userId}.
func (h *CartHandler) GetItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.GetItems(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	writeItems(w, items)
}

// AddItem handles POST /cart/add.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := validator.Decode(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	items, err := h.service.AddItem(r.Context(), req.UserID, service.AddItemInput{
		ProductID: req.ProductID.String(),
		Name:      req.Name,
		Price:     req.Price,
		Image:     req.Image,
		Quantity:  domain.CoerceQuantity(req.Quantity),
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	writeItems(w, items)
}

// SetQuantity handles PUT /cart.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := validator.Decode(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	quantity, err := domain.ParseQuantity(req.Quantity)
	if err != nil {
		httputil.WriteValidationError(w, r, errors.New("invalid input: quantity must be a number"))
		return
	}

	items, err := h.service.SetQuantity(r.Context(), req.UserID, req.ProductID.String(), quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	writeItems(w, items)
}

// RemoveItem handles DELETE /cart/remove/{userId}/{productId}.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.RemoveItem(r.Context(), chi.URLParam(r, "userId"), chi.URLParam(r, "productId"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	writeItems(w, items)
}

func writeItems(w http.ResponseWriter, items []domain.CartItem) {
	if items == nil {
		items = []domain.CartItem{}
	}
	httputil.WriteJSON(w, http.StatusOK, ItemsResponse{Items: items})
}
