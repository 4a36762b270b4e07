package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/medigo/backend/pkg/httputil"
	"github.com/medigo/backend/pkg/logger"
	"github.com/medigo/backend/pkg/validator"
)

// chatFailureReply is sent when the advice model cannot be reached.
const chatFailureReply = "Sorry, I couldn’t process your request."

// Advisor produces advice text for a symptom description.
type Advisor interface {
	Advise(ctx context.Context, symptoms string) (string, error)
}

// ChatHandler relays chat messages to the advice model.
type ChatHandler struct {
	advisor Advisor
	logger  *slog.Logger
}

// NewChatHandler creates a new chat HTTP handler.
func NewChatHandler(advisor Advisor, logger *slog.Logger) *ChatHandler {
	return &ChatHandler{advisor: advisor, logger: logger}
}

// ChatRequest is the JSON body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// ChatResponse carries the model's reply, or a fixed apology on failure.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// Chat handles POST /api/chat. Upstream failures are answered with 500 and a
// reply the chat widget can show as is.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	reply, err := h.advisor.Advise(r.Context(), req.Message)
	if err != nil {
		l := logger.FromContext(r.Context())
		if l == slog.Default() {
			l = h.logger
		}
		l.ErrorContext(r.Context(), "advice request failed", slog.String("error", err.Error()))
		httputil.WriteJSON(w, http.StatusInternalServerError, ChatResponse{Reply: chatFailureReply})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ChatResponse{Reply: reply})
}
