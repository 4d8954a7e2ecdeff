package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"truetrace/internal/feedback"
	"truetrace/pkg/platform/httputil"
	"truetrace/pkg/requestcontext"
)

// Service accepts feedback.
type Service interface {
	Submit(ctx context.Context, text string) (*feedback.Record, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/feedback", h.HandleSubmit)
}

type submitRequest struct {
	Feedback string `json:"feedback"`
}

type submitResponse struct {
	Message string `json:"message"`
}

// HandleSubmit handles POST /api/feedback.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[submitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if _, err := h.service.Submit(ctx, req.Feedback); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, submitResponse{Message: "Feedback submitted"})
}
