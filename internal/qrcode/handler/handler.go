package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"truetrace/internal/identity"
	"truetrace/internal/qrcode/models"
	"truetrace/pkg/domain"
	"truetrace/pkg/platform/httputil"
	"truetrace/pkg/requestcontext"
)

// Service runs the registration and verification workflows.
type Service interface {
	Register(ctx context.Context, id identity.ProductIdentity, actor domain.AccountID, role domain.Role) (*models.RegistrationResult, error)
	Verify(ctx context.Context, id identity.ProductIdentity, actor domain.AccountID, role domain.Role) (*models.VerificationResult, error)
	History(ctx context.Context, id identity.ProductIdentity) ([]*models.VerificationRecord, error)
}

// Handler serves the product registration and verification endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a qrcode handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the routes without role gates; the router wraps them.
func (h *Handler) Register(r chi.Router) {
	r.Post("/register", h.HandleRegister)
	r.Post("/verify", h.HandleVerify)
	r.Get("/verifications", h.HandleHistory)
}

// HandleRegister handles POST /api/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[productRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.Register(ctx, req.identity(), requestcontext.AccountID(ctx), requestcontext.Role(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "registration rejected",
			"request_id", requestID,
			"account_id", requestcontext.AccountID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toRegisterResponse(res))
}

// HandleVerify handles POST /api/verify.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[productRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.Verify(ctx, req.identity(), requestcontext.AccountID(ctx), requestcontext.Role(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "verification rejected",
			"request_id", requestID,
			"account_id", requestcontext.AccountID(ctx),
			"role", requestcontext.Role(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVerifyResponse(res))
}

// HandleHistory handles GET /api/verifications.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	id := identity.ProductIdentity{
		BatchID:   q.Get("batchId"),
		CartonID:  q.Get("cartonId"),
		ProductID: q.Get("productId"),
	}.Normalize()

	records, err := h.service.History(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "verification history lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toHistoryResponse(id.SubjectKey(), records))
}
