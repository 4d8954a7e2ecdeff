package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"truetrace/internal/auth/models"
	dErrors "truetrace/pkg/domain-errors"
	"truetrace/pkg/platform/httputil"
	"truetrace/pkg/requestcontext"
)

// Service connects wallets and issues access tokens.
type Service interface {
	ConnectWallet(ctx context.Context) (*models.ConnectResult, error)
	WalletPaired(ctx context.Context, accountID string) (*models.TokenResult, error)
}

// Handler serves the wallet pairing endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an auth handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the auth routes. Neither route requires a token.
func (h *Handler) Register(r chi.Router) {
	r.Get("/connect-wallet", h.HandleConnectWallet)
	r.Post("/wallet-paired", h.HandleWalletPaired)
}

type connectWalletResponse struct {
	PairingURI string `json:"pairingUri"`
}

type walletPairedRequest struct {
	AccountID string `json:"accountId"`
}

// Validate trims the account id and requires it.
func (r *walletPairedRequest) Validate() error {
	r.AccountID = strings.TrimSpace(r.AccountID)
	if r.AccountID == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid or unpaired account")
	}
	return nil
}

type walletPairedResponse struct {
	Token     string `json:"token"`
	Role      string `json:"role"`
	AccountID string `json:"accountId"`
}

// HandleConnectWallet handles GET /api/connect-wallet.
func (h *Handler) HandleConnectWallet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	res, err := h.service.ConnectWallet(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to initialize wallet connection",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, connectWalletResponse{PairingURI: res.PairingURI})
}

// HandleWalletPaired handles POST /api/wallet-paired.
func (h *Handler) HandleWalletPaired(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[walletPairedRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	res, err := h.service.WalletPaired(ctx, req.AccountID)
	if err != nil {
		h.logger.WarnContext(ctx, "wallet pairing confirmation rejected",
			"request_id", requestID,
			"account_id", req.AccountID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, walletPairedResponse{
		Token:     res.Token,
		Role:      res.Role.String(),
		AccountID: res.AccountID.String(),
	})
}
