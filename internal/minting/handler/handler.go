package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"truetrace/internal/minting"
	"truetrace/pkg/platform/httputil"
	"truetrace/pkg/requestcontext"
)

// Service mints supply chain tokens.
type Service interface {
	MintBatch(ctx context.Context, req minting.BatchRequest) (*minting.Result, error)
	MintCarton(ctx context.Context, req minting.CartonRequest) (*minting.Result, error)
	MintProduct(ctx context.Context, req minting.ProductRequest) (*minting.Result, error)
	Tokens(ctx context.Context, batchID string) ([]*minting.MintedToken, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the mint routes under /mint.
func (h *Handler) Register(r chi.Router) {
	r.Route("/mint", func(r chi.Router) {
		r.Post("/batch", h.HandleMintBatch)
		r.Post("/carton", h.HandleMintCarton)
		r.Post("/product", h.HandleMintProduct)
		r.Get("/tokens", h.HandleListTokens)
	})
}

type mintResponse struct {
	TokenID       string  `json:"tokenId"`
	Serials       []int64 `json:"serials"`
	TransactionID string  `json:"transactionId"`
	TopicID       string  `json:"topicId"`
}

type tokenResponse struct {
	TokenID       string    `json:"tokenId"`
	Kind          string    `json:"kind"`
	BatchID       string    `json:"batchId"`
	CartonID      string    `json:"cartonId,omitempty"`
	ProductID     string    `json:"productId,omitempty"`
	Serials       []int64   `json:"serials"`
	TransactionID string    `json:"transactionId"`
	MintedAt      time.Time `json:"mintedAt"`
}

func (h *Handler) HandleMintBatch(w http.ResponseWriter, r *http.Request) {
	handleMint(h, w, r, h.service.MintBatch)
}

func (h *Handler) HandleMintCarton(w http.ResponseWriter, r *http.Request) {
	handleMint(h, w, r, h.service.MintCarton)
}

func (h *Handler) HandleMintProduct(w http.ResponseWriter, r *http.Request) {
	handleMint(h, w, r, h.service.MintProduct)
}

func handleMint[T any](h *Handler, w http.ResponseWriter, r *http.Request, mint func(context.Context, T) (*minting.Result, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[T](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	res, err := mint(ctx, *req)
	if err != nil {
		h.logger.ErrorContext(ctx, "mint failed",
			"request_id", requestID,
			"path", r.URL.Path,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, mintResponse{
		TokenID:       res.TokenID,
		Serials:       res.Serials,
		TransactionID: res.TransactionID,
		TopicID:       res.TopicID,
	})
}

// HandleListTokens lists the collections minted for ?batchId=.
func (h *Handler) HandleListTokens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tokens, err := h.service.Tokens(ctx, strings.TrimSpace(r.URL.Query().Get("batchId")))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]tokenResponse, 0, len(tokens))
	for _, t := range tokens {
		out = append(out, tokenResponse{
			TokenID:       t.TokenID,
			Kind:          string(t.Kind),
			BatchID:       t.BatchID,
			CartonID:      t.CartonID,
			ProductID:     t.ProductID,
			Serials:       t.Serials,
			TransactionID: t.TransactionID,
			MintedAt:      t.MintedAt,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tokens": out})
}
