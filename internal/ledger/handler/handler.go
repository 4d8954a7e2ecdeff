package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"truetrace/internal/ledger"
	dErrors "truetrace/pkg/domain-errors"
	"truetrace/pkg/platform/httputil"
	"truetrace/pkg/requestcontext"
)

// TopicService creates and replaces the event topic.
type TopicService interface {
	Create(ctx context.Context) (string, error)
}

// RecordService looks up executed transactions.
type RecordService interface {
	TransactionRecord(ctx context.Context, transactionID string) (ledger.Record, error)
}

// Handler serves topic management and transaction lookups.
type Handler struct {
	topics  TopicService
	records RecordService
	logger  *slog.Logger
}

// New constructs a ledger handler.
func New(topics TopicService, records RecordService, logger *slog.Logger) *Handler {
	return &Handler{topics: topics, records: records, logger: logger}
}

// RegisterTopics mounts topic management. The router gates it to
// manufacturers.
func (h *Handler) RegisterTopics(r chi.Router) {
	r.Post("/create-topic", h.HandleCreateTopic)
}

// RegisterRecords mounts transaction lookups.
func (h *Handler) RegisterRecords(r chi.Router) {
	r.Get("/transactions/{transactionId}", h.HandleTransaction)
}

type createTopicResponse struct {
	TopicID string `json:"topicId"`
}

// HandleCreateTopic handles POST /api/create-topic.
func (h *Handler) HandleCreateTopic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	id, err := h.topics.Create(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create topic",
			"request_id", requestID,
			"account_id", requestcontext.AccountID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "topic created",
		"request_id", requestID,
		"topic_id", id,
	)
	httputil.WriteJSON(w, http.StatusOK, createTopicResponse{TopicID: id})
}

// HandleTransaction handles GET /api/transactions/{transactionId}.
func (h *Handler) HandleTransaction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	txID := strings.TrimSpace(chi.URLParam(r, "transactionId"))
	if txID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "transaction id is required"))
		return
	}

	rec, err := h.records.TransactionRecord(ctx, txID)
	if err != nil {
		h.logger.WarnContext(ctx, "transaction lookup failed",
			"request_id", requestID,
			"transaction_id", txID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}
