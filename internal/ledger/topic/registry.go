// Package topic tracks the consensus topic events are written to.
package topic

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	dErrors "truetrace/pkg/domain-errors"
)

// DefaultMemo labels topics created by this service.
const DefaultMemo = "TrueTrace Nigeria Supply Chain"

// Creator creates topics on the ledger.
type Creator interface {
	CreateTopic(ctx context.Context, memo string, withSubmitKey bool) (string, error)
}

// Registry holds the current topic. Creating a topic replaces it.
type Registry struct {
	creator Creator
	memo    string
	logger  *slog.Logger

	mu      sync.RWMutex
	current string
}

// NewRegistry returns a registry starting at initial, which may be empty.
func NewRegistry(creator Creator, memo, initial string, logger *slog.Logger) (*Registry, error) {
	if creator == nil {
		return nil, errors.New("topic creator is required")
	}
	if memo == "" {
		memo = DefaultMemo
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{creator: creator, memo: memo, logger: logger, current: initial}, nil
}

// Current returns the active topic id.
func (r *Registry) Current(_ context.Context) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == "" {
		return "", dErrors.New(dErrors.CodeCollaboratorUnavailable, "no topic configured")
	}
	return r.current, nil
}

// Create creates a topic with the operator submit key and makes it current.
func (r *Registry) Create(ctx context.Context) (string, error) {
	id, err := r.creator.CreateTopic(ctx, r.memo, true)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	previous := r.current
	r.current = id
	r.mu.Unlock()
	r.logger.InfoContext(ctx, "topic created", "topic_id", id, "previous_topic_id", previous)
	return id, nil
}

// Bootstrap creates a topic when none is configured.
func (r *Registry) Bootstrap(ctx context.Context) (string, error) {
	if id, err := r.Current(ctx); err == nil {
		return id, nil
	}
	return r.Create(ctx)
}
