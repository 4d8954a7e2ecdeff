package testutil

import (
	"context"
	"net/http"
	"time"

	"truetrace/pkg/domain"
	"truetrace/pkg/requestcontext"
)

// WithActor adds the authenticated account and role to the request context.
// This simulates what the auth middleware would do for authenticated requests.
// A malformed account id or unknown role is not added.
func WithActor(req *http.Request, accountID string, role domain.Role) *http.Request {
	parsed, err := domain.ParseAccountID(accountID)
	if err != nil || !role.IsValid() {
		return req
	}
	return req.WithContext(requestcontext.WithActor(req.Context(), parsed, role))
}

// WithRequestTime pins the request time used by workflows.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
