package wallet

import "context"

// Provider opens wallet protocol clients against a relay endpoint.
type Provider interface {
	Init(ctx context.Context, relayURL string) (Client, error)
}

// Client is a wallet protocol client bound to one relay.
type Client interface {
	Connect(ctx context.Context, requested Namespaces) (ConnectResult, error)
	Approve(ctx context.Context, proposalID string, granted Namespaces) (Session, error)
	Request(ctx context.Context, sessionTopic string, req SignRequest) (SignResponse, error)
	// Notifications is closed when the client is closed.
	Notifications() <-chan Notification
	Close() error
}

// SessionStore holds the process wide active session. Current returns
// sentinel.ErrNotFound when no session is active.
type SessionStore interface {
	Current(ctx context.Context) (Session, error)
	Save(ctx context.Context, session Session) error
	Clear(ctx context.Context) error
}
