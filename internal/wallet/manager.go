package wallet

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"truetrace/internal/wallet/metrics"
	"truetrace/pkg/domain"
	dErrors "truetrace/pkg/domain-errors"
	"truetrace/pkg/platform/sentinel"
)

// DefaultPairingTimeout bounds Pairing.Wait when no timeout is configured.
const DefaultPairingTimeout = 5 * time.Minute

const approveTimeout = 30 * time.Second

// Manager owns the relay connection, the notification watcher and the pending
// pairings. The active session itself lives in the SessionStore.
type Manager struct {
	provider       Provider
	store          SessionStore
	policy         RelayPolicy
	chain          string
	pairingTimeout time.Duration
	sleep          SleepFunc
	now            func() time.Time
	logger         *slog.Logger
	metrics        *metrics.Metrics

	// initMu serializes client creation so concurrent Begin calls share one
	// client per relay.
	initMu sync.Mutex

	mu        sync.Mutex
	client    Client
	relay     string
	stopWatch context.CancelFunc
	watchDone chan struct{}
	pending   map[*Pairing]struct{}
	closed    bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithPolicy sets the relay endpoints and retry behaviour.
func WithPolicy(p RelayPolicy) Option {
	return func(m *Manager) { m.policy = p }
}

// WithChain sets the chain requested and granted on pairing.
func WithChain(chain string) Option {
	return func(m *Manager) {
		if chain != "" {
			m.chain = chain
		}
	}
}

// WithPairingTimeout bounds how long Pairing.Wait suspends.
func WithPairingTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.pairingTimeout = d
		}
	}
}

// WithSleep replaces the retry delay implementation, for tests.
func WithSleep(sleep SleepFunc) Option {
	return func(m *Manager) { m.sleep = sleep }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithMetrics sets the metrics collector.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// NewManager creates a Manager. No relay is contacted until Begin.
func NewManager(provider Provider, store SessionStore, opts ...Option) (*Manager, error) {
	if provider == nil {
		return nil, errors.New("wallet provider is required")
	}
	if store == nil {
		return nil, errors.New("session store is required")
	}
	m := &Manager{
		provider:       provider,
		store:          store,
		policy:         DefaultRelayPolicy(),
		chain:          ChainTestnet,
		pairingTimeout: DefaultPairingTimeout,
		sleep:          SleepContext,
		now:            time.Now,
		logger:         slog.Default(),
		pending:        make(map[*Pairing]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.policy.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Chain returns the chain the manager pairs against.
func (m *Manager) Chain() string {
	return m.chain
}

// Begin runs the relay state machine and returns as soon as a pairing URI is
// available. The returned Pairing resolves when the wallet approves or when
// the session is deleted.
func (m *Manager) Begin(ctx context.Context) (*Pairing, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return nil, dErrors.New(dErrors.CodeCollaboratorUnavailable, "wallet manager is closed")
	}

	res, relay, err := runRelay(ctx, m.policy, m.sleep, m.attempt, m.observe)
	if err != nil {
		m.logger.ErrorContext(ctx, "wallet relay connection failed", "error", err)
		return nil, err
	}

	if res.Session != nil {
		sess := m.complete(*res.Session, relay, nil)
		if err := m.store.Save(ctx, sess); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeCollaboratorUnavailable, "failed to store wallet session")
		}
		m.metrics.SetSessionActive(true)
		m.metrics.IncrementPairing("paired")
		m.logger.InfoContext(ctx, "wallet session established",
			"relay", relay,
			"topic", sess.Topic,
			"accounts", len(sess.PairedAccounts),
		)
		return Resolved(res.URI, res.PairingTopic, sess, nil), nil
	}

	p := newPairing(res.URI, res.PairingTopic, m.pairingTimeout, m.forget)
	m.mu.Lock()
	m.pending[p] = struct{}{}
	m.mu.Unlock()
	m.logger.InfoContext(ctx, "wallet pairing started", "relay", relay, "pairing_topic", res.PairingTopic)
	return p, nil
}

// Connect is Begin followed by Wait.
func (m *Manager) Connect(ctx context.Context) (Session, error) {
	p, err := m.Begin(ctx)
	if err != nil {
		return Session{}, err
	}
	return p.Wait(ctx)
}

// ActiveSession returns the current session or NoWalletConnected.
func (m *Manager) ActiveSession(ctx context.Context) (Session, error) {
	sess, err := m.store.Current(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Session{}, dErrors.New(dErrors.CodeNoWalletConnected, "No wallet connected")
		}
		return Session{}, dErrors.Wrap(err, dErrors.CodeCollaboratorUnavailable, "failed to read wallet session")
	}
	return sess, nil
}

// IsPaired reports whether accountID belongs to the active session. No
// session is not an error here.
func (m *Manager) IsPaired(ctx context.Context, accountID domain.AccountID) (bool, error) {
	sess, err := m.ActiveSession(ctx)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNoWalletConnected) {
			return false, nil
		}
		return false, err
	}
	return sess.HasAccount(accountID), nil
}

// Request forwards req to the wallet over session. A session that was torn
// down since the caller read it, or any provider failure, is SubmissionFailed.
func (m *Manager) Request(ctx context.Context, session Session, req SignRequest) (SignResponse, error) {
	current, err := m.store.Current(ctx)
	if err != nil || current.Topic != session.Topic {
		m.metrics.IncrementSignRequest(false)
		return SignResponse{}, dErrors.Wrap(err, dErrors.CodeSubmissionFailed, "wallet session is no longer active")
	}

	m.mu.Lock()
	client := m.client
	m.mu.Unlock()
	if client == nil {
		m.metrics.IncrementSignRequest(false)
		return SignResponse{}, dErrors.New(dErrors.CodeSubmissionFailed, "wallet client is not connected")
	}
	if req.Chain == "" {
		req.Chain = m.chain
	}

	resp, err := client.Request(ctx, session.Topic, req)
	if err != nil {
		m.metrics.IncrementSignRequest(false)
		m.logger.ErrorContext(ctx, "wallet sign request failed",
			"method", req.Method,
			"topic", session.Topic,
			"error", err,
		)
		return SignResponse{}, dErrors.Wrap(err, dErrors.CodeSubmissionFailed, "wallet rejected or failed the request")
	}
	m.metrics.IncrementSignRequest(true)
	return resp, nil
}

// Close stops the watcher, closes the client and fails pending pairings.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	pending := m.takePendingLocked()
	m.mu.Unlock()

	for _, p := range pending {
		p.resolve(Session{}, dErrors.New(dErrors.CodeCollaboratorUnavailable, "wallet manager closed"))
	}
	return m.dropClient(nil)
}

// attempt is one TryingEndpoint step: make sure a client exists for endpoint,
// then ask it for a pairing.
func (m *Manager) attempt(ctx context.Context, endpoint string, _ int) (ConnectResult, error) {
	client, err := m.clientFor(ctx, endpoint)
	if err != nil {
		return ConnectResult{}, err
	}
	res, err := client.Connect(ctx, HederaNamespaces(m.chain, nil))
	if err != nil {
		_ = m.dropClient(client)
		return ConnectResult{}, err
	}
	return res, nil
}

func (m *Manager) observe(step relayStep) {
	m.metrics.IncrementRelayAttempt(step.Endpoint, step.Err == nil)
	if step.Err != nil {
		m.logger.Warn("wallet relay attempt failed",
			"relay", step.Endpoint,
			"attempt", step.Attempt,
			"next", step.Next.String(),
			"error", step.Err,
		)
	}
}

// clientFor reuses the current client when it is bound to endpoint and
// otherwise replaces it.
func (m *Manager) clientFor(ctx context.Context, endpoint string) (Client, error) {
	m.initMu.Lock()
	defer m.initMu.Unlock()

	m.mu.Lock()
	if m.client != nil && m.relay == endpoint {
		c := m.client
		m.mu.Unlock()
		return c, nil
	}
	m.mu.Unlock()

	if err := m.dropClient(nil); err != nil {
		m.logger.Warn("failed to close previous wallet client", "error", err)
	}

	client, err := m.provider.Init(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		cancel()
		_ = client.Close()
		return nil, dErrors.New(dErrors.CodeCollaboratorUnavailable, "wallet manager is closed")
	}
	m.client = client
	m.relay = endpoint
	m.stopWatch = cancel
	m.watchDone = done
	m.mu.Unlock()

	go m.watch(watchCtx, client, endpoint, done)
	return client, nil
}

// dropClient closes the current client if it is c, or unconditionally when c
// is nil, and waits for its watcher to exit.
func (m *Manager) dropClient(c Client) error {
	m.mu.Lock()
	if m.client == nil || (c != nil && m.client != c) {
		m.mu.Unlock()
		return nil
	}
	client, stop, done := m.client, m.stopWatch, m.watchDone
	m.client, m.relay, m.stopWatch, m.watchDone = nil, "", nil, nil
	m.mu.Unlock()

	stop()
	err := client.Close()
	<-done
	return err
}

// watch consumes the notification stream of one client.
func (m *Manager) watch(ctx context.Context, client Client, relay string, done chan struct{}) {
	defer close(done)
	notifications := client.Notifications()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notifications:
			if !ok {
				return
			}
			switch n.Kind {
			case NotificationProposal:
				m.onProposal(ctx, client, relay, n)
			case NotificationDeleted:
				m.onDeleted(ctx, n)
			default:
				m.logger.Debug("ignoring wallet notification", "kind", n.Kind)
			}
		}
	}
}

func (m *Manager) onProposal(ctx context.Context, client Client, relay string, n Notification) {
	approveCtx, cancel := context.WithTimeout(ctx, approveTimeout)
	defer cancel()

	accounts := ParseAccounts(n.Accounts)
	caip := make([]string, 0, len(accounts))
	for _, a := range accounts {
		caip = append(caip, a.CAIP(m.chain))
	}

	sess, err := client.Approve(approveCtx, n.ProposalID, HederaNamespaces(m.chain, caip))
	if err != nil {
		m.logger.Error("wallet session approval failed", "proposal_id", n.ProposalID, "error", err)
		m.metrics.IncrementPairing("failed")
		m.resolvePending(n.PairingTopic, Session{}, dErrors.Wrap(err, dErrors.CodeCollaboratorUnavailable, "wallet session approval failed"))
		return
	}

	sess = m.complete(sess, relay, accounts)
	if err := m.store.Save(approveCtx, sess); err != nil {
		m.logger.Error("failed to store wallet session", "topic", sess.Topic, "error", err)
		m.metrics.IncrementPairing("failed")
		m.resolvePending(n.PairingTopic, Session{}, dErrors.Wrap(err, dErrors.CodeCollaboratorUnavailable, "failed to store wallet session"))
		return
	}

	m.metrics.SetSessionActive(true)
	m.metrics.IncrementPairing("paired")
	m.logger.Info("wallet session established",
		"relay", relay,
		"topic", sess.Topic,
		"accounts", len(sess.PairedAccounts),
	)
	m.resolvePending(n.PairingTopic, sess, nil)
}

func (m *Manager) onDeleted(ctx context.Context, n Notification) {
	current, err := m.store.Current(ctx)
	switch {
	case err == nil && (n.Topic == "" || n.Topic == current.Topic):
		if cerr := m.store.Clear(ctx); cerr != nil {
			m.logger.Error("failed to clear wallet session", "topic", current.Topic, "error", cerr)
		} else {
			m.metrics.SetSessionActive(false)
			m.logger.Info("wallet session deleted", "topic", current.Topic)
		}
	case err != nil && !errors.Is(err, sentinel.ErrNotFound):
		m.logger.Error("failed to read wallet session on delete", "error", err)
	}

	// a stale topic only fails the pairing it names
	live := n.Topic == "" || (err == nil && n.Topic == current.Topic)
	m.mu.Lock()
	var pending []*Pairing
	if live {
		pending = m.takePendingLocked()
	} else {
		for p := range m.pending {
			if p.Topic == n.Topic {
				pending = append(pending, p)
				delete(m.pending, p)
			}
		}
	}
	m.mu.Unlock()
	for _, p := range pending {
		m.metrics.IncrementPairing("deleted")
		p.resolve(Session{}, dErrors.New(dErrors.CodeNoWalletConnected, "wallet session was deleted"))
	}
}

// complete fills the fields the provider may leave empty.
func (m *Manager) complete(sess Session, relay string, proposed []domain.AccountID) Session {
	if len(sess.PairedAccounts) == 0 {
		sess.PairedAccounts = proposed
	}
	if sess.Relay == "" {
		sess.Relay = relay
	}
	if sess.EstablishedAt.IsZero() {
		sess.EstablishedAt = m.now().UTC()
	}
	return sess
}

// resolvePending resolves the pairing for topic, or every pending pairing
// when the provider did not report a pairing topic.
func (m *Manager) resolvePending(topic string, sess Session, err error) {
	m.mu.Lock()
	var matched []*Pairing
	for p := range m.pending {
		if topic == "" || p.Topic == "" || p.Topic == topic {
			matched = append(matched, p)
			delete(m.pending, p)
		}
	}
	m.mu.Unlock()
	for _, p := range matched {
		p.resolve(sess, err)
	}
}

func (m *Manager) takePendingLocked() []*Pairing {
	out := make([]*Pairing, 0, len(m.pending))
	for p := range m.pending {
		out = append(out, p)
	}
	clear(m.pending)
	return out
}

// forget is called by a Pairing whose wait timed out.
func (m *Manager) forget(p *Pairing) {
	m.mu.Lock()
	_, ok := m.pending[p]
	delete(m.pending, p)
	m.mu.Unlock()
	if ok {
		m.metrics.IncrementPairing("timeout")
	}
}
