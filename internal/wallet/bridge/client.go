// Package bridge talks to a WalletConnect sign-client sidecar over HTTP. The
// sidecar owns the relay socket; this side only sees JSON.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"truetrace/internal/wallet"
)

const (
	defaultPollTimeout = 25 * time.Second
	pollBackoff        = time.Second
)

// AppMetadata describes this application to the wallet.
type AppMetadata struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Icons       []string `json:"icons"`
}

// Provider creates sidecar clients.
type Provider struct {
	baseURL     string
	projectID   string
	metadata    AppMetadata
	httpClient  *http.Client
	pollTimeout time.Duration
	logger      *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Provider) { p.httpClient = c }
}

// WithPollTimeout sets the long-poll window for events.
func WithPollTimeout(d time.Duration) Option {
	return func(p *Provider) {
		if d > 0 {
			p.pollTimeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

// NewProvider builds a Provider for the sidecar at baseURL.
func NewProvider(baseURL, projectID string, metadata AppMetadata, opts ...Option) (*Provider, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid bridge url: %w", err)
	}
	p := &Provider{
		baseURL:     strings.TrimRight(baseURL, "/"),
		projectID:   projectID,
		metadata:    metadata,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		pollTimeout: defaultPollTimeout,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

type initRequest struct {
	RelayURL  string      `json:"relayUrl"`
	ProjectID string      `json:"projectId"`
	Metadata  AppMetadata `json:"metadata"`
}

type initResponse struct {
	ClientID string `json:"clientId"`
}

// Init registers a sign client on the sidecar bound to relayURL and starts
// polling its events.
func (p *Provider) Init(ctx context.Context, relayURL string) (wallet.Client, error) {
	var resp initResponse
	err := p.do(ctx, http.MethodPost, "/v1/clients", initRequest{
		RelayURL:  relayURL,
		ProjectID: p.projectID,
		Metadata:  p.metadata,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.ClientID == "" {
		return nil, errors.New("bridge returned an empty client id")
	}

	pollCtx, cancel := context.WithCancel(context.Background())
	c := &Client{
		p:      p,
		id:     resp.ClientID,
		notes:  make(chan wallet.Notification, 16),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go c.poll(pollCtx)
	return c, nil
}

// Client is one sidecar sign client.
type Client struct {
	p      *Provider
	id     string
	notes  chan wallet.Notification
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

type connectRequest struct {
	RequiredNamespaces wallet.Namespaces `json:"requiredNamespaces"`
}

func (c *Client) Connect(ctx context.Context, requested wallet.Namespaces) (wallet.ConnectResult, error) {
	var res wallet.ConnectResult
	err := c.p.do(ctx, http.MethodPost, c.path("connect"), connectRequest{RequiredNamespaces: requested}, &res)
	return res, err
}

type approveRequest struct {
	ProposalID string            `json:"proposalId"`
	Namespaces wallet.Namespaces `json:"namespaces"`
}

func (c *Client) Approve(ctx context.Context, proposalID string, granted wallet.Namespaces) (wallet.Session, error) {
	var sess wallet.Session
	err := c.p.do(ctx, http.MethodPost, c.path("approve"), approveRequest{ProposalID: proposalID, Namespaces: granted}, &sess)
	return sess, err
}

type signRequest struct {
	Topic   string `json:"topic"`
	ChainID string `json:"chainId"`
	Request struct {
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	} `json:"request"`
}

func (c *Client) Request(ctx context.Context, topic string, req wallet.SignRequest) (wallet.SignResponse, error) {
	body := signRequest{Topic: topic, ChainID: req.Chain}
	body.Request.Method = req.Method
	body.Request.Params = req.Params

	var resp wallet.SignResponse
	err := c.p.do(ctx, http.MethodPost, c.path("request"), body, &resp)
	return resp, err
}

func (c *Client) Notifications() <-chan wallet.Notification {
	return c.notes
}

// Close stops polling and deletes the sidecar client.
func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		c.cancel()
		<-c.done
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = c.p.do(ctx, http.MethodDelete, "/v1/clients/"+url.PathEscape(c.id), nil, nil)
	})
	return err
}

func (c *Client) path(action string) string {
	return "/v1/clients/" + url.PathEscape(c.id) + "/" + action
}

type eventsResponse struct {
	Events []wallet.Notification `json:"events"`
}

// poll long-polls the events endpoint until ctx is cancelled.
func (c *Client) poll(ctx context.Context) {
	defer close(c.done)
	defer close(c.notes)

	path := fmt.Sprintf("%s?timeout=%ds", c.path("events"), int(c.p.pollTimeout.Seconds()))
	for {
		var resp eventsResponse
		err := c.p.do(ctx, http.MethodGet, path, nil, &resp)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.p.logger.Warn("bridge event poll failed", "client_id", c.id, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollBackoff):
			}
			continue
		}
		for _, n := range resp.Events {
			select {
			case c.notes <- n:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Error is a non 2xx reply from the sidecar.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("bridge returned %d: %s", e.Status, e.Message)
}

func (p *Provider) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode bridge request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build bridge request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bridge %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &Error{Status: resp.StatusCode, Message: msg}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode bridge response: %w", err)
	}
	return nil
}
