package bridge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"truetrace/internal/wallet"
)

type fakeSidecar struct {
	mu        sync.Mutex
	initBody  initRequest
	approved  approveRequest
	signed    signRequest
	deleted   atomic.Bool
	delivered atomic.Bool
}

func (f *fakeSidecar) router() http.Handler {
	r := chi.NewRouter()
	r.Post("/v1/clients", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		_ = json.NewDecoder(r.Body).Decode(&f.initBody)
		f.mu.Unlock()
		writeJSON(w, http.StatusCreated, initResponse{ClientID: "c1"})
	})
	r.Post("/v1/clients/{id}/connect", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, wallet.ConnectResult{URI: "wc:abc@2", PairingTopic: "pair-1"})
	})
	r.Post("/v1/clients/{id}/approve", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		_ = json.NewDecoder(r.Body).Decode(&f.approved)
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, wallet.Session{Topic: "session-1"})
	})
	r.Post("/v1/clients/{id}/request", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		_ = json.NewDecoder(r.Body).Decode(&f.signed)
		f.mu.Unlock()
		if f.signed.Topic == "dead" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session not found"})
			return
		}
		writeJSON(w, http.StatusOK, wallet.SignResponse{TransactionID: "0.0.5@1.2"})
	})
	r.Get("/v1/clients/{id}/events", func(w http.ResponseWriter, r *http.Request) {
		if f.delivered.CompareAndSwap(false, true) {
			writeJSON(w, http.StatusOK, eventsResponse{Events: []wallet.Notification{{
				Kind:         wallet.NotificationProposal,
				ProposalID:   "7",
				PairingTopic: "pair-1",
				Accounts:     []string{"hedera:testnet:0.0.6451900"},
			}}})
			return
		}
		select {
		case <-r.Context().Done():
		case <-time.After(50 * time.Millisecond):
		}
		writeJSON(w, http.StatusOK, eventsResponse{})
	})
	r.Delete("/v1/clients/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.deleted.Store(true)
		w.WriteHeader(http.StatusNoContent)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newProvider(t *testing.T, f *fakeSidecar) *Provider {
	t.Helper()
	srv := httptest.NewServer(f.router())
	t.Cleanup(srv.Close)
	p, err := NewProvider(srv.URL, "project-1", AppMetadata{Name: "TrueTrace"},
		WithHTTPClient(srv.Client()),
		WithPollTimeout(time.Second),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	require.NoError(t, err)
	return p
}

func TestBridgeClientLifecycle(t *testing.T) {
	f := &fakeSidecar{}
	p := newProvider(t, f)
	ctx := context.Background()

	client, err := p.Init(ctx, "wss://relay.walletconnect.com")
	require.NoError(t, err)

	f.mu.Lock()
	assert.Equal(t, "wss://relay.walletconnect.com", f.initBody.RelayURL)
	assert.Equal(t, "project-1", f.initBody.ProjectID)
	f.mu.Unlock()

	res, err := client.Connect(ctx, wallet.HederaNamespaces(wallet.ChainTestnet, nil))
	require.NoError(t, err)
	assert.Equal(t, "wc:abc@2", res.URI)
	assert.Nil(t, res.Session)

	select {
	case n := <-client.Notifications():
		assert.Equal(t, wallet.NotificationProposal, n.Kind)
		assert.Equal(t, "7", n.ProposalID)
	case <-time.After(2 * time.Second):
		t.Fatal("no notification delivered")
	}

	granted := wallet.HederaNamespaces(wallet.ChainTestnet, []string{"hedera:testnet:0.0.6451900"})
	sess, err := client.Approve(ctx, "7", granted)
	require.NoError(t, err)
	assert.Equal(t, "session-1", sess.Topic)

	resp, err := client.Request(ctx, sess.Topic, wallet.SignRequest{
		Chain:  wallet.ChainTestnet,
		Method: wallet.MethodSignAndExecuteTransaction,
		Params: json.RawMessage(`{"transaction":"0a0b"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "0.0.5@1.2", resp.TransactionID)

	f.mu.Lock()
	assert.Equal(t, "7", f.approved.ProposalID)
	assert.Equal(t, wallet.MethodSignAndExecuteTransaction, f.signed.Request.Method)
	assert.JSONEq(t, `{"transaction":"0a0b"}`, string(f.signed.Request.Params))
	f.mu.Unlock()

	require.NoError(t, client.Close())
	assert.True(t, f.deleted.Load())

	_, open := <-client.Notifications()
	assert.False(t, open)
}

func TestBridgeErrorResponse(t *testing.T) {
	p := newProvider(t, &fakeSidecar{})
	client, err := p.Init(context.Background(), "wss://relay.walletconnect.org")
	require.NoError(t, err)
	defer client.Close()

	_, err = client.Request(context.Background(), "dead", wallet.SignRequest{Method: wallet.MethodSignTransaction})
	var be *Error
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusBadRequest, be.Status)
	assert.Equal(t, "session not found", be.Message)
}

func TestNewProviderRejectsBadURL(t *testing.T) {
	_, err := NewProvider("not a url", "p", AppMetadata{})
	assert.Error(t, err)
}
