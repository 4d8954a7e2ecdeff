package wallet

import (
	"context"
	"sync"
	"time"

	dErrors "truetrace/pkg/domain-errors"
)

// Pairing is a connect in progress. URI is shown to the user as a QR code or
// deep link; Wait blocks until the wallet approves.
type Pairing struct {
	URI   string
	Topic string

	timeout   time.Duration
	onAbandon func(*Pairing)

	once    sync.Once
	done    chan struct{}
	session Session
	err     error
}

func newPairing(uri, topic string, timeout time.Duration, onAbandon func(*Pairing)) *Pairing {
	return &Pairing{
		URI:       uri,
		Topic:     topic,
		timeout:   timeout,
		onAbandon: onAbandon,
		done:      make(chan struct{}),
	}
}

// Resolved returns a pairing that has already settled with sess or err.
func Resolved(uri, topic string, sess Session, err error) *Pairing {
	p := newPairing(uri, topic, 0, nil)
	p.resolve(sess, err)
	return p
}

func (p *Pairing) resolve(sess Session, err error) {
	p.once.Do(func() {
		p.session, p.err = sess, err
		close(p.done)
	})
}

// Done is closed once the pairing resolved.
func (p *Pairing) Done() <-chan struct{} {
	return p.done
}

// Wait returns the approved session. It fails with PairingTimeout once the
// configured timeout elapses and the pairing is abandoned.
func (p *Pairing) Wait(ctx context.Context) (Session, error) {
	// resolved pairings win over an expired timer
	select {
	case <-p.done:
		return p.session, p.err
	default:
	}

	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return p.session, p.err
	case <-timer.C:
		p.abandon()
		p.resolve(Session{}, dErrors.New(dErrors.CodePairingTimeout, "timed out waiting for wallet pairing"))
		return p.session, p.err
	case <-ctx.Done():
		return Session{}, dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "pairing wait cancelled")
	}
}

func (p *Pairing) abandon() {
	if p.onAbandon != nil {
		p.onAbandon(p)
	}
}
