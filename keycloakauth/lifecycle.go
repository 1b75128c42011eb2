package keycloakauth

import (
	"context"
	"errors"
	"time"

	"github.com/harscoet/go-keycloakauth/credential"
)

// TokenSource produces fresh credentials. keycloakclient.Client is the
// production implementation; tests substitute fakes.
//
// FetchToken is expected to perform its own transient-failure retries and
// timeouts. The lifecycle never retries a failed fetch itself beyond what the
// next readiness probe triggers naturally.
type TokenSource interface {
	FetchToken(ctx context.Context) (*credential.Credential, error)
}

// ErrNoCredential is returned when a request is stamped before any readiness
// probe has reported ready, so no credential has been fetched yet.
var ErrNoCredential = errors.New("keycloakauth: no credential available, call Ready first")

type lifecycleState int

const (
	stateNotFetched lifecycleState = iota
	stateFetching
	stateRefetching
	stateFetched
)

func (s lifecycleState) String() string {
	switch s {
	case stateNotFetched:
		return "NotFetched"
	case stateFetching:
		return "Fetching"
	case stateRefetching:
		return "Refetching"
	case stateFetched:
		return "Fetched"
	default:
		return "Unknown"
	}
}

// fetchOperation is one in-flight token fetch. The goroutine writes cred/err
// exactly once and then closes done; after done is closed the fields are
// immutable and safe to read from any goroutine.
type fetchOperation struct {
	cancel context.CancelFunc
	done   chan struct{}

	cred *credential.Credential
	err  error
}

func startFetch(ctx context.Context, source TokenSource) *fetchOperation {
	// The fetch outlives any single caller: keep the values of the caller's
	// context but detach from its cancellation.
	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	op := &fetchOperation{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(op.done)
		op.cred, op.err = source.FetchToken(fetchCtx)
	}()

	return op
}

// completed checks the operation without blocking.
func (op *fetchOperation) completed() bool {
	select {
	case <-op.done:
		return true
	default:
		return false
	}
}

// lifecycle is the credential state machine. It is not safe for concurrent
// use on its own; Handle guards it with a reader/writer lock.
//
// cred holds the current credential in stateFetched and the still-usable
// previous credential in stateRefetching. op is non-nil exactly in
// stateFetching and stateRefetching, and at most one operation is ever in
// flight.
type lifecycle struct {
	state  lifecycleState
	op     *fetchOperation
	cred   *credential.Credential
	source TokenSource
	now    func() time.Time
	logger Logger
}

// advance is the sole mutating entry point. It drives the state machine one
// poll step and reports readiness: (false, nil) while a fetch is pending,
// (true, nil) once a valid credential is installed, (false, err) when a fetch
// failed. It never blocks on network I/O.
func (l *lifecycle) advance(ctx context.Context) (bool, error) {
	for {
		switch l.state {
		case stateNotFetched:
			l.op = startFetch(ctx, l.source)
			l.state = stateFetching

		case stateFetching, stateRefetching:
			if !l.op.completed() {
				return false, nil
			}

			op := l.op
			l.op = nil
			op.cancel()

			if op.err != nil {
				// Reset so the next probe starts a clean fetch instead of
				// re-polling a finished operation.
				l.state = stateNotFetched
				l.cred = nil
				if l.logger != nil {
					l.logger.Printf("keycloakauth: token fetch failed: %v", op.err)
				}
				return false, op.err
			}

			if l.logger != nil {
				if l.state == stateRefetching {
					l.logger.Printf("keycloakauth: refreshed access token (expires: %s)", op.cred.ExpiresAt().Format(time.RFC3339))
				} else {
					l.logger.Printf("keycloakauth: obtained new access token (expires: %s)", op.cred.ExpiresAt().Format(time.RFC3339))
				}
			}
			l.cred = op.cred
			l.state = stateFetched
			return true, nil

		case stateFetched:
			if !l.cred.IsExpired(l.now()) {
				return true, nil
			}
			// The expiring credential stays usable for stamping while the
			// refresh is in flight.
			l.op = startFetch(ctx, l.source)
			l.state = stateRefetching
		}
	}
}

// peekCredential returns the credential requests must be stamped with: the
// current one while fetched, the previous one while a refresh is in flight.
func (l *lifecycle) peekCredential() (*credential.Credential, error) {
	switch l.state {
	case stateFetched, stateRefetching:
		return l.cred, nil
	default:
		return nil, ErrNoCredential
	}
}

// canSkipAdvance reports whether a readiness probe can succeed without taking
// exclusive access: only a fetched, unexpired credential qualifies.
func (l *lifecycle) canSkipAdvance() bool {
	return l.state == stateFetched && !l.cred.IsExpired(l.now())
}

// inFlight returns the done channel of the pending operation, or nil when no
// fetch is in flight.
func (l *lifecycle) inFlight() <-chan struct{} {
	if l.op == nil {
		return nil
	}
	return l.op.done
}
