// Package session keeps track of the report request currently running for each browser session. Starting a new
// request supersedes the previous one: its context is cancelled and its result is no longer published.
package session

import (
	"context"
	"sync"
	"sync/atomic"

	"codeberg.org/gruf/go-mutexes"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/tootwrapped/internal/domain"
)

// Token is the generation marker of one request. It is only valid for the session it was issued to.
type Token struct {
	ID         string
	Session    string
	ctx        context.Context
	cancel     context.CancelFunc
	superseded atomic.Bool
}

// Context is cancelled when the token is superseded or ended.
func (t *Token) Context() context.Context {
	return t.ctx
}

func (t *Token) Superseded() bool {
	return t.superseded.Load()
}

type Tracker struct {
	mu      sync.Mutex
	current map[string]*Token
	locks   *mutexes.MutexMap
}

func NewTracker() *Tracker {
	locks := mutexes.MutexMap{}
	return &Tracker{
		current: make(map[string]*Token),
		locks:   &locks,
	}
}

// Begin issues a new token for session, cancelling the one it replaces. The token's context derives from ctx.
func (t *Tracker) Begin(ctx context.Context, session string) *Token {
	unlock := t.locks.Lock(session)
	defer unlock()

	tctx, cancel := context.WithCancel(ctx)
	tok := &Token{
		ID:      uuid.NewString(),
		Session: session,
		ctx:     tctx,
		cancel:  cancel,
	}

	t.mu.Lock()
	prev := t.current[session]
	t.current[session] = tok
	t.mu.Unlock()

	if prev != nil {
		prev.superseded.Store(true)
		prev.cancel()
		log.Debug().Str("session", session).Str("superseded", prev.ID).Str("token", tok.ID).Msg("request superseded")
	}

	return tok
}

// Commit runs fn only if tok is still the current token of its session. No Begin for the same session can
// interleave with fn. A superseded token yields a cancelled error and fn is not called.
func (t *Tracker) Commit(tok *Token, fn func() error) error {
	unlock := t.locks.Lock(tok.Session)
	defer unlock()

	if !t.isCurrent(tok) {
		return &domain.Error{Kind: domain.KindCancelled, Err: context.Canceled}
	}
	return fn()
}

// End releases tok. Ending a superseded token leaves the newer one untouched.
func (t *Tracker) End(tok *Token) {
	t.mu.Lock()
	if t.current[tok.Session] == tok {
		delete(t.current, tok.Session)
	}
	t.mu.Unlock()

	tok.cancel()
}

// Active returns the number of sessions with a running request.
func (t *Tracker) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.current)
}

func (t *Tracker) isCurrent(tok *Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current[tok.Session] == tok
}
