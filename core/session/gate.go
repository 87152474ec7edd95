package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var nowFunc = time.Now // mockable

// Handler is notified of the Session state.
type Handler func(Session)

type subscription struct {
	handler Handler
	active  bool
}

// Gate holds the live Session of one client and notifies subscribers of its transitions.
// Only the identity Provider establishes or clears a Session; the Gate relays its outcome.
type Gate struct {
	provider Provider

	mu      sync.Mutex
	current Session
	subs    []*subscription
}

func NewGate(provider Provider, initial Session) *Gate {
	return &Gate{provider: provider, current: initial}
}

// Current returns the latest known Session.
func (g *Gate) Current() Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// OnChange registers h. h is called right away with the current Session, then on every transition.
// The returned func stops future notifications; it is safe to call more than once.
func (g *Gate) OnChange(h Handler) (unsubscribe func()) {
	sub := &subscription{handler: h, active: true}

	g.mu.Lock()
	g.subs = append(g.subs, sub)
	current := g.current
	g.mu.Unlock()

	h(current)

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if !sub.active {
			return
		}
		sub.active = false
		for i, s := range g.subs {
			if s == sub {
				g.subs = append(g.subs[:i], g.subs[i+1:]...)
				break
			}
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (g *Gate) Subscribers() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.subs)
}

func (g *Gate) SignIn(ctx context.Context, email, password string) (Session, error) {
	id, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		return g.Current(), errors.Wrap(err, "signing in")
	}
	s := Authenticated(id, nowFunc())
	g.set(s)
	return s, nil
}

func (g *Gate) SignUp(ctx context.Context, email, password string) (Session, error) {
	id, err := g.provider.SignUp(ctx, email, password)
	if err != nil {
		return g.Current(), errors.Wrap(err, "signing up")
	}
	s := Authenticated(id, nowFunc())
	g.set(s)
	return s, nil
}

// SignOut clears the Session. Subscribers are notified even if the provider fails,
// the client being anonymous from then on.
func (g *Gate) SignOut(ctx context.Context) error {
	var err error
	if uid := g.Current().UID(); uid != "" {
		err = g.provider.SignOut(ctx, uid)
	}
	g.set(Anonymous())
	return errors.Wrap(err, "signing out")
}

// Expire clears the Session after an external expiry (eg. a revoked or outdated token).
func (g *Gate) Expire() {
	g.set(Anonymous())
}

// set stores s and notifies subscribers when it is an actual transition.
func (g *Gate) set(s Session) {
	g.mu.Lock()
	if g.current.same(s) {
		g.current = s
		g.mu.Unlock()
		return
	}
	g.current = s
	subs := make([]*subscription, len(g.subs))
	copy(subs, g.subs)
	g.mu.Unlock()

	for _, sub := range subs {
		g.mu.Lock()
		active := sub.active
		g.mu.Unlock()
		if active {
			sub.handler(s)
		}
	}
}
