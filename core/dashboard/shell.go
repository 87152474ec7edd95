package dashboard

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/session"
)

// Shell actions
const (
	ActionLogin      Action = "login"
	ActionAddStudent Action = "add-student"
	ActionLogout     Action = "logout"
)

type (
	Action string

	ShellView struct {
		Authenticated bool              `json:"authenticated"`
		Identity      *session.Identity `json:"identity,omitempty"`
		Actions       []Action          `json:"actions"`
	}
)

// Shell is the navigation header: it offers the actions matching the live session.
type Shell struct {
	gate   *session.Gate
	nav    Navigator
	logger core.Logger

	mu          sync.Mutex
	current     session.Session
	unsubscribe func()
}

func NewShell(gate *session.Gate, nav Navigator, logger core.Logger) *Shell {
	return &Shell{gate: gate, nav: nav, logger: logger}
}

func (sh *Shell) Mount() {
	unsubscribe := sh.gate.OnChange(func(s session.Session) {
		sh.mu.Lock()
		defer sh.mu.Unlock()
		sh.current = s
	})
	sh.mu.Lock()
	sh.unsubscribe = unsubscribe
	sh.mu.Unlock()
}

func (sh *Shell) Unmount() {
	sh.mu.Lock()
	unsubscribe := sh.unsubscribe
	sh.unsubscribe = nil
	sh.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (sh *Shell) Actions() []Action {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.current.IsAuthenticated() {
		return []Action{ActionAddStudent, ActionLogout}
	}
	return []Action{ActionLogin}
}

func (sh *Shell) View() ShellView {
	actions := sh.Actions()
	sh.mu.Lock()
	defer sh.mu.Unlock()
	v := ShellView{Authenticated: sh.current.IsAuthenticated(), Actions: actions}
	if v.Authenticated {
		id := *sh.current.Identity
		v.Identity = &id
	}
	return v
}

// Logout signs out then sends the client to the login route.
// A failing sign-out is logged and leaves the client where it is.
func (sh *Shell) Logout(ctx context.Context) error {
	id := sh.gate.Current().Identity
	if err := sh.gate.SignOut(ctx); err != nil {
		args := []interface{}{err}
		if id != nil {
			args = append(args, *id)
		}
		sh.logger.Error("Error logging out", args...)
		return errors.Wrap(err, "logging out")
	}
	sh.nav.Navigate(RouteLogin)
	return nil
}
