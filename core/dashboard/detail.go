package dashboard

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/session"
	"github.com/trezcool/masomo-dashboard/core/student"
)

// Detail states
const (
	StateLoading      DetailState = "loading"
	StateFound        DetailState = "found"
	StateNotFound     DetailState = "not_found"
	StateAuthRequired DetailState = "auth_required"
)

var (
	detailAuthNotice = Notice{
		Title:       "Authentication required",
		Description: "Please login to view student details.",
		Variant:     VariantDestructive,
	}
	detailLoadFailedNotice = errorNotice("Failed to load student details.")
)

type DetailState string

type DetailView struct {
	State   DetailState      `json:"state"`
	ID      string           `json:"id"`
	Student *student.Student `json:"student,omitempty"`
}

// DetailController loads a single student once the session is authenticated.
type DetailController struct {
	gate   *session.Gate
	svc    student.Service
	nav    Navigator
	logger core.Logger

	mu          sync.Mutex
	gen         int
	mounted     bool
	authed      bool
	id          string
	state       DetailState
	student     student.Student
	unsubscribe func()
}

func NewDetailController(gate *session.Gate, svc student.Service, nav Navigator, logger core.Logger) *DetailController {
	return &DetailController{
		gate:   gate,
		svc:    svc,
		nav:    nav,
		logger: logger,
		state:  StateLoading,
	}
}

// Mount subscribes to the session then, if authenticated, loads student `id`.
// It returns once the load resolved.
func (c *DetailController) Mount(ctx context.Context, id string) {
	c.mu.Lock()
	c.mounted = true
	c.id = id
	c.mu.Unlock()

	unsubscribe := RequireAuth(c.gate, c.nav, detailAuthNotice, c.onSessionChange)

	c.mu.Lock()
	if !c.mounted { // unmounted meanwhile
		c.mu.Unlock()
		unsubscribe()
		return
	}
	c.unsubscribe = unsubscribe
	c.mu.Unlock()

	c.reload(ctx)
}

func (c *DetailController) onSessionChange(s session.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.authed = s.IsAuthenticated()
	if !c.authed {
		c.gen++ // drop in-flight lookups
		c.state = StateAuthRequired
		c.student = student.Student{}
	}
}

// SetID switches to another student; the outcome of the previous lookup is discarded.
func (c *DetailController) SetID(ctx context.Context, id string) {
	c.mu.Lock()
	if !c.mounted || id == c.id {
		c.mu.Unlock()
		return
	}
	c.id = id
	c.mu.Unlock()

	c.reload(ctx)
}

// Reload looks the current student up again (eg. after an edit).
func (c *DetailController) Reload(ctx context.Context) {
	c.reload(ctx)
}

func (c *DetailController) reload(ctx context.Context) {
	c.mu.Lock()
	if !c.mounted || !c.authed {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen, id := c.gen, c.id
	c.state = StateLoading
	c.student = student.Student{}
	c.mu.Unlock()

	s, err := c.svc.GetByID(ctx, id)

	c.mu.Lock()
	if !c.mounted || gen != c.gen || ctx.Err() != nil {
		c.mu.Unlock()
		return
	}
	var notify bool
	switch {
	case err == nil:
		c.state = StateFound
		c.student = s
	case errors.Cause(err) == student.ErrNotFound:
		c.state = StateNotFound
	default:
		c.state = StateNotFound
		notify = true
	}
	c.mu.Unlock()

	if notify {
		c.logger.Error("Error fetching student", errors.Wrapf(err, "getting student %q", id))
		c.nav.Notify(detailLoadFailedNotice)
	}
}

// Unmount stops session notifications and discards any in-flight lookup.
func (c *DetailController) Unmount() {
	c.mu.Lock()
	c.mounted = false
	c.gen++
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (c *DetailController) View() DetailView {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := DetailView{State: c.state, ID: c.id}
	if c.state == StateFound {
		s := c.student
		v.Student = &s
	}
	return v
}
