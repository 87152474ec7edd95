// Package dashboard holds the page controllers of the student dashboard.
//
// A controller is mounted once per page view and unmounted when the view goes away.
// Results of lookups that complete after the controller was unmounted (or after its
// input changed) are discarded.
package dashboard

import (
	"net/url"
	"sync"

	"github.com/trezcool/masomo-dashboard/core/session"
)

// Routes
const (
	RouteHome       = "/"
	RouteAddStudent = "/add-student"
	RouteLogin      = "/login"
	RouteSignUp     = "/signup"
)

func RouteStudent(id string) string {
	return "/student/" + url.PathEscape(id)
}

// Notice variants
const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

type (
	Variant string

	// Notice is a transient message surfaced to the user.
	Notice struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Variant     Variant `json:"variant"`
	}

	// Navigator moves the client to another route and surfaces notices.
	Navigator interface {
		Navigate(route string)
		Notify(n Notice)
	}
)

func errorNotice(desc string) Notice {
	return Notice{Title: "Error", Description: desc, Variant: VariantDestructive}
}

// Recorder is a Navigator remembering the last requested route and every notice,
// for a transport to render once the page has been handled.
type Recorder struct {
	mu       sync.Mutex
	current  string
	redirect string
	notices  []Notice
}

var _ Navigator = (*Recorder)(nil)

// NewRecorder returns a Recorder for a page served at `current`.
func NewRecorder(current string) *Recorder {
	return &Recorder{current: current, notices: []Notice{}}
}

// Navigate records route, navigating to the current route being a no-op.
func (r *Recorder) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if route == r.current {
		r.redirect = ""
		return
	}
	r.redirect = route
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Redirect returns the last route navigated to, or "" if the client stays.
func (r *Recorder) Redirect() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redirect
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	notices := make([]Notice, len(r.notices))
	copy(notices, r.notices)
	return notices
}

// RequireAuth subscribes to gate: each time the session is (or becomes) anonymous,
// notice is surfaced and nav is sent to the login route. next, if any, is called
// with every state before that.
func RequireAuth(gate *session.Gate, nav Navigator, notice Notice, next ...session.Handler) (unsubscribe func()) {
	return gate.OnChange(func(s session.Session) {
		for _, h := range next {
			h(s)
		}
		if !s.IsAuthenticated() {
			nav.Notify(notice)
			nav.Navigate(RouteLogin)
		}
	})
}
