package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/session"
	"github.com/trezcool/masomo-dashboard/core/student"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrAuthRequired = errors.New("authentication required")
	ErrSubmitting   = errors.New("a submission is already in progress")

	createAuthNotice = Notice{
		Title:       "Authentication required",
		Description: "Please login to add a new student.",
		Variant:     VariantDestructive,
	}
	editAuthNotice = Notice{
		Title:       "Authentication required",
		Description: "Please login to edit student details.",
		Variant:     VariantDestructive,
	}
	createFailedNotice = errorNotice("Failed to add student. Please try again.")
	updateFailedNotice = errorNotice("Failed to update student. Please try again.")
	updateMissedNotice = errorNotice("Student not found.")

	noChangesError = core.FieldError{Field: "student", Error: "Please change at least one field."}
)

type (
	CourseOption struct {
		Value student.Course `json:"value"`
		Label string         `json:"label"`
	}

	// FormView is what the student form renders.
	FormView struct {
		Values     student.NewStudent `json:"values"`
		Errors     map[string]string  `json:"errors,omitempty"`
		Courses    []CourseOption     `json:"courses"`
		Submitting bool               `json:"submitting"`
	}
)

func courseOptions() []CourseOption {
	opts := make([]CourseOption, 0, len(student.Courses))
	for _, c := range student.Courses {
		opts = append(opts, CourseOption{Value: c, Label: c.Label()})
	}
	return opts
}

// formGate is the session gating shared by the form pages.
type formGate struct {
	gate   *session.Gate
	nav    Navigator
	notice Notice

	mu          sync.Mutex
	mounted     bool
	authed      bool
	unsubscribe func()
}

func (g *formGate) mount() {
	g.mu.Lock()
	g.mounted = true
	g.mu.Unlock()

	unsubscribe := RequireAuth(g.gate, g.nav, g.notice, func(s session.Session) {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.authed = s.IsAuthenticated()
	})

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.mounted {
		unsubscribe()
		return
	}
	g.unsubscribe = unsubscribe
}

func (g *formGate) unmount() {
	g.mu.Lock()
	g.mounted = false
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// allowed reports whether the page is mounted for an authenticated session.
func (g *formGate) allowed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mounted && g.authed
}

// CreationController handles the "add student" form.
type CreationController struct {
	svc      student.Service
	validate *validator.Validate
	logger   core.Logger
	access   *formGate

	mu         sync.Mutex
	values     student.NewStudent
	errs       map[string]string
	submitting bool
}

func NewCreationController(
	gate *session.Gate,
	svc student.Service,
	nav Navigator,
	validate *validator.Validate,
	logger core.Logger,
) *CreationController {
	return &CreationController{
		svc:      svc,
		validate: validate,
		logger:   logger,
		access:   &formGate{gate: gate, nav: nav, notice: createAuthNotice},
		values:   DefaultNewStudent(),
	}
}

// DefaultNewStudent returns the initial form values: enrolled today, everything else blank.
func DefaultNewStudent() student.NewStudent {
	return student.NewStudent{EnrollmentDate: nowFunc().Format("2006-01-02")}
}

// Mount gates the page: an anonymous session is sent to the login route.
func (c *CreationController) Mount() { c.access.mount() }

func (c *CreationController) Unmount() { c.access.unmount() }

// Allowed reports whether the form may be used.
func (c *CreationController) Allowed() bool { return c.access.allowed() }

func (c *CreationController) Form() FormView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return FormView{
		Values:     c.values,
		Errors:     c.errs,
		Courses:    courseOptions(),
		Submitting: c.submitting,
	}
}

// Submit validates ns then creates the student. Validation failures are returned as a
// *core.ValidationError and never reach the service. Entered values are kept on failure.
func (c *CreationController) Submit(ctx context.Context, ns student.NewStudent) (student.Student, error) {
	if !c.access.allowed() {
		return student.Student{}, ErrAuthRequired
	}

	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		return student.Student{}, ErrSubmitting
	}
	err := ns.Validate(c.validate)
	c.values = ns
	if err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			c.errs = vErr.FieldMap()
		}
		c.mu.Unlock()
		return student.Student{}, err
	}
	c.errs = nil
	c.submitting = true
	c.mu.Unlock()

	s, err := c.svc.Create(ctx, ns)

	c.mu.Lock()
	c.submitting = false
	c.mu.Unlock()

	nav := c.access.nav
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error("Error adding student", errors.Wrap(err, "creating student"))
		}
		nav.Notify(createFailedNotice)
		return student.Student{}, errors.Wrap(err, "creating student")
	}
	if !c.access.allowed() { // unmounted meanwhile
		return s, nil
	}

	c.mu.Lock()
	c.values = DefaultNewStudent()
	c.mu.Unlock()

	nav.Notify(Notice{
		Title:       "Student added",
		Description: s.Name + " has been added successfully.",
		Variant:     VariantDefault,
	})
	nav.Navigate(RouteHome)
	return s, nil
}

// EditController handles the "edit student" form of the detail page.
type EditController struct {
	svc      student.Service
	validate *validator.Validate
	logger   core.Logger
	access   *formGate

	mu   sync.Mutex
	errs map[string]string
}

func NewEditController(
	gate *session.Gate,
	svc student.Service,
	nav Navigator,
	validate *validator.Validate,
	logger core.Logger,
) *EditController {
	return &EditController{
		svc:      svc,
		validate: validate,
		logger:   logger,
		access:   &formGate{gate: gate, nav: nav, notice: editAuthNotice},
	}
}

func (c *EditController) Mount() { c.access.mount() }

func (c *EditController) Unmount() { c.access.unmount() }

func (c *EditController) Allowed() bool { return c.access.allowed() }

// Errors returns the field errors of the last submission.
func (c *EditController) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs
}

// Submit validates the set fields of us then updates student `id`.
func (c *EditController) Submit(ctx context.Context, id string, us student.UpdateStudent) (student.Student, error) {
	if !c.access.allowed() {
		return student.Student{}, ErrAuthRequired
	}

	err := us.Validate(c.validate)
	if err == nil && us.IsEmpty() {
		err = core.NewValidationError(nil, noChangesError)
	}
	c.mu.Lock()
	c.errs = nil
	if vErr := (*core.ValidationError)(nil); errors.As(err, &vErr) {
		c.errs = vErr.FieldMap()
	}
	c.mu.Unlock()
	if err != nil {
		return student.Student{}, err
	}

	nav := c.access.nav
	s, err := c.svc.Update(ctx, id, us)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			nav.Notify(updateMissedNotice)
			return student.Student{}, err
		}
		if ctx.Err() == nil {
			c.logger.Error("Error updating student", errors.Wrapf(err, "updating student %q", id))
		}
		nav.Notify(updateFailedNotice)
		return student.Student{}, errors.Wrap(err, "updating student")
	}

	nav.Notify(Notice{
		Title:       "Student updated",
		Description: s.Name + " has been updated successfully.",
		Variant:     VariantDefault,
	})
	nav.Navigate(RouteStudent(s.ID))
	return s, nil
}
