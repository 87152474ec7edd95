package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/student"
	testutil "github.com/trezcool/masomo-dashboard/tests"
)

func mockNow(t *testing.T) {
	nowFunc = func() time.Time { return time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC) }
	t.Cleanup(func() { nowFunc = time.Now })
}

func validNewStudent(name string) student.NewStudent {
	return student.NewStudent{
		Name:           name,
		Email:          "jo@test.cd",
		Course:         student.CourseMathematics,
		EnrollmentDate: "2024-01-15",
	}
}

func TestDefaultNewStudent(t *testing.T) {
	mockNow(t)
	assert.Equal(t, student.NewStudent{EnrollmentDate: "2024-03-07"}, DefaultNewStudent())
}

func TestCreationController_anonymous(t *testing.T) {
	svc := newStudentServiceSpy(nil)
	nav := NewRecorder(RouteAddStudent)
	c := NewCreationController(anonymousGate(), svc, nav, testutil.NewValidator(), testutil.NewLogger())
	c.Mount()
	defer c.Unmount()

	assert.False(t, c.Allowed())
	assert.Equal(t, RouteLogin, nav.Redirect())
	assert.Equal(t, []Notice{createAuthNotice}, nav.Notices())

	_, err := c.Submit(context.Background(), validNewStudent("Jo"))
	assert.Equal(t, ErrAuthRequired, err)
	assert.Equal(t, 0, svc.count())
}

func TestCreationController_Submit(t *testing.T) {
	mockNow(t)
	ctx := context.Background()

	t.Run("invalid", func(t *testing.T) {
		svc := newStudentServiceSpy(nil)
		nav := NewRecorder(RouteAddStudent)
		c := NewCreationController(authenticatedGate(), svc, nav, testutil.NewValidator(), testutil.NewLogger())
		c.Mount()
		defer c.Unmount()
		require.True(t, c.Allowed())

		ns := validNewStudent(" J ")
		ns.Email = "jo@"
		_, err := c.Submit(ctx, ns)
		assert.True(t, core.IsValidationError(err))
		assert.Equal(t, 0, svc.count(), "invalid forms never reach the service")

		form := c.Form()
		assert.Equal(t, map[string]string{
			"name":  "Name must be at least 2 characters.",
			"email": "Please enter a valid email address.",
		}, form.Errors)
		assert.Equal(t, "J", form.Values.Name, "entered values are kept")
		assert.Empty(t, nav.Notices())
		assert.Empty(t, nav.Redirect())
	})

	t.Run("service failure", func(t *testing.T) {
		logger := testutil.NewLogger()
		nav := NewRecorder(RouteAddStudent)
		c := NewCreationController(authenticatedGate(), newStudentServiceSpy(errBackend), nav, testutil.NewValidator(), logger)
		c.Mount()
		defer c.Unmount()

		_, err := c.Submit(ctx, validNewStudent("Jo"))
		assert.Error(t, err)
		assert.False(t, core.IsValidationError(err))
		assert.Equal(t, []Notice{createFailedNotice}, nav.Notices())
		assert.Empty(t, nav.Redirect())
		assert.Equal(t, "Jo", c.Form().Values.Name)
		assert.False(t, c.Form().Submitting)
		assert.Len(t, logger.Entries("error"), 1)
	})

	t.Run("success", func(t *testing.T) {
		svc := newStudentService()
		nav := NewRecorder(RouteAddStudent)
		c := NewCreationController(authenticatedGate(), svc, nav, testutil.NewValidator(), testutil.NewLogger())
		c.Mount()
		defer c.Unmount()

		s, err := c.Submit(ctx, validNewStudent("Jo"))
		require.NoError(t, err)
		assert.Equal(t, "9", s.ID)
		assert.False(t, s.Grade.Valid)

		assert.Equal(t, RouteHome, nav.Redirect())
		assert.Equal(t, []Notice{{
			Title:       "Student added",
			Description: "Jo has been added successfully.",
			Variant:     VariantDefault,
		}}, nav.Notices())

		form := c.Form()
		assert.Equal(t, DefaultNewStudent(), form.Values, "the form is reset")
		assert.Empty(t, form.Errors)
		assert.Len(t, form.Courses, len(student.Courses))

		all, err := svc.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 9)
	})
}

func TestCreationController_concurrentSubmit(t *testing.T) {
	latch := testutil.NewLatch()
	c := NewCreationController(authenticatedGate(), newStudentService(latch.Sleep), NewRecorder(RouteAddStudent), testutil.NewValidator(), testutil.NewLogger())
	c.Mount()
	defer c.Unmount()

	done := make(chan error, 1)
	go func() {
		_, err := c.Submit(context.Background(), validNewStudent("Jo"))
		done <- err
	}()
	latch.AwaitWaiting(t, 1)
	assert.True(t, c.Form().Submitting)

	_, err := c.Submit(context.Background(), validNewStudent("Jim"))
	assert.Equal(t, ErrSubmitting, err)

	latch.Release()
	assert.NoError(t, <-done)
}

func TestEditController(t *testing.T) {
	ctx := context.Background()
	str := func(s string) *string { return &s }

	t.Run("anonymous", func(t *testing.T) {
		nav := NewRecorder(RouteStudent("1"))
		c := NewEditController(anonymousGate(), newStudentService(), nav, testutil.NewValidator(), testutil.NewLogger())
		c.Mount()
		defer c.Unmount()

		_, err := c.Submit(ctx, "1", student.UpdateStudent{Grade: str("A")})
		assert.Equal(t, ErrAuthRequired, err)
		assert.Equal(t, []Notice{editAuthNotice}, nav.Notices())
		assert.Equal(t, RouteLogin, nav.Redirect())
	})

	t.Run("invalid", func(t *testing.T) {
		svc := newStudentServiceSpy(nil)
		c := NewEditController(authenticatedGate(), svc, NewRecorder(RouteStudent("1")), testutil.NewValidator(), testutil.NewLogger())
		c.Mount()
		defer c.Unmount()

		_, err := c.Submit(ctx, "1", student.UpdateStudent{Email: str("nope")})
		assert.True(t, core.IsValidationError(err))
		assert.Equal(t, map[string]string{"email": "Please enter a valid email address."}, c.Errors())
		assert.Equal(t, 0, svc.count())
	})

	t.Run("nothing to update", func(t *testing.T) {
		svc := newStudentServiceSpy(nil)
		nav := NewRecorder(RouteStudent("1"))
		c := NewEditController(authenticatedGate(), svc, nav, testutil.NewValidator(), testutil.NewLogger())
		c.Mount()
		defer c.Unmount()

		_, err := c.Submit(ctx, "1", student.UpdateStudent{})
		assert.True(t, core.IsValidationError(err))
		assert.Equal(t, map[string]string{"student": "Please change at least one field."}, c.Errors())
		assert.Equal(t, 0, svc.count())
		assert.Empty(t, nav.Notices())
	})

	t.Run("not found", func(t *testing.T) {
		nav := NewRecorder(RouteStudent("999"))
		c := NewEditController(authenticatedGate(), newStudentService(), nav, testutil.NewValidator(), testutil.NewLogger())
		c.Mount()
		defer c.Unmount()

		_, err := c.Submit(ctx, "999", student.UpdateStudent{Grade: str("A")})
		assert.Equal(t, student.ErrNotFound, err)
		assert.Equal(t, []Notice{updateMissedNotice}, nav.Notices())
	})

	t.Run("service failure", func(t *testing.T) {
		logger := testutil.NewLogger()
		nav := NewRecorder(RouteStudent("1"))
		c := NewEditController(authenticatedGate(), newStudentServiceSpy(errBackend), nav, testutil.NewValidator(), logger)
		c.Mount()
		defer c.Unmount()

		_, err := c.Submit(ctx, "1", student.UpdateStudent{Grade: str("A")})
		assert.Error(t, err)
		assert.Equal(t, []Notice{updateFailedNotice}, nav.Notices())
		assert.Len(t, logger.Entries("error"), 1)
	})

	t.Run("success", func(t *testing.T) {
		nav := NewRecorder(RouteStudent("7"))
		c := NewEditController(authenticatedGate(), newStudentService(), nav, testutil.NewValidator(), testutil.NewLogger())
		c.Mount()
		defer c.Unmount()

		s, err := c.Submit(ctx, "7", student.UpdateStudent{Grade: str(" B ")})
		require.NoError(t, err)
		assert.Equal(t, "B", s.GradeOr(""))
		assert.Equal(t, "James Miller", s.Name)
		assert.Empty(t, c.Errors())
		assert.Equal(t, []Notice{{
			Title:       "Student updated",
			Description: "James Miller has been updated successfully.",
			Variant:     VariantDefault,
		}}, nav.Notices())
		assert.Empty(t, nav.Redirect(), "already on the student page")
	})
}
