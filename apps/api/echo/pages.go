package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/dashboard"
	"github.com/trezcool/masomo-dashboard/core/session"
	"github.com/trezcool/masomo-dashboard/core/student"
)

type (
	// Page is the JSON view of a dashboard route.
	Page struct {
		Path    string              `json:"path"`
		Shell   dashboard.ShellView `json:"shell"`
		Notices []dashboard.Notice  `json:"notices"`
		Token   string              `json:"token,omitempty"`
		View    interface{}         `json:"view,omitempty"`
	}

	// Redirect is sent along `303 See Other` when a page sends the client elsewhere.
	Redirect struct {
		Redirect string             `json:"redirect"`
		Notices  []dashboard.Notice `json:"notices"`
		Token    string             `json:"token,omitempty"`
	}

	AuthPageView struct {
		Authenticated bool `json:"authenticated"`
	}

	pagesApi struct {
		conf       *core.Config
		logger     core.Logger
		studentSvc student.Service
		validate   *validator.Validate
	}
)

func registerPages(app *echo.Echo, deps ServerDeps) {
	api := pagesApi{
		conf:       deps.Conf,
		logger:     deps.Logger,
		studentSvc: deps.StudentSvc,
		validate:   deps.Validate,
	}

	pg := app.Group("", sessionMiddleware(deps.Conf, deps.UserSvc, deps.Logger))

	pg.GET("/", api.list)
	pg.GET("/student/:id", api.detail)
	pg.PUT("/student/:id", api.update)
	pg.GET("/add-student", api.creationForm)
	pg.POST("/add-student", api.create)
	pg.GET("/nav", api.nav)

	pg.GET("/login", api.loginForm)
	pg.POST("/login", api.login)
	pg.GET("/signup", api.signUpForm)
	pg.POST("/signup", api.signUp)
	pg.POST("/logout", api.logout)
}

// render sends the page, or the redirect the page asked for.
func (api *pagesApi) render(ctx echo.Context, code int, nav *dashboard.Recorder, view interface{}) error {
	token, err := syncTokenCookie(ctx, api.conf)
	if err != nil {
		return err
	}

	if to := nav.Redirect(); to != "" {
		ctx.Response().Header().Set(echo.HeaderLocation, to)
		return ctx.JSON(http.StatusSeeOther, Redirect{Redirect: to, Notices: nav.Notices(), Token: token})
	}

	shell := dashboard.NewShell(getContextGate(ctx), nav, api.logger)
	shell.Mount()
	defer shell.Unmount()

	return ctx.JSON(code, Page{
		Path:    ctx.Request().URL.Path,
		Shell:   shell.View(),
		Notices: nav.Notices(),
		Token:   token,
		View:    view,
	})
}

func newNavigator(ctx echo.Context) *dashboard.Recorder {
	return dashboard.NewRecorder(ctx.Request().URL.Path)
}

// Handlers

func (api *pagesApi) list(ctx echo.Context) error {
	nav := newNavigator(ctx)
	c := dashboard.NewListController(api.studentSvc, api.logger)
	c.SetFilter(bindQueryFilter(ctx))
	c.Mount(ctx.Request().Context())
	defer c.Unmount()

	return api.render(ctx, http.StatusOK, nav, c.View())
}

func (api *pagesApi) detail(ctx echo.Context) error {
	nav := newNavigator(ctx)
	c := dashboard.NewDetailController(getContextGate(ctx), api.studentSvc, nav, api.logger)
	c.Mount(ctx.Request().Context(), ctx.Param("id"))
	defer c.Unmount()

	view := c.View()
	code := http.StatusOK
	if view.State == dashboard.StateNotFound {
		code = http.StatusNotFound
	}
	return api.render(ctx, code, nav, view)
}

func (api *pagesApi) update(ctx echo.Context) error {
	nav := newNavigator(ctx)
	c := dashboard.NewEditController(getContextGate(ctx), api.studentSvc, nav, api.validate, api.logger)
	c.Mount()
	defer c.Unmount()

	if !c.Allowed() {
		return api.render(ctx, http.StatusUnauthorized, nav, nil)
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	id := ctx.Param("id")
	s, err := c.Submit(ctx.Request().Context(), id, data)
	switch {
	case err == nil:
		return api.render(ctx, http.StatusOK, nav, dashboard.DetailView{State: dashboard.StateFound, ID: s.ID, Student: &s})
	case core.IsValidationError(err):
		return api.render(ctx, http.StatusBadRequest, nav, echo.Map{"errors": c.Errors()})
	case errors.Cause(err) == student.ErrNotFound:
		return api.render(ctx, http.StatusNotFound, nav, dashboard.DetailView{State: dashboard.StateNotFound, ID: id})
	default:
		return api.render(ctx, http.StatusInternalServerError, nav, nil)
	}
}

func (api *pagesApi) creationForm(ctx echo.Context) error {
	nav := newNavigator(ctx)
	c := dashboard.NewCreationController(getContextGate(ctx), api.studentSvc, nav, api.validate, api.logger)
	c.Mount()
	defer c.Unmount()

	return api.render(ctx, http.StatusOK, nav, c.Form())
}

func (api *pagesApi) create(ctx echo.Context) error {
	nav := newNavigator(ctx)
	c := dashboard.NewCreationController(getContextGate(ctx), api.studentSvc, nav, api.validate, api.logger)
	c.Mount()
	defer c.Unmount()

	if !c.Allowed() {
		return api.render(ctx, http.StatusUnauthorized, nav, nil)
	}

	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	_, err := c.Submit(ctx.Request().Context(), data)
	switch {
	case err == nil:
		return api.render(ctx, http.StatusCreated, nav, c.Form())
	case core.IsValidationError(err):
		return api.render(ctx, http.StatusBadRequest, nav, c.Form())
	default:
		return api.render(ctx, http.StatusInternalServerError, nav, c.Form())
	}
}

func (api *pagesApi) nav(ctx echo.Context) error {
	return api.render(ctx, http.StatusOK, newNavigator(ctx), nil)
}

func (api *pagesApi) authPageView(ctx echo.Context) AuthPageView {
	return AuthPageView{Authenticated: getContextGate(ctx).Current().IsAuthenticated()}
}

func (api *pagesApi) loginForm(ctx echo.Context) error {
	return api.render(ctx, http.StatusOK, newNavigator(ctx), api.authPageView(ctx))
}

func (api *pagesApi) signUpForm(ctx echo.Context) error {
	return api.render(ctx, http.StatusOK, newNavigator(ctx), api.authPageView(ctx))
}

func (api *pagesApi) login(ctx echo.Context) error {
	var data dashboard.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}

	nav := newNavigator(ctx)
	c := dashboard.NewLoginController(getContextGate(ctx), nav, api.logger)
	if _, err := c.Submit(ctx.Request().Context(), data); err != nil {
		return api.render(ctx, authErrorStatus(err), nav, api.authPageView(ctx))
	}
	return api.render(ctx, http.StatusOK, nav, api.authPageView(ctx))
}

func (api *pagesApi) signUp(ctx echo.Context) error {
	var data dashboard.SignUpRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SignUpRequest")
	}

	nav := newNavigator(ctx)
	c := dashboard.NewSignUpController(getContextGate(ctx), nav, api.logger)
	if _, err := c.Submit(ctx.Request().Context(), data); err != nil {
		return api.render(ctx, authErrorStatus(err), nav, api.authPageView(ctx))
	}
	return api.render(ctx, http.StatusCreated, nav, api.authPageView(ctx))
}

func (api *pagesApi) logout(ctx echo.Context) error {
	nav := newNavigator(ctx)
	sh := dashboard.NewShell(getContextGate(ctx), nav, api.logger)
	sh.Mount()
	defer sh.Unmount()

	if err := sh.Logout(ctx.Request().Context()); err != nil {
		return api.render(ctx, http.StatusInternalServerError, nav, nil)
	}
	return api.render(ctx, http.StatusOK, nav, nil)
}

// authErrorStatus maps a refused sign-in/up to an HTTP status.
func authErrorStatus(err error) int {
	if dashboard.IsFormError(err) {
		return http.StatusBadRequest
	}
	switch session.AuthErrorCode(err) {
	case session.CodeUnknown:
		return http.StatusInternalServerError
	case session.CodeTooManyRequests:
		return http.StatusTooManyRequests
	case session.CodeOperationNotAllowed, session.CodeUserDisabled:
		return http.StatusForbidden
	case session.CodeEmailAlreadyInUse:
		return http.StatusConflict
	case session.CodeInvalidEmail, session.CodeWeakPassword:
		return http.StatusBadRequest
	default:
		return http.StatusUnauthorized
	}
}
