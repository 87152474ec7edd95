package dashboard

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/session"
)

var (
	fillAllFieldsNotice    = errorNotice("Please fill in all fields")
	passwordMismatchNotice = errorNotice("Passwords do not match")
	passwordTooShortNotice = errorNotice("Password must be at least 6 characters long")

	loginSuccessNotice = Notice{
		Title:       "Login successful",
		Description: "You have been logged in successfully.",
		Variant:     VariantDefault,
	}
	signUpSuccessNotice = Notice{
		Title:       "Account created",
		Description: "Your account has been created successfully.",
		Variant:     VariantDefault,
	}

	minPasswordLen = 6

	// errors
	errMissingFields    = errors.New("missing fields")
	errPasswordMismatch = errors.New("passwords do not match")
	errPasswordTooShort = errors.New("password too short")
)

type (
	Credentials struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}

	SignUpRequest struct {
		Email           string `json:"email" form:"email"`
		Password        string `json:"password" form:"password"`
		ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
	}
)

// IsFormError reports whether err was raised by the form checks, before reaching the identity provider.
func IsFormError(err error) bool {
	switch errors.Cause(err) {
	case errMissingFields, errPasswordMismatch, errPasswordTooShort:
		return true
	}
	return false
}

// LoginController handles the login form.
type LoginController struct {
	gate   *session.Gate
	nav    Navigator
	logger core.Logger
}

func NewLoginController(gate *session.Gate, nav Navigator, logger core.Logger) *LoginController {
	return &LoginController{gate: gate, nav: nav, logger: logger}
}

// Submit signs in; refused attempts are surfaced with the message of their AuthError code.
func (c *LoginController) Submit(ctx context.Context, creds Credentials) (session.Session, error) {
	email := strings.TrimSpace(creds.Email)
	pwd := strings.TrimSpace(creds.Password)
	if email == "" || pwd == "" {
		c.nav.Notify(fillAllFieldsNotice)
		return c.gate.Current(), errMissingFields
	}

	s, err := c.gate.SignIn(ctx, email, pwd)
	if err != nil {
		c.logAuthError("Login error", err)
		c.nav.Notify(Notice{
			Title:       "Login failed",
			Description: session.ErrorMessage(session.OpSignIn, err),
			Variant:     VariantDestructive,
		})
		return s, err
	}

	c.nav.Notify(loginSuccessNotice)
	c.nav.Navigate(RouteHome)
	return s, nil
}

// unexpected provider failures are system errors; refusals are not.
func (c *LoginController) logAuthError(msg string, err error) {
	if session.AuthErrorCode(err) == session.CodeUnknown {
		c.logger.Error(msg, err)
	}
}

// SignUpController handles the sign-up form.
type SignUpController struct {
	gate   *session.Gate
	nav    Navigator
	logger core.Logger
}

func NewSignUpController(gate *session.Gate, nav Navigator, logger core.Logger) *SignUpController {
	return &SignUpController{gate: gate, nav: nav, logger: logger}
}

func (c *SignUpController) Submit(ctx context.Context, req SignUpRequest) (session.Session, error) {
	email := strings.TrimSpace(req.Email)
	pwd := strings.TrimSpace(req.Password)
	confirm := strings.TrimSpace(req.ConfirmPassword)

	switch {
	case email == "" || pwd == "" || confirm == "":
		c.nav.Notify(fillAllFieldsNotice)
		return c.gate.Current(), errMissingFields
	case pwd != confirm:
		c.nav.Notify(passwordMismatchNotice)
		return c.gate.Current(), errPasswordMismatch
	case len([]rune(pwd)) < minPasswordLen:
		c.nav.Notify(passwordTooShortNotice)
		return c.gate.Current(), errPasswordTooShort
	}

	s, err := c.gate.SignUp(ctx, email, pwd)
	if err != nil {
		if session.AuthErrorCode(err) == session.CodeUnknown {
			c.logger.Error("Signup error", err)
		}
		c.nav.Notify(Notice{
			Title:       "Sign up failed",
			Description: session.ErrorMessage(session.OpSignUp, err),
			Variant:     VariantDestructive,
		})
		return s, err
	}

	c.nav.Notify(signUpSuccessNotice)
	c.nav.Navigate(RouteHome)
	return s, nil
}
