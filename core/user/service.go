package user

import (
	"context"
	"errors"
	"net/mail"
	"sync"
	texttmpl "text/template"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/session"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	errSessionRevoked = errors.New("session revoked")
	errAnonymous      = errors.New("anonymous session")

	welcomeTmpl = texttmpl.Must(texttmpl.New("welcome").Parse(
		"Hi {{.Email}},\n\nYour {{.AppName}} account has been created. You can now manage your students from the dashboard.\n",
	))
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// UpdateUser replaces the stored user having usr.ID.
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	// Service is the identity provider of the dashboard.
	Service interface {
		session.Provider
		GetByID(ctx context.Context, id string) (User, error)
		// Bootstrap creates (or reactivates) an account from an existing bcrypt hash.
		Bootstrap(ctx context.Context, email, passwordHash string) (User, error)
	}

	service struct {
		repo     Repository
		mailSvc  core.EmailService
		conf     *core.Config
		validate *validator.Validate

		mu       sync.Mutex
		failures map[string][]time.Time // email -> failed sign-in attempts
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config, validate *validator.Validate) Service {
	return &service{
		repo:     repo,
		mailSvc:  mailSvc,
		conf:     conf,
		validate: validate,
		failures: make(map[string][]time.Time),
	}
}

func (svc *service) SignUp(ctx context.Context, email, pwd string) (session.Identity, error) {
	email = core.CleanString(email, true /* lower */)
	if err := svc.validate.Var(email, "required,email"); err != nil {
		return session.Identity{}, session.NewAuthError(session.CodeInvalidEmail, err)
	}
	if !svc.conf.Identity.AllowSignUp {
		return session.Identity{}, session.NewAuthError(session.CodeOperationNotAllowed)
	}
	if err := svc.repo.CheckEmailUniqueness(ctx, email); err != nil {
		if err == ErrEmailExists {
			return session.Identity{}, session.NewAuthError(session.CodeEmailAlreadyInUse, err)
		}
		return session.Identity{}, pkgerrors.Wrap(err, "checking email uniqueness")
	}
	if isWeakPassword(pwd, email) {
		return session.Identity{}, session.NewAuthError(session.CodeWeakPassword)
	}

	now := NowFunc().UTC()
	usr := User{
		ID:        uuid.New().String(),
		Email:     email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		LastLogin: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return session.Identity{}, pkgerrors.Wrap(err, "setting password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return session.Identity{}, pkgerrors.Wrap(err, "creating user")
	}

	svc.sendWelcomeMail(usr)
	return usr.Identity(), nil
}

func (svc *service) sendWelcomeMail(usr User) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:       []mail.Address{{Address: usr.Email}},
		Subject:  "Welcome",
		Template: welcomeTmpl,
		TemplateData: map[string]string{
			"Email":   usr.Email,
			"AppName": svc.conf.AppName,
		},
	})
}

func (svc *service) SignIn(ctx context.Context, email, pwd string) (session.Identity, error) {
	email = core.CleanString(email, true /* lower */)
	if err := svc.validate.Var(email, "required,email"); err != nil {
		return session.Identity{}, session.NewAuthError(session.CodeInvalidEmail, err)
	}
	if svc.tooManyFailures(email) {
		return session.Identity{}, session.NewAuthError(session.CodeTooManyRequests)
	}

	usr, err := svc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if err == ErrNotFound {
			svc.recordFailure(email)
			return session.Identity{}, svc.credentialError(session.CodeUserNotFound, err)
		}
		return session.Identity{}, pkgerrors.Wrap(err, "finding user by email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		svc.recordFailure(email)
		return session.Identity{}, svc.credentialError(session.CodeWrongPassword, err)
	}
	if !usr.IsActive {
		return session.Identity{}, session.NewAuthError(session.CodeUserDisabled)
	}

	svc.resetFailures(email)
	usr.LastLogin = NowFunc().UTC()
	if usr, err = svc.repo.UpdateUser(ctx, usr); err != nil {
		return session.Identity{}, pkgerrors.Wrap(err, "setting lastLogin")
	}
	return usr.Identity(), nil
}

// credentialError hides which of email or password was wrong when configured to.
func (svc *service) credentialError(code string, err error) error {
	if svc.conf.Identity.HideUserExistence {
		code = session.CodeInvalidCredential
	}
	return session.NewAuthError(code, err)
}

func (svc *service) SignOut(ctx context.Context, uid string) error {
	usr, err := svc.repo.GetUserByID(ctx, uid)
	if err != nil {
		return pkgerrors.Wrap(err, "finding user by ID")
	}
	usr.SessionGeneration++
	usr.UpdatedAt = NowFunc().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr)
	return pkgerrors.Wrap(err, "revoking sessions")
}

func (svc *service) Verify(ctx context.Context, s session.Session) error {
	if !s.IsAuthenticated() {
		return errAnonymous
	}
	usr, err := svc.repo.GetUserByID(ctx, s.Identity.UID)
	if err != nil {
		if err == ErrNotFound {
			return session.NewAuthError(session.CodeUserNotFound, err)
		}
		return pkgerrors.Wrap(err, "finding user by ID")
	}
	if !usr.IsActive {
		return session.NewAuthError(session.CodeUserDisabled)
	}
	if usr.SessionGeneration != s.Identity.Generation {
		return errSessionRevoked
	}
	return nil
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) Bootstrap(ctx context.Context, email, passwordHash string) (User, error) {
	email = core.CleanString(email, true /* lower */)
	if err := svc.validate.Var(email, "required,email"); err != nil {
		return User{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: "invalid email address"})
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return User{}, core.NewValidationError(err, core.FieldError{Field: "password_hash", Error: "invalid bcrypt hash"})
	}

	now := NowFunc().UTC()
	usr, err := svc.repo.GetUserByEmail(ctx, email)
	switch err {
	case nil:
		usr.PasswordHash = []byte(passwordHash)
		usr.IsActive = true
		usr.UpdatedAt = now
		return svc.repo.UpdateUser(ctx, usr)
	case ErrNotFound:
		return svc.repo.CreateUser(ctx, User{
			ID:           uuid.New().String(),
			Email:        email,
			IsActive:     true,
			PasswordHash: []byte(passwordHash),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	default:
		return User{}, pkgerrors.Wrap(err, "finding user by email")
	}
}

// rate limiting of failed sign-ins

func (svc *service) recentFailures(email string, now time.Time) []time.Time {
	window := svc.conf.Identity.FailedLoginWindow
	recent := svc.failures[email][:0]
	for _, at := range svc.failures[email] {
		if now.Sub(at) < window {
			recent = append(recent, at)
		}
	}
	if len(recent) == 0 {
		delete(svc.failures, email)
		return nil
	}
	svc.failures[email] = recent
	return recent
}

func (svc *service) tooManyFailures(email string) bool {
	max := svc.conf.Identity.MaxFailedLogins
	if max <= 0 {
		return false
	}
	svc.mu.Lock()
	defer svc.mu.Unlock()
	return len(svc.recentFailures(email, NowFunc())) >= max
}

func (svc *service) recordFailure(email string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	now := NowFunc()
	svc.failures[email] = append(svc.recentFailures(email, now), now)
}

func (svc *service) resetFailures(email string) {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	delete(svc.failures, email)
}
