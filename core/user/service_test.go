package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/session"
	"github.com/trezcool/masomo-dashboard/core/user"
	emailsvc "github.com/trezcool/masomo-dashboard/services/email"
	inmemdb "github.com/trezcool/masomo-dashboard/storage/database/inmem"
	testutil "github.com/trezcool/masomo-dashboard/tests"
)

const strongPwd = "Tr0ub4dor&3"

type testEnv struct {
	conf   *core.Config
	repo   user.Repository
	mailer *emailsvc.ConsoleService
	svc    user.Service
}

func newTestEnv(opts ...func(conf *core.Config)) testEnv {
	conf := core.NewTestConfig()
	for _, opt := range opts {
		opt(conf)
	}
	repo := inmemdb.NewUserRepository(inmemdb.Open())
	mailer := emailsvc.NewConsoleServiceMock(conf)
	return testEnv{
		conf:   conf,
		repo:   repo,
		mailer: mailer,
		svc:    user.NewService(repo, mailer, conf, testutil.NewValidator()),
	}
}

func TestService_SignUp(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	testutil.CreateUser(t, env.repo, "joe@test.cd", strongPwd, true)

	tests := []struct {
		name  string
		email string
		pwd   string
		code  string
	}{
		{"invalid email", "jane@", strongPwd, session.CodeInvalidEmail},
		{"blank email", "  ", strongPwd, session.CodeInvalidEmail},
		{"email in use", " JOE@test.cd ", strongPwd, session.CodeEmailAlreadyInUse},
		{"short password", "jane@test.cd", "Ab1!", session.CodeWeakPassword},
		{"password like email", "jane@test.cd", "jane@test", session.CodeWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.SignUp(ctx, tt.email, tt.pwd)
			assert.Equal(t, tt.code, session.AuthErrorCode(err))
		})
	}

	t.Run("success", func(t *testing.T) {
		id, err := env.svc.SignUp(ctx, " Jane@Test.cd ", strongPwd)
		require.NoError(t, err)
		assert.NotEmpty(t, id.UID)
		assert.Equal(t, "jane@test.cd", id.Email)
		assert.Equal(t, 0, id.Generation)

		usr, err := env.svc.GetByID(ctx, id.UID)
		require.NoError(t, err)
		assert.True(t, usr.IsActive)
		assert.NoError(t, usr.CheckPassword(strongPwd))

		sent := env.mailer.SentMessages()
		if assert.Len(t, sent, 1) {
			assert.Equal(t, "jane@test.cd", sent[0].To[0].Address)
			assert.Equal(t, "Welcome", sent[0].Subject)
			assert.Contains(t, sent[0].TextContent, "Your Masomo account has been created")
		}
	})
}

func TestService_SignUp_notAllowed(t *testing.T) {
	env := newTestEnv(func(conf *core.Config) { conf.Identity.AllowSignUp = false })

	_, err := env.svc.SignUp(context.Background(), "jane@test.cd", strongPwd)
	assert.Equal(t, session.CodeOperationNotAllowed, session.AuthErrorCode(err))
	assert.Empty(t, env.mailer.SentMessages())
}

func TestService_SignIn(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		hideExists bool
		email      string
		pwd        string
		code       string
	}{
		{"invalid email", false, "jane", strongPwd, session.CodeInvalidEmail},
		{"unknown email", false, "nobody@test.cd", strongPwd, session.CodeUserNotFound},
		{"wrong password", false, "jane@test.cd", "wrong-password", session.CodeWrongPassword},
		{"disabled account", false, "inactive@test.cd", strongPwd, session.CodeUserDisabled},
		{"unknown email hidden", true, "nobody@test.cd", strongPwd, session.CodeInvalidCredential},
		{"wrong password hidden", true, "jane@test.cd", "wrong-password", session.CodeInvalidCredential},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(func(conf *core.Config) { conf.Identity.HideUserExistence = tt.hideExists })
			testutil.CreateUser(t, env.repo, "jane@test.cd", strongPwd, true)
			testutil.CreateUser(t, env.repo, "inactive@test.cd", strongPwd, false)

			_, err := env.svc.SignIn(ctx, tt.email, tt.pwd)
			assert.Equal(t, tt.code, session.AuthErrorCode(err))
		})
	}

	t.Run("success", func(t *testing.T) {
		now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
		user.NowFunc = func() time.Time { return now }
		defer func() { user.NowFunc = time.Now }()

		env := newTestEnv()
		usr := testutil.CreateUser(t, env.repo, "jane@test.cd", strongPwd, true)

		id, err := env.svc.SignIn(ctx, "  JANE@test.cd", strongPwd)
		require.NoError(t, err)
		assert.Equal(t, usr.Identity(), id)

		usr, err = env.svc.GetByID(ctx, usr.ID)
		require.NoError(t, err)
		assert.Equal(t, now, usr.LastLogin)
	})
}

func TestService_SignIn_tooManyFailures(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	user.NowFunc = func() time.Time { return now }
	defer func() { user.NowFunc = time.Now }()

	env := newTestEnv()
	testutil.CreateUser(t, env.repo, "jane@test.cd", strongPwd, true)

	for i := 0; i < env.conf.Identity.MaxFailedLogins; i++ {
		_, err := env.svc.SignIn(ctx, "jane@test.cd", "wrong-password")
		require.Equal(t, session.CodeWrongPassword, session.AuthErrorCode(err))
	}

	// even the right password is refused
	_, err := env.svc.SignIn(ctx, "jane@test.cd", strongPwd)
	assert.Equal(t, session.CodeTooManyRequests, session.AuthErrorCode(err))

	// other accounts are not affected
	_, err = env.svc.SignIn(ctx, "joe@test.cd", strongPwd)
	assert.Equal(t, session.CodeUserNotFound, session.AuthErrorCode(err))

	// failures fall out of the window
	now = now.Add(env.conf.Identity.FailedLoginWindow)
	_, err = env.svc.SignIn(ctx, "jane@test.cd", strongPwd)
	assert.NoError(t, err)
}

func TestService_SignIn_successResetsFailures(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	testutil.CreateUser(t, env.repo, "jane@test.cd", strongPwd, true)

	max := env.conf.Identity.MaxFailedLogins
	for i := 0; i < max-1; i++ {
		_, _ = env.svc.SignIn(ctx, "jane@test.cd", "wrong-password")
	}
	_, err := env.svc.SignIn(ctx, "jane@test.cd", strongPwd)
	require.NoError(t, err)

	for i := 0; i < max-1; i++ {
		_, _ = env.svc.SignIn(ctx, "jane@test.cd", "wrong-password")
	}
	_, err = env.svc.SignIn(ctx, "jane@test.cd", strongPwd)
	assert.NoError(t, err)
}

func TestService_SignOut_Verify(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	testutil.CreateUser(t, env.repo, "jane@test.cd", strongPwd, true)

	id, err := env.svc.SignIn(ctx, "jane@test.cd", strongPwd)
	require.NoError(t, err)
	s := session.Authenticated(id, time.Now())

	assert.NoError(t, env.svc.Verify(ctx, s))
	assert.Error(t, env.svc.Verify(ctx, session.Anonymous()))

	require.NoError(t, env.svc.SignOut(ctx, id.UID))
	assert.Error(t, env.svc.Verify(ctx, s), "sessions issued before sign-out are revoked")

	id, err = env.svc.SignIn(ctx, "jane@test.cd", strongPwd)
	require.NoError(t, err)
	assert.Equal(t, 1, id.Generation)
	assert.NoError(t, env.svc.Verify(ctx, session.Authenticated(id, time.Now())))

	t.Run("unknown account", func(t *testing.T) {
		err := env.svc.Verify(ctx, session.Authenticated(session.Identity{UID: "nope"}, time.Now()))
		assert.Equal(t, session.CodeUserNotFound, session.AuthErrorCode(err))
		assert.Error(t, env.svc.SignOut(ctx, "nope"))
	})

	t.Run("disabled account", func(t *testing.T) {
		usr, err := env.svc.GetByID(ctx, id.UID)
		require.NoError(t, err)
		usr.IsActive = false
		_, err = env.repo.UpdateUser(ctx, usr)
		require.NoError(t, err)

		err = env.svc.Verify(ctx, session.Authenticated(id, time.Now()))
		assert.Equal(t, session.CodeUserDisabled, session.AuthErrorCode(err))
	})
}

func TestService_Bootstrap(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()

	hash, err := user.HashPassword(strongPwd)
	require.NoError(t, err)

	t.Run("invalid", func(t *testing.T) {
		_, err := env.svc.Bootstrap(ctx, "admin", hash)
		assert.True(t, core.IsValidationError(err))
		_, err = env.svc.Bootstrap(ctx, "admin@test.cd", strongPwd)
		assert.True(t, core.IsValidationError(err), "a plain password is not a hash")
		_, err = env.svc.Bootstrap(ctx, "admin@test.cd", "")
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("create", func(t *testing.T) {
		usr, err := env.svc.Bootstrap(ctx, " Admin@Test.cd ", hash)
		require.NoError(t, err)
		assert.Equal(t, "admin@test.cd", usr.Email)
		assert.True(t, usr.IsActive)

		_, err = env.svc.SignIn(ctx, "admin@test.cd", strongPwd)
		assert.NoError(t, err)
	})

	t.Run("reactivate and reset password", func(t *testing.T) {
		old := testutil.CreateUser(t, env.repo, "old@test.cd", "0ld-passw0rd!", false)

		usr, err := env.svc.Bootstrap(ctx, "old@test.cd", hash)
		require.NoError(t, err)
		assert.Equal(t, old.ID, usr.ID)
		assert.True(t, usr.IsActive)

		_, err = env.svc.SignIn(ctx, "old@test.cd", strongPwd)
		assert.NoError(t, err)
		_, err = env.svc.SignIn(ctx, "old@test.cd", "0ld-passw0rd!")
		assert.Equal(t, session.CodeWrongPassword, session.AuthErrorCode(err))
	})

}
