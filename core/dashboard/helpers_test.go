package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/session"
	"github.com/trezcool/masomo-dashboard/core/student"
	inmemdb "github.com/trezcool/masomo-dashboard/storage/database/inmem"
)

const testPwd = "secret"

var errBackend = errors.New("backend unavailable")

// providerStub accepts any email with testPwd.
type providerStub struct {
	signOutErr error
	signUpErr  error
}

func (p *providerStub) SignIn(_ context.Context, email, pwd string) (session.Identity, error) {
	if pwd != testPwd {
		return session.Identity{}, session.NewAuthError(session.CodeWrongPassword)
	}
	return session.Identity{UID: "uid-" + email, Email: email}, nil
}

func (p *providerStub) SignUp(_ context.Context, email, _ string) (session.Identity, error) {
	if p.signUpErr != nil {
		return session.Identity{}, p.signUpErr
	}
	return session.Identity{UID: "uid-" + email, Email: email}, nil
}

func (p *providerStub) SignOut(context.Context, string) error { return p.signOutErr }

func (p *providerStub) Verify(context.Context, session.Session) error { return nil }

func anonymousGate() *session.Gate {
	return session.NewGate(new(providerStub), session.Anonymous())
}

func authenticatedGate() *session.Gate {
	id := session.Identity{UID: "u1", Email: "jane@test.cd"}
	return session.NewGate(new(providerStub), session.Authenticated(id, time.Now()))
}

// newStudentService returns a service over the demo dataset, without latency unless sleep is given.
func newStudentService(sleep ...student.Sleeper) student.Service {
	repo := inmemdb.NewStudentRepository(inmemdb.Open(inmemdb.WithStudents(inmemdb.SeedStudents()...)))
	return student.NewService(repo, core.LatencyConfig{}, sleep...)
}

// studentServiceSpy counts calls and optionally fails them.
type studentServiceSpy struct {
	student.Service
	err error

	mu    sync.Mutex
	calls int
}

func newStudentServiceSpy(err error) *studentServiceSpy {
	return &studentServiceSpy{Service: newStudentService(), err: err}
}

func (s *studentServiceSpy) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *studentServiceSpy) called() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.err
}

func (s *studentServiceSpy) List(ctx context.Context) ([]student.Student, error) {
	if err := s.called(); err != nil {
		return nil, err
	}
	return s.Service.List(ctx)
}

func (s *studentServiceSpy) GetByID(ctx context.Context, id string) (student.Student, error) {
	if err := s.called(); err != nil {
		return student.Student{}, err
	}
	return s.Service.GetByID(ctx, id)
}

func (s *studentServiceSpy) Create(ctx context.Context, ns student.NewStudent) (student.Student, error) {
	if err := s.called(); err != nil {
		return student.Student{}, err
	}
	return s.Service.Create(ctx, ns)
}

func (s *studentServiceSpy) Update(ctx context.Context, id string, us student.UpdateStudent) (student.Student, error) {
	if err := s.called(); err != nil {
		return student.Student{}, err
	}
	return s.Service.Update(ctx, id, us)
}

func studentNames(students []student.Student) []string {
	names := make([]string, 0, len(students))
	for _, s := range students {
		names = append(names, s.Name)
	}
	return names
}
