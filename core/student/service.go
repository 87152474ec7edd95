package student

import (
	"context"
	"errors"
	"time"

	"github.com/trezcool/masomo-dashboard/core"
)

var (
	// errors
	ErrNotFound = errors.New("student not found")
)

type (
	// Repository is the storage owning the canonical student collection.
	Repository interface {
		// QueryAllStudents returns copies of all students in insertion order.
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		// CreateStudent assigns a new unique ID to `s` and appends it.
		CreateStudent(ctx context.Context, s Student) (Student, error)
		// UpdateStudent merges `us` onto the stored record under a single write.
		UpdateStudent(ctx context.Context, id string, us UpdateStudent) (Student, error)
	}

	Service interface {
		List(ctx context.Context) ([]Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		Create(ctx context.Context, ns NewStudent) (Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
	}

	// Sleeper waits for d or until ctx is done.
	Sleeper func(ctx context.Context, d time.Duration) error

	service struct {
		repo    Repository
		latency core.LatencyConfig
		sleep   Sleeper
	}
)

var _ Service = (*service)(nil)

// NewService returns a Service emulating network latency in front of repo.
func NewService(repo Repository, latency core.LatencyConfig, sleep ...Sleeper) Service {
	svc := &service{
		repo:    repo,
		latency: latency,
		sleep:   Sleep,
	}
	if len(sleep) > 0 && sleep[0] != nil {
		svc.sleep = sleep[0]
	}
	return svc
}

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (svc *service) List(ctx context.Context) ([]Student, error) {
	if err := svc.sleep(ctx, svc.latency.List); err != nil {
		return nil, err
	}
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	if err := svc.sleep(ctx, svc.latency.Get); err != nil {
		return Student{}, err
	}
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := svc.sleep(ctx, svc.latency.Create); err != nil {
		return Student{}, err
	}
	return svc.repo.CreateStudent(ctx, ns.toStudent())
}

func (svc *service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	if err := svc.sleep(ctx, svc.latency.Update); err != nil {
		return Student{}, err
	}
	return svc.repo.UpdateStudent(ctx, id, us)
}
