package inmemdb

import (
	"context"
	"strconv"

	"github.com/trezcool/masomo-dashboard/core/student"
)

type studentRepository struct {
	db *studentTable
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.student}
}

func (repo *studentRepository) QueryAllStudents(_ context.Context) ([]student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]student.Student, 0, len(repo.db.rows))
	for _, s := range repo.db.rows {
		students = append(students, *s)
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id string) (student.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.index[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s.ID = strconv.Itoa(repo.db.pk + 1)
	s.Grade = student.NewGrade(s.Grade.String)
	repo.db.insert(s)
	return s, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, id string, us student.UpdateStudent) (student.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// only save set fields
	orig, ok := repo.db.index[id]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	*orig = us.Merge(*orig)
	return *orig, nil
}
