package inmemdb

import (
	"strconv"
	"sync"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-dashboard/core/student"
	"github.com/trezcool/masomo-dashboard/core/user"
)

type (
	// DB is the process-wide in-memory store. It is lost on restart.
	DB struct {
		student *studentTable
		user    *userTable
	}

	studentTable struct {
		sync.RWMutex
		rows  []*student.Student // insertion order
		index map[string]*student.Student
		pk    int // last assigned numeric ID
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	Option func(db *DB)
)

// WithStudents preloads the student table; IDs are kept as given.
func WithStudents(students ...student.Student) Option {
	return func(db *DB) {
		for _, s := range students {
			db.student.insert(s)
		}
	}
}

func Open(opts ...Option) *DB {
	db := &DB{
		student: &studentTable{index: make(map[string]*student.Student)},
		user:    &userTable{table: make(map[string]*user.User)},
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// insert stores a copy of s and keeps pk above every numeric ID seen.
func (t *studentTable) insert(s student.Student) {
	row := s
	t.rows = append(t.rows, &row)
	t.index[row.ID] = &row
	if n, err := strconv.Atoi(row.ID); err == nil && n > t.pk {
		t.pk = n
	}
}

// SeedStudents returns the demo dataset.
func SeedStudents() []student.Student {
	return []student.Student{
		{ID: "1", Name: "John Smith", Email: "john.smith@example.com", Course: student.CourseComputerScience, EnrollmentDate: "2023-09-01", Grade: null.StringFrom("A")},
		{ID: "2", Name: "Emma Johnson", Email: "emma.j@example.com", Course: student.CourseMathematics, EnrollmentDate: "2023-08-15", Grade: null.StringFrom("B+")},
		{ID: "3", Name: "Michael Brown", Email: "michael.b@example.com", Course: student.CoursePhysics, EnrollmentDate: "2023-09-05", Grade: null.StringFrom("A-")},
		{ID: "4", Name: "Sophia Williams", Email: "sophia.w@example.com", Course: student.CourseBiology, EnrollmentDate: "2023-08-20", Grade: null.StringFrom("B")},
		{ID: "5", Name: "Daniel Jones", Email: "daniel.j@example.com", Course: student.CourseChemistry, EnrollmentDate: "2023-09-10", Grade: null.StringFrom("A")},
		{ID: "6", Name: "Olivia Davis", Email: "olivia.d@example.com", Course: student.CourseComputerScience, EnrollmentDate: "2023-08-25", Grade: null.StringFrom("B+")},
		{ID: "7", Name: "James Miller", Email: "james.m@example.com", Course: student.CourseMathematics, EnrollmentDate: "2023-09-15"},
		{ID: "8", Name: "Ava Wilson", Email: "ava.w@example.com", Course: student.CoursePhysics, EnrollmentDate: "2023-08-30", Grade: null.StringFrom("A-")},
	}
}
