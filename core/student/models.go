package student

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/masomo-dashboard/core"
)

// Courses
const (
	CourseComputerScience Course = "computer-science"
	CourseMathematics     Course = "mathematics"
	CoursePhysics         Course = "physics"
	CourseBiology         Course = "biology"
	CourseChemistry       Course = "chemistry"

	// CourseAll is the filter value matching every course.
	CourseAll Course = "all"
)

// Courses is the closed set of courses a new Student may enroll in.
var Courses = []Course{
	CourseComputerScience,
	CourseMathematics,
	CoursePhysics,
	CourseBiology,
	CourseChemistry,
}

type Course string

// IsValid reports whether c belongs to Courses.
func (c Course) IsValid() bool {
	for _, course := range Courses {
		if c == course {
			return true
		}
	}
	return false
}

// Label renders c for display, eg. "computer-science" -> "Computer science".
func (c Course) Label() string {
	s := string(c)
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(r)) + strings.Replace(s[size:], "-", " ", 1)
}

type Student struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Course         Course      `json:"course"`
	EnrollmentDate string      `json:"enrollment_date"` // YYYY-MM-DD
	Grade          null.String `json:"grade"`
}

// GradeOr returns the grade or `def` when none has been assigned yet.
func (s Student) GradeOr(def string) string {
	if s.Grade.Valid {
		return s.Grade.String
	}
	return def
}

// NewGrade normalizes a raw grade: blank means "not yet assigned".
func NewGrade(g string) null.String {
	g = core.CleanString(g)
	return null.NewString(g, g != "")
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	Name           string `json:"name" validate:"required,min=2"`
	Email          string `json:"email" validate:"required,email"`
	Course         Course `json:"course" validate:"required,course"`
	EnrollmentDate string `json:"enrollment_date" validate:"required,datetime=2006-01-02"`
	Grade          string `json:"grade"`
}

func (ns *NewStudent) Clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Course = Course(core.CleanString(string(ns.Course)))
	ns.EnrollmentDate = core.CleanString(ns.EnrollmentDate)
	ns.Grade = core.CleanString(ns.Grade)
}

func (ns NewStudent) toStudent() Student {
	return Student{
		Name:           ns.Name,
		Email:          ns.Email,
		Course:         ns.Course,
		EnrollmentDate: ns.EnrollmentDate,
		Grade:          NewGrade(ns.Grade),
	}
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// nil fields are left untouched; an empty Grade clears the grade.
type UpdateStudent struct {
	Name           *string `json:"name" validate:"omitempty,min=2"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Course         *Course `json:"course" validate:"omitempty,course"`
	EnrollmentDate *string `json:"enrollment_date" validate:"omitempty,datetime=2006-01-02"`
	Grade          *string `json:"grade"`
}

func (us *UpdateStudent) Clean() {
	clean := func(s *string, lower ...bool) {
		if s != nil {
			*s = core.CleanString(*s, lower...)
		}
	}
	clean(us.Name)
	clean(us.Email, true /* lower */)
	clean(us.EnrollmentDate)
	clean(us.Grade)
	if us.Course != nil {
		c := Course(core.CleanString(string(*us.Course)))
		us.Course = &c
	}
}

// IsEmpty reports whether no field is set.
func (us UpdateStudent) IsEmpty() bool {
	return us.Name == nil && us.Email == nil && us.Course == nil && us.EnrollmentDate == nil && us.Grade == nil
}

// Merge applies the set fields of us onto s.
func (us UpdateStudent) Merge(s Student) Student {
	if us.Name != nil {
		s.Name = *us.Name
	}
	if us.Email != nil {
		s.Email = *us.Email
	}
	if us.Course != nil {
		s.Course = *us.Course
	}
	if us.EnrollmentDate != nil {
		s.EnrollmentDate = *us.EnrollmentDate
	}
	if us.Grade != nil {
		s.Grade = NewGrade(*us.Grade)
	}
	return s
}

type QueryFilter struct {
	Search string `query:"search"`
	Course Course `query:"course"`
}
