package student_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-dashboard/core"
	"github.com/trezcool/masomo-dashboard/core/student"
	testutil "github.com/trezcool/masomo-dashboard/tests"
)

func validNewStudent() student.NewStudent {
	return student.NewStudent{
		Name:           "Jo",
		Email:          "jo@example.com",
		Course:         student.CoursePhysics,
		EnrollmentDate: "2024-01-15",
	}
}

func TestNewStudent_Validate(t *testing.T) {
	validate := testutil.NewValidator()

	tests := []struct {
		name    string
		mutate  func(ns *student.NewStudent)
		wantErr map[string]string
	}{
		{name: "2 chars name", mutate: func(ns *student.NewStudent) {}},
		{name: "grade is free text", mutate: func(ns *student.NewStudent) { ns.Grade = "Excellent!" }},
		{name: "padded name", mutate: func(ns *student.NewStudent) { ns.Name = "  Jo  " }},
		{
			name: "1 char name", mutate: func(ns *student.NewStudent) { ns.Name = "J" },
			wantErr: map[string]string{"name": "Name must be at least 2 characters."},
		},
		{
			name: "padded 1 char name", mutate: func(ns *student.NewStudent) { ns.Name = "  J  " },
			wantErr: map[string]string{"name": "Name must be at least 2 characters."},
		},
		{
			name: "bad email", mutate: func(ns *student.NewStudent) { ns.Email = "jo@" },
			wantErr: map[string]string{"email": "Please enter a valid email address."},
		},
		{
			name: "no course", mutate: func(ns *student.NewStudent) { ns.Course = "" },
			wantErr: map[string]string{"course": "Please select a course."},
		},
		{
			name: "unknown course", mutate: func(ns *student.NewStudent) { ns.Course = "history" },
			wantErr: map[string]string{"course": "Please select a course."},
		},
		{
			name: "no enrollment date", mutate: func(ns *student.NewStudent) { ns.EnrollmentDate = " " },
			wantErr: map[string]string{"enrollment_date": "Please select an enrollment date."},
		},
		{
			name: "malformed enrollment date", mutate: func(ns *student.NewStudent) { ns.EnrollmentDate = "15/01/2024" },
			wantErr: map[string]string{"enrollment_date": "Please select an enrollment date."},
		},
		{
			name:   "everything wrong",
			mutate: func(ns *student.NewStudent) { *ns = student.NewStudent{} },
			wantErr: map[string]string{
				"name":            "Name must be at least 2 characters.",
				"email":           "Please enter a valid email address.",
				"course":          "Please select a course.",
				"enrollment_date": "Please select an enrollment date.",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ns := validNewStudent()
			tt.mutate(&ns)

			err := ns.Validate(validate)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			if assert.True(t, core.IsValidationError(err), "err = %v", err) {
				assert.Equal(t, tt.wantErr, err.(*core.ValidationError).FieldMap())
			}
		})
	}
}

func TestNewStudent_Validate_cleans(t *testing.T) {
	ns := student.NewStudent{
		Name:           "  Jane Doe ",
		Email:          " Jane.Doe@Example.COM ",
		Course:         " biology ",
		EnrollmentDate: " 2024-02-01 ",
		Grade:          " B ",
	}
	assert.NoError(t, ns.Validate(testutil.NewValidator()))
	assert.Equal(t, student.NewStudent{
		Name:           "Jane Doe",
		Email:          "jane.doe@example.com",
		Course:         student.CourseBiology,
		EnrollmentDate: "2024-02-01",
		Grade:          "B",
	}, ns)
}

func TestUpdateStudent_Validate(t *testing.T) {
	validate := testutil.NewValidator()
	str := func(s string) *string { return &s }
	course := func(c student.Course) *student.Course { return &c }

	tests := []struct {
		name    string
		us      student.UpdateStudent
		wantErr map[string]string
	}{
		{name: "nothing set", us: student.UpdateStudent{}},
		{name: "grade only", us: student.UpdateStudent{Grade: str("A")}},
		{name: "clear grade", us: student.UpdateStudent{Grade: str("")}},
		{name: "valid fields", us: student.UpdateStudent{Name: str("Jo"), Course: course(student.CourseChemistry)}},
		{
			name: "short name", us: student.UpdateStudent{Name: str("J")},
			wantErr: map[string]string{"name": "Name must be at least 2 characters."},
		},
		{
			name: "unknown course", us: student.UpdateStudent{Course: course("history")},
			wantErr: map[string]string{"course": "Please select a course."},
		},
		{
			name: "bad date", us: student.UpdateStudent{EnrollmentDate: str("tomorrow")},
			wantErr: map[string]string{"enrollment_date": "Please select an enrollment date."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			us := tt.us
			err := us.Validate(validate)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			if assert.True(t, core.IsValidationError(err), "err = %v", err) {
				assert.Equal(t, tt.wantErr, err.(*core.ValidationError).FieldMap())
			}
		})
	}
}

func TestCourse_Label(t *testing.T) {
	assert.Equal(t, "Computer science", student.CourseComputerScience.Label())
	assert.Equal(t, "Mathematics", student.CourseMathematics.Label())
	assert.Equal(t, "", student.Course("").Label())
	assert.Equal(t, "Économie sociale", student.Course("économie-sociale").Label())
	assert.Equal(t, "Ökologie", student.Course("ökologie").Label())
	assert.True(t, student.CourseBiology.IsValid())
	assert.False(t, student.CourseAll.IsValid())
}
