package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-dashboard/core"
)

var (
	courseTag  = "course"
	courseText = "please select a course"

	datetimeTag  = "datetime"
	datetimeText = "{0} must be a date formatted as YYYY-MM-DD"

	// formMessages are the messages shown next to the student form fields.
	formMessages = map[string]string{
		"name":            "Name must be at least 2 characters.",
		"email":           "Please enter a valid email address.",
		"course":          "Please select a course.",
		"enrollment_date": "Please select an enrollment date.",
	}
)

// InitValidators registers the student validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(courseTag, courseValidation)
	core.RegisterCustomTranslation(validate, translator, courseTag, courseText)

	_ = validate.RegisterTranslation(
		datetimeTag, translator,
		func(t ut.Translator) error { return t.Add(datetimeTag, datetimeText, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(datetimeTag, fe.Field())
			return s
		},
	)
}

// Validate cleans ns then validates it. Errors are returned as a field-scoped *core.ValidationError.
func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Clean()
	return formError(validate.Struct(ns))
}

// Validate cleans us then validates its set fields.
func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Clean()
	return formError(validate.Struct(us))
}

// formError converts validator.ValidationErrors into a *core.ValidationError carrying the form messages.
func formError(err error) error {
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) {
		return err
	}

	flds := make([]core.FieldError, 0, len(vErrs))
	seen := make(map[string]bool, len(vErrs))
	for _, vErr := range vErrs {
		if seen[vErr.Field()] {
			continue
		}
		seen[vErr.Field()] = true
		msg, ok := formMessages[vErr.Field()]
		if !ok {
			msg = vErr.Error()
		}
		flds = append(flds, core.FieldError{Field: vErr.Field(), Error: msg})
	}
	return core.NewValidationError(nil, flds...)
}

// Custom Validators

// courseValidation checks that the course belongs to Courses.
func courseValidation(fl validator.FieldLevel) bool {
	return Course(fl.Field().String()).IsValid()
}
