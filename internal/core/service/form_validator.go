package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/controlsys/defect-web/internal/core/domain"
)

var (
	// Syntactic sanity check only; accepts some addresses RFC 5322 would not.
	looseEmailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRe   = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// FormValidator runs the pre-flight checks on login and registration forms.
// Every field is checked so all problems are reported in one pass. It also
// satisfies echo.Validator.
type FormValidator struct {
	v *validator.Validate
}

// NewFormValidator returns a FormValidator with the form rules registered.
func NewFormValidator() *FormValidator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON name so errors line up with the form.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	must(v.RegisterValidation("fullname", func(fl validator.FieldLevel) bool {
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= 2
	}))
	must(v.RegisterValidation("loose_email", func(fl validator.FieldLevel) bool {
		return looseEmailRe.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	}))

	return &FormValidator{v: v}
}

func must(err error) {
	if err != nil {
		panic(fmt.Sprintf("form validator: %v", err))
	}
}

// Validate returns a *domain.ValidationError listing every invalid field,
// or nil when the form is acceptable.
func (fv *FormValidator) Validate(i any) error {
	err := fv.v.Struct(i)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &domain.ValidationError{Fields: fields}
}

// fieldMessage converts a single FieldError into a human-readable message.
func fieldMessage(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		if fe.Field() == "confirm_password" {
			return "confirm your password"
		}
		return label + " is required"
	case "fullname":
		return "full name is too short"
	case "loose_email":
		return "enter a valid email"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "username":
		return "username may contain only latin letters, digits and underscore"
	case "eqfield":
		return "passwords do not match"
	default:
		return fmt.Sprintf("%s failed validation (%s)", label, fe.Tag())
	}
}
