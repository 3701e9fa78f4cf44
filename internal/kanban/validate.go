package kanban

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskboard/internal/util"
)

const maxTitleLength = 255

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages match the request payload
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// checkStruct validates s and converts the first failure into an
// ErrInvalidArgument with a readable message.
func (s *Service) checkStruct(v any) error {
	return describe(s.validate.Struct(v))
}

func (s *Service) checkEmail(email string) error {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return util.NewInvalidArgumentErrorf("email: must be a valid email address")
	}
	return nil
}

func describe(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}
	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "this field is required"
	case "email":
		msg = "must be a valid email address"
	case "min":
		msg = fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		msg = fmt.Sprintf("must be at most %s characters", fe.Param())
	case "eqfield":
		msg = "passwords do not match"
	default:
		msg = "is invalid"
	}
	return util.NewInvalidArgumentErrorf("%s: %s", fe.Field(), msg)
}

func cleanTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", util.NewInvalidArgumentErrorf("title: must not be empty")
	}
	if len([]rune(title)) > maxTitleLength {
		return "", util.NewInvalidArgumentErrorf("title: must be at most %d characters", maxTitleLength)
	}
	return title, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
