// Package validation wraps a shared go-playground validator with the
// project's custom tags and turns its errors into field-level
// service.ValidationError values keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/qs-lzh/yamdb/internal/service"
)

// ReservedUsername is the path segment used by the self-service profile.
const ReservedUsername = "me"

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.@+-]+$`)
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})

		mustRegister("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
		mustRegister("notreserved", func(fl validator.FieldLevel) bool {
			return !IsReservedUsername(fl.Field().String())
		})
		mustRegister("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
		mustRegister("role", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case "user", "moderator", "admin":
				return true
			}
			return false
		})
	})

	return validate
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("validation: register %q: %v", tag, err))
	}
}

func IsReservedUsername(username string) bool {
	return strings.EqualFold(username, ReservedUsername)
}

// ValidateStruct returns nil or a *service.ValidationError.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	result := &service.ValidationError{}
	for _, fe := range validationErrors {
		result.Add(fe.Field(), message(fe))
	}
	return result
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value is at most %s.", fe.Param())
	case "min":
		return fmt.Sprintf("Ensure this value is at least %s.", fe.Param())
	case "username":
		return "Enter a valid username. It may contain only letters, digits and @/./+/-/_ characters."
	case "notreserved":
		return fmt.Sprintf("Username %q is reserved.", ReservedUsername)
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "role":
		return "Role must be one of: user, moderator, admin."
	case "dive", "gt":
		return fmt.Sprintf("Invalid value for %s.", fe.Field())
	default:
		return fmt.Sprintf("Failed on the %q rule.", fe.Tag())
	}
}
