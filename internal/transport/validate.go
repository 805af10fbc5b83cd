package transport

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/sweet_shop/internal/domain"
	"github.com/Skotchmaster/sweet_shop/internal/hash"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// Validator checks request bodies against their `validate` tags and reports
// failures as domain validation errors keyed by JSON field name.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("not_numeric", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.TrimFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) != ""
	})
	_ = v.RegisterValidation("bcrypt_len", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= hash.MaxPasswordBytes
	})
	return &Validator{v: v}
}

func (rv *Validator) Validate(i any) error {
	err := rv.v.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	ve := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), message(fe))
	}
	return ve.OrNil()
}

func message(fe validator.FieldError) string {
	text := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min":
		if text {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must contain at least %s items", fe.Param())
	case "max":
		if text {
			return fmt.Sprintf("must be at most %s characters long", fe.Param())
		}
		return fmt.Sprintf("must contain at most %s items", fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("must be greater than %s", orEqual(fe))
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "eqfield":
		return "passwords do not match"
	case "nefield":
		return "new password must be different from the old password"
	case "username":
		return "may only contain letters, digits and @/./+/-/_ characters"
	case "bcrypt_len":
		return fmt.Sprintf("must be at most %d bytes long", hash.MaxPasswordBytes)
	case "not_numeric":
		return "password cannot be entirely numeric"
	default:
		return "is invalid"
	}
}

func orEqual(fe validator.FieldError) string {
	if fe.Tag() == "gte" {
		return "or equal to " + fe.Param()
	}
	return fe.Param()
}
