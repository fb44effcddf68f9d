package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Alexandre-Ke/BUT3-QUAL-DEV-Groupe14/internal/core/domain"
)

// echoValidator wraps go-playground/validator so Echo can call c.Validate(req).
type echoValidator struct {
	v *validator.Validate
}

type customTag struct {
	name string
	fn   validator.Func
}

var customTags = []customTag{
	{"account_number", func(fl validator.FieldLevel) bool {
		return domain.ValidateAccountNumber(fl.Field().String()) == nil
	}},
	{"client_number", func(fl validator.FieldLevel) bool {
		return domain.ValidateClientNumber(fl.Field().String()) == nil
	}},
}

// NewValidator returns an echoValidator ready to be assigned to echo.Echo.Validator.
// Besides the built-in tags it knows account_number and client_number. It
// panics if a tag cannot be registered.
func NewValidator() *echoValidator {
	v := validator.New()
	if err := registerTags(v, customTags); err != nil {
		panic(err)
	}
	return &echoValidator{v: v}
}

func registerTags(v *validator.Validate, tags []customTag) error {
	for _, t := range tags {
		if err := v.RegisterValidation(t.name, t.fn); err != nil {
			return fmt.Errorf("register %q validation: %w", t.name, err)
		}
	}
	return nil
}

// Validate satisfies the echo.Validator interface.
func (ev *echoValidator) Validate(i any) error {
	if err := ev.v.Struct(i); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return fmt.Errorf("%s", strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "account_number":
		return field + " must be two capital letters followed by 10 digits"
	case "client_number":
		return field + " must be exactly 10 digits"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
