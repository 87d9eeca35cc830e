package router

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "goaltracker/internal/errors"
)

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator reports fields by their JSON names.
func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &CustomValidator{validator: v}
}

// Validate implements echo.Validator interface. Failures wrap ErrValidationFailed.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return describe(fieldErrs[0])
	}
	return apperrors.Validation("%s", err.Error())
}

func describe(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required":
		return apperrors.Validation("%s is required", fe.Field())
	case "email":
		return apperrors.Validation("%s must be a valid email address", fe.Field())
	case "min":
		return apperrors.Validation("%s must be at least %s characters", fe.Field(), fe.Param())
	case "len":
		return apperrors.Validation("%s must be exactly %s characters", fe.Field(), fe.Param())
	case "numeric":
		return apperrors.Validation("%s must contain only digits", fe.Field())
	default:
		return apperrors.Validation("%s failed the %s check", fe.Field(), fe.Tag())
	}
}
