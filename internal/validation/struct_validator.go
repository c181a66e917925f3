package validation

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/Yuri05/OSPSuite.Core/internal/errors"
)

// FieldError describes one failed struct constraint
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// StructValidator validates tagged configuration and descriptor structs.
type StructValidator struct {
	validate *validator.Validate
}

var (
	defaultOnce      sync.Once
	defaultValidator *StructValidator
)

// Default returns a process wide validator. validator.Validate caches struct
// metadata and is safe for concurrent use.
func Default() *StructValidator {
	defaultOnce.Do(func() {
		defaultValidator = NewStructValidator()
	})
	return defaultValidator
}

// NewStructValidator creates a validator with the custom tags registered
func NewStructValidator() *StructValidator {
	v := validator.New()

	_ = v.RegisterValidation("filename", isValidFilename)
	_ = v.RegisterValidation("delimiter", isValidDelimiter)

	// report yaml names, falling back to json, so messages match config files
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"yaml", "json"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &StructValidator{validate: v}
}

// Struct validates s and returns a validation AppError listing every failed field
func (sv *StructValidator) Struct(s interface{}) error {
	err := sv.validate.Struct(s)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewAppError(apperrors.ErrTypeValidation, "validation failed", err)
	}

	details := FieldErrors(fieldErrs)
	messages := make([]string, len(details))
	for i, d := range details {
		messages[i] = d.Message
	}
	appErr := apperrors.NewAppError(apperrors.ErrTypeValidation, strings.Join(messages, "; "), err)
	appErr.WithContext("fields", details)
	return appErr
}

// FieldErrors converts validator errors to FieldError values
func FieldErrors(errs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		out = append(out, FieldError{
			Field:   e.Namespace(),
			Tag:     e.Tag(),
			Message: formatValidationError(e),
		})
	}
	return out
}

func formatValidationError(err validator.FieldError) string {
	field := err.Namespace()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "required_unless":
		return fmt.Sprintf("%s is required unless %s", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "filename":
		return fmt.Sprintf("%s must be a valid filename", field)
	case "delimiter":
		return fmt.Sprintf("%s must be a single character", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

func isValidFilename(fl validator.FieldLevel) bool {
	filename := fl.Field().String()
	if filename == "" {
		return false
	}
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return false
	}
	return len(filename) <= 255
}

func isValidDelimiter(fl validator.FieldLevel) bool {
	return len([]rune(fl.Field().String())) == 1
}
