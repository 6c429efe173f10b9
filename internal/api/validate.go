package api

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/constructsync/dashboard/internal/errors"
)

var validate = validator.New()

// Validate checks v's struct tags and reports the first failing field as a
// ValidationError.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperrors.NewValidationError(verrs[0].Field(), describe(verrs[0]))
	}
	return fmt.Errorf("validation failed: %w", err)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "datetime":
		return "must be a date like " + fe.Param()
	case "oneof":
		return "must be one of " + fe.Param()
	case "gte":
		return "cannot be negative"
	}
	return "is invalid"
}
