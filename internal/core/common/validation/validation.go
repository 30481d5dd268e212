package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	apperrors "github.com/frahmantamala/warehouse-management/internal"
	"github.com/go-playground/validator/v10"
)

var (
	validate    = newValidator()
	storeIDExpr = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("store_id", func(fl validator.FieldLevel) bool {
		return storeIDExpr.MatchString(fl.Field().String())
	})
	return v
}

// Struct runs the struct's validate tags and converts failures into a
// VALIDATION_FAILED AppError listing every offending field.
func Struct(s interface{}) *apperrors.AppError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(err.Error(), apperrors.ErrCodeValidationFailed)
	}

	out := make([]apperrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apperrors.ValidationError{
			Field:   fe.Field(),
			Message: message(fe),
			Code:    strings.ToUpper(fe.Tag()),
		})
	}
	return apperrors.NewValidationError("Validation failed", apperrors.ErrCodeValidationFailed).
		WithDetails(apperrors.ValidationErrors{Errors: out})
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must not exceed %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "store_id":
		return fmt.Sprintf("%s must be 1-32 letters, digits, dashes or underscores", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func ValidateQuantity(field string, quantity int) *apperrors.AppError {
	if quantity < 0 {
		return apperrors.NewValidationFieldError(field, fmt.Sprintf("%s cannot be negative", field), apperrors.ErrCodeInvalidQuantity)
	}
	return nil
}

func ValidateStoreID(storeID string) *apperrors.AppError {
	if !storeIDExpr.MatchString(storeID) {
		return apperrors.NewValidationFieldError("storeId", "storeId must be 1-32 letters, digits, dashes or underscores", apperrors.ErrCodeInvalidStore)
	}
	return nil
}
