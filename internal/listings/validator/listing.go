package validator

import (
	"errors"
	"fmt"
	"strings"

	"servicehub/pkg/logger"
	"servicehub/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

type ListingValidator struct {
	validate *validator.Validate
}

func NewListingValidator(log *logger.Logger) *ListingValidator {
	v := validator.New()

	if err := v.RegisterValidation("listing_category", validateCategory); err != nil {
		log.Fatal("Failed to register 'listing_category' validator", "error", err)
	}

	return &ListingValidator{
		validate: v,
	}
}

func validateCategory(fl validator.FieldLevel) bool {
	return model.IsListingCategory(fl.Field().String())
}

func (v *ListingValidator) Validate(req *model.ListingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ListingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		var message string
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "gte", "lte":
			message = fmt.Sprintf("%s must be between 0 and 10000", err.Field())
		case "listing_category":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), strings.Join(model.ListingCategories, ", "))
		default:
			message = err.Error()
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
