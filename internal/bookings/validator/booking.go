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
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type BookingValidator struct {
	validate         *validator.Validate
	maxDurationHours int
	logger           *logger.Logger
}

func NewBookingValidator(log *logger.Logger, maxDurationHours int) *BookingValidator {
	v := validator.New()

	if err := v.RegisterValidation("calendar_date", validateCalendarDate); err != nil {
		log.Fatal("Failed to register 'calendar_date' validator", "error", err)
	}
	if err := v.RegisterValidation("clock_time", validateClockTime); err != nil {
		log.Fatal("Failed to register 'clock_time' validator", "error", err)
	}

	log.Info("Booking validator initialized successfully", "max_duration_hours", maxDurationHours)

	return &BookingValidator{
		validate:         v,
		maxDurationHours: maxDurationHours,
		logger:           log,
	}
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	return model.IsCalendarDate(fl.Field().String())
}

func validateClockTime(fl validator.FieldLevel) bool {
	_, err := model.ClockMinutes(fl.Field().String())
	return err == nil
}

func (v *BookingValidator) Validate(req *model.BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.ValidateSlot(req.Time, req.Duration)
}

// ValidateSlot checks that a booking starting at clock for durationHours
// respects the duration cap and stays inside its calendar day.
func (v *BookingValidator) ValidateSlot(clock string, durationHours int) error {
	if durationHours > v.maxDurationHours {
		return ValidationErrors{
			ValidationError{
				Field:   "Duration",
				Message: fmt.Sprintf("duration must be at most %d hours", v.maxDurationHours),
			},
		}
	}

	interval, err := model.NewSlotInterval(clock, durationHours)
	if err != nil {
		return ValidationErrors{
			ValidationError{Field: "Time", Message: err.Error()},
		}
	}
	if !interval.FitsInDay() {
		return ValidationErrors{
			ValidationError{
				Field:   "Duration",
				Message: "booking must end by midnight of its date",
			},
		}
	}
	return nil
}

func (v *BookingValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "calendar_date":
			message = fmt.Sprintf("%s must be a calendar date in YYYY-MM-DD format", err.Field())
		case "clock_time":
			message = fmt.Sprintf("%s must be a 24h clock time in HH:MM format", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
