package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a single experiment validation failure.
type ValidationError struct {
	Field   string
	Tag     string
	Value   interface{}
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	switch e.Tag {
	case "required":
		return fmt.Sprintf("%s is required", e.Field)
	case "min":
		return fmt.Sprintf("%s is below the allowed minimum", e.Field)
	case "max":
		return fmt.Sprintf("%s is above the allowed maximum", e.Field)
	case "oneof":
		return fmt.Sprintf("%s is not one of the allowed values", e.Field)
	default:
		return fmt.Sprintf("%s failed validation", e.Field)
	}
}

// ValidationErrors aggregates every failure found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	messages := make([]string, len(e))
	for i, err := range e {
		messages[i] = err.Error()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// Validate checks an experiment against both struct tags and the engine's
// own construction-time rules.
func Validate(exp *Experiment) error {
	if exp == nil {
		return ValidationErrors{{
			Field:   "experiment",
			Tag:     "required",
			Message: "experiment is nil",
		}}
	}

	var validationErrors ValidationErrors

	if err := validator.New().Struct(exp); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, e := range errs {
				validationErrors = append(validationErrors, ValidationError{
					Field: e.Field(),
					Tag:   e.Tag(),
					Value: e.Value(),
				})
			}
		} else {
			validationErrors = append(validationErrors, ValidationError{Message: err.Error()})
		}
	}

	// The engine validates the same fields at construction; checking here too
	// lets a CLI reject a bad file before any model work starts.
	if err := exp.Engine.Validate(); err != nil {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "Engine",
			Message: err.Error(),
		})
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}
