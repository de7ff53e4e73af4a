package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	errors "github.com/frahmantamala/campus-fixit/internal"
)

var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

type ValidatorFunc func(value string) *errors.AppError

type FieldValidator struct {
	FieldName  string
	Value      string
	Validators []ValidatorFunc
}

// ValidationBuilder collects per-field rules. Within a field the rules run in
// order and stop at the first failure; fields are reported in declaration order.
type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{fields: make([]*FieldValidator, 0)}
}

func (v *ValidationBuilder) Field(name, value string) *FieldValidator {
	fv := &FieldValidator{
		FieldName:  name,
		Value:      value,
		Validators: make([]ValidatorFunc, 0),
	}
	v.fields = append(v.fields, fv)
	return fv
}

// Required treats whitespace-only input as missing. An empty message falls
// back to "<field> is required".
func (fv *FieldValidator) Required(message string) *FieldValidator {
	if message == "" {
		message = fmt.Sprintf("%s is required", fv.FieldName)
	}
	fv.Validators = append(fv.Validators, func(value string) *errors.AppError {
		if strings.TrimSpace(value) == "" {
			return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeValidationFailed)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email(message string) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value string) *errors.AppError {
		if !emailPattern.MatchString(value) {
			return errors.NewValidationFieldError(fv.FieldName, message, errors.ErrCodeInvalidEmail)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) MinLength(min int, message string, code errors.ErrorCode) *FieldValidator {
	if message == "" {
		message = fmt.Sprintf("%s must be at least %d characters", fv.FieldName, min)
	}
	fv.Validators = append(fv.Validators, func(value string) *errors.AppError {
		if utf8.RuneCountInString(value) < min {
			return errors.NewValidationFieldError(fv.FieldName, message, code)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) OneOf(allowed []string, message string, code errors.ErrorCode) *FieldValidator {
	fv.Validators = append(fv.Validators, func(value string) *errors.AppError {
		for _, a := range allowed {
			if value == a {
				return nil
			}
		}
		return errors.NewValidationFieldError(fv.FieldName, message, code)
	})
	return fv
}

func (fv *FieldValidator) Custom(validator ValidatorFunc) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

// Validate returns nil when every field passes. Otherwise the returned error
// carries the first failure as its message and every failure in Details.
func (v *ValidationBuilder) Validate() *errors.AppError {
	var (
		first            *errors.AppError
		validationErrors []errors.ValidationError
	)

	for _, field := range v.fields {
		for _, validator := range field.Validators {
			err := validator(field.Value)
			if err == nil {
				continue
			}
			if first == nil {
				first = err
			}
			validationErrors = append(validationErrors, errors.ValidationError{
				Field:   field.FieldName,
				Message: err.Message,
				Code:    string(err.Code),
			})
			break
		}
	}

	if first == nil {
		return nil
	}

	return errors.NewValidationError(first.Message, first.Code).
		WithDetails(errors.ValidationErrors{Errors: validationErrors})
}
