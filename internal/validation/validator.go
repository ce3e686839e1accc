// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

// Package validation provides struct validation using go-playground/validator v10.
// It provides a thread-safe singleton validator instance shared by the
// configuration layer and by every stage boundary of the pipeline.
//
// Features:
//   - Singleton validator instance (thread-safe, caches struct info)
//   - Field names reported by their column name (csv tag) when present
//   - SchemaError aggregating row-level failures for a whole table
//   - Uses WithRequiredStructEnabled option (v11+ compatibility)
//
// Example usage:
//
//	if err := validation.ValidateRows("scored_customers", rows); err != nil {
//	    return fmt.Errorf("segment: %w", err)
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// maxReportedRows caps how many failing rows a SchemaError keeps.
const maxReportedRows = 10

// ValidationError represents a single field validation error with structured information.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   interface{}
	message string
}

// Field returns the field (or column) name that failed validation.
func (e *ValidationError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string {
	return e.tag
}

// Param returns the parameter for the validation tag (e.g., "5" for "max=5").
func (e *ValidationError) Param() string {
	return e.param
}

// Value returns the actual value that failed validation.
func (e *ValidationError) Value() interface{} {
	return e.value
}

// Error returns a human-readable error message.
func (e *ValidationError) Error() string {
	return e.message
}

// StructValidationError represents a collection of validation errors for one struct.
type StructValidationError struct {
	errors []ValidationError
}

// Errors returns the slice of validation errors.
func (ve *StructValidationError) Errors() []ValidationError {
	return ve.errors
}

// Error implements the error interface, returning a combined error message.
func (ve *StructValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}

	messages := make([]string, 0, len(ve.errors))
	for _, err := range ve.errors {
		messages = append(messages, err.Error())
	}

	return strings.Join(messages, "; ")
}

// RowFailure records the validation errors of one row.
type RowFailure struct {
	Row    int // zero-based position in the table
	Errors []ValidationError
}

// SchemaError is returned when rows crossing a stage boundary violate the
// typed schema. It lists the first failing rows and the total count.
type SchemaError struct {
	Table  string
	Failed int
	Rows   []RowFailure
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %s: %d invalid row(s)", e.Table, e.Failed)
	for _, r := range e.Rows {
		for _, fe := range r.Errors {
			fmt.Fprintf(&b, "; row %d: %s", r.Row, fe.message)
		}
	}
	if e.Failed > len(e.Rows) {
		fmt.Fprintf(&b, "; and %d more", e.Failed-len(e.Rows))
	}
	return b.String()
}

// GetValidator returns the singleton validator instance.
// The validator is initialized once with custom options.
// This function is thread-safe.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report column names (csv tag) so errors read like the input files.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("csv"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})

	return validate
}

// ValidateStruct validates a struct using the singleton validator.
// Returns nil if validation passes, or a *StructValidationError if validation fails.
func ValidateStruct(s interface{}) error {
	v := GetValidator()

	err := v.Struct(s)
	if err == nil {
		return nil
	}

	return toStructError(err)
}

// ValidateRows validates every row of a table and aggregates failures into a
// *SchemaError. Returns nil when all rows pass.
func ValidateRows[T any](table string, rows []T) error {
	v := GetValidator()
	schemaErr := &SchemaError{Table: table}

	for i := range rows {
		err := v.Struct(&rows[i])
		if err == nil {
			continue
		}
		schemaErr.Failed++
		if len(schemaErr.Rows) < maxReportedRows {
			schemaErr.Rows = append(schemaErr.Rows, RowFailure{
				Row:    i,
				Errors: toStructError(err).errors,
			})
		}
	}

	if schemaErr.Failed == 0 {
		return nil
	}
	return schemaErr
}

// toStructError converts validator errors to our StructValidationError type.
func toStructError(err error) *StructValidationError {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		// Unexpected error type - wrap it
		return &StructValidationError{
			errors: []ValidationError{
				{
					field:   "unknown",
					tag:     "unknown",
					message: err.Error(),
				},
			},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: translateError(fieldErr),
		}
	}

	return &StructValidationError{errors: fieldErrors}
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"datetime": "%s must be a valid date/time",
}

// errorMessageWithParam maps validation tags to templates that include param.
var errorMessageWithParam = map[string]string{
	"oneof":    "%s must be one of: %s",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
	"gt":       "%s must be greater than %s",
	"lt":       "%s must be less than %s",
	"gtefield": "%s must be greater than or equal to %s",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}

	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}

	return translateMinMax(fe, field, tag, param)
}

// translateMinMax handles min/max validation with type-specific messages.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind().String() == "string"

	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
