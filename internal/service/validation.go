package service

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError maps form field names to human-readable messages. It is
// returned before any side effect: a form that fails validation never
// touches the media store or the repository.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed on fields: %s", strings.Join(names, ", "))
}

// productFields holds the coerced text fields for struct validation.
type productFields struct {
	Name         string `validate:"required"`
	Description  string `validate:"required"`
	PriceInCents int64  `validate:"required,min=1"`
}

// validateForm applies the create/update validation rules. With
// requireUploads the file and image must be present and non-empty; without
// it an empty upload means "keep the existing asset". Returns the coerced
// price on success.
func (s *Service) validateForm(form ProductForm, requireUploads bool) (int64, *ValidationError) {
	fields := make(map[string]string)

	price, priceErr := strconv.ParseInt(strings.TrimSpace(form.PriceInCents), 10, 64)
	if err := s.validate.Struct(productFields{
		Name:         form.Name,
		Description:  form.Description,
		PriceInCents: price,
	}); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			for _, fieldErr := range validationErrors {
				fields[formFieldName(fieldErr.Field())] = messageForTag(fieldErr.Tag())
			}
		}
	}
	if priceErr != nil {
		fields["priceInCents"] = "Expected a whole number of cents"
	}

	if requireUploads {
		if form.File.empty() {
			fields["file"] = "Required"
		}
		if form.Image.empty() {
			fields["image"] = "Required"
		}
	}
	if !form.Image.empty() && !strings.HasPrefix(form.Image.ContentType, "image/") {
		fields["image"] = "Must be an image"
	}

	if len(fields) > 0 {
		return 0, &ValidationError{Fields: fields}
	}
	return price, nil
}

// formFieldName maps struct field names back to their form counterparts.
func formFieldName(structField string) string {
	switch structField {
	case "Name":
		return "name"
	case "Description":
		return "description"
	case "PriceInCents":
		return "priceInCents"
	default:
		return structField
	}
}

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "Required"
	case "min":
		return "Must be at least 1"
	default:
		return "failed on rule: " + tag
	}
}
