// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

// Package validation wraps go-playground/validator v10 with a thread-safe
// singleton, the custom tags used by configuration structs and input
// records, and readable error messages.
//
// Custom tags:
//   - unitinterval: float in [0, 1]
//   - algorithm: auto, percentage, tfidf, bm25 or zscore
//   - similarity: cosine or jaccard
//
// Example:
//
//	type Weights struct {
//	    Content float64 `validate:"unitinterval"`
//	}
//	if err := validation.ValidateStruct(&w); err != nil {
//	    return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed field constraint.
type FieldError struct {
	Namespace string
	Field     string
	Tag       string
	Param     string
	Value     any
	Message   string
}

func (e FieldError) Error() string {
	return e.Message
}

// Errors aggregates the field failures of one struct.
type Errors []FieldError

func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve))
	for i, fe := range ve {
		messages[i] = fe.Message
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the singleton validator.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		mustRegister(v, "unitinterval", func(fl validator.FieldLevel) bool {
			f := fl.Field().Float()
			return f >= 0 && f <= 1
		})
		mustRegister(v, "algorithm", func(fl validator.FieldLevel) bool {
			switch fl.Field().String() {
			case "auto", "percentage", "tfidf", "bm25", "zscore":
				return true
			}
			return false
		})
		mustRegister(v, "similarity", func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			return s == "cosine" || s == "jaccard"
		})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// ValidateStruct validates s. It returns nil or an Errors value.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return Errors{{Field: "unknown", Tag: "unknown", Message: err.Error()}}
	}

	out := make(Errors, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Namespace: fe.Namespace(),
			Field:     fe.Field(),
			Tag:       fe.Tag(),
			Param:     fe.Param(),
			Value:     fe.Value(),
			Message:   translate(fe),
		}
	}
	return out
}

var messageTemplates = map[string]string{
	"required":     "%s is required",
	"unitinterval": "%s must be between 0 and 1",
	"algorithm":    "%s must be one of: auto percentage tfidf bm25 zscore",
	"similarity":   "%s must be one of: cosine jaccard",
	"latitude":     "%s must be a valid latitude (-90 to 90)",
	"longitude":    "%s must be a valid longitude (-180 to 180)",
}

var paramTemplates = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
	"min":   "%s must be at least %s",
	"max":   "%s must be at most %s",
}

func translate(fe validator.FieldError) string {
	field := fe.Namespace()
	if field == "" {
		field = fe.Field()
	}
	if tmpl, ok := messageTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := paramTemplates[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
}
