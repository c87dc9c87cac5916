// Package validation runs struct-tag validation for service inputs and
// reports only the first failing field.
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/vora-labs/gogo-admin/pkg/errors"
)

var engine = New()

// New returns a validator that names fields by their json tag and knows the
// catalog-specific tags (decimal, urlorempty).
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("decimal", isDecimal)
	_ = v.RegisterValidation("urlorempty", isURLOrEmpty)
	return v
}

// Engine exposes the shared validator instance.
func Engine() *validator.Validate {
	return engine
}

// Struct validates v and converts the first failure into a CodeValidation error.
func Struct(v any) error {
	if err := engine.Struct(v); err != nil {
		return First(err)
	}
	return nil
}

// First converts a validator error into a single user-facing validation error.
func First(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) && len(errs) > 0 {
		fe := errs[0]
		field := fieldPath(fe)
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s %s", field, Message(fe))).
			WithDetails(map[string]any{"field": field})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

// Message renders the human text for a single field failure.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		switch fe.Kind() {
		case reflect.Slice:
			return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
		case reflect.String:
			if fe.Param() == "1" {
				return "is required"
			}
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", fe.Param())
	case "uuid", "uuid4":
		return "must be a valid uuid"
	case "email":
		return "must be a valid email"
	case "decimal":
		return "must be a decimal number"
	case "urlorempty", "url":
		return "must be a valid url"
	}
	return "is invalid"
}

// fieldPath strips the root struct name from the namespace, so nested
// failures read as "i18n[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func isDecimal(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	if raw == "" {
		return false
	}
	_, err := decimal.NewFromString(raw)
	return err == nil
}

func isURLOrEmpty(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	if raw == "" {
		return true
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}
