// Package validate checks route payloads against their schemas and maps
// failures onto client-facing field errors. It never returns a Go error to
// handlers; malformed input always produces a structured Result.
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one schema violation, keyed by the JSON field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of validating one submission.
type Result struct {
	Valid  bool
	Errors []FieldError
}

// FieldMap reshapes the errors into the field→message map returned in 400
// bodies. On duplicate fields the first message wins.
func (r Result) FieldMap() map[string]string {
	m := make(map[string]string, len(r.Errors))
	for _, e := range r.Errors {
		if _, ok := m[e.Field]; !ok {
			m[e.Field] = e.Message
		}
	}
	return m
}

// Has reports whether the result contains an error for the given field.
func (r Result) Has(field string) bool {
	for _, e := range r.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

var (
	phoneChars = regexp.MustCompile(`^[0-9+()\-\s]+$`)
	phoneStrip = regexp.MustCompile(`[^0-9+]`)
	bareDomain = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`)
	check      = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("phone", validPhone)
	_ = v.RegisterValidation("urlish", validURLish)
	return v
}

// validPhone accepts digits, +, spaces, parentheses and hyphens; after
// stripping everything but digits and + at least 10 characters must remain.
func validPhone(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if !phoneChars.MatchString(raw) {
		return false
	}
	return len(phoneStrip.ReplaceAllString(raw, "")) >= 10
}

// validURLish accepts a fully qualified http(s) URL or a bare domain.
// Normalization (prefixing https://) is the relay layer's job.
func validURLish(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		u, err := url.Parse(raw)
		return err == nil && u.Host != ""
	}
	return bareDomain.MatchString(strings.ToLower(raw))
}

// Check validates a bound request struct and returns a structured result.
func Check(req any) Result {
	err := check.Struct(req)
	if err == nil {
		return Result{Valid: true}
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return Result{Errors: []FieldError{{Field: "_", Message: "invalid payload"}}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fieldName(fe), Message: message(fe)})
	}
	return Result{Errors: out}
}

// fieldName strips the root struct name from the namespace so nested fields
// come out as e.g. "intake.business_type".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "urlish":
		return "must be a valid URL or domain"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must have at least " + fe.Param() + " items"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must have at most " + fe.Param() + " items"
		}
		return "must be at most " + fe.Param() + " characters"
	case "eq":
		if fe.Param() == "true" {
			return "must be accepted"
		}
		return "must equal " + fe.Param()
	case "isdefault":
		return "must be empty"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
