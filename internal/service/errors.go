package service

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
)

var (
	// ErrSyncInProgress is returned when a database sync is already running.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrUnavailable is returned when an optional integration is not configured.
	ErrUnavailable = errors.New("service unavailable")
	// ErrUnauthorized is returned for bad credentials or a missing session.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError is a rejected request. Details carries per-field messages when present.
type ValidationError struct {
	Message string
	Details []FieldError
}

func (e *ValidationError) Error() string { return e.Message }

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NotFoundError is a missing resource with a client-facing message.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }
func (e *NotFoundError) Unwrap() error { return repository.ErrNotFound }

// ConflictError is a uniqueness or state conflict with a client-facing message.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
func (e *ConflictError) Unwrap() error { return repository.ErrConflict }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func notFound(msg string) error { return &NotFoundError{Message: msg} }

func conflict(msg string) error { return &ConflictError{Message: msg} }

func unavailable(reason string) error {
	return fmt.Errorf("%w: %s", ErrUnavailable, reason)
}

// orNotFound swaps a repository miss for a client-facing message.
func orNotFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(msg)
	}
	return err
}

// orConflict swaps a repository conflict for a client-facing message.
func orConflict(err error, msg string) error {
	if errors.Is(err, repository.ErrConflict) {
		return conflict(msg)
	}
	return err
}

var (
	validate  = newValidator()
	slugRegex = regexp.MustCompile(`^[a-z0-9-]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})
	return v
}

// check validates s against its struct tags and reports failures as a ValidationError.
func check(s any, message string) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate request: %w", err)
	}
	ve := &ValidationError{Message: message}
	for _, fe := range verrs {
		ve.Details = append(ve.Details, FieldError{Field: fieldPath(fe), Message: describe(fe)})
	}
	return ve
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "slug":
		return "must contain only lowercase letters, numbers and hyphens"
	}
	return "is invalid"
}
