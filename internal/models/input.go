package models

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/desertthunder/libcat/internal/shared"
	"github.com/go-playground/validator/v10"
)

// BookInput is the body of book create and update requests.
type BookInput struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

// ReaderInput is the body of reader create and update requests.
type ReaderInput struct {
	Name    string `json:"name" validate:"required,min=1,max=100"`
	Surname string `json:"surname" validate:"required,min=1,max=100"`
}

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func instance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidationErrors maps a field name to a human readable message.
//
// It wraps [shared.ErrInvalidInput] so callers can match it with [errors.Is].
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	keys := slices.Sorted(maps.Keys(v))
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, v[k])
	}
	return fmt.Sprintf("%v: %s", shared.ErrInvalidInput, strings.Join(msgs, "; "))
}

func (v ValidationErrors) Unwrap() error { return shared.ErrInvalidInput }

// Validate checks s against its validate tags and returns [ValidationErrors] on failure.
func Validate(s any) error {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	out := make(ValidationErrors, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
