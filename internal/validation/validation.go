// Package validation wraps go-playground/validator with the custom rules used
// by request DTOs and turns validation failures into aggregated user-facing
// messages.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/neptunetech/storefront/internal/apperrors"
)

// Messager is implemented by DTOs that provide user-facing messages for their
// rules. Keys are "<StructField>.<tag>", for nested structs too.
type Messager interface {
	ValidationMessages() map[string]string
}

// Float64Valuer is implemented by field types that validate as a float64.
type Float64Valuer interface {
	Float64Value() float64
}

var colorCodeRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}){1,2}$`)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator with the custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("colorcode", func(fl validator.FieldLevel) bool {
			return colorCodeRegex.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("nonnegative", func(fl validator.FieldLevel) bool {
			f := fl.Field().Float()
			return !math.IsNaN(f) && !math.IsInf(f, 0) && f >= 0
		})
		instance = v
	})
	return instance
}

// RegisterFloat64Type lets fields of the given types be validated as float64
// through their Float64Value method.
func RegisterFloat64Type(types ...any) {
	Validator().RegisterCustomTypeFunc(func(field reflect.Value) any {
		if fv, ok := field.Interface().(Float64Valuer); ok {
			return fv.Float64Value()
		}
		return nil
	}, types...)
}

// Struct validates s and returns an apperrors validation error whose message
// joins the message of every failed rule, in field order. A message repeats
// when the same rule fails on several list elements.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %T: %w", s, err)
	}

	var messages map[string]string
	if m, ok := s.(Messager); ok {
		messages = m.ValidationMessages()
	}

	out := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.StructField()+"."+fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		out = append(out, msg)
	}
	return apperrors.NewValidationError(out...)
}
