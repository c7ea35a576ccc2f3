package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/analyst/internal/common"
)

// requestValidator checks decoded request bodies against their validate tags.
// Field names in errors use the json tag.
var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// ticker: letters, digits and '.', see common.ValidateTicker
	v.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
		_, err := common.ValidateTicker(fl.Field().String())
		return err == nil
	})
	// notblank: required after trimming whitespace
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// ValidateRequest runs struct validation on req. Failures wrap
// common.ErrValidation with a message naming the first bad field.
func ValidateRequest(req interface{}) error {
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return fieldError(fieldErrs[0])
}

func fieldError(fe validator.FieldError) error {
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Errorf("%w: %s is required", common.ErrValidation, fe.Field())
	case "ticker":
		value, _ := fe.Value().(string)
		if _, err := common.ValidateTicker(value); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %s failed %s validation", common.ErrValidation, fe.Field(), fe.Tag())
}
