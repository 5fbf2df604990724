// Package models defines the domain types shared by every layer, along with
// the request payloads the API accepts and their validation rules.
package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		for _, ch := range fl.Field().String() {
			if !isValidUsernameChar(ch) {
				return false
			}
		}
		return true
	})

	return v
}

// validateStruct runs the struct tags of s and turns the first failure into
// a readable message.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Errorf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Errorf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Errorf("%s must be at most %s characters", fe.Field(), fe.Param())
		}
		return fmt.Errorf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Errorf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "username":
		return fmt.Errorf("%s can only contain letters, numbers, and underscores", fe.Field())
	default:
		return fmt.Errorf("%s is invalid", fe.Field())
	}
}

func isValidUsernameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '_'
}
