package shared

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Messages maps "<jsonField>.<tag>" to the message reported when that rule
// fails. A "<jsonField>.type" entry is used when the body carries the wrong
// JSON type for the field.
type Messages map[string]string

const invalidBodyMessage = "Invalid request body"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	_ = v.RegisterValidation("address", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate checks s against its struct tags and converts the first failure
// into a validation error carrying the configured message.
func Validate(s any, msgs Messages) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return Validation(invalidBodyMessage)
	}
	fe := fieldErrs[0]
	if msg, ok := msgs[fe.Field()+"."+fe.Tag()]; ok {
		return Validation(msg)
	}
	return Validation("Invalid " + fe.Field())
}

// DecodeError converts a JSON decoding failure into a validation error. Type
// mismatches on a known field report that field's message.
func DecodeError(err error, msgs Messages) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		field := typeErr.Field
		if i := strings.LastIndex(field, "."); i >= 0 {
			field = field[i+1:]
		}
		if msg, ok := msgs[field+".type"]; ok {
			return Validation(msg)
		}
		if msg, ok := msgs[field+".required"]; ok {
			return Validation(msg)
		}
	}
	return Validation(invalidBodyMessage)
}
