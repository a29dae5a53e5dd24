package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mundotea/mundotea-backend/internal/platform/apierr"
)

const notBlankTag = "notblank"

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())

	// Use JSON tag names in messages; clients send the Portuguese field names.
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = val.RegisterValidation(notBlankTag, notBlank)
	return val
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() == reflect.Ptr {
		if field.IsNil() {
			return false
		}
		field = field.Elem()
	}
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

// Struct validates s and reports the first failing field as a validation error.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apierr.Validation("dados inválidos: %v", err)
	}
	return apierr.Validation("%s", message(fieldErrs[0]))
}

// Var validates a single value against tag.
func Var(field string, value any, tag string) error {
	if err := v.Var(value, tag); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apierr.Validation("%s", messageFor(field, fe.Tag(), fe.Param()))
		}
		return apierr.Validation("campo inválido: %s", field)
	}
	return nil
}

func message(fe validator.FieldError) string {
	return messageFor(fe.Field(), fe.Tag(), fe.Param())
}

func messageFor(field, tag, param string) string {
	switch tag {
	case "required", notBlankTag:
		return "campo obrigatório: " + field
	case "email":
		return "email inválido: " + field
	case "min", "gte":
		return "valor abaixo do mínimo (" + param + "): " + field
	case "max", "lte":
		return "valor acima do máximo (" + param + "): " + field
	case "uuid", "uuid4":
		return "identificador inválido: " + field
	case "datetime":
		return "data inválida (use " + param + "): " + field
	default:
		return "campo inválido: " + field
	}
}
