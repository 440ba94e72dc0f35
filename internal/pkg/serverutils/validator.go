package serverutils

import (
	"errors"
	"reflect"
	"strings"

	"podcast-be/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// SupportedCurrencies are the ISO codes accepted by the "currency" tag, in
// any letter case.
var SupportedCurrencies = []string{"USD", "EUR", "GBP", "INR"}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		code := strings.ToUpper(fl.Field().String())
		for _, c := range SupportedCurrencies {
			if c == code {
				return true
			}
		}
		return false
	})
	return v
}

// ValidateRequest runs struct tag validation and reports failures per field.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return apperror.Validation(err.Error())
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		fields[fe.Field()] = describe(fe)
	}
	return apperror.ValidationFields("validation failed", fields)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "currency":
		return "must be one of: " + strings.Join(SupportedCurrencies, " ")
	case "eqfield":
		return "must match " + fe.Param()
	case "alphanum":
		return "must contain only letters and digits"
	default:
		return "failed on " + fe.Tag()
	}
}
