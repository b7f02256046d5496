package validator

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	FailedField string `json:"field"`
	Tag         string `json:"tag"`
	Value       string `json:"value,omitempty"`
}

var validate = validator.New()

func init() {
	// decimal.Decimal se valida como float64 (gte, lte, gt...)
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	// Código de producto: sin espacios al borde ni caracteres de control.
	_ = validate.RegisterValidation("product_code", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		if strings.TrimSpace(code) != code || code == "" {
			return false
		}
		for _, r := range code {
			if unicode.IsControl(r) {
				return false
			}
		}
		return true
	})

	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateStruct corre los tags `validate` y devuelve un error por campo fallido (nil si todo ok).
func ValidateStruct(data interface{}) []*ErrorResponse {
	var errors []*ErrorResponse
	err := validate.Struct(data)
	if err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return []*ErrorResponse{{FailedField: "", Tag: "invalid", Value: err.Error()}}
		}
		for _, err := range verrs {
			var element ErrorResponse
			element.FailedField = err.Namespace()
			element.Tag = err.Tag()
			element.Value = err.Param()
			errors = append(errors, &element)
		}
	}
	return errors
}

// Summary une los errores en un mensaje corto para ErrorResponse.Message.
func Summary(errs []*ErrorResponse) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		if e.Value != "" {
			parts = append(parts, e.FailedField+" ("+e.Tag+"="+e.Value+")")
			continue
		}
		parts = append(parts, e.FailedField+" ("+e.Tag+")")
	}
	return "datos inválidos: " + strings.Join(parts, ", ")
}
