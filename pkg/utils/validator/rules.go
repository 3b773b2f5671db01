package validator

import (
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Custom validation tags
const (
	TagNotBlank = "notblank" // 去除首尾空白后非空
	TagFinite   = "finite"   // 浮点数不是 NaN 或 ±Inf
)

func (v *Validator) registerCustomRules() {
	_ = v.validate.RegisterValidation(TagNotBlank, validateNotBlank)
	_ = v.validate.RegisterValidation(TagFinite, validateFinite)
}

func validateNotBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return strings.TrimSpace(field.String()) != ""
}

func validateFinite(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		f := field.Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return false
	}
}
