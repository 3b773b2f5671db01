// Package validator 包装 go-playground/validator，注册自定义规则并以 json 标签命名字段，
// 校验失败时返回 *ValidationErrors。
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Validator 结构体校验器，可并发使用。
type Validator struct {
	validate *validator.Validate
}

var (
	globalMu sync.RWMutex
	global   = New()
)

// New 创建校验器。
func New() *Validator {
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
	v.validate.RegisterTagNameFunc(jsonTagName)
	v.registerCustomRules()
	return v
}

// Global 返回进程级校验器。
func Global() *Validator {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// SetGlobal 替换进程级校验器。
func SetGlobal(v *Validator) {
	globalMu.Lock()
	global = v
	globalMu.Unlock()
}

// Struct 校验结构体。字段校验失败时返回 *ValidationErrors，其它错误原样返回。
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationErrors{Errors: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Errors = append(out.Errors, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: message(fe),
		})
	}
	return out
}

// FieldError 单个字段的校验失败。
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors 一次校验的全部失败字段。
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

// Error 以 "; " 连接各字段消息。
func (e *ValidationErrors) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return ""
	}
	msgs := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Has 判断指定字段是否校验失败。
func (e *ValidationErrors) Has(field string) bool {
	if e == nil {
		return false
	}
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case TagNotBlank:
		return fmt.Sprintf("%s must not be blank", fe.Field())
	case TagFinite:
		return fmt.Sprintf("%s must be a finite number", fe.Field())
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag())
	}
}

func jsonTagName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return f.Name
	}
	return name
}
