// Package rule 基于 go-playground/validator 的请求校验. 使用独立实例与 `rule` 标签，
// 不影响 gin 自带的 `binding` 校验；字段名取 json 标签，错误信息可直接返回给客户端.
package rule

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// 领域别名，请求结构体通过 `rule:"displayname"` 等引用.
const (
	AliasDisplayName = "displayname"
	AliasUserAge     = "userage"
)

var (
	inst *validator.Validate
	once sync.Once
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.SetTagName("rule")
		v.RegisterTagNameFunc(jsonName)

		if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
			panic(fmt.Sprintf("rule: register notblank: %v", err))
		}

		v.RegisterAlias(AliasDisplayName, "notblank,min=2,max=50")
		v.RegisterAlias(AliasUserAge, "min=13,max=120")

		inst = v
	})

	return inst
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}

	return name
}

// ValidationErrors 字段名（json 标签）到可读错误信息的映射.
type ValidationErrors map[string]string

// ValidateStruct 校验结构体，返回的错误可交给 Errors 或 First 解析.
func ValidateStruct(s any) error {
	return engine().Struct(s)
}

// Errors 把校验错误转换为字段映射，非校验错误返回 nil.
func Errors(err error) ValidationErrors {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(ValidationErrors, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = Message(fe)
	}

	return out
}

// First 返回第一条可读错误信息.
func First(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return Message(verrs[0])
	}

	if err != nil {
		return err.Error()
	}

	return ""
}

// Message 把单个字段错误翻译成可读文本. 别名展开后按实际失败的规则描述.
func Message(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()

	unit := ""
	switch fe.Kind() {
	case reflect.String:
		unit = " characters"
	case reflect.Slice, reflect.Array, reflect.Map:
		unit = " items"
	}

	switch fe.ActualTag() {
	case "required", "notblank":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	default:
		return fmt.Sprintf("%s failed on the '%s' rule", field, fe.ActualTag())
	}
}
