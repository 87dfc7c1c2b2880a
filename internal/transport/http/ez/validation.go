package ez

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// 埃及手机号：01 + [0125] + 8 位数字
var egPhone = regexp.MustCompile(`^01[0125][0-9]{8}$`)

var validatorOnce sync.Once

// setupValidator 给 gin 的 validator 注册 egphone 规则，并让错误字段名使用 json tag
func setupValidator() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("egphone", func(fl validator.FieldLevel) bool {
			return egPhone.MatchString(fl.Field().String())
		})
	})
}

func fieldErrors(ves validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(ves))
	for _, fe := range ves {
		key := fe.Field()
		out[key] = append(out[key], fieldMessage(fe))
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	f := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", f)
	case "required_without":
		return fmt.Sprintf("The %s field is required when %s is not present.", f, strings.ToLower(fe.Param()))
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", f)
	case "egphone":
		return fmt.Sprintf("The %s field format is invalid.", f)
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", f, fe.Param())
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", f, fe.Param())
	case "eqfield":
		return fmt.Sprintf("The %s field confirmation does not match.", strings.TrimSuffix(f, " confirmation"))
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", f)
	default:
		return fmt.Sprintf("The %s field is invalid.", f)
	}
}
