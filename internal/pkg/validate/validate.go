package validate

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. It is initialised once at
// package load time. Field names reported in errors are the JSON names.
var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// maxbytes bounds the encoded length; bcrypt rejects input over 72 bytes.
	if err := val.RegisterValidation("maxbytes", maxBytes); err != nil {
		panic(err)
	}
	return val
}

func maxBytes(fl validator.FieldLevel) bool {
	n, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(fl.Field().String()) <= n
}

// Result holds field-keyed validation messages. An empty Result is valid.
type Result struct {
	Errors map[string]string
}

func (r Result) Valid() bool { return len(r.Errors) == 0 }

// Struct validates s against its validate tags. Only the first failing rule
// per field is reported.
func Struct(s interface{}) Result {
	res := Result{Errors: map[string]string{}}
	err := v.Struct(s)
	if err == nil {
		return res
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		res.Errors["body"] = "invalid request body"
		return res
	}
	for _, fe := range ve {
		if _, seen := res.Errors[fe.Field()]; seen {
			continue
		}
		res.Errors[fe.Field()] = message(fe)
	}
	return res
}

func message(fe validator.FieldError) string {
	label := Label(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " field is required"
	case "email":
		return label + " is invalid"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", label, fe.Param())
	default:
		return fmt.Sprintf("%s failed '%s'", label, fe.Tag())
	}
}

// Label turns a JSON field name into the capitalised form used in messages.
func Label(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
