package validation

import (
	"encoding/json"
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.]{3,30}$`)

var (
	once     sync.Once
	standard *validator.Validate
)

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for common validations.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		register(v)
	}
}

// Struct validates s with the same rules used by request binding. Services call
// it so that validation holds regardless of the transport.
func Struct(s any) error {
	return engine().Struct(s)
}

// Var validates a single value against tag.
func Var(field any, tag string) error {
	return engine().Var(field, tag)
}

func engine() *validator.Validate {
	once.Do(func() {
		standard = validator.New(validator.WithRequiredStructEnabled())
		register(standard)
	})
	return standard
}

func register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	_ = v.RegisterValidation("uname", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	// Aliases for common semantics
	v.RegisterAlias("pwd", "min=6,max=72") // bcrypt ignores bytes past 72
	v.RegisterAlias("gender", "oneof=male female")
	v.RegisterAlias("role", "oneof=member admin")
	v.RegisterAlias("accounttype", "oneof=student teacher institute")
	v.RegisterAlias("phone", "e164")
}

// ToDetails converts validation/binding errors into a map[field]message suitable for API error.details.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	// Invalid JSON payloads
	var se *json.SyntaxError
	var ute *json.UnmarshalTypeError
	if errors.As(err, &se) || errors.As(err, &ute) {
		return map[string]string{"payload": "invalid json"}
	}
	if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return map[string]string{strings.Trim(field, `"`): "unknown field"}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"payload": "invalid payload"}
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	case "e164", "phone":
		return "must be a valid phone number"
	case "uname":
		return "must be 3-30 characters of letters, digits, '_' or '.'"
	case "pwd":
		return "must be between 6 and 72 characters long"
	case "gender", "role", "accounttype", "oneof":
		if param != "" {
			return "must be one of: " + strings.Join(strings.Fields(param), ", ")
		}
		return "has an unsupported value"
	case "min":
		return "must be at least " + param + " characters long"
	case "max":
		return "must be at most " + param + " characters long"
	default:
		return "is invalid"
	}
}

// Message returns a human-friendly message for the first validation failure in err.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return formatFieldError(verrs[0])
	}
	return "is invalid"
}
