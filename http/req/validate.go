package req

import (
	"errors"
	"reflect"
	"strings"

	v10 "github.com/go-playground/validator/v10"
	"github.com/xy-planning-network/gatekeeper"
)

type validator struct {
	valid *v10.Validate
}

func newValidator() validator {
	v := v10.New()
	v.RegisterValidation("enum", func(fl v10.FieldLevel) bool {
		enum, ok := fl.Field().Interface().(gatekeeper.Enumerable)
		return ok && enum.Valid() == nil
	})
	v.RegisterTagNameFunc(fieldName)

	return validator{v}
}

// fieldName names a field by its json tag, else its schema tag.
func fieldName(field reflect.StructField) string {
	for _, key := range []string{"json", "schema"} {
		name, _, _ := strings.Cut(field.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}

	return field.Name
}

// validate checks structPtr against its "validate" struct tags,
// returning FieldErrors when any rule is broken.
func (v validator) validate(structPtr any) error {
	err := v.valid.Struct(structPtr)

	var errs v10.ValidationErrors
	if !errors.As(err, &errs) {
		return err
	}

	fe := make(FieldErrors, 0, len(errs))
	for _, e := range errs {
		fe = append(fe, FieldError{Field: e.Field(), Rule: e.Tag(), Msg: message(e)})
	}

	return fe
}

// message phrases a broken rule for the login form.
func message(e v10.FieldError) string {
	label := e.Field()
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}

	switch e.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return "Enter a valid email address."
	case "enum":
		return label + " is not one of the allowed choices."
	default:
		return label + " is not valid."
	}
}
