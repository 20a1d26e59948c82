// Package validate runs struct-tag validation through go-playground/validator
// and renders failures as English messages keyed by JSON field name.
//
//	type Input struct {
//	    Email string `json:"email" validate:"required,email"`
//	    Role  string `json:"role"  validate:"omitempty,oneof=Admin User"`
//	}
//
//	errs := validate.Struct(in) // map["email"]"email must be a valid email address"
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var (
	once  sync.Once
	inst  *validator.Validate
	trans ut.Translator
)

func engine() (*validator.Validate, ut.Translator) {
	once.Do(func() {
		locale := en.New()
		uni := ut.New(locale, locale)
		trans, _ = uni.GetTranslator("en")

		inst = validator.New(validator.WithRequiredStructEnabled())
		inst.RegisterTagNameFunc(jsonName)
		_ = entranslations.RegisterDefaultTranslations(inst, trans)

		_ = inst.RegisterValidation("notblank", notBlank)
		_ = inst.RegisterTranslation("notblank", trans,
			func(t ut.Translator) error {
				return t.Add("notblank", "{0} must not be blank", true)
			},
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T("notblank", fe.Field())
				return msg
			},
		)
	})
	return inst, trans
}

// Struct validates v and returns field → message. An empty map means valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)

	validate, tr := engine()
	err := validate.Struct(v)
	if err == nil {
		return errs
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs["_"] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		key := fieldKey(fe)
		if _, seen := errs[key]; !seen {
			errs[key] = fe.Translate(tr)
		}
	}
	return errs
}

// HasErrors returns true when errs is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// fieldKey drops the top-level struct name from the namespace, so nested
// failures read like "ingredients[1].ingredient_id".
func fieldKey(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return strings.ToLower(f.Name)
	}
	return name
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.String:
		return strings.TrimSpace(field.String()) != ""
	case reflect.Ptr:
		if field.IsNil() {
			return true
		}
		if field.Elem().Kind() == reflect.String {
			return strings.TrimSpace(field.Elem().String()) != ""
		}
	}
	return true
}
