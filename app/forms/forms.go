package forms

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"yatube/app/models"

	"github.com/go-playground/validator/v10"
)

// NonField collects errors that belong to the form as a whole.
const NonField = "__all__"

var validate = validator.New()

func init() {
	models.RegisterRules(validate)
	validate.RegisterValidation("notnumeric", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || strings.Trim(s, "0123456789") != ""
	})
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Errors maps a field name to its messages.
type Errors map[string][]string

// Add appends msg to field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Get returns the first message for field.
func (e Errors) Get(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Form is embedded by every form to carry its validation errors.
type Form struct {
	Errors Errors `form:"-"`
}

// Valid reports whether validation left no errors.
func (f *Form) Valid() bool {
	return len(f.Errors) == 0
}

// AddError records msg against field; an empty field means the whole form.
func (f *Form) AddError(field, msg string) {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	if field == "" {
		field = NonField
	}
	f.Errors.Add(field, msg)
}

// check runs the struct tags of form and records a message per failing field.
func (f *Form) check(form interface{}) {
	if f.Errors == nil {
		f.Errors = Errors{}
	}
	err := validate.Struct(form)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		f.Errors.Add(NonField, err.Error())
		return
	}
	for _, fe := range verrs {
		if f.Errors.Has(fe.Field()) {
			continue
		}
		f.Errors.Add(fe.Field(), message(fe))
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), len([]rune(fe.Value().(string))))
	case "min":
		return fmt.Sprintf("This password is too short. It must contain at least %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "eqfield":
		return "The two password fields didn't match."
	case "notnumeric":
		return "This password is entirely numeric."
	default:
		return fmt.Sprintf("Invalid value (%s).", fe.Tag())
	}
}

func value(r *http.Request, key string) string {
	return r.PostFormValue(key)
}
