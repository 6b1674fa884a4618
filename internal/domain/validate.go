package domain

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		if err != nil || u.Host == "" {
			return false
		}
		return u.Scheme == "http" || u.Scheme == "https"
	})
	return v
}

// Validate checks v against its `validate` tags. Failures are returned as
// validator.ValidationErrors; use ValidationMessages to render them.
func Validate(v any) error {
	return validate.Struct(v)
}

// messages keyed by "<Type>.<json field>.<tag>".
var messages = map[string]string{
	"Bootcamp.name.required":        "Please add a name",
	"Bootcamp.name.max":             "Name can not be more than 50 characters",
	"Bootcamp.description.required": "Please add a description",
	"Bootcamp.description.max":      "Description can not be more than 500 characters",
	"Bootcamp.website.httpurl":      "Please use a valid URL with HTTP or HTTPS",
	"Bootcamp.phone.max":            "Phone number can not be longer than 20 characters",
	"Bootcamp.email.email":          "Please add a valid email",
	"Bootcamp.address.required":     "Please add an address",
	"Bootcamp.careers.required":     "Please add at least one career",
	"Bootcamp.careers.min":          "Please add at least one career",
	"Bootcamp.careers.oneof":        "Career must be one of: " + strings.Join(Careers, ", "),
	"Bootcamp.averageRating.min":    "Rating must be at least 1",
	"Bootcamp.averageRating.max":    "Rating can not be more than 10",
	"Bootcamp.averageCost.min":      "Average cost can not be negative",

	"Course.title.required":        "Please add a course title",
	"Course.title.max":             "Title can not be more than 255 characters",
	"Course.description.required":  "Please add a description",
	"Course.weeks.required":        "Please add number of weeks",
	"Course.weeks.gt":              "Please add number of weeks",
	"Course.tuition.gte":           "Tuition can not be negative",
	"Course.minimumSkill.required": "Please add a minimum skill",
	"Course.minimumSkill.oneof":    "Minimum skill must be beginner, intermediate or advanced",

	"User.name.required":  "Please add a name",
	"User.email.required": "Please add an email",
	"User.email.email":    "Please add a valid email",
	"User.role.required":  "Please add a role",
	"User.role.oneof":     "Role must be user or publisher",
}

// ValidationMessages renders human-readable messages for errs, one per
// failed field, in declaration order and without duplicates.
func ValidationMessages(errs validator.ValidationErrors) []string {
	out := make([]string, 0, len(errs))
	seen := make(map[string]struct{}, len(errs))
	for _, fe := range errs {
		msg := messageFor(fe)
		if _, dup := seen[msg]; dup {
			continue
		}
		seen[msg] = struct{}{}
		out = append(out, msg)
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	typ := strings.SplitN(fe.Namespace(), ".", 2)[0]
	field := fe.Field()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}
	if msg, ok := messages[typ+"."+field+"."+fe.Tag()]; ok {
		return msg
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
