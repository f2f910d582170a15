// Package forms implements the sign-in and staff form flows independent of
// the HTTP layer.
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/spec-kit/staff-admin/internal/domain"
)

// FieldErrors maps a form field name to the message shown under it.
type FieldErrors map[string]string

const invalidDateMessage = "Invalid date, expected MM/DD/YYYY"

var fieldMessages = map[string]string{
	"username.required":               "Username is required",
	"password.required":               "Password is required",
	"mscb.required":                   "mscb is required",
	"name.required":                   "Name is required",
	"gender.required":                 "Giới tính là bắt buộc",
	"gender.gender":                   "Giới tính là bắt buộc",
	"dateOfBirth.required":            "Date of Birth is required",
	"dateOfBirth.formdate":            invalidDateMessage,
	"startDate.formdate":              invalidDateMessage,
	"unit.required":                   "Khoa là bắt buộc",
	"unit.oneof":                      "Khoa là bắt buộc",
	"qualificationCode.required":      "Trình độ là bắt buộc",
	"qualificationCode.qualification": "Trình độ là bắt buộc",
}

// Validator checks form payloads and reports per-field messages.
type Validator struct {
	validate *validator.Validate
}

// NewValidator registers the form field names and the custom tags
// formdate, gender and qualification.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	mustRegister(v, "formdate", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseDate(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "gender", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseGender(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "qualification", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseQualification(fl.Field().String())
		return err == nil
	})
	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Struct validates s and returns nil when it is valid.
func (v *Validator) Struct(s any) (FieldErrors, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	out := FieldErrors{}
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = Message(field, fe.Tag())
	}
	return out, nil
}

// Message returns the text shown for a failed rule on field.
func Message(field, tag string) string {
	if msg, ok := fieldMessages[field+"."+tag]; ok {
		return msg
	}
	return fmt.Sprintf("%s is invalid", field)
}

// Merge copies errors from other that f does not already hold.
func (f FieldErrors) Merge(other FieldErrors) FieldErrors {
	if len(other) == 0 {
		return f
	}
	if f == nil {
		f = FieldErrors{}
	}
	for k, v := range other {
		if _, ok := f[k]; !ok {
			f[k] = v
		}
	}
	return f
}
