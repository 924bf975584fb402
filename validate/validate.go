// Package validate checks caller parameters and decoded API responses
// against their struct tags.
package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// ErrValidation is matched by every error returned from [Check] and [Var]
// that describes invalid input.
var ErrValidation = errors.New("validation failed")

var validate *validator.Validate
var translator ut.Translator

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	var ok bool
	translator, ok = ut.New(en.New(), en.New()).GetTranslator("en")
	if !ok {
		panic("validate: failed to get 'en' translator")
	}

	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		panic(err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}

		return name
	})

	if err := validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsSlug(fl.Field().String())
	}); err != nil {
		panic(err)
	}

	if err := validate.RegisterTranslation("slug", translator,
		func(ut ut.Translator) error {
			return ut.Add("slug", "{0} must be in the form owner/name", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("slug", fe.Field())
			return t
		},
	); err != nil {
		panic(err)
	}
}

// IsSlug reports whether s is an "owner/name" reference: exactly two
// non-empty segments, neither of which is "." or "..".
func IsSlug(s string) bool {
	owner, name, ok := strings.Cut(s, "/")
	if !ok {
		return false
	}

	return isSegment(owner) && isSegment(name)
}

func isSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}

	return !strings.ContainsAny(s, `/\`)
}

// Check validates val against its declared tags. Validation failures
// are returned as [FieldErrors].
func Check(val any) error {
	if err := validate.Struct(val); err != nil {
		return toFieldErrors(err)
	}

	return nil
}

// Var validates a single value against tag, e.g. a slice with "dive".
func Var(val any, tag string) error {
	if err := validate.Var(val, tag); err != nil {
		return toFieldErrors(err)
	}

	return nil
}

func toFieldErrors(err error) error {
	var verrors validator.ValidationErrors
	if !errors.As(err, &verrors) {
		return err
	}

	fields := make(FieldErrors, 0, len(verrors))
	for _, verror := range verrors {
		fields = append(fields, FieldError{
			Field: fieldPath(verror),
			Err:   customErrForTag(verror.Tag(), verror),
		})
	}

	return fields
}

// fieldPath drops the top-level struct name from the namespace,
// leaving e.g. "files[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	if ns == "" {
		return fe.Field()
	}

	return ns
}

// FieldError represents a single validation error for a specific field.
type FieldError struct {
	Field string `json:"field"`
	Err   string `json:"error"`
}

// FieldErrors represents a collection of field errors.
type FieldErrors []FieldError

// Error implements the error interface, returning a human-readable
// summary of all field errors.
func (fe FieldErrors) Error() string {
	parts := make([]string, len(fe))
	for i, f := range fe {
		parts[i] = f.Field + ": " + f.Err
	}
	return strings.Join(parts, "; ")
}

// Is makes FieldErrors match [ErrValidation].
func (fe FieldErrors) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns the errors keyed by field name.
func (fe FieldErrors) Fields() map[string]string {
	m := make(map[string]string, len(fe))
	for _, f := range fe {
		m[f.Field] = f.Err
	}
	return m
}

func customErrForTag(tag string, verror validator.FieldError) string {
	switch tag {
	case "required":
		return "This field is required"
	default:
		return verror.Translate(translator)
	}
}
