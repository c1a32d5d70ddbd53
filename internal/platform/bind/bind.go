// Package bind decodes and validates JSON request bodies.
package bind

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"unicode"

	perr "delivery-notify-service/internal/platform/errors"
	"delivery-notify-service/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// ValidatorSvc holds the shared validator and its english translator.
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *ValidatorSvc
)

// Get returns the validator singleton.
func Get() *ValidatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// report json names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)
		registerPhone(v, trans)

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// Options controls ParseJSON.
type Options struct {
	MaxBytes        int64
	DisallowUnknown bool
}

// DefaultOptions allows 1MB bodies and rejects unknown fields.
func DefaultOptions() Options {
	return Options{MaxBytes: 1 << 20, DisallowUnknown: true}
}

// ParseJSON decodes the body into T and validates it.
// Malformed bodies are JSON errors; failed constraints are Validation errors
// carrying the offending field path.
func ParseJSON[T any](r *http.Request, opts ...Options) (T, error) {
	var zero T
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			logger.Get().Error().Err(err).Msg("failed to close request body")
		}
	}()

	var body io.Reader = r.Body
	if o.MaxBytes > 0 {
		body = io.LimitReader(r.Body, o.MaxBytes)
	}

	dec := json.NewDecoder(body)
	if o.DisallowUnknown {
		dec.DisallowUnknownFields()
	}

	var dst T
	if err := dec.Decode(&dst); err != nil {
		if errors.Is(err, io.EOF) {
			return zero, perr.JSONErrf("empty body")
		}
		return zero, perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return zero, perr.JSONErrf("unexpected trailing data")
	}

	if err := Validate(dst); err != nil {
		return zero, err
	}
	return dst, nil
}

// Validate runs struct validation on v and maps the first failure to a Validation error.
func Validate(v any) error {
	err := Get().Validator.Struct(v)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		logger.Get().Error().Err(inv).Msg("validator internal error")
		return perr.JSONErrf("validation error")
	}
	field, msg := FieldAndMessage(err)
	return perr.Validationf(field, "%s", msg)
}

// FieldAndMessage returns the path and translated message of the first validation failure.
// The path drops the top-level struct name: "stops[1].phone".
func FieldAndMessage(err error) (field, message string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "", err.Error()
	}
	fe := verrs[0]
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	return ns, fe.Translate(Get().Translator)
}

// validPhone accepts what people type for a phone number: digits with optional
// '+', spaces, dashes, dots and parentheses, and at least 7 digits.
func validPhone(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	digits := 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits >= 7
}

func registerPhone(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterValidation("phone", validPhone)
	_ = v.RegisterTranslation("phone", trans,
		func(ut ut.Translator) error {
			return ut.Add("phone", "{0} must be a phone number", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("phone", fe.Field())
			return msg
		},
	)
}
