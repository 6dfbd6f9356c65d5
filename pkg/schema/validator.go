package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// ValidationError reports a payload that does not match the expected shape.
//
// Fields maps JSON field names to messages. Cause holds the decoder error for
// malformed or mistyped input.
type ValidationError struct {
	Type   string
	Fields map[string]string
	Cause  error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	prefix := "validation error"
	if e.Type != "" {
		prefix = "validation error for " + e.Type
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.Cause)
	}
	if len(e.Fields) == 0 {
		return prefix
	}
	b, err := json.Marshal(e.Fields)
	if err != nil {
		return fmt.Sprintf("%s (failed to marshal: %v)", prefix, err)
	}
	return prefix + ": " + string(b)
}

// Unwrap returns the underlying decoder error, if any.
func (e *ValidationError) Unwrap() error { return e.Cause }

// Validator checks decoded payloads using go-playground/validator with
// English messages.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

const notNullTag = "notnull"

// NewValidator constructs a Validator that reports fields by their JSON names.
func NewValidator() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)
	if err := validate.RegisterValidation(notNullTag, isNotNull); err != nil {
		return nil, err
	}

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}
	err := validate.RegisterTranslation(notNullTag, enTrans,
		func(t ut.Translator) error { return t.Add(notNullTag, "{0} must not be null", true) },
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(notNullTag, fe.Field())
			return msg
		})
	if err != nil {
		return nil, err
	}

	return &Validator{validate: validate, translator: enTrans}, nil
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
	defaultErr       error
)

// Default returns a process-wide Validator.
func Default() (*Validator, error) {
	defaultOnce.Do(func() {
		defaultValidator, defaultErr = NewValidator()
	})
	return defaultValidator, defaultErr
}

// Validate checks data as it would appear on the wire. A field tagged
// `validate:"required"` must be present and not null; a present zero value
// ("" or 0) is accepted.
func (v *Validator) Validate(data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return &ValidationError{Type: typeName(data), Cause: err}
	}
	return v.checkPresence(raw, reflect.TypeOf(data))
}

// checkPresence reports required fields of t that are absent or null in raw.
func (v *Validator) checkPresence(raw []byte, t reflect.Type) error {
	fields := make(map[string]string)
	v.collectMissing(raw, derefType(t), "", fields)
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Type: derefType(t).Name(), Fields: fields}
}

func (v *Validator) collectMissing(raw []byte, t reflect.Type, prefix string, out map[string]string) {
	if t == nil || t.Kind() != reflect.Struct {
		return
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		// Non-objects are left to the decoder, which reports the type error.
		if !isNullJSON(raw) {
			return
		}
	}

	data := make(map[string]interface{}, len(obj))
	rules := make(map[string]interface{})
	nested := make(map[string]reflect.Type)
	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		if !fld.IsExported() {
			continue
		}
		name := jsonFieldName(fld)
		if name == "" {
			continue
		}
		if hasTag(fld.Tag.Get("validate"), "required") {
			rules[name] = "required," + notNullTag
		}
		if val, ok := obj[name]; ok {
			data[name] = val
		}
		if ft := derefType(fld.Type); ft.Kind() == reflect.Struct {
			nested[name] = ft
		}
	}

	for name, res := range v.validate.ValidateMap(data, rules) {
		err, _ := res.(error)
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			out[prefix+name] = prefix + fieldErrs[0].Translate(v.translator)
			continue
		}
		out[prefix+name] = fmt.Sprintf("%s%s is invalid", prefix, name)
	}

	for name, ft := range nested {
		val, ok := obj[name]
		if !ok || isNullJSON(val) {
			continue
		}
		v.collectMissing(val, ft, prefix+name+".", out)
	}
}

// Validate checks data with the Default validator.
func Validate(data any) error {
	v, err := Default()
	if err != nil {
		return fmt.Errorf("init validator: %w", err)
	}
	return v.Validate(data)
}

func isNotNull(fl validator.FieldLevel) bool {
	raw, ok := fl.Field().Interface().(json.RawMessage)
	if !ok {
		return true
	}
	return !isNullJSON(raw)
}

func isNullJSON(raw []byte) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}

func hasTag(tags, want string) bool {
	for _, tag := range strings.Split(tags, ",") {
		if strings.TrimSpace(tag) == want {
			return true
		}
	}
	return false
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

func derefType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func typeName(v any) string {
	t := derefType(reflect.TypeOf(v))
	if t == nil {
		return ""
	}
	return t.Name()
}
