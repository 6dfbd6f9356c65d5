package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
)

// DecodeOption tweaks Decode behaviour.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	allowUnknown bool
}

// AllowUnknownFields accepts response fields the target struct does not declare.
func AllowUnknownFields() DecodeOption {
	return func(c *decodeConfig) { c.allowUnknown = true }
}

// Decode parses data into out (a pointer to struct) after checking that every
// required field is present. Any shape mismatch is reported as
// *ValidationError.
func Decode(data []byte, out any, opts ...DecodeOption) error {
	cfg := decodeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if isStruct(out) {
		v, err := Default()
		if err != nil {
			return fmt.Errorf("init validator: %w", err)
		}
		if err := v.checkPresence(data, reflect.TypeOf(out)); err != nil {
			return err
		}
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if !cfg.allowUnknown {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(out); err != nil {
		return &ValidationError{Type: typeName(out), Cause: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return &ValidationError{Type: typeName(out), Cause: errors.New("unexpected data after top-level value")}
	}
	return nil
}

// ToMap converts a struct into the plain key/value mapping sent on the wire.
// A nil value, including a typed nil pointer, yields a nil map.
func ToMap(v any) (map[string]any, error) {
	if IsNil(v) {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", typeName(v), err)
	}
	if isNullJSON(raw) {
		return nil, nil
	}
	out := make(map[string]any)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("convert %s to mapping: %w", typeName(v), err)
	}
	return out, nil
}

// Pretty renders v as indented JSON. Raw JSON input is re-indented as-is.
func Pretty(v any) ([]byte, error) {
	switch t := v.(type) {
	case json.RawMessage:
		var buf bytes.Buffer
		if err := json.Indent(&buf, t, "", "  "); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case []byte:
		return Pretty(json.RawMessage(t))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// IsNil reports whether v is nil or a nil pointer, map, slice or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func isStruct(v any) bool {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t != nil && t.Kind() == reflect.Struct
}
