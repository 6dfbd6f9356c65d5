// Package schema turns JSON payloads into validated structs and back into
// plain key/value mappings.
//
// Response structs declare their shape with `json` tags and their presence
// rules with `validate` tags (go-playground/validator v10). A required field
// must be present and not null; zero values such as 0 or "" are accepted.
// Decode rejects unknown fields, mistyped values and missing required fields
// with a *ValidationError so callers can tell shape problems apart from
// transport failures.
package schema
