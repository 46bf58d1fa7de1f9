// Package validator checks untrusted diff payloads using go-playground/validator.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/diffcard"
	"github.com/go-playground/validator/v10"
)

// Compile-time interface verification.
var _ diffcard.Validator = (*Validator)(nil)

// Validator decodes JSON payloads and enforces the diff schema.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator. Field paths in reported issues use wire names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate decodes data and checks it. All problems found are reported in
// one *diffcard.ValidationError.
func (v *Validator) Validate(data []byte) (*diffcard.Diff, error) {
	var d diffcard.Diff
	var issues []diffcard.Issue
	var mistyped string

	if err := json.Unmarshal(data, &d); err != nil {
		issue, fatal := decodeIssue(err)
		if fatal {
			return nil, &diffcard.ValidationError{Issues: []diffcard.Issue{issue}}
		}
		// Type mismatches leave the rest of the payload decoded; keep going
		// so every violation is reported together. encoding/json reports
		// only the first mismatch.
		issues = append(issues, issue)
		mistyped = bareField(issue.Field)
	}

	for _, issue := range v.check(&d) {
		// The mismatched field is left empty; its type issue already covers it.
		if mistyped != "" && issue.Message == requiredMessage && bareField(issue.Field) == mistyped {
			continue
		}
		issues = append(issues, issue)
	}
	if len(issues) > 0 {
		return nil, &diffcard.ValidationError{Issues: issues}
	}
	return &d, nil
}

// ValidateDiff checks an already decoded payload.
func (v *Validator) ValidateDiff(d *diffcard.Diff) error {
	if d == nil {
		return &diffcard.ValidationError{Issues: []diffcard.Issue{{Message: "payload is empty"}}}
	}
	if issues := v.check(d); len(issues) > 0 {
		return &diffcard.ValidationError{Issues: issues}
	}
	return nil
}

func (v *Validator) check(d *diffcard.Diff) []diffcard.Issue {
	var issues []diffcard.Issue

	if err := v.validate.Struct(d); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return []diffcard.Issue{{Message: err.Error()}}
		}
		for _, fe := range fieldErrs {
			issues = append(issues, diffcard.Issue{
				Field:   fieldPath(fe.Namespace()),
				Message: message(fe),
			})
		}
	}

	issues = append(issues, duplicateIDs(d)...)

	for i, id := range d.EmphasizedFileIDs {
		if id != "" && d.FindFile(id) == nil {
			issues = append(issues, diffcard.Issue{
				Field:   "emphasizedFileIds[" + strconv.Itoa(i) + "]",
				Message: fmt.Sprintf("refers to unknown file %q", id),
			})
		}
	}
	return issues
}

const requiredMessage = "is required"

// bareField strips collection indices from a field path, so
// "files[0].path" and "files.path" compare equal.
func bareField(path string) string {
	parts := strings.Split(path, ".")
	out := parts[:0]
	for _, p := range parts {
		if i := strings.IndexByte(p, '['); i >= 0 {
			p = p[:i]
		}
		if _, err := strconv.Atoi(p); err == nil || p == "" {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, ".")
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	_, path, ok := strings.Cut(namespace, ".")
	if !ok {
		return namespace
	}
	return path
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return requiredMessage
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", strings.Join(strings.Fields(fe.Param()), ", "), fmt.Sprint(fe.Value()))
	case "gte":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), deref(fe.Value()))
	case "url":
		return fmt.Sprintf("must be a URL, got %q", fmt.Sprint(fe.Value()))
	}
	return fmt.Sprintf("failed %q check", fe.Tag())
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return rv.Elem().Interface()
	}
	return v
}

// decodeIssue converts a JSON decoding error into an issue. Fatal errors
// stop decoding; type mismatches do not.
func decodeIssue(err error) (issue diffcard.Issue, fatal bool) {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var timeErr *time.ParseError

	switch {
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return diffcard.Issue{Message: fmt.Sprintf("payload must be a JSON object, got %s", typeErr.Value)}, true
		}
		return diffcard.Issue{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be %s, got %s", jsonType(typeErr.Type), typeErr.Value),
		}, false
	case errors.As(err, &syntaxErr):
		return diffcard.Issue{Message: fmt.Sprintf("malformed JSON at offset %d: %v", syntaxErr.Offset, syntaxErr)}, true
	case errors.As(err, &timeErr):
		return diffcard.Issue{Message: fmt.Sprintf("timestamp %q is not RFC 3339", timeErr.Value)}, true
	}
	return diffcard.Issue{Message: err.Error()}, true
}

func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int64, reflect.Int32:
		return "an integer"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice:
		return "an array"
	case reflect.Struct, reflect.Map:
		return "an object"
	case reflect.Pointer:
		return jsonType(t.Elem())
	}
	return t.String()
}
