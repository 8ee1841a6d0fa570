// Package validation binds JSON request bodies onto schema structs and
// checks them against their `validate` tags, reporting failures per field.
//
// A schema is a struct whose fields are pointers tagged with the JSON key
// they bind to and the rules they must satisfy:
//
//	type StorePostRequest struct {
//		Title *string `json:"title" validate:"required,max=255"`
//	}
//
// Keys in the body without a matching schema field are ignored.
package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var ErrMalformedBody = errors.New("malformed JSON body")

// Present records which schema keys appeared in the body.
type Present map[string]bool

func (p Present) Has(key string) bool {
	return p[key]
}

// Error is returned by Bind when one or more fields fail validation.
type Error struct {
	Message string              `json:"message"`
	Fields  map[string][]string `json:"errors"`
}

func (e *Error) Error() string {
	return e.Message
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonName)
	return &Validator{validate: validate}
}

// Bind decodes body into dst, a pointer to a schema struct, and validates
// it. Fields are decoded one at a time so a type mismatch on one key is
// reported against that key instead of failing the whole body. String
// values are trimmed and an empty string is treated as absent.
func (v *Validator) Bind(body []byte, dst any) (Present, error) {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("validation: dst must be a pointer to a struct, got %T", dst)
	}

	raw := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &raw); err != nil {
			return nil, ErrMalformedBody
		}
	}

	present := Present{}
	failures := &collector{fields: map[string][]string{}}

	elem := rv.Elem()
	typ := elem.Type()
	for i := 0; i < typ.NumField(); i++ {
		structField := typ.Field(i)
		name := jsonName(structField)
		if name == "" {
			continue
		}
		value, ok := raw[name]
		if !ok {
			continue
		}
		present[name] = true

		field := elem.Field(i)
		if err := json.Unmarshal(value, field.Addr().Interface()); err != nil {
			field.Set(reflect.Zero(structField.Type))
			failures.add(name, typeMessage(name, structField.Type))
			continue
		}
		trimString(field)
	}

	if err := v.validate.Struct(dst); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return present, err
		}
		for _, fe := range fieldErrs {
			if failures.has(fe.Field()) {
				continue
			}
			failures.add(fe.Field(), ruleMessage(fe))
		}
	}

	if len(failures.order) == 0 {
		return present, nil
	}
	return present, failures.err()
}

type collector struct {
	order  []string
	fields map[string][]string
}

func (c *collector) add(field, message string) {
	if _, ok := c.fields[field]; !ok {
		c.order = append(c.order, field)
	}
	c.fields[field] = append(c.fields[field], message)
}

func (c *collector) has(field string) bool {
	_, ok := c.fields[field]
	return ok
}

func (c *collector) err() *Error {
	first := c.fields[c.order[0]][0]
	more := -1
	for _, messages := range c.fields {
		more += len(messages)
	}

	message := first
	switch {
	case more == 1:
		message += " (and 1 more error)"
	case more > 1:
		message += fmt.Sprintf(" (and %d more errors)", more)
	}
	return &Error{Message: message, Fields: c.fields}
}

func jsonName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func trimString(field reflect.Value) {
	if field.Kind() != reflect.Pointer || field.IsNil() || field.Elem().Kind() != reflect.String {
		return
	}
	trimmed := strings.TrimSpace(field.Elem().String())
	if trimmed == "" {
		field.Set(reflect.Zero(field.Type()))
		return
	}
	field.Elem().SetString(trimmed)
}

var timeType = reflect.TypeOf(time.Time{})

func typeMessage(name string, typ reflect.Type) string {
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	switch {
	case typ == timeType:
		return fmt.Sprintf("The %s field must be a valid date.", label(name))
	case typ.Kind() == reflect.String:
		return fmt.Sprintf("The %s field must be a string.", label(name))
	case typ.Kind() == reflect.Bool:
		return fmt.Sprintf("The %s field must be true or false.", label(name))
	case typ.Kind() >= reflect.Int && typ.Kind() <= reflect.Uint64:
		return fmt.Sprintf("The %s field must be an integer.", label(name))
	default:
		return fmt.Sprintf("The %s field is invalid.", label(name))
	}
}

func ruleMessage(fe validator.FieldError) string {
	name := label(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", name)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s field must not be greater than %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("The %s field must not be greater than %s.", name, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s field must be greater than %s.", name, fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", name)
	}
}

func label(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}
