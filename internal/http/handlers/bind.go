package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// FieldError is one entry of the "fields" detail list on a 400 response.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

// BindJSON decodes the request body into out and writes the 400 response
// itself when decoding or validation fails. Field names in the details are
// reported as JSON paths, not Go struct paths.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	if err := ctx.ShouldBindJSON(out); err != nil {
		RespondBadRequest(ctx, "Invalid request body", bindErrorDetails(err, out))
		return false
	}

	return true
}

func bindErrorDetails(err error, out interface{}) interface{} {
	root := structTypeOf(out)

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		fields := make([]FieldError, 0, len(vErrs))

		for _, fe := range vErrs {
			fields = append(fields, fieldErrorFor(root, fe))
		}

		return gin.H{"fields": fields}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return gin.H{"json": "invalid_json_syntax"}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := jsonPath(root, strings.Split(strings.TrimSpace(typeErr.Field), "."))

		if field == "" {
			field = strings.TrimSpace(typeErr.Field)
		}

		return gin.H{
			"json":  "invalid_json_type",
			"field": field,
			"fields": []FieldError{{
				Field:   field,
				Rule:    "type",
				Message: "must be of type " + typeErr.Type.String(),
			}},
		}
	}

	return gin.H{"reason": err.Error()}
}

func fieldErrorFor(root reflect.Type, fe validator.FieldError) FieldError {
	// StructNamespace looks like "<RootStruct>.<Field>[.<Nested>...]".
	ns := fe.StructNamespace()
	if ns == "" {
		ns = fe.Namespace()
	}

	field := fe.Field()

	if ns != "" {
		parts := strings.Split(ns, ".")

		if root != nil && root.Name() != "" && len(parts) > 0 && parts[0] == root.Name() {
			parts = parts[1:]
		}

		if mapped := jsonPath(root, parts); mapped != "" {
			field = mapped
		}
	}

	return FieldError{
		Field:   field,
		Rule:    fe.Tag(),
		Param:   fe.Param(),
		Message: ruleMessage(fe.Tag(), fe.Param()),
	}
}

func structTypeOf(v interface{}) reflect.Type {
	t := reflect.TypeOf(v)

	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	return t
}

// jsonPath walks parts (Go field names, possibly with "[i]" suffixes) down
// from root, swapping each segment for its json tag name when one exists.
func jsonPath(root reflect.Type, parts []string) string {
	current := root
	out := make([]string, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			continue
		}

		name := part
		suffix := ""

		if i := strings.Index(part, "["); i >= 0 {
			name, suffix = part[:i], part[i:]
		}

		segment := name
		var next reflect.Type

		if current != nil {
			for current.Kind() == reflect.Pointer {
				current = current.Elem()
			}

			if current.Kind() == reflect.Struct {
				if sf, ok := current.FieldByName(name); ok {
					segment = jsonTagName(sf)
					next = elemType(sf.Type)
				}
			}
		}

		out = append(out, segment+suffix)
		current = next
	}

	if len(out) == 0 {
		return ""
	}

	return strings.Join(out, ".")
}

func jsonTagName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")

	if name == "" || name == "-" {
		return sf.Name
	}

	return name
}

func elemType(t reflect.Type) reflect.Type {
	for t != nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		default:
			return t
		}
	}

	return nil
}

func ruleMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min", "gte":
		return "must be at least " + param
	case "max", "lte":
		return "must be at most " + param
	case "gt":
		return "must be greater than " + param
	case "datetime":
		return "must be a timestamp in " + param + " format"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(param, " ", ", ")
	default:
		if param != "" {
			return fmt.Sprintf("failed %s validation (%s)", rule, param)
		}

		return "failed " + rule + " validation"
	}
}
