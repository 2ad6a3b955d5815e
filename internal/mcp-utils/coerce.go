// Package mcputils binds MCP tool arguments to typed request structs.
//
// MCP clients are loose about argument types: arrays and numbers often
// arrive JSON-encoded inside strings, and a batch that should be a JSON
// string sometimes arrives as a structured array. Binding coerces both ways
// before validating the request.
package mcputils

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// ArgumentGetter is an interface for getting arguments from a request
type ArgumentGetter interface {
	GetArguments() map[string]interface{}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report argument names, not Go field names.
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// BindArguments coerces the request arguments into target and validates it
// against its `validate` tags. Validation errors name the argument the
// caller sent, e.g. "batch parameter is required".
func BindArguments[T any](request ArgumentGetter, target *T) error {
	if err := CoerceBindArguments(request, target); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	if err := validate.Struct(target); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s parameter is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s (got %v)", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// CoerceBindArguments binds MCP request arguments to a target struct with proper type coercion.
// It does not validate.
func CoerceBindArguments[T any](request ArgumentGetter, target *T) error {
	rawArgs := request.GetArguments()
	if rawArgs == nil {
		rawArgs = map[string]interface{}{}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			rawJSONHook,
			jsonStringHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json", // Use json tags for field mapping
	})
	if err != nil {
		return err
	}

	return decoder.Decode(rawArgs)
}

// rawJSONHook re-encodes a structured array or object as JSON text when the
// target field is a string.
func rawJSONHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if t.Kind() != reflect.String {
		return data, nil
	}
	switch f.Kind() {
	case reflect.Map:
	case reflect.Slice:
		if f.Elem().Kind() == reflect.Uint8 {
			return data, nil
		}
	default:
		return data, nil
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode argument: %w", err)
	}
	return string(encoded), nil
}

// jsonStringHook decodes JSON-looking strings into slice, map, struct, bool
// and number targets. Strings that do not parse are passed through.
func jsonStringHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}

	raw := data.(string)
	if raw == "" {
		return data, nil
	}
	trimmed := strings.TrimSpace(raw)

	switch t.Kind() {
	case reflect.Slice:
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			slicePtr := reflect.New(t)
			if err := json.Unmarshal([]byte(trimmed), slicePtr.Interface()); err == nil {
				return slicePtr.Elem().Interface(), nil
			}
		}

	case reflect.Map, reflect.Struct:
		if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
			var result interface{}
			if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
				return result, nil
			}
		}

	case reflect.Bool:
		if trimmed == "true" || trimmed == "false" {
			return trimmed == "true", nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		var result json.Number
		if err := json.Unmarshal([]byte(trimmed), &result); err == nil {
			// Let mapstructure handle the number conversion
			return result, nil
		}
	}

	return data, nil
}
