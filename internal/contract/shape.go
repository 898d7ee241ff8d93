package contract

import (
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"tmdb-api-tester/internal/types"
)

var schemaCache sync.Map // schema source -> *gojsonschema.Schema

// CheckShape returns an error naming the first structural mismatch between body and shape.
// A nil shape accepts any body.
func CheckShape(shape *types.Shape, body interface{}) error {
	if shape == nil {
		return nil
	}

	if err := checkFields(shape, body); err != nil {
		return err
	}

	if len(shape.AnyOf) > 0 {
		var reasons []string
		matched := false
		for i := range shape.AnyOf {
			err := CheckShape(&shape.AnyOf[i], body)
			if err == nil {
				matched = true
				break
			}
			reasons = append(reasons, err.Error())
		}
		if !matched {
			return fmt.Errorf("no alternative shape matched (%s)", strings.Join(reasons, "; "))
		}
	}

	if shape.JSONSchema != "" {
		return checkSchema(shape.JSONSchema, body)
	}
	return nil
}

func checkFields(shape *types.Shape, body interface{}) error {
	needsObject := shape.Object || len(shape.Keys) > 0 || len(shape.Arrays) > 0 || len(shape.NonEmpty) > 0
	if !needsObject {
		return nil
	}

	obj, ok := body.(map[string]interface{})
	if !ok {
		return fmt.Errorf("body is %s, expected object", typeName(body))
	}

	for _, key := range shape.Keys {
		if _, ok := obj[key]; !ok {
			return fmt.Errorf("missing key %q", key)
		}
	}

	for _, key := range shape.Arrays {
		if _, err := arrayAt(obj, key); err != nil {
			return err
		}
	}

	for _, key := range shape.NonEmpty {
		items, err := arrayAt(obj, key)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return fmt.Errorf("key %q is an empty array", key)
		}
	}
	return nil
}

func arrayAt(obj map[string]interface{}, key string) ([]interface{}, error) {
	v, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("missing key %q", key)
	}
	items, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("key %q is %s, expected array", key, typeName(v))
	}
	return items, nil
}

func checkSchema(source string, body interface{}) error {
	schema, err := compileSchema(source)
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(body))
	if err != nil {
		return fmt.Errorf("json schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("json schema mismatch: %s", strings.Join(msgs, "; "))
}

func compileSchema(source string) (*gojsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(source); ok {
		return cached.(*gojsonschema.Schema), nil
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(source))
	if err != nil {
		return nil, fmt.Errorf("invalid json_schema: %w", err)
	}
	schemaCache.Store(source, schema)
	return schema, nil
}

// ValidateShape checks that a shape definition is usable, compiling any JSON schema it carries
func ValidateShape(shape *types.Shape) error {
	if shape == nil {
		return nil
	}
	if shape.JSONSchema != "" {
		if _, err := compileSchema(shape.JSONSchema); err != nil {
			return err
		}
	}
	for i := range shape.AnyOf {
		if err := ValidateShape(&shape.AnyOf[i]); err != nil {
			return fmt.Errorf("any_of[%d]: %w", i, err)
		}
	}
	return nil
}

func typeName(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case float64, int, int64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
