// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package payload

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Flatten renders an object payload as environment-variable pairs.
// Each top-level key becomes a variable named by [EnvName]. Scalar
// values render bare: strings as-is, numbers as their JSON literal,
// booleans as "true"/"false", null as the empty string. Nested objects
// and arrays re-encode as compact JSON.
//
// Returns an error when the payload's top level is not an object, or
// when two keys mangle to the same variable name.
func (v *Value) Flatten() (map[string]string, error) {
	object, ok := v.Map()
	if !ok {
		return nil, fmt.Errorf("payload top level is %s, not an object", jsonKind(v.decoded))
	}

	flattened := make(map[string]string, len(object))
	source := make(map[string]string, len(object))

	// Deterministic iteration so collision errors always blame the
	// same pair.
	keys := make([]string, 0, len(object))
	for key := range object {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		name, err := EnvName(key)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		if previous, exists := source[name]; exists {
			return nil, fmt.Errorf("keys %q and %q both map to variable %s", previous, key, name)
		}
		source[name] = key

		rendered, err := RenderScalar(object[key])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		flattened[name] = rendered
	}

	return flattened, nil
}

// EnvName mangles a secret key into a valid environment variable name:
// uppercase, with every character outside [A-Za-z0-9_] replaced by an
// underscore, and a leading underscore added when the first character
// is a digit. Returns an error for keys that mangle to nothing.
func EnvName(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty key")
	}

	var builder strings.Builder
	for _, character := range strings.ToUpper(key) {
		switch {
		case character >= 'A' && character <= 'Z',
			character >= '0' && character <= '9',
			character == '_':
			builder.WriteRune(character)
		default:
			builder.WriteByte('_')
		}
	}

	name := builder.String()
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name, nil
}

// RenderScalar renders one decoded JSON value as an environment
// variable value: strings as-is, numbers as their JSON literal,
// booleans as "true"/"false", null as the empty string, and nested
// objects or arrays as compact JSON.
func RenderScalar(value any) (string, error) {
	switch typed := value.(type) {
	case nil:
		return "", nil
	case string:
		return typed, nil
	case json.Number:
		return typed.String(), nil
	case bool:
		if typed {
			return "true", nil
		}
		return "false", nil
	default:
		// Objects and arrays re-encode compactly. json.Number fields
		// marshal as their literal text, so precision survives.
		encoded, err := json.Marshal(typed)
		if err != nil {
			return "", fmt.Errorf("re-encoding nested value: %w", err)
		}
		return string(encoded), nil
	}
}

// jsonKind names a decoded JSON value's type for error messages.
func jsonKind(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	case []any:
		return "an array"
	case map[string]any:
		return "an object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
