package modules

import (
	"fmt"
	"strings"
)

// ValidateParams checks a tool argument object against the tool's
// InputSchema before the handler runs. Required keys must be present and,
// for strings, non-empty. Declared properties are type checked; keys the
// schema does not declare pass through untouched. Returns the params
// (allocating an empty map for nil) or the first violation found.
func ValidateParams(schema InputSchema, params map[string]any) (map[string]any, error) {
	if params == nil {
		params = make(map[string]any)
	}

	var missing []string
	for _, key := range schema.Required {
		switch v := params[key].(type) {
		case nil:
			missing = append(missing, key)
		case string:
			if v == "" {
				missing = append(missing, key)
			}
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required parameter(s): %s", strings.Join(missing, ", "))
	}

	for key, val := range params {
		prop, declared := schema.Properties[key]
		if !declared || val == nil {
			continue
		}
		if err := checkType(key, val, prop.Type); err != nil {
			return nil, err
		}
	}

	return params, nil
}

// checkType matches a value against a JSON Schema type name. Unknown type
// names pass; "integer" shares the number check because encoding/json
// decodes every JSON number as float64.
func checkType(key string, val any, want string) error {
	ok := true
	switch want {
	case "string":
		_, ok = val.(string)
	case "number", "integer":
		_, ok = val.(float64)
		want = "number"
	case "boolean":
		_, ok = val.(bool)
	case "array":
		_, ok = val.([]any)
	case "object":
		_, ok = val.(map[string]any)
	}
	if !ok {
		return fmt.Errorf("parameter %q: expected %s, got %T", key, want, val)
	}
	return nil
}
