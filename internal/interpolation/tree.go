package interpolation

import (
	"errors"
	"fmt"
)

// ErrUndefinedVariable is reported for references without a default whose variable is unset.
var ErrUndefinedVariable = errors.New("environment variable not defined")

// ExpandTree walks a decoded document (maps, slices, scalars) and expands every string value
// in place. Map keys are left untouched. Errors carry the dotted path of the offending value.
func ExpandTree(tree map[string]any, lookup LookupFunc) error {
	return expandMap(tree, "", lookup)
}

func expandMap(m map[string]any, prefix string, lookup LookupFunc) error {
	var errz []error
	for key, value := range m {
		path := joinPath(prefix, key)
		expanded, err := expandValue(value, path, lookup)
		if err != nil {
			errz = append(errz, err)
			continue
		}
		m[key] = expanded
	}
	return errors.Join(errz...)
}

func expandValue(value any, path string, lookup LookupFunc) (any, error) {
	switch v := value.(type) {
	case string:
		out, err := Expand(v, lookup)
		if err != nil {
			return v, fmt.Errorf("%s: %w", path, err)
		}
		return out, nil
	case map[string]any:
		return v, expandMap(v, path, lookup)
	case []any:
		var errz []error
		for i, elem := range v {
			out, err := expandValue(elem, fmt.Sprintf("%s[%d]", path, i), lookup)
			if err != nil {
				errz = append(errz, err)
				continue
			}
			v[i] = out
		}
		return v, errors.Join(errz...)
	case []map[string]any:
		var errz []error
		for i, elem := range v {
			if err := expandMap(elem, fmt.Sprintf("%s[%d]", path, i), lookup); err != nil {
				errz = append(errz, err)
			}
		}
		return v, errors.Join(errz...)
	default:
		return value, nil
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
