package filters

import "fmt"

// Params represents decode parameters from PDF stream dictionaries.
// Common parameters include Predictor, Columns, Colors, and BitsPerComponent.
type Params map[string]interface{}

// intParam returns the integer stored under key, or def when the key is
// absent. A value of any non-integral type is an error.
func intParam(params Params, key string, def int) (int, error) {
	if params == nil {
		return def, nil
	}
	obj, ok := params[key]
	if !ok || obj == nil {
		return def, nil
	}

	switch v := obj.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("/%s %v is not an integer: %w", key, v, ErrUnsupportedFilterParameter)
		}
		return int(v), nil
	default:
		return 0, fmt.Errorf("/%s has type %T: %w", key, obj, ErrUnsupportedFilterParameter)
	}
}

// getIntParam is the lenient form of intParam used by filters whose
// parameters are advisory.
func getIntParam(params Params, key string, defaultValue int) int {
	v, err := intParam(params, key, defaultValue)
	if err != nil {
		return defaultValue
	}
	return v
}

// getBoolParam extracts a boolean parameter from Params, returning defaultValue
// if the parameter is missing or cannot be converted to a boolean.
func getBoolParam(params Params, key string, defaultValue bool) bool {
	if params == nil {
		return defaultValue
	}
	if v, ok := params[key].(bool); ok {
		return v
	}
	return defaultValue
}
