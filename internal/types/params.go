package types

// GetString reads a string parameter
func GetString(params map[string]interface{}, key string) (string, bool) {
	v, ok := params[key].(string)
	return v, ok
}

// GetNumber reads a numeric parameter. JSON numbers decode as float64.
func GetNumber(params map[string]interface{}, key string) (float64, bool) {
	switch v := params[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// GetBool reads a boolean parameter
func GetBool(params map[string]interface{}, key string) (bool, bool) {
	v, ok := params[key].(bool)
	return v, ok
}

// GetMap reads an object parameter
func GetMap(params map[string]interface{}, key string) (map[string]interface{}, bool) {
	v, ok := params[key].(map[string]interface{})
	return v, ok
}
