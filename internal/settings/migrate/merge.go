package migrate

// MergeWithDefaults merges an incoming document map over a defaults map.
// The result's shape is drawn from defaults alone: fields absent from the
// incoming map fall back to the default, fields present in the incoming map
// but absent from defaults are dropped, and incoming values whose JSON kind
// does not match the default's kind are ignored in favor of the default.
// The merge is idempotent.
func MergeWithDefaults(defaults, incoming map[string]any) map[string]any {
	out := make(map[string]any, len(defaults))
	for key, defVal := range defaults {
		inVal, ok := incoming[key]
		if !ok {
			out[key] = defVal
			continue
		}

		defMap, defIsMap := defVal.(map[string]any)
		inMap, inIsMap := inVal.(map[string]any)
		if defIsMap && inIsMap {
			out[key] = MergeWithDefaults(defMap, inMap)
			continue
		}

		if jsonKind(inVal) == jsonKind(defVal) {
			out[key] = inVal
		} else {
			out[key] = defVal
		}
	}
	return out
}

// jsonKind names the JSON kind of an unmarshaled value.
func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}
