package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/attribute"
)

// toAttribute converts an arbitrary keyvalue pair into an OTEL attribute,
// falling back to a string representation for types OTEL has no native
// encoding for (durations, structs, etc).
func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case bool:
		return attribute.Bool(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
