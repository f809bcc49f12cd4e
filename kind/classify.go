package kind

import (
	"math"
	"time"

	"hermannm.dev/docprofile/document"
)

// Of maps an arbitrary document field value to exactly one Kind. It is total and never
// fails: values of unrecognized types are tagged KindUnknown, so that profiling can
// proceed over any data shape.
//
// Classification order matters. Null is checked first, then the opaque document value
// types (timestamp, geopoint, reference, bytes) by concrete type, then arrays, then
// scalars, then generic key-value maps. This ensures a timestamp or geopoint is never
// misclassified as a generic object.
func Of(value any) Kind {
	if value == nil {
		return KindNull
	}

	switch value.(type) {
	case time.Time:
		return KindTimestamp
	case document.GeoPoint:
		return KindGeoPoint
	case document.Ref:
		return KindReference
	case []byte:
		return KindBytes
	case []any:
		return KindArray
	case string:
		return KindString
	case bool:
		return KindBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return KindNumber
	case map[string]any:
		return KindObject
	default:
		return KindUnknown
	}
}

// Integral returns whether a KindNumber value holds an integral number (no fractional
// part). Non-number values return false.
func Integral(value any) bool {
	switch value := value.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case float32:
		return float64(value) == math.Trunc(float64(value))
	case float64:
		return value == math.Trunc(value)
	default:
		return false
	}
}
