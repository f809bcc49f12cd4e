package document

import (
	"encoding/base64"
	"time"

	"hermannm.dev/wrap"
)

// JSON transport for document values. Plain JSON covers null/boolean/number/string/
// array/object; the remaining document kinds are wrapped in single-key objects:
//
//	{"$date": "2023-10-01T12:00:00Z"}                       -> time.Time
//	{"$bytes": "aGVsbG8="}                                  -> []byte (base64)
//	{"$ref": "users/123"}                                   -> Ref
//	{"$geopoint": {"latitude": 59.9, "longitude": 10.7}}    -> GeoPoint
const (
	jsonKeyDate     = "$date"
	jsonKeyBytes    = "$bytes"
	jsonKeyRef      = "$ref"
	jsonKeyGeoPoint = "$geopoint"
)

// DecodeValue revives document value types from a value decoded by encoding/json.
// Values that are not wrapper objects pass through unchanged, with nested arrays and
// objects decoded recursively. A wrapper object with a malformed payload is left as a
// plain object rather than failing, since profiling must accept any data shape.
func DecodeValue(value any) any {
	switch value := value.(type) {
	case map[string]any:
		if len(value) == 1 {
			if decoded, ok := decodeWrapper(value); ok {
				return decoded
			}
		}

		decodedObject := make(map[string]any, len(value))
		for key, nested := range value {
			decodedObject[key] = DecodeValue(nested)
		}
		return decodedObject
	case []any:
		decodedArray := make([]any, len(value))
		for i, element := range value {
			decodedArray[i] = DecodeValue(element)
		}
		return decodedArray
	default:
		return value
	}
}

// DecodeFields decodes every field of a JSON-decoded document payload.
func DecodeFields(fields map[string]any) map[string]any {
	decoded := make(map[string]any, len(fields))
	for key, value := range fields {
		decoded[key] = DecodeValue(value)
	}
	return decoded
}

func decodeWrapper(object map[string]any) (decoded any, ok bool) {
	if rawDate, hasDate := object[jsonKeyDate]; hasDate {
		if dateString, isString := rawDate.(string); isString {
			if date, err := time.Parse(time.RFC3339, dateString); err == nil {
				return date, true
			}
		}
		return nil, false
	}

	if rawBytes, hasBytes := object[jsonKeyBytes]; hasBytes {
		if bytesString, isString := rawBytes.(string); isString {
			if bytes, err := base64.StdEncoding.DecodeString(bytesString); err == nil {
				return bytes, true
			}
		}
		return nil, false
	}

	if rawRef, hasRef := object[jsonKeyRef]; hasRef {
		if refString, isString := rawRef.(string); isString {
			return Ref(refString), true
		}
		return nil, false
	}

	if rawGeoPoint, hasGeoPoint := object[jsonKeyGeoPoint]; hasGeoPoint {
		if geoPointObject, isObject := rawGeoPoint.(map[string]any); isObject {
			latitude, hasLatitude := geoPointObject["latitude"].(float64)
			longitude, hasLongitude := geoPointObject["longitude"].(float64)
			if hasLatitude && hasLongitude {
				return GeoPoint{Latitude: latitude, Longitude: longitude}, true
			}
		}
		return nil, false
	}

	return nil, false
}

// EncodeValue is the inverse of DecodeValue, mapping document value types to their
// JSON transport representation.
func EncodeValue(value any) (encoded any, err error) {
	switch value := value.(type) {
	case time.Time:
		return map[string]any{jsonKeyDate: value.Format(time.RFC3339)}, nil
	case []byte:
		return map[string]any{jsonKeyBytes: base64.StdEncoding.EncodeToString(value)}, nil
	case Ref:
		return map[string]any{jsonKeyRef: string(value)}, nil
	case GeoPoint:
		return map[string]any{
			jsonKeyGeoPoint: map[string]any{
				"latitude":  value.Latitude,
				"longitude": value.Longitude,
			},
		}, nil
	case map[string]any:
		encodedObject := make(map[string]any, len(value))
		for key, nested := range value {
			encodedNested, err := EncodeValue(nested)
			if err != nil {
				return nil, wrap.Errorf(err, "failed to encode field '%s'", key)
			}
			encodedObject[key] = encodedNested
		}
		return encodedObject, nil
	case []any:
		encodedArray := make([]any, len(value))
		for i, element := range value {
			encodedElement, err := EncodeValue(element)
			if err != nil {
				return nil, wrap.Errorf(err, "failed to encode array element %d", i)
			}
			encodedArray[i] = encodedElement
		}
		return encodedArray, nil
	default:
		return value, nil
	}
}

// EncodeFields encodes every field of a document payload for JSON transport.
func EncodeFields(fields map[string]any) (map[string]any, error) {
	encoded := make(map[string]any, len(fields))
	for key, value := range fields {
		encodedValue, err := EncodeValue(value)
		if err != nil {
			return nil, err
		}
		encoded[key] = encodedValue
	}
	return encoded, nil
}
