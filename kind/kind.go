package kind

import (
	"hermannm.dev/enumnames"
)

// Kind is the discrete type tag assigned to one observed document field value.
type Kind uint8

const (
	KindNull Kind = iota + 1
	KindBoolean
	KindNumber
	KindString
	KindTimestamp
	KindGeoPoint
	KindReference
	KindBytes
	KindArray
	KindObject
	KindUnknown
)

var kindNames = enumnames.NewMap(map[Kind]string{
	KindNull:      "null",
	KindBoolean:   "boolean",
	KindNumber:    "number",
	KindString:    "string",
	KindTimestamp: "timestamp",
	KindGeoPoint:  "geopoint",
	KindReference: "reference",
	KindBytes:     "bytes",
	KindArray:     "array",
	KindObject:    "object",
	KindUnknown:   "unknown",
})

func (kind Kind) IsValid() bool {
	return kindNames.ContainsEnumValue(kind)
}

func (kind Kind) String() string {
	return kindNames.GetNameOrFallback(kind, "INVALID_KIND")
}

func (kind Kind) MarshalJSON() ([]byte, error) {
	return kindNames.MarshalToNameJSON(kind)
}

func (kind *Kind) UnmarshalJSON(bytes []byte) error {
	return kindNames.UnmarshalFromNameJSON(bytes, kind)
}

// Scalar returns true for the kinds that the map-vs-record heuristic accepts as
// homogeneous dictionary value types.
func (kind Kind) Scalar() bool {
	switch kind {
	case KindBoolean, KindString, KindNumber:
		return true
	default:
		return false
	}
}
