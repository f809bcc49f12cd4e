package kind_test

import (
	"testing"
	"time"

	"hermannm.dev/docprofile/document"
	"hermannm.dev/docprofile/kind"
)

func TestClassification(t *testing.T) {
	testCases := []struct {
		name     string
		value    any
		expected kind.Kind
	}{
		{"nil", nil, kind.KindNull},
		{"bool", true, kind.KindBoolean},
		{"int", 42, kind.KindNumber},
		{"int64", int64(-7), kind.KindNumber},
		{"float", 3.14, kind.KindNumber},
		{"string", "hello", kind.KindString},
		{"timestamp", time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC), kind.KindTimestamp},
		{"geopoint", document.GeoPoint{Latitude: 59.91, Longitude: 10.75}, kind.KindGeoPoint},
		{"reference", document.Ref("users/123"), kind.KindReference},
		{"bytes", []byte("blob"), kind.KindBytes},
		{"array", []any{1, 2, 3}, kind.KindArray},
		{"empty array", []any{}, kind.KindArray},
		{"object", map[string]any{"key": "value"}, kind.KindObject},
		{"empty object", map[string]any{}, kind.KindObject},
		{"unrecognized type", struct{ X int }{1}, kind.KindUnknown},
		{"typed slice", []string{"a"}, kind.KindUnknown},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := kind.Of(testCase.value); actual != testCase.expected {
				t.Errorf("expected kind '%s', got '%s'", testCase.expected, actual)
			}
		})
	}
}

// Opaque document value types must never fall through to the generic object/array
// kinds, so the structured checks have to run first.
func TestClassificationOrder(t *testing.T) {
	if actual := kind.Of([]byte{1, 2}); actual != kind.KindBytes {
		t.Errorf("expected []byte to classify as bytes before array, got '%s'", actual)
	}
	if actual := kind.Of(time.Now()); actual != kind.KindTimestamp {
		t.Errorf("expected time.Time to classify as timestamp, got '%s'", actual)
	}
}

func TestIntegral(t *testing.T) {
	testCases := []struct {
		name     string
		value    any
		expected bool
	}{
		{"int", 42, true},
		{"negative int64", int64(-100), true},
		{"integral float", 7.0, true},
		{"fractional float", 7.5, false},
		{"string", "7", false},
		{"nil", nil, false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if actual := kind.Integral(testCase.value); actual != testCase.expected {
				t.Errorf("expected %v, got %v", testCase.expected, actual)
			}
		})
	}
}

func TestKindNames(t *testing.T) {
	allKinds := []kind.Kind{
		kind.KindNull,
		kind.KindBoolean,
		kind.KindNumber,
		kind.KindString,
		kind.KindTimestamp,
		kind.KindGeoPoint,
		kind.KindReference,
		kind.KindBytes,
		kind.KindArray,
		kind.KindObject,
		kind.KindUnknown,
	}

	for _, valueKind := range allKinds {
		if !valueKind.IsValid() {
			t.Errorf("expected kind %d to be valid", valueKind)
		}
	}

	if kind.Kind(0).IsValid() {
		t.Error("expected zero kind to be invalid")
	}
}
