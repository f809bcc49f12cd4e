package document_test

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"hermannm.dev/docprofile/document"
)

func TestDecodeValueRevivesWrappers(t *testing.T) {
	payload := `{
		"createdAt": {"$date": "2023-10-01T12:00:00Z"},
		"avatar": {"$bytes": "aGVsbG8="},
		"owner": {"$ref": "users/123"},
		"location": {"$geopoint": {"latitude": 59.91, "longitude": 10.75}},
		"nested": {"deep": {"$ref": "orders/456"}},
		"list": [{"$date": "2023-10-01T12:00:00Z"}, 42]
	}`

	var rawFields map[string]any
	if err := json.Unmarshal([]byte(payload), &rawFields); err != nil {
		t.Fatal(err)
	}
	fields := document.DecodeFields(rawFields)

	expectedDate := time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC)
	if createdAt, ok := fields["createdAt"].(time.Time); !ok || !createdAt.Equal(expectedDate) {
		t.Errorf("expected revived timestamp, got %v", fields["createdAt"])
	}
	if avatar, ok := fields["avatar"].([]byte); !ok || string(avatar) != "hello" {
		t.Errorf("expected revived bytes, got %v", fields["avatar"])
	}
	if owner, ok := fields["owner"].(document.Ref); !ok || owner != "users/123" {
		t.Errorf("expected revived reference, got %v", fields["owner"])
	}

	expectedLocation := document.GeoPoint{Latitude: 59.91, Longitude: 10.75}
	if location, ok := fields["location"].(document.GeoPoint); !ok || location != expectedLocation {
		t.Errorf("expected revived geopoint, got %v", fields["location"])
	}

	nested := fields["nested"].(map[string]any)
	if deep, ok := nested["deep"].(document.Ref); !ok || deep != "orders/456" {
		t.Errorf("expected revived nested reference, got %v", nested["deep"])
	}

	list := fields["list"].([]any)
	if _, ok := list[0].(time.Time); !ok {
		t.Errorf("expected revived timestamp in array, got %v", list[0])
	}
}

// Wrapper objects with malformed payloads must pass through as plain data, never fail.
func TestDecodeValueMalformedWrapper(t *testing.T) {
	malformed := map[string]any{"$date": "not-a-date"}
	decoded := document.DecodeValue(malformed)

	object, isObject := decoded.(map[string]any)
	if !isObject {
		t.Fatalf("expected malformed wrapper to stay an object, got %T", decoded)
	}
	if object["$date"] != "not-a-date" {
		t.Errorf("expected wrapper contents preserved, got %v", object)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	fields := map[string]any{
		"createdAt": time.Date(2023, 10, 1, 12, 0, 0, 0, time.UTC),
		"owner":     document.Ref("users/123"),
		"location":  document.GeoPoint{Latitude: 1.5, Longitude: -2.5},
		"name":      "Alice",
		"scores":    []any{1.0, 2.0},
	}

	encoded, err := document.EncodeFields(fields)
	if err != nil {
		t.Fatal(err)
	}

	// Serialize and re-parse, as values would travel through storage.
	serialized, err := json.Marshal(encoded)
	if err != nil {
		t.Fatal(err)
	}
	var reparsed map[string]any
	if err := json.Unmarshal(serialized, &reparsed); err != nil {
		t.Fatal(err)
	}

	decoded := document.DecodeFields(reparsed)

	if createdAt := decoded["createdAt"].(time.Time); !createdAt.Equal(fields["createdAt"].(time.Time)) {
		t.Errorf("timestamp did not survive round trip: %v", createdAt)
	}
	if decoded["owner"] != fields["owner"] {
		t.Errorf("reference did not survive round trip: %v", decoded["owner"])
	}
	if decoded["location"] != fields["location"] {
		t.Errorf("geopoint did not survive round trip: %v", decoded["location"])
	}
	if !reflect.DeepEqual(decoded["scores"], fields["scores"]) {
		t.Errorf("array did not survive round trip: %v", decoded["scores"])
	}
}

func TestRefPathParsing(t *testing.T) {
	ref := document.Ref("users/123/orders/456")
	if ref.Collection() != "orders" {
		t.Errorf("expected collection 'orders', got '%s'", ref.Collection())
	}
	if ref.ID() != "456" {
		t.Errorf("expected ID '456', got '%s'", ref.ID())
	}
}
