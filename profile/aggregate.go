package profile

import (
	"hermannm.dev/docprofile/kind"
)

// FieldAggregate accumulates everything observed for one field path at one nesting
// position, across all the parent occurrences it appears under.
//
// Invariant: PresentCount equals the sum of Count over all variants.
type FieldAggregate struct {
	// Number of parent occurrences where this field was present, with any kind
	// (null included).
	PresentCount int
	// One entry per distinct kind observed for this field.
	Variants map[kind.Kind]*VariantAggregate
}

// VariantAggregate counts the observations of one kind for one field, and owns the
// nested aggregate for structured kinds.
type VariantAggregate struct {
	Count int
	// True until any non-integral number is observed. Only meaningful for KindNumber.
	IntegerOnly bool
	// Non-nil only for KindObject.
	Object *ObjectAggregate
	// Non-nil only for KindArray.
	Array *ArrayAggregate
	// Document IDs of example observations, first-seen-wins, capped at the run's
	// ExamplesPerIssue.
	ExampleIDs []string
}

// ObjectAggregate accumulates all object-valued occurrences at one position (or the
// document root).
//
// Invariant: every property's PresentCount is at most TotalSeen; a property missing
// from some object instances simply is not incremented for those instances.
type ObjectAggregate struct {
	// Number of object values observed at this position.
	TotalSeen  int
	Properties map[string]*FieldAggregate
}

// ArrayAggregate accumulates all array-valued occurrences at one position. Arrays are
// treated as homogeneous-slot unions: every element of every array instance is merged
// into the single shared Items aggregate, regardless of index.
type ArrayAggregate struct {
	TotalSeen  int
	EmptyCount int
	// Nil until a non-empty array has been observed.
	Items *FieldAggregate
}

func NewFieldAggregate() *FieldAggregate {
	return &FieldAggregate{Variants: make(map[kind.Kind]*VariantAggregate)}
}

func NewObjectAggregate() *ObjectAggregate {
	return &ObjectAggregate{Properties: make(map[string]*FieldAggregate)}
}

// variant fetches or creates the aggregate for the given kind.
func (field *FieldAggregate) variant(valueKind kind.Kind) *VariantAggregate {
	if variant, ok := field.Variants[valueKind]; ok {
		return variant
	}

	variant := &VariantAggregate{}
	switch valueKind {
	case kind.KindNumber:
		variant.IntegerOnly = true
	case kind.KindObject:
		variant.Object = NewObjectAggregate()
	case kind.KindArray:
		variant.Array = &ArrayAggregate{}
	}

	field.Variants[valueKind] = variant
	return variant
}

// property fetches or creates the aggregate for the given object key.
func (object *ObjectAggregate) property(name string) *FieldAggregate {
	if field, ok := object.Properties[name]; ok {
		return field
	}

	field := NewFieldAggregate()
	object.Properties[name] = field
	return field
}

// NonNullKinds returns the number of distinct non-null kinds observed for the field.
func (field *FieldAggregate) NonNullKinds() int {
	count := len(field.Variants)
	if _, hasNull := field.Variants[kind.KindNull]; hasNull {
		count--
	}
	return count
}
