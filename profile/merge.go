package profile

import (
	"hermannm.dev/docprofile/kind"
)

// Aggregates form a monoid under merging: folding a document stream in one go gives
// the same counts, field-for-field, as folding disjoint partitions of it separately
// and merging the results, in either order. This is what makes sharded profiling
// sound.
//
// Example ID lists are the one order-sensitive part: merging keeps left-side examples
// first, bounded by exampleCap, so callers that need a deterministic example policy
// should merge shards in a fixed order.

// MergeObjects combines two object aggregates built from disjoint document partitions
// into a new aggregate. Neither input is modified. A nil input acts as the empty
// aggregate.
func MergeObjects(left, right *ObjectAggregate, exampleCap int) *ObjectAggregate {
	if left == nil {
		return cloneObject(right)
	}
	if right == nil {
		return cloneObject(left)
	}

	merged := NewObjectAggregate()
	merged.TotalSeen = left.TotalSeen + right.TotalSeen

	for name, field := range left.Properties {
		merged.Properties[name] = MergeFields(field, right.Properties[name], exampleCap)
	}
	for name, field := range right.Properties {
		if _, alreadyMerged := left.Properties[name]; !alreadyMerged {
			merged.Properties[name] = cloneField(field)
		}
	}

	return merged
}

// MergeFields combines two field aggregates the same way MergeObjects combines object
// aggregates.
func MergeFields(left, right *FieldAggregate, exampleCap int) *FieldAggregate {
	if left == nil {
		return cloneField(right)
	}
	if right == nil {
		return cloneField(left)
	}

	merged := NewFieldAggregate()
	merged.PresentCount = left.PresentCount + right.PresentCount

	for valueKind, variant := range left.Variants {
		merged.Variants[valueKind] = mergeVariants(
			valueKind, variant, right.Variants[valueKind], exampleCap,
		)
	}
	for valueKind, variant := range right.Variants {
		if _, alreadyMerged := left.Variants[valueKind]; !alreadyMerged {
			merged.Variants[valueKind] = cloneVariant(variant)
		}
	}

	return merged
}

func mergeVariants(
	valueKind kind.Kind,
	left *VariantAggregate,
	right *VariantAggregate,
	exampleCap int,
) *VariantAggregate {
	if right == nil {
		return cloneVariant(left)
	}

	merged := &VariantAggregate{Count: left.Count + right.Count}

	switch valueKind {
	case kind.KindNumber:
		merged.IntegerOnly = left.IntegerOnly && right.IntegerOnly
	case kind.KindObject:
		merged.Object = MergeObjects(left.Object, right.Object, exampleCap)
	case kind.KindArray:
		merged.Array = mergeArrays(left.Array, right.Array, exampleCap)
	}

	merged.ExampleIDs = mergeExamples(left.ExampleIDs, right.ExampleIDs, exampleCap)
	return merged
}

func mergeArrays(left, right *ArrayAggregate, exampleCap int) *ArrayAggregate {
	merged := &ArrayAggregate{
		TotalSeen:  left.TotalSeen + right.TotalSeen,
		EmptyCount: left.EmptyCount + right.EmptyCount,
	}
	if left.Items != nil || right.Items != nil {
		merged.Items = MergeFields(left.Items, right.Items, exampleCap)
	}
	return merged
}

func mergeExamples(left, right []string, exampleCap int) []string {
	if exampleCap <= 0 {
		return nil
	}

	merged := make([]string, 0, min(len(left)+len(right), exampleCap))
	merged = append(merged, left...)
	for _, example := range right {
		if len(merged) >= exampleCap {
			break
		}
		merged = append(merged, example)
	}
	if len(merged) > exampleCap {
		merged = merged[:exampleCap]
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}

func cloneObject(object *ObjectAggregate) *ObjectAggregate {
	if object == nil {
		return NewObjectAggregate()
	}

	cloned := NewObjectAggregate()
	cloned.TotalSeen = object.TotalSeen
	for name, field := range object.Properties {
		cloned.Properties[name] = cloneField(field)
	}
	return cloned
}

func cloneField(field *FieldAggregate) *FieldAggregate {
	if field == nil {
		return NewFieldAggregate()
	}

	cloned := NewFieldAggregate()
	cloned.PresentCount = field.PresentCount
	for valueKind, variant := range field.Variants {
		cloned.Variants[valueKind] = cloneVariant(variant)
	}
	return cloned
}

func cloneVariant(variant *VariantAggregate) *VariantAggregate {
	cloned := &VariantAggregate{Count: variant.Count, IntegerOnly: variant.IntegerOnly}
	if variant.Object != nil {
		cloned.Object = cloneObject(variant.Object)
	}
	if variant.Array != nil {
		cloned.Array = &ArrayAggregate{
			TotalSeen:  variant.Array.TotalSeen,
			EmptyCount: variant.Array.EmptyCount,
		}
		if variant.Array.Items != nil {
			cloned.Array.Items = cloneField(variant.Array.Items)
		}
	}
	if len(variant.ExampleIDs) != 0 {
		cloned.ExampleIDs = append([]string(nil), variant.ExampleIDs...)
	}
	return cloned
}
