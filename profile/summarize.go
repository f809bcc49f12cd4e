package profile

import (
	"fmt"
	"sort"

	"hermannm.dev/docprofile/kind"
)

// ValueSummary is a declarative description of everything observed at one position in
// the document tree: a field, an array's element slot, or the document root.
type ValueSummary struct {
	// A kind name, "union", or "map<string,K>" for objects behaving as homogeneous
	// dictionaries.
	Type string `json:"type" yaml:"type"`
	// True iff the field was present in every instance of its parent.
	Required bool `json:"required" yaml:"required"`
	// True iff null was observed among the field's kinds.
	Nullable bool `json:"nullable" yaml:"nullable"`
	// True for number fields where every observed value was integral.
	IntegerOnly bool `json:"integerOnly,omitempty" yaml:"integerOnly,omitempty"`
	// Sorted kind names, set when Type is "union".
	Union []string `json:"union,omitempty" yaml:"union,omitempty"`
	// Element summary for arrays. Nil if only empty arrays were observed.
	Items *ValueSummary `json:"items,omitempty" yaml:"items,omitempty"`
	// Per-key summaries for fixed-shape objects.
	Fields map[string]ValueSummary `json:"fields,omitempty" yaml:"fields,omitempty"`
	// Sorted names of the keys that are required, for fixed-shape objects.
	RequiredFields []string `json:"requiredFields,omitempty" yaml:"requiredFields,omitempty"`
}

// Summarize derives a schema description from a finished aggregate tree. It is pure
// and deterministic: the result depends only on the aggregate's state, not on the
// order fields were discovered in, and summarizing the same aggregate twice yields
// identical output.
func Summarize(object *ObjectAggregate) ValueSummary {
	return summarizeObject(object)
}

func summarizeObject(object *ObjectAggregate) ValueSummary {
	if valueKind, isMap := mapValueKind(object); isMap {
		return ValueSummary{Type: fmt.Sprintf("map<string,%s>", valueKind)}
	}

	summary := ValueSummary{Type: kind.KindObject.String()}
	if len(object.Properties) != 0 {
		summary.Fields = make(map[string]ValueSummary, len(object.Properties))
	}

	var requiredFields []string
	for name, field := range object.Properties {
		fieldSummary := summarizeField(field, object.TotalSeen)
		summary.Fields[name] = fieldSummary
		if fieldSummary.Required {
			requiredFields = append(requiredFields, name)
		}
	}

	sort.Strings(requiredFields)
	summary.RequiredFields = requiredFields
	return summary
}

func summarizeField(field *FieldAggregate, parentTotal int) ValueSummary {
	required := parentTotal > 0 && field.PresentCount == parentTotal
	_, nullable := field.Variants[kind.KindNull]

	nonNullKinds := make([]kind.Kind, 0, len(field.Variants))
	for valueKind := range field.Variants {
		if valueKind != kind.KindNull {
			nonNullKinds = append(nonNullKinds, valueKind)
		}
	}
	sort.Slice(nonNullKinds, func(i, j int) bool {
		return nonNullKinds[i].String() < nonNullKinds[j].String()
	})

	switch len(nonNullKinds) {
	case 0:
		// Only null was ever observed.
		return ValueSummary{Type: kind.KindNull.String(), Required: required, Nullable: nullable}
	case 1:
		valueKind := nonNullKinds[0]
		variant := field.Variants[valueKind]

		switch valueKind {
		case kind.KindObject:
			summary := summarizeObject(variant.Object)
			summary.Required = required
			summary.Nullable = nullable
			return summary
		case kind.KindArray:
			summary := ValueSummary{
				Type:     kind.KindArray.String(),
				Required: required,
				Nullable: nullable,
			}
			if variant.Array.Items != nil {
				// Element slots have no parent total: elements are never "required".
				items := summarizeField(variant.Array.Items, 0)
				summary.Items = &items
			}
			return summary
		case kind.KindNumber:
			return ValueSummary{
				Type:        valueKind.String(),
				Required:    required,
				Nullable:    nullable,
				IntegerOnly: variant.IntegerOnly,
			}
		default:
			return ValueSummary{Type: valueKind.String(), Required: required, Nullable: nullable}
		}
	default:
		union := make([]string, len(nonNullKinds))
		for i, valueKind := range nonNullKinds {
			union[i] = valueKind.String()
		}
		return ValueSummary{Type: "union", Required: required, Nullable: nullable, Union: union}
	}
}

// mapValueKind applies the map-vs-fixed-object heuristic: an object is summarized as a
// homogeneous string-keyed dictionary iff no key is stable (none present in every
// instance, which is evidence of dynamic keys) and every key holds exactly one
// observed kind, the same scalar kind across all keys.
func mapValueKind(object *ObjectAggregate) (valueKind kind.Kind, isMap bool) {
	if len(object.Properties) == 0 || object.TotalSeen == 0 {
		return 0, false
	}

	sharedKind := kind.Kind(0)
	for _, field := range object.Properties {
		if field.PresentCount == object.TotalSeen {
			// A stable key means a fixed-shape record.
			return 0, false
		}
		if len(field.Variants) != 1 {
			return 0, false
		}

		for fieldKind := range field.Variants {
			if !fieldKind.Scalar() {
				return 0, false
			}
			if sharedKind == 0 {
				sharedKind = fieldKind
			} else if sharedKind != fieldKind {
				return 0, false
			}
		}
	}

	return sharedKind, true
}
