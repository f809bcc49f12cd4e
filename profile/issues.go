package profile

import (
	"sort"
	"strings"

	"hermannm.dev/docprofile/kind"
)

// Issues holds the data-quality findings of one profiling run. An empty sub-section
// means zero issues of that check were found.
type Issues struct {
	MissingFields     []MissingFieldIssue     `json:"missing_fields,omitempty"     yaml:"missing_fields,omitempty"`
	TypeMismatches    []TypeMismatchIssue     `json:"type_mismatches,omitempty"    yaml:"type_mismatches,omitempty"`
	RegexViolations   []RegexViolationIssue   `json:"regex_violations,omitempty"   yaml:"regex_violations,omitempty"`
	RareFields        []RareFieldIssue        `json:"rare_fields,omitempty"        yaml:"rare_fields,omitempty"`
	FieldNameVariants []FieldNameVariantIssue `json:"field_name_variants,omitempty" yaml:"field_name_variants,omitempty"`
}

func (issues Issues) Empty() bool {
	return len(issues.MissingFields) == 0 &&
		len(issues.TypeMismatches) == 0 &&
		len(issues.RegexViolations) == 0 &&
		len(issues.RareFields) == 0 &&
		len(issues.FieldNameVariants) == 0
}

// MissingFieldIssue reports a top-level field that cleared the required threshold but
// was absent from some documents.
type MissingFieldIssue struct {
	Field              string   `json:"field"                        yaml:"field"`
	PresentCount       int      `json:"presentCount"                 yaml:"presentCount"`
	MissingCount       int      `json:"missingCount"                 yaml:"missingCount"`
	MissingFraction    float64  `json:"missingFraction"              yaml:"missingFraction"`
	ExampleDocumentIDs []string `json:"exampleDocumentIds,omitempty" yaml:"exampleDocumentIds,omitempty"`
}

// TypeMismatchIssue reports a field observed with two or more distinct non-null kinds.
type TypeMismatchIssue struct {
	Field string `json:"field" yaml:"field"`
	// Histogram from kind name to observation count.
	Kinds map[string]int `json:"kinds" yaml:"kinds"`
	// Example document IDs per kind name.
	Examples map[string][]string `json:"examples,omitempty" yaml:"examples,omitempty"`
}

// RegexViolationIssue reports string values that failed a configured pattern.
type RegexViolationIssue struct {
	Field    string                  `json:"field"              yaml:"field"`
	Pattern  string                  `json:"pattern"            yaml:"pattern"`
	Count    int                     `json:"count"              yaml:"count"`
	Examples []RegexViolationExample `json:"examples,omitempty" yaml:"examples,omitempty"`
}

type RegexViolationExample struct {
	DocumentID string `json:"documentId" yaml:"documentId"`
	Value      string `json:"value"      yaml:"value"`
}

// RareFieldIssue reports a field present in so few parent instances that it is likely
// a typo or a stray one-off.
type RareFieldIssue struct {
	Field              string   `json:"field"                        yaml:"field"`
	PresentCount       int      `json:"presentCount"                 yaml:"presentCount"`
	Fraction           float64  `json:"fraction"                     yaml:"fraction"`
	ExampleDocumentIDs []string `json:"exampleDocumentIds,omitempty" yaml:"exampleDocumentIds,omitempty"`
}

// FieldNameVariantIssue reports field paths that normalize to the same key, e.g.
// "firstName" and "first_name" — a suspected naming inconsistency. The path with the
// highest presence count is reported as canonical.
type FieldNameVariantIssue struct {
	Canonical      string             `json:"canonical"      yaml:"canonical"`
	CanonicalCount int                `json:"canonicalCount" yaml:"canonicalCount"`
	Variants       []FieldNameVariant `json:"variants"       yaml:"variants"`
}

type FieldNameVariant struct {
	Field string `json:"field" yaml:"field"`
	Count int    `json:"count" yaml:"count"`
}

// walkFields visits every field path in the aggregate tree, depth-first. Nested object
// fields get dot-separated paths; fields of objects inside arrays keep the array
// field's path as their prefix.
func walkFields(
	object *ObjectAggregate,
	prefix string,
	visit func(path string, field *FieldAggregate, parentTotal int),
) {
	for name, field := range object.Properties {
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		visit(path, field, object.TotalSeen)

		if variant, isObject := field.Variants[kind.KindObject]; isObject {
			walkFields(variant.Object, path, visit)
		}
		if variant, isArray := field.Variants[kind.KindArray]; isArray {
			if items := variant.Array.Items; items != nil {
				if itemsVariant, isObject := items.Variants[kind.KindObject]; isObject {
					walkFields(itemsVariant.Object, path, visit)
				}
			}
		}
	}
}

func detectTypeMismatches(root *ObjectAggregate) []TypeMismatchIssue {
	var issues []TypeMismatchIssue

	walkFields(root, "", func(path string, field *FieldAggregate, parentTotal int) {
		if field.NonNullKinds() < 2 {
			return
		}

		issue := TypeMismatchIssue{
			Field: path,
			Kinds: make(map[string]int, len(field.Variants)),
		}
		for valueKind, variant := range field.Variants {
			issue.Kinds[valueKind.String()] = variant.Count
			if len(variant.ExampleIDs) != 0 {
				if issue.Examples == nil {
					issue.Examples = make(map[string][]string)
				}
				issue.Examples[valueKind.String()] = variant.ExampleIDs
			}
		}
		issues = append(issues, issue)
	})

	sortByField(issues, func(issue TypeMismatchIssue) string { return issue.Field })
	return issues
}

func detectRareFields(root *ObjectAggregate, options Options) []RareFieldIssue {
	var issues []RareFieldIssue

	walkFields(root, "", func(path string, field *FieldAggregate, parentTotal int) {
		if parentTotal == 0 {
			return
		}

		fraction := float64(field.PresentCount) / float64(parentTotal)
		if fraction > options.RareFieldMaxFraction {
			return
		}

		issues = append(issues, RareFieldIssue{
			Field:              path,
			PresentCount:       field.PresentCount,
			Fraction:           fraction,
			ExampleDocumentIDs: collectFieldExamples(field, options.ExamplesPerIssue),
		})
	})

	sortByField(issues, func(issue RareFieldIssue) string { return issue.Field })
	return issues
}

// collectFieldExamples gathers example document IDs across a field's variants, in
// sorted kind order for determinism, bounded by the example cap.
func collectFieldExamples(field *FieldAggregate, exampleCap int) []string {
	if exampleCap <= 0 {
		return nil
	}

	sortedKinds := make([]kind.Kind, 0, len(field.Variants))
	for valueKind := range field.Variants {
		sortedKinds = append(sortedKinds, valueKind)
	}
	sort.Slice(sortedKinds, func(i, j int) bool {
		return sortedKinds[i].String() < sortedKinds[j].String()
	})

	var examples []string
	seen := make(map[string]bool)
	for _, valueKind := range sortedKinds {
		for _, docID := range field.Variants[valueKind].ExampleIDs {
			if len(examples) >= exampleCap {
				return examples
			}
			if !seen[docID] {
				seen[docID] = true
				examples = append(examples, docID)
			}
		}
	}
	return examples
}

func detectFieldNameVariants(root *ObjectAggregate) []FieldNameVariantIssue {
	type observedPath struct {
		path         string
		presentCount int
	}

	groups := make(map[string][]observedPath)
	walkFields(root, "", func(path string, field *FieldAggregate, parentTotal int) {
		normalized := normalizeFieldPath(path)
		groups[normalized] = append(groups[normalized], observedPath{path, field.PresentCount})
	})

	var issues []FieldNameVariantIssue
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}

		// Canonical path is the one with the highest presence count, with
		// lexicographic order as tie-breaker for determinism.
		sort.Slice(group, func(i, j int) bool {
			if group[i].presentCount != group[j].presentCount {
				return group[i].presentCount > group[j].presentCount
			}
			return group[i].path < group[j].path
		})

		issue := FieldNameVariantIssue{
			Canonical:      group[0].path,
			CanonicalCount: group[0].presentCount,
		}
		for _, variant := range group[1:] {
			issue.Variants = append(issue.Variants, FieldNameVariant{
				Field: variant.path,
				Count: variant.presentCount,
			})
		}
		issues = append(issues, issue)
	}

	sortByField(issues, func(issue FieldNameVariantIssue) string { return issue.Canonical })
	return issues
}

// normalizeFieldPath lowercases a field path and strips path separators and
// underscores, so that different spellings of the same logical field collide.
func normalizeFieldPath(path string) string {
	normalized := strings.ToLower(path)
	normalized = strings.ReplaceAll(normalized, ".", "")
	normalized = strings.ReplaceAll(normalized, "_", "")
	return normalized
}

func (folder *Folder) violationIssues() []RegexViolationIssue {
	var issues []RegexViolationIssue
	for path, violations := range folder.violations {
		issues = append(issues, RegexViolationIssue{
			Field:    path,
			Pattern:  violations.pattern,
			Count:    violations.count,
			Examples: violations.examples,
		})
	}

	sortByField(issues, func(issue RegexViolationIssue) string { return issue.Field })
	return issues
}

func sortByField[IssueT any](issues []IssueT, field func(issue IssueT) string) {
	sort.Slice(issues, func(i, j int) bool {
		return field(issues[i]) < field(issues[j])
	})
}
