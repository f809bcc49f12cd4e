package profile

import (
	"regexp"

	"hermannm.dev/docprofile/document"
	"hermannm.dev/docprofile/kind"
)

// Folder folds a stream of documents into an aggregate tree (pass 1 of a profiling
// run). Alongside the aggregates, it records the bounded issue evidence that is
// already visible at fold time: example document IDs per observed kind, and regex
// violations for configured string rules.
//
// A Folder has exactly one writer; to profile document shards in parallel, give each
// worker its own Folder and combine the results with MergeObjects.
type Folder struct {
	options         Options
	regexRules      map[string]*regexp.Regexp
	aggregate       *ObjectAggregate
	violations      map[string]*fieldViolations
	documentsFolded int
}

type fieldViolations struct {
	pattern  string
	count    int
	examples []RegexViolationExample
}

func NewFolder(options Options, regexRules map[string]*regexp.Regexp) *Folder {
	return &Folder{
		options:    options,
		regexRules: regexRules,
		aggregate:  NewObjectAggregate(),
		violations: make(map[string]*fieldViolations),
	}
}

// FoldDocument records one more document observation in the aggregate tree. Folding
// the same document twice counts it as two independent observations; the folder does
// no deduplication.
func (folder *Folder) FoldDocument(doc document.Document) {
	folder.aggregate.TotalSeen++
	folder.documentsFolded++

	for name, value := range doc.Fields {
		folder.foldValue(folder.aggregate.property(name), name, doc.ID, value)
	}
}

func (folder *Folder) Aggregate() *ObjectAggregate {
	return folder.aggregate
}

func (folder *Folder) DocumentsFolded() int {
	return folder.documentsFolded
}

func (folder *Folder) foldValue(field *FieldAggregate, path string, docID string, value any) {
	field.PresentCount++

	valueKind := kind.Of(value)
	variant := field.variant(valueKind)
	variant.Count++
	folder.recordExample(variant, docID)

	switch valueKind {
	case kind.KindObject:
		object := value.(map[string]any)
		variant.Object.TotalSeen++
		for name, nested := range object {
			folder.foldValue(variant.Object.property(name), path+"."+name, docID, nested)
		}
	case kind.KindArray:
		array := value.([]any)
		variant.Array.TotalSeen++
		if len(array) == 0 {
			variant.Array.EmptyCount++
		} else {
			if variant.Array.Items == nil {
				variant.Array.Items = NewFieldAggregate()
			}
			// Array elements share a single aggregate and the array's own field path:
			// arrays are profiled as homogeneous-slot unions, not per-index.
			for _, element := range array {
				folder.foldValue(variant.Array.Items, path, docID, element)
			}
		}
	case kind.KindNumber:
		if !kind.Integral(value) {
			variant.IntegerOnly = false
		}
	case kind.KindString:
		folder.checkRegexRule(path, docID, value.(string))
	}
}

// recordExample appends the document ID to the variant's example list, bounded by
// ExamplesPerIssue. Repeated observations within the same document (e.g. array
// elements) only record the ID once.
func (folder *Folder) recordExample(variant *VariantAggregate, docID string) {
	exampleCap := folder.options.ExamplesPerIssue
	if exampleCap <= 0 || len(variant.ExampleIDs) >= exampleCap {
		return
	}
	if last := len(variant.ExampleIDs) - 1; last >= 0 && variant.ExampleIDs[last] == docID {
		return
	}
	variant.ExampleIDs = append(variant.ExampleIDs, docID)
}

func (folder *Folder) checkRegexRule(path string, docID string, value string) {
	rule, hasRule := folder.regexRules[path]
	if !hasRule || rule.MatchString(value) {
		return
	}

	violations, ok := folder.violations[path]
	if !ok {
		violations = &fieldViolations{pattern: rule.String()}
		folder.violations[path] = violations
	}

	violations.count++
	if exampleCap := folder.options.ExamplesPerIssue; exampleCap > 0 &&
		len(violations.examples) < exampleCap {
		violations.examples = append(violations.examples, RegexViolationExample{
			DocumentID: docID,
			Value:      value,
		})
	}
}
