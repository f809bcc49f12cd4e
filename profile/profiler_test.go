package profile

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"hermannm.dev/docprofile/document"
)

func profileDocuments(
	t *testing.T,
	options Options,
	documents []document.Document,
) Report {
	t.Helper()

	profiler, err := NewProfiler(options)
	if err != nil {
		t.Fatalf("failed to create profiler: %v", err)
	}

	report, err := profiler.Profile(
		context.Background(), "test_collection", document.NewSliceSource(documents),
	)
	if err != nil {
		t.Fatalf("profiling run failed: %v", err)
	}
	return report
}

// 10 documents with "age" as a number in 9 and a string in 1: every document has the
// field, so this must yield a type mismatch but no missing-field issue.
func TestTypeMismatchScenario(t *testing.T) {
	documents := make([]document.Document, 0, 10)
	for i := 1; i <= 9; i++ {
		documents = append(documents, document.Document{
			ID:     fmt.Sprintf("doc-%d", i),
			Fields: map[string]any{"age": i * 10},
		})
	}
	documents = append(documents, document.Document{
		ID:     "doc-10",
		Fields: map[string]any{"age": "nine"},
	})

	report := profileDocuments(t, DefaultOptions(), documents)

	if len(report.Issues.MissingFields) != 0 {
		t.Errorf("expected no missing-field issues, got %v", report.Issues.MissingFields)
	}

	if len(report.Issues.TypeMismatches) != 1 {
		t.Fatalf("expected 1 type mismatch, got %v", report.Issues.TypeMismatches)
	}
	mismatch := report.Issues.TypeMismatches[0]
	if mismatch.Field != "age" {
		t.Errorf("expected mismatch on age, got '%s'", mismatch.Field)
	}
	if !reflect.DeepEqual(mismatch.Kinds, map[string]int{"number": 9, "string": 1}) {
		t.Errorf("expected kind histogram {number:9 string:1}, got %v", mismatch.Kinds)
	}
	if !reflect.DeepEqual(mismatch.Examples["string"], []string{"doc-10"}) {
		t.Errorf("expected string example [doc-10], got %v", mismatch.Examples["string"])
	}
}

// A field with one kind plus null is not a mismatch: null does not count as a
// conflicting kind.
func TestNullDoesNotCountAsMismatch(t *testing.T) {
	report := profileDocuments(t, DefaultOptions(), []document.Document{
		{ID: "1", Fields: map[string]any{"email": "a@example.com"}},
		{ID: "2", Fields: map[string]any{"email": nil}},
	})

	if len(report.Issues.TypeMismatches) != 0 {
		t.Errorf("expected no type mismatches, got %v", report.Issues.TypeMismatches)
	}
}

func TestMissingFieldDetection(t *testing.T) {
	documents := make([]document.Document, 0, 20)
	for i := 1; i <= 19; i++ {
		documents = append(documents, document.Document{
			ID:     fmt.Sprintf("doc-%d", i),
			Fields: map[string]any{"name": "present", "sometimes": i},
		})
	}
	// Document 20 lacks both fields. "name" is present in 19/20 = 0.95 >= 0.9, so it is
	// expected; "sometimes" too. Both should be flagged with this document as evidence.
	documents = append(documents, document.Document{ID: "doc-20", Fields: map[string]any{}})

	report := profileDocuments(t, DefaultOptions(), documents)

	if len(report.Issues.MissingFields) != 2 {
		t.Fatalf("expected 2 missing-field issues, got %v", report.Issues.MissingFields)
	}

	name := report.Issues.MissingFields[0]
	if name.Field != "name" || name.MissingCount != 1 || name.PresentCount != 19 {
		t.Errorf("unexpected missing-field issue: %+v", name)
	}
	if !reflect.DeepEqual(name.ExampleDocumentIDs, []string{"doc-20"}) {
		t.Errorf("expected example [doc-20], got %v", name.ExampleDocumentIDs)
	}
}

// A field that is mostly present but below the required threshold is never flagged as
// missing. This precision/recall tradeoff is part of the check's design.
func TestBelowThresholdFieldNotFlagged(t *testing.T) {
	var documents []document.Document
	for i := 1; i <= 10; i++ {
		fields := map[string]any{"always": true}
		if i <= 8 {
			fields["mostly"] = i
		}
		documents = append(documents, document.Document{
			ID:     fmt.Sprintf("doc-%d", i),
			Fields: fields,
		})
	}

	report := profileDocuments(t, DefaultOptions(), documents)

	for _, issue := range report.Issues.MissingFields {
		if issue.Field == "mostly" {
			t.Error("field below required threshold must not be flagged as missing")
		}
	}
}

func TestMissingFieldExampleBound(t *testing.T) {
	options := DefaultOptions()
	options.ExamplesPerIssue = 3

	var documents []document.Document
	for i := 1; i <= 100; i++ {
		fields := map[string]any{}
		if i <= 95 {
			fields["name"] = "present"
		}
		documents = append(documents, document.Document{
			ID:     fmt.Sprintf("doc-%d", i),
			Fields: fields,
		})
	}

	report := profileDocuments(t, options, documents)

	if len(report.Issues.MissingFields) != 1 {
		t.Fatalf("expected 1 missing-field issue, got %v", report.Issues.MissingFields)
	}
	issue := report.Issues.MissingFields[0]
	if issue.MissingCount != 5 {
		t.Errorf("expected 5 missing documents, got %d", issue.MissingCount)
	}
	if len(issue.ExampleDocumentIDs) != 3 {
		t.Errorf("expected examples capped at 3, got %v", issue.ExampleDocumentIDs)
	}
	// First-seen order.
	if !reflect.DeepEqual(issue.ExampleDocumentIDs, []string{"doc-96", "doc-97", "doc-98"}) {
		t.Errorf("expected first-seen example order, got %v", issue.ExampleDocumentIDs)
	}
}

// "status.code" with pattern ^[A-Z]{3}$ over values ABC, XYZ, ab1, ABCD, DEF: exactly
// the two non-matching values must be reported, in first-seen order.
func TestRegexViolationScenario(t *testing.T) {
	options := DefaultOptions()
	options.RegexRules = map[string]string{"status.code": "^[A-Z]{3}$"}

	values := []string{"ABC", "XYZ", "ab1", "ABCD", "DEF"}
	var documents []document.Document
	for i, value := range values {
		documents = append(documents, document.Document{
			ID:     fmt.Sprintf("doc-%d", i+1),
			Fields: map[string]any{"status": map[string]any{"code": value}},
		})
	}

	report := profileDocuments(t, options, documents)

	if len(report.Issues.RegexViolations) != 1 {
		t.Fatalf("expected 1 regex-violation issue, got %v", report.Issues.RegexViolations)
	}
	issue := report.Issues.RegexViolations[0]
	if issue.Field != "status.code" || issue.Count != 2 {
		t.Errorf("unexpected regex-violation issue: %+v", issue)
	}

	expectedExamples := []RegexViolationExample{
		{DocumentID: "doc-3", Value: "ab1"},
		{DocumentID: "doc-4", Value: "ABCD"},
	}
	if !reflect.DeepEqual(issue.Examples, expectedExamples) {
		t.Errorf("expected examples %v, got %v", expectedExamples, issue.Examples)
	}
}

// A rule on a field that never appears, or never holds strings, silently yields zero
// violations.
func TestRegexRuleOnAbsentField(t *testing.T) {
	options := DefaultOptions()
	options.RegexRules = map[string]string{
		"nonexistent": "^x$",
		"count":       "^[0-9]+$",
	}

	report := profileDocuments(t, options, []document.Document{
		{ID: "1", Fields: map[string]any{"count": 42}},
	})

	if len(report.Issues.RegexViolations) != 0 {
		t.Errorf("expected no regex violations, got %v", report.Issues.RegexViolations)
	}
}

// "firstName" in 40 documents and "first_name" in 2 must cluster into one group with
// "firstName" as canonical.
func TestFieldNameVariantScenario(t *testing.T) {
	var documents []document.Document
	for i := 1; i <= 40; i++ {
		documents = append(documents, document.Document{
			ID:     fmt.Sprintf("doc-%d", i),
			Fields: map[string]any{"firstName": "Alice"},
		})
	}
	for i := 41; i <= 42; i++ {
		documents = append(documents, document.Document{
			ID:     fmt.Sprintf("doc-%d", i),
			Fields: map[string]any{"first_name": "Bob"},
		})
	}

	report := profileDocuments(t, DefaultOptions(), documents)

	if len(report.Issues.FieldNameVariants) != 1 {
		t.Fatalf("expected 1 name-variant group, got %v", report.Issues.FieldNameVariants)
	}
	group := report.Issues.FieldNameVariants[0]
	if group.Canonical != "firstName" || group.CanonicalCount != 40 {
		t.Errorf("unexpected canonical: %+v", group)
	}
	expectedVariants := []FieldNameVariant{{Field: "first_name", Count: 2}}
	if !reflect.DeepEqual(group.Variants, expectedVariants) {
		t.Errorf("expected variants %v, got %v", expectedVariants, group.Variants)
	}
}

func TestFieldNameVariantsCanBeDisabled(t *testing.T) {
	options := DefaultOptions()
	options.CheckFieldNameVariants = false

	report := profileDocuments(t, options, []document.Document{
		{ID: "1", Fields: map[string]any{"firstName": "Alice"}},
		{ID: "2", Fields: map[string]any{"first_name": "Bob"}},
	})

	if len(report.Issues.FieldNameVariants) != 0 {
		t.Errorf("expected no name-variant issues, got %v", report.Issues.FieldNameVariants)
	}
}

func TestRareFieldDetection(t *testing.T) {
	var documents []document.Document
	for i := 1; i <= 50; i++ {
		fields := map[string]any{"name": "present"}
		if i == 1 {
			fields["nmae"] = "typo"
		}
		documents = append(documents, document.Document{
			ID:     fmt.Sprintf("doc-%d", i),
			Fields: fields,
		})
	}

	report := profileDocuments(t, DefaultOptions(), documents)

	if len(report.Issues.RareFields) != 1 {
		t.Fatalf("expected 1 rare-field issue, got %v", report.Issues.RareFields)
	}
	issue := report.Issues.RareFields[0]
	if issue.Field != "nmae" || issue.PresentCount != 1 {
		t.Errorf("unexpected rare-field issue: %+v", issue)
	}
	if !reflect.DeepEqual(issue.ExampleDocumentIDs, []string{"doc-1"}) {
		t.Errorf("expected example [doc-1], got %v", issue.ExampleDocumentIDs)
	}
}

func TestSampleLimit(t *testing.T) {
	options := DefaultOptions()
	options.SampleLimit = 5

	var documents []document.Document
	for i := 1; i <= 10; i++ {
		documents = append(documents, document.Document{
			ID:     fmt.Sprintf("doc-%d", i),
			Fields: map[string]any{"name": "present"},
		})
	}

	report := profileDocuments(t, options, documents)

	if report.Meta.DocumentsScanned != 5 {
		t.Errorf("expected 5 documents scanned, got %d", report.Meta.DocumentsScanned)
	}
	if report.Schema.Fields["name"].Required != true {
		t.Error("expected name required within the sampled documents")
	}
}

type failingSource struct {
	failAfter int
	reads     int
}

func (source *failingSource) ReadDocument(
	ctx context.Context,
) (doc document.Document, done bool, err error) {
	if source.reads >= source.failAfter {
		return document.Document{}, false, errors.New("connection lost")
	}
	source.reads++
	return document.Document{
		ID:     fmt.Sprintf("doc-%d", source.reads),
		Fields: map[string]any{"name": "present"},
	}, false, nil
}

func (source *failingSource) Reset(ctx context.Context) error {
	source.reads = 0
	return nil
}

// A source failure mid-stream aborts the run: no partial report over an unknown subset
// of the collection.
func TestSourceErrorAbortsRun(t *testing.T) {
	profiler, err := NewProfiler(DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	_, err = profiler.Profile(context.Background(), "test", &failingSource{failAfter: 3})
	if err == nil {
		t.Fatal("expected profiling to fail on source error")
	}
}

func TestEmptyCollection(t *testing.T) {
	report := profileDocuments(t, DefaultOptions(), nil)

	if report.Meta.DocumentsScanned != 0 {
		t.Errorf("expected 0 documents scanned, got %d", report.Meta.DocumentsScanned)
	}
	if !report.Issues.Empty() {
		t.Errorf("expected no issues for empty collection, got %+v", report.Issues)
	}
}

func TestReportMetadata(t *testing.T) {
	report := profileDocuments(t, DefaultOptions(), []document.Document{
		{ID: "1", Fields: map[string]any{"name": "Alice"}},
	})

	if report.Meta.RunID == "" {
		t.Error("expected run ID to be set")
	}
	if report.Meta.Collection != "test_collection" {
		t.Errorf("unexpected collection name '%s'", report.Meta.Collection)
	}
	if report.Meta.RequiredThreshold != DefaultRequiredThreshold {
		t.Errorf("unexpected threshold %v", report.Meta.RequiredThreshold)
	}
}
