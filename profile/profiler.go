package profile

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"hermannm.dev/devlog/log"
	"hermannm.dev/docprofile/document"
	"hermannm.dev/wrap"
)

// Profiler runs the full two-pass profiling pipeline over a document source:
//
// Pass 1 folds every document into an aggregate tree, keeping only counters and
// bounded example evidence, so memory stays proportional to the schema rather than
// the collection. After pass 1, the schema summary and most issue checks derive
// directly from the finished aggregate. Missing-field detection needs a second pass,
// since which fields are "expected" is only known once pass 1 completes and no
// per-document field sets are retained.
//
// Any source error aborts the run without a report: a report over an unknown subset
// of the collection would present misleading statistics.
type Profiler struct {
	options    Options
	regexRules map[string]*regexp.Regexp
}

func NewProfiler(options Options) (*Profiler, error) {
	if err := options.Validate(); err != nil {
		return nil, err
	}

	// Cannot fail after Validate.
	regexRules, err := options.compileRegexRules()
	if err != nil {
		return nil, err
	}

	return &Profiler{options: options, regexRules: regexRules}, nil
}

func (profiler *Profiler) Profile(
	ctx context.Context,
	collection string,
	source document.Source,
) (Report, error) {
	folder := NewFolder(profiler.options, profiler.regexRules)

	if err := profiler.foldAllDocuments(ctx, source, folder); err != nil {
		return Report{}, wrap.Errorf(
			err, "failed to read documents from collection '%s'", collection,
		)
	}
	log.Debugf("pass 1 complete: folded %d documents", folder.DocumentsFolded())

	aggregate := folder.Aggregate()

	issues := Issues{
		TypeMismatches:  detectTypeMismatches(aggregate),
		RegexViolations: folder.violationIssues(),
		RareFields:      detectRareFields(aggregate, profiler.options),
	}
	if profiler.options.CheckFieldNameVariants {
		issues.FieldNameVariants = detectFieldNameVariants(aggregate)
	}

	missingFields, err := profiler.detectMissingFields(ctx, source, aggregate)
	if err != nil {
		return Report{}, wrap.Errorf(
			err, "failed to re-read collection '%s' for missing-field evidence", collection,
		)
	}
	issues.MissingFields = missingFields

	meta := RunMetadata{
		RunID:                uuid.NewString(),
		Collection:           collection,
		DocumentsScanned:     folder.DocumentsFolded(),
		SampleLimit:          profiler.options.SampleLimit,
		RequiredThreshold:    profiler.options.RequiredThreshold,
		RareFieldMaxFraction: profiler.options.RareFieldMaxFraction,
		ExamplesPerIssue:     profiler.options.ExamplesPerIssue,
	}

	return NewReport(meta, Summarize(aggregate), issues), nil
}

func (profiler *Profiler) foldAllDocuments(
	ctx context.Context,
	source document.Source,
	folder *Folder,
) error {
	for {
		if limit := profiler.options.SampleLimit; limit > 0 && folder.DocumentsFolded() >= limit {
			return nil
		}

		doc, done, err := source.ReadDocument(ctx)
		if done {
			return nil
		}
		if err != nil {
			return err
		}

		folder.FoldDocument(doc)
	}
}

// detectMissingFields emits an issue for every expected top-level field (presence
// fraction at/above the required threshold) that was absent from some documents. When
// any such deficits exist, a second pass over the source collects up to
// ExamplesPerIssue IDs of documents lacking each field.
//
// A field that is mostly present but never clears the threshold is deliberately not
// flagged; the threshold is the precision/recall tradeoff of this check.
func (profiler *Profiler) detectMissingFields(
	ctx context.Context,
	source document.Source,
	aggregate *ObjectAggregate,
) ([]MissingFieldIssue, error) {
	totalDocs := aggregate.TotalSeen
	if totalDocs == 0 {
		return nil, nil
	}

	issueByField := make(map[string]*MissingFieldIssue)
	for name, field := range aggregate.Properties {
		fraction := float64(field.PresentCount) / float64(totalDocs)
		if fraction < profiler.options.RequiredThreshold {
			continue
		}
		if field.PresentCount >= totalDocs {
			continue
		}

		missingCount := totalDocs - field.PresentCount
		issueByField[name] = &MissingFieldIssue{
			Field:           name,
			PresentCount:    field.PresentCount,
			MissingCount:    missingCount,
			MissingFraction: float64(missingCount) / float64(totalDocs),
		}
	}

	if len(issueByField) == 0 {
		return nil, nil
	}

	if profiler.options.ExamplesPerIssue > 0 {
		if err := profiler.collectMissingFieldExamples(ctx, source, issueByField); err != nil {
			return nil, err
		}
	}

	issues := make([]MissingFieldIssue, 0, len(issueByField))
	for _, issue := range issueByField {
		issues = append(issues, *issue)
	}
	sortByField(issues, func(issue MissingFieldIssue) string { return issue.Field })
	return issues, nil
}

func (profiler *Profiler) collectMissingFieldExamples(
	ctx context.Context,
	source document.Source,
	issueByField map[string]*MissingFieldIssue,
) error {
	if err := source.Reset(ctx); err != nil {
		return wrap.Error(err, "failed to reset document source for second pass")
	}

	exampleCap := profiler.options.ExamplesPerIssue
	documentsRead := 0
	for {
		if limit := profiler.options.SampleLimit; limit > 0 && documentsRead >= limit {
			break
		}

		doc, done, err := source.ReadDocument(ctx)
		if done {
			break
		}
		if err != nil {
			return err
		}
		documentsRead++

		for name, issue := range issueByField {
			if len(issue.ExampleDocumentIDs) >= exampleCap {
				continue
			}
			if _, present := doc.Fields[name]; !present {
				issue.ExampleDocumentIDs = append(issue.ExampleDocumentIDs, doc.ID)
			}
		}
	}

	log.Debugf("pass 2 complete: re-read %d documents for missing-field evidence", documentsRead)
	return nil
}
