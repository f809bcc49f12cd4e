package profile

import (
	"fmt"
	"regexp"

	"hermannm.dev/wrap"
)

const (
	DefaultRequiredThreshold    = 0.9
	DefaultRareFieldMaxFraction = 0.05
	DefaultExamplesPerIssue     = 20
)

// Options is the immutable configuration for one profiling run. It is passed
// explicitly to the profiler at the start of a run, and validated before any document
// is read.
type Options struct {
	// Presence fraction at/above which a field counts as expected, for missing-field
	// detection.
	RequiredThreshold float64
	// Presence fraction at/below which a field counts as rare.
	RareFieldMaxFraction float64
	// Cap on example document IDs collected per issue.
	ExamplesPerIssue int
	// Validation rules for string fields, from field path (dot-separated for nested
	// fields) to regex pattern.
	RegexRules map[string]string
	// Enables clustering of field names that normalize to the same key.
	CheckFieldNameVariants bool
	// Cap on documents scanned per pass. 0 means unbounded.
	SampleLimit int
}

func DefaultOptions() Options {
	return Options{
		RequiredThreshold:      DefaultRequiredThreshold,
		RareFieldMaxFraction:   DefaultRareFieldMaxFraction,
		ExamplesPerIssue:       DefaultExamplesPerIssue,
		CheckFieldNameVariants: true,
		SampleLimit:            0,
	}
}

func (options Options) Validate() error {
	var errs []error

	if options.RequiredThreshold <= 0 || options.RequiredThreshold > 1 {
		errs = append(errs, fmt.Errorf(
			"requiredThreshold must be in range (0, 1], got %v", options.RequiredThreshold,
		))
	}
	if options.RareFieldMaxFraction < 0 || options.RareFieldMaxFraction >= 1 {
		errs = append(errs, fmt.Errorf(
			"rareFieldMaxFraction must be in range [0, 1), got %v", options.RareFieldMaxFraction,
		))
	}
	if options.ExamplesPerIssue < 0 {
		errs = append(errs, fmt.Errorf(
			"examplesPerIssue must be non-negative, got %d", options.ExamplesPerIssue,
		))
	}
	if options.SampleLimit < 0 {
		errs = append(errs, fmt.Errorf(
			"sampleLimit must be non-negative, got %d", options.SampleLimit,
		))
	}
	if _, err := options.compileRegexRules(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) != 0 {
		return wrap.Errors("invalid profiling options", errs...)
	}

	return nil
}

func (options Options) compileRegexRules() (map[string]*regexp.Regexp, error) {
	if len(options.RegexRules) == 0 {
		return nil, nil
	}

	compiled := make(map[string]*regexp.Regexp, len(options.RegexRules))
	for fieldPath, pattern := range options.RegexRules {
		compiledPattern, err := regexp.Compile(pattern)
		if err != nil {
			return nil, wrap.Errorf(
				err, "malformed regexRules pattern '%s' for field '%s'", pattern, fieldPath,
			)
		}
		compiled[fieldPath] = compiledPattern
	}

	return compiled, nil
}
