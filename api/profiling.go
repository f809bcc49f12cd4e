package api

import (
	"net/http"

	"hermannm.dev/docprofile/profile"
)

// Expects:
//   - query parameter 'collection': name of the collection to profile
//
// Returns:
//   - JSON-encoded profile.Report
func (api ProfilingAPI) ProfileCollection(res http.ResponseWriter, req *http.Request) {
	collection := req.URL.Query().Get("collection")
	if collection == "" {
		sendClientError(res, nil, "missing 'collection' query parameter in request")
		return
	}

	report, err := api.runProfiler(req, collection, api.profilingOptions())
	if err != nil {
		sendServerError(res, err, "failed to profile collection")
		return
	}

	sendJSON(res, report)
}

// Expects:
//   - query parameter 'collection': name of the collection to profile
//
// Returns:
//   - JSON-encoded profile.ValueSummary for the collection's documents
func (api ProfilingAPI) GetCollectionSchema(res http.ResponseWriter, req *http.Request) {
	collection := req.URL.Query().Get("collection")
	if collection == "" {
		sendClientError(res, nil, "missing 'collection' query parameter in request")
		return
	}

	// Schema-only requests skip evidence collection, so no second document pass runs.
	options := api.profilingOptions()
	options.ExamplesPerIssue = 0
	options.CheckFieldNameVariants = false

	report, err := api.runProfiler(req, collection, options)
	if err != nil {
		sendServerError(res, err, "failed to deduce collection schema")
		return
	}

	sendJSON(res, report.Schema)
}

func (api ProfilingAPI) runProfiler(
	req *http.Request,
	collection string,
	options profile.Options,
) (profile.Report, error) {
	profiler, err := profile.NewProfiler(options)
	if err != nil {
		return profile.Report{}, err
	}

	source, err := api.sources.CollectionSource(collection)
	if err != nil {
		return profile.Report{}, err
	}

	return profiler.Profile(req.Context(), collection, source)
}

func (api ProfilingAPI) profilingOptions() profile.Options {
	profiling := api.config.Profiling
	return profile.Options{
		RequiredThreshold:      profiling.RequiredThreshold,
		RareFieldMaxFraction:   profiling.RareFieldMaxFraction,
		ExamplesPerIssue:       profiling.ExamplesPerIssue,
		RegexRules:             profiling.RegexRules,
		CheckFieldNameVariants: profiling.CheckFieldNameVariants,
		SampleLimit:            profiling.SampleLimit,
	}
}
