package profile

// Report is the final output of a profiling run: run metadata, the derived schema,
// and the data-quality issues found. It is plain data, ready for JSON/YAML rendering.
type Report struct {
	Meta   RunMetadata  `json:"meta"   yaml:"meta"`
	Schema ValueSummary `json:"schema" yaml:"schema"`
	Issues Issues       `json:"issues" yaml:"issues"`
}

type RunMetadata struct {
	RunID            string `json:"runId"                 yaml:"runId"`
	Collection       string `json:"collection"            yaml:"collection"`
	DocumentsScanned int    `json:"documentsScanned"      yaml:"documentsScanned"`
	SampleLimit      int    `json:"sampleLimit,omitempty" yaml:"sampleLimit,omitempty"`

	RequiredThreshold    float64 `json:"requiredThreshold"    yaml:"requiredThreshold"`
	RareFieldMaxFraction float64 `json:"rareFieldMaxFraction" yaml:"rareFieldMaxFraction"`
	ExamplesPerIssue     int     `json:"examplesPerIssue"     yaml:"examplesPerIssue"`
}

// NewReport shapes the outputs of a run into one report value. No logic beyond
// shaping.
func NewReport(meta RunMetadata, schema ValueSummary, issues Issues) Report {
	return Report{Meta: meta, Schema: schema, Issues: issues}
}
