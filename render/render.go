// Package render serializes profiling reports for output. It holds no profiling
// logic; the report value is shaped by the profile package.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
	"hermannm.dev/docprofile/config"
	"hermannm.dev/docprofile/profile"
	"hermannm.dev/wrap"
)

func WriteReport(
	writer io.Writer,
	report profile.Report,
	format config.ReportFormat,
) error {
	switch format {
	case config.FormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			return wrap.Error(err, "failed to serialize report as JSON")
		}
		return nil
	case config.FormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(2)
		if err := encoder.Encode(report); err != nil {
			return wrap.Error(err, "failed to serialize report as YAML")
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported report format '%s'", format)
	}
}
