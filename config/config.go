package config

import (
	"encoding/json"
	"fmt"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"hermannm.dev/wrap"
)

type Config struct {
	BaseConfig
	Elasticsearch Elasticsearch
	ClickHouse    ClickHouse
	JSONLFile     JSONLFile
}

type BaseConfig struct {
	IsProduction bool            `env:"PRODUCTION"`
	Source       SupportedSource `env:"DOCUMENT_SOURCE"`
	// The collection to profile in one-shot mode. API requests name their own
	// collection, so this may be left unset when serving.
	Collection string `env:"COLLECTION" envDefault:""`
	API        API
	Output     Output
	Profiling  Profiling
}

type API struct {
	// Leave unset to run a single profiling run instead of serving the API.
	Port string `env:"API_PORT" envDefault:""`
}

type Output struct {
	Format ReportFormat `env:"REPORT_FORMAT" envDefault:"yaml"`
	// Leave unset to write the report to stdout.
	Path string `env:"REPORT_OUTPUT_PATH" envDefault:""`
}

type Profiling struct {
	RequiredThreshold      float64    `env:"REQUIRED_THRESHOLD"        envDefault:"0.9"`
	RareFieldMaxFraction   float64    `env:"RARE_FIELD_MAX_FRACTION"   envDefault:"0.05"`
	ExamplesPerIssue       int        `env:"EXAMPLES_PER_ISSUE"        envDefault:"20"`
	CheckFieldNameVariants bool       `env:"CHECK_FIELD_NAME_VARIANTS" envDefault:"true"`
	SampleLimit            int        `env:"SAMPLE_LIMIT"              envDefault:"0"`
	RegexRules             RegexRules `env:"REGEX_RULES"               envDefault:""`
}

type Elasticsearch struct {
	Address string `env:"ELASTICSEARCH_ADDRESS"`
	Debug   bool   `env:"ELASTICSEARCH_DEBUG_ENABLED" envDefault:"false"`
}

type ClickHouse struct {
	Address      string `env:"CLICKHOUSE_ADDRESS"`
	DatabaseName string `env:"CLICKHOUSE_DB_NAME"`
	Username     string `env:"CLICKHOUSE_USERNAME"`
	Password     string `env:"CLICKHOUSE_PASSWORD"`
	Debug        bool   `env:"CLICKHOUSE_DEBUG_ENABLED" envDefault:"false"`
}

type JSONLFile struct {
	Path string `env:"JSONL_FILE_PATH"`
}

type SupportedSource string

const (
	SourceElasticsearch SupportedSource = "elasticsearch"
	SourceClickHouse    SupportedSource = "clickhouse"
	SourceJSONLFile     SupportedSource = "jsonl"
)

type ReportFormat string

const (
	FormatYAML ReportFormat = "yaml"
	FormatJSON ReportFormat = "json"
)

// RegexRules maps field paths to regex patterns, parsed from a JSON object in env
// (e.g. REGEX_RULES='{"status.code": "^[A-Z]{3}$"}').
type RegexRules map[string]string

func (rules *RegexRules) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		return nil
	}
	if err := json.Unmarshal(text, (*map[string]string)(rules)); err != nil {
		return wrap.Error(err, "REGEX_RULES must be a JSON object of field path to pattern")
	}
	return nil
}

func ReadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil {
		return Config{}, wrap.Error(err, "failed to load .env file")
	}

	parseOptions := env.Options{RequiredIfNoDef: true}

	var config Config

	if err := env.ParseWithOptions(&config.BaseConfig, parseOptions); err != nil {
		return Config{}, err
	}

	switch config.Source {
	case SourceElasticsearch:
		if err := env.ParseWithOptions(&config.Elasticsearch, parseOptions); err != nil {
			return Config{}, err
		}
	case SourceClickHouse:
		if err := env.ParseWithOptions(&config.ClickHouse, parseOptions); err != nil {
			return Config{}, err
		}
	case SourceJSONLFile:
		if err := env.ParseWithOptions(&config.JSONLFile, parseOptions); err != nil {
			return Config{}, err
		}
	default:
		err := fmt.Errorf(
			"must be one of: '%s', '%s', '%s'",
			SourceElasticsearch,
			SourceClickHouse,
			SourceJSONLFile,
		)
		return Config{}, wrap.Errorf(
			err, "unsupported value '%s' for DOCUMENT_SOURCE in env", config.Source,
		)
	}

	switch config.Output.Format {
	case FormatYAML, FormatJSON:
	default:
		err := fmt.Errorf("must be one of: '%s', '%s'", FormatYAML, FormatJSON)
		return Config{}, wrap.Errorf(
			err, "unsupported value '%s' for REPORT_FORMAT in env", config.Output.Format,
		)
	}

	return config, nil
}
