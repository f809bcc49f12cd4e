package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"hermannm.dev/devlog"
	"hermannm.dev/devlog/log"
	"hermannm.dev/docprofile/api"
	"hermannm.dev/docprofile/config"
	"hermannm.dev/docprofile/document"
	"hermannm.dev/docprofile/jsonl"
	"hermannm.dev/docprofile/profile"
	"hermannm.dev/docprofile/render"
	"hermannm.dev/docprofile/source/clickhouse"
	"hermannm.dev/docprofile/source/elasticsearch"
	"hermannm.dev/wrap"
)

func main() {
	logHandler := devlog.NewHandler(os.Stdout, &devlog.Options{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(logHandler))

	conf, err := config.ReadFromEnv()
	if err != nil {
		log.ErrorCause(err, "failed to read config from env")
		os.Exit(1)
	}

	if conf.API.Port != "" {
		serveAPI(conf)
	} else {
		runProfiling(conf)
	}
}

func serveAPI(conf config.Config) {
	profilingAPI := api.NewProfilingAPI(sourceProvider{conf}, http.NewServeMux(), conf)

	log.Infof("Listening on port %s...", conf.API.Port)
	if err := profilingAPI.ListenAndServe(); err != nil {
		log.ErrorCause(err, "server stopped")
		os.Exit(1)
	}
}

func runProfiling(conf config.Config) {
	profiler, err := profile.NewProfiler(profilingOptions(conf))
	if err != nil {
		log.ErrorCause(err, "invalid profiling options")
		os.Exit(1)
	}

	source, err := newDocumentSource(conf, conf.Collection)
	if err != nil {
		log.ErrorCause(err, "failed to open document source")
		os.Exit(1)
	}

	log.Infof("Profiling collection '%s'...", conf.Collection)
	report, err := profiler.Profile(context.Background(), conf.Collection, source)
	if err != nil {
		log.ErrorCause(err, "profiling run failed")
		os.Exit(1)
	}

	if err := writeReport(conf, report); err != nil {
		log.ErrorCause(err, "failed to write report")
		os.Exit(1)
	}
}

func writeReport(conf config.Config, report profile.Report) error {
	var writer io.Writer = os.Stdout

	if conf.Output.Path != "" {
		file, err := os.Create(conf.Output.Path)
		if err != nil {
			return wrap.Errorf(err, "failed to create report file '%s'", conf.Output.Path)
		}
		defer file.Close()
		writer = file
	}

	return render.WriteReport(writer, report, conf.Output.Format)
}

// Implements api.SourceProvider
type sourceProvider struct {
	conf config.Config
}

func (provider sourceProvider) CollectionSource(collection string) (document.Source, error) {
	return newDocumentSource(provider.conf, collection)
}

func newDocumentSource(conf config.Config, collection string) (document.Source, error) {
	switch conf.Source {
	case config.SourceElasticsearch:
		return elasticsearch.NewCollection(conf, collection)
	case config.SourceClickHouse:
		return clickhouse.NewCollection(conf, collection)
	case config.SourceJSONLFile:
		file, err := os.Open(conf.JSONLFile.Path)
		if err != nil {
			return nil, wrap.Errorf(err, "failed to open JSONL file '%s'", conf.JSONLFile.Path)
		}
		return jsonl.NewReader(file), nil
	default:
		return nil, fmt.Errorf("unsupported document source '%s'", conf.Source)
	}
}

func profilingOptions(conf config.Config) profile.Options {
	return profile.Options{
		RequiredThreshold:      conf.Profiling.RequiredThreshold,
		RareFieldMaxFraction:   conf.Profiling.RareFieldMaxFraction,
		ExamplesPerIssue:       conf.Profiling.ExamplesPerIssue,
		RegexRules:             conf.Profiling.RegexRules,
		CheckFieldNameVariants: conf.Profiling.CheckFieldNameVariants,
		SampleLimit:            conf.Profiling.SampleLimit,
	}
}
