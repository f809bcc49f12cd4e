package api

import (
	"fmt"
	"net/http"

	"hermannm.dev/docprofile/config"
	"hermannm.dev/docprofile/document"
)

// SourceProvider opens a fresh document source for a named collection. Each profiling
// request gets its own source, since sources carry read cursors.
type SourceProvider interface {
	CollectionSource(collection string) (document.Source, error)
}

type ProfilingAPI struct {
	sources SourceProvider
	router  *http.ServeMux
	config  config.Config
}

func NewProfilingAPI(
	sources SourceProvider,
	router *http.ServeMux,
	config config.Config,
) ProfilingAPI {
	api := ProfilingAPI{sources: sources, router: router, config: config}

	api.router.HandleFunc("/profile", api.ProfileCollection)
	api.router.HandleFunc("/schema", api.GetCollectionSchema)

	return api
}

func (api ProfilingAPI) ListenAndServe() error {
	return http.ListenAndServe(fmt.Sprintf(":%s", api.config.API.Port), api.router)
}
