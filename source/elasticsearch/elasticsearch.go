// Package elasticsearch provides a document.Source over an Elasticsearch index, with
// one document per indexed JSON object.
package elasticsearch

import (
	"context"
	"encoding/json"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/core/search"
	elastictypes "github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"hermannm.dev/docprofile/config"
	"hermannm.dev/docprofile/document"
	"hermannm.dev/wrap"
)

// Collection reads all documents of an Elasticsearch index in stable order, paginating
// with search_after over the index's internal doc order.
type Collection struct {
	client *elasticsearch.TypedClient
	index  string

	buffer      []document.Document
	bufferPos   int
	searchAfter []elastictypes.FieldValue
	exhausted   bool
}

func NewCollection(conf config.Config, index string) (*Collection, error) {
	client, err := elasticsearch.NewTypedClient(elasticsearch.Config{
		Addresses:         []string{conf.Elasticsearch.Address},
		EnableDebugLogger: conf.Elasticsearch.Debug,
	})
	if err != nil {
		return nil, wrap.Error(err, "failed to connect to Elasticsearch")
	}

	return &Collection{client: client, index: index}, nil
}

const searchBatchSize = 1000

// Implements document.Source
func (collection *Collection) ReadDocument(
	ctx context.Context,
) (doc document.Document, done bool, err error) {
	if collection.bufferPos >= len(collection.buffer) {
		if collection.exhausted {
			return document.Document{}, true, nil
		}
		if err := collection.fetchNextBatch(ctx); err != nil {
			return document.Document{}, false, err
		}
		if len(collection.buffer) == 0 {
			return document.Document{}, true, nil
		}
	}

	doc = collection.buffer[collection.bufferPos]
	collection.bufferPos++
	return doc, false, nil
}

// Implements document.Source
func (collection *Collection) Reset(ctx context.Context) error {
	collection.buffer = nil
	collection.bufferPos = 0
	collection.searchAfter = nil
	collection.exhausted = false
	return nil
}

func (collection *Collection) fetchNextBatch(ctx context.Context) error {
	size := searchBatchSize
	request := &search.Request{
		Size:  &size,
		Query: &elastictypes.Query{MatchAll: &elastictypes.MatchAllQuery{}},
		Sort:  []elastictypes.SortCombinations{"_doc"},
	}
	if collection.searchAfter != nil {
		request.SearchAfter = collection.searchAfter
	}

	response, err := collection.client.Search().
		Index(collection.index).
		Request(request).
		Do(ctx)
	if err != nil {
		return wrap.Error(err, "document search request failed")
	}

	collection.buffer = collection.buffer[:0]
	collection.bufferPos = 0

	for _, hit := range response.Hits.Hits {
		var fields map[string]any
		if err := json.Unmarshal(hit.Source_, &fields); err != nil {
			return wrap.Errorf(err, "indexed document '%s' is not a JSON object", hit.Id_)
		}

		collection.buffer = append(collection.buffer, document.Document{
			ID:     hit.Id_,
			Fields: document.DecodeFields(fields),
		})
		collection.searchAfter = hit.Sort
	}

	if len(response.Hits.Hits) < searchBatchSize {
		collection.exhausted = true
	}

	return nil
}
