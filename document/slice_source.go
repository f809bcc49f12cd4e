package document

import "context"

// SliceSource is an in-memory Source over a fixed list of documents. Useful for tests,
// and for profiling document partitions that have already been loaded.
type SliceSource struct {
	documents []Document
	position  int
}

func NewSliceSource(documents []Document) *SliceSource {
	return &SliceSource{documents: documents, position: 0}
}

// Implements Source
func (source *SliceSource) ReadDocument(ctx context.Context) (doc Document, done bool, err error) {
	if err := ctx.Err(); err != nil {
		return Document{}, false, err
	}

	if source.position >= len(source.documents) {
		return Document{}, true, nil
	}

	doc = source.documents[source.position]
	source.position++
	return doc, false, nil
}

// Implements Source
func (source *SliceSource) Reset(ctx context.Context) error {
	source.position = 0
	return nil
}
