package clickhouse

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"hermannm.dev/docprofile/document"
	"hermannm.dev/wrap"
)

// CreateTable creates the collection's backing table if it does not exist.
func (collection *Collection) CreateTable(ctx context.Context) error {
	var query strings.Builder
	query.WriteString("CREATE TABLE IF NOT EXISTS ")
	if err := writeIdentifier(&query, collection.table); err != nil {
		return wrap.Error(err, "invalid collection table name")
	}
	query.WriteString(" (`id` String, `doc` String)")
	query.WriteString(" ENGINE = MergeTree()")
	query.WriteString(" PRIMARY KEY (id)")

	if err := collection.conn.Exec(ctx, query.String()); err != nil {
		return wrap.Error(err, "create table query failed")
	}

	return nil
}

// ClickHouse recommends keeping batch inserts between 10,000 and 100,000 rows:
// https://clickhouse.com/docs/en/cloud/bestpractices/bulk-inserts
const insertBatchSize = 10000

// IngestDocuments loads a document stream into the collection's backing table in
// batches. Documents without an ID are assigned a fresh UUID on insert.
func (collection *Collection) IngestDocuments(
	ctx context.Context,
	source document.Source,
) error {
	var query strings.Builder
	query.WriteString("INSERT INTO ")
	if err := writeIdentifier(&query, collection.table); err != nil {
		return wrap.Error(err, "invalid collection table name")
	}
	queryString := query.String()

	allDocumentsSent := false
	for !allDocumentsSent {
		batch, err := collection.conn.PrepareBatch(ctx, queryString)
		if err != nil {
			return wrap.Error(err, "failed to prepare batch document insert")
		}

		batchedDocuments := 0
		for batchedDocuments < insertBatchSize {
			doc, done, err := source.ReadDocument(ctx)
			if done {
				allDocumentsSent = true
				break
			}
			if err != nil {
				return wrap.Error(err, "failed to read document for ingestion")
			}

			id := doc.ID
			if id == "" {
				id = uuid.NewString()
			}

			encodedFields, err := document.EncodeFields(doc.Fields)
			if err != nil {
				return wrap.Errorf(err, "failed to encode document '%s'", id)
			}
			docJSON, err := json.Marshal(encodedFields)
			if err != nil {
				return wrap.Errorf(err, "failed to serialize document '%s'", id)
			}

			if err := batch.Append(id, string(docJSON)); err != nil {
				return wrap.Errorf(err, "failed to add document '%s' to batch insert", id)
			}
			batchedDocuments++
		}

		if batchedDocuments == 0 {
			break
		}
		if err := batch.Send(); err != nil {
			return wrap.Error(err, "failed to send batch insert")
		}
	}

	return nil
}
