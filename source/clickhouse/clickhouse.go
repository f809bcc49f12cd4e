// Package clickhouse provides a document.Source over a ClickHouse table, with one
// JSON-encoded document per row.
package clickhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"hermannm.dev/docprofile/config"
	"hermannm.dev/docprofile/document"
	"hermannm.dev/wrap"
)

// Collection reads documents from a ClickHouse table with layout
// (`id` String, `doc` String), where `doc` holds the JSON-encoded document payload.
// Documents are enumerated in id order, in batches, with a cursor on the last id read;
// both profiling passes therefore see the same order.
type Collection struct {
	conn  driver.Conn
	table string

	buffer    []document.Document
	bufferPos int
	lastID    string
	exhausted bool
}

func NewCollection(conf config.Config, table string) (*Collection, error) {
	// Options docs: https://clickhouse.com/docs/en/integrations/go#connection-settings
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{conf.ClickHouse.Address},
		Auth: clickhouse.Auth{
			Database: conf.ClickHouse.DatabaseName,
			Username: conf.ClickHouse.Username,
			Password: conf.ClickHouse.Password,
		},
		Debug: conf.ClickHouse.Debug,
		Debugf: func(format string, v ...any) {
			fmt.Printf(format+"\n", v...)
		},
		Compression: &clickhouse.Compression{Method: clickhouse.CompressionLZ4},
	})
	if err != nil {
		return nil, wrap.Error(err, "failed to connect to ClickHouse")
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, wrap.Error(err, "failed to ping ClickHouse connection")
	}

	return &Collection{conn: conn, table: table}, nil
}

const readBatchSize = 1000

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
	collection.lastID = ""
	collection.exhausted = false
	return nil
}

func (collection *Collection) fetchNextBatch(ctx context.Context) error {
	var query strings.Builder
	query.WriteString("SELECT `id`, `doc` FROM ")
	if err := writeIdentifier(&query, collection.table); err != nil {
		return wrap.Error(err, "invalid collection table name")
	}
	query.WriteString(" WHERE `id` > ? ORDER BY `id` LIMIT ?")

	rows, err := collection.conn.Query(ctx, query.String(), collection.lastID, readBatchSize)
	if err != nil {
		return wrap.Error(err, "document batch query failed")
	}
	defer rows.Close()

	collection.buffer = collection.buffer[:0]
	collection.bufferPos = 0

	for rows.Next() {
		var id, docJSON string
		if err := rows.Scan(&id, &docJSON); err != nil {
			return wrap.Error(err, "failed to scan document row")
		}

		var fields map[string]any
		if err := json.Unmarshal([]byte(docJSON), &fields); err != nil {
			return wrap.Errorf(err, "stored document '%s' is not a JSON object", id)
		}

		collection.buffer = append(collection.buffer, document.Document{
			ID:     id,
			Fields: document.DecodeFields(fields),
		})
		collection.lastID = id
	}
	if err := rows.Err(); err != nil {
		return wrap.Error(err, "failed to read document batch")
	}

	if len(collection.buffer) < readBatchSize {
		collection.exhausted = true
	}

	return nil
}

func writeIdentifier(writer *strings.Builder, identifier string) error {
	if !strings.ContainsRune(identifier, '`') {
		writer.WriteRune('`')
		writer.WriteString(identifier)
		writer.WriteRune('`')
		return nil
	}

	if !strings.ContainsRune(identifier, '"') {
		writer.WriteRune('"')
		writer.WriteString(identifier)
		writer.WriteRune('"')
		return nil
	}

	return fmt.Errorf(
		"'%s' contains both \" and `, which is incompatible with database", identifier,
	)
}
