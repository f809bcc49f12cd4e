// Package jsonl reads document collections from newline-delimited JSON files, with
// document value types encoded as described in the document package.
package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"hermannm.dev/docprofile/document"
	"hermannm.dev/wrap"
)

// Reader is a document.Source over a newline-delimited JSON file. Each non-blank line
// holds one document object; a string "_id" field supplies the document ID, and is
// removed from the profiled payload. Documents without an "_id" get a deterministic
// ID from their line number, so that both profiling passes see the same IDs.
type Reader struct {
	scanner     *bufio.Scanner
	file        io.ReadSeeker
	currentLine int
}

// Lines beyond this size fail the read rather than being truncated.
const maxLineSize = 16 * 1024 * 1024

func NewReader(file io.ReadSeeker) *Reader {
	return &Reader{scanner: newScanner(file), file: file, currentLine: 0}
}

func newScanner(file io.ReadSeeker) *bufio.Scanner {
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return scanner
}

// Implements document.Source
func (reader *Reader) ReadDocument(ctx context.Context) (doc document.Document, done bool, err error) {
	if err := ctx.Err(); err != nil {
		return document.Document{}, false, err
	}

	for {
		if !reader.scanner.Scan() {
			if err := reader.scanner.Err(); err != nil {
				return document.Document{}, false, wrap.Errorf(
					err, "failed to read line %d of JSONL file", reader.currentLine+1,
				)
			}
			return document.Document{}, true, nil
		}
		reader.currentLine++

		line := reader.scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var fields map[string]any
		if err := json.Unmarshal(line, &fields); err != nil {
			return document.Document{}, false, wrap.Errorf(
				err, "line %d of JSONL file is not a JSON object", reader.currentLine,
			)
		}

		id, hasID := fields["_id"].(string)
		if hasID {
			delete(fields, "_id")
		} else {
			id = fmt.Sprintf("line-%d", reader.currentLine)
		}

		return document.Document{ID: id, Fields: document.DecodeFields(fields)}, false, nil
	}
}

// Implements document.Source
func (reader *Reader) Reset(ctx context.Context) error {
	if _, err := reader.file.Seek(0, io.SeekStart); err != nil {
		return wrap.Error(err, "failed to seek to start of JSONL file")
	}

	reader.scanner = newScanner(reader.file)
	reader.currentLine = 0
	return nil
}
