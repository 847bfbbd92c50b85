// Package output handles JSON input and output of records for the CLI.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ukaji3/exmapper-go/pkg/exmapper/schema"
)

// ToJSON serializes v to JSON, indented when pretty is set.
func ToJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

// ReadRecords decodes a JSON array of objects. Numbers are kept as
// json.Number so large integers survive unchanged.
func ReadRecords(r io.Reader) ([]schema.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var records []schema.Record
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("failed to decode records: trailing data after array")
	}
	return records, nil
}

// ReadRecordsBytes decodes records from data.
func ReadRecordsBytes(data []byte) ([]schema.Record, error) {
	return ReadRecords(bytes.NewReader(data))
}
