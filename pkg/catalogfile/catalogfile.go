// Package catalogfile reads and writes the event catalog as a JSON document
// of the form {"events": [...]}.
package catalogfile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"umahelper/pkg/events"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidCatalog wraps schema and record validation failures.
var ErrInvalidCatalog = errors.New("invalid catalog file")

//go:embed schema.json
var schemaSource string

var schema = jsonschema.MustCompileString("catalog.schema.json", schemaSource)

type document struct {
	Events []events.Event `json:"events"`
}

// Load reads and validates the catalog file at path.
func Load(path string) ([]events.Event, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(b)
}

// Parse validates data against the embedded schema and decodes it. Events
// keep their document order.
func Parse(data []byte) ([]events.Event, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	var doc document
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	for i, e := range doc.Events {
		if err := events.ValidateEvent(e); err != nil {
			return nil, fmt.Errorf("%w: event %d: %v", ErrInvalidCatalog, i, err)
		}
	}
	if doc.Events == nil {
		doc.Events = []events.Event{}
	}
	return doc.Events, nil
}

// Encode writes evs as an indented catalog document.
func Encode(w io.Writer, evs []events.Event) error {
	if evs == nil {
		evs = []events.Event{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(document{Events: evs})
}
