package codemeta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrInvalidBatch indicates the input could not be read as a batch of nodes.
var ErrInvalidBatch = errors.New("invalid batch")

// Format is an output encoding for batches.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (valid: json, yaml)", s)
	}
}

// DecodeBatch reads a batch from JSON. The input may be an array of nodes or
// a single node object, which is treated as a batch of one.
func DecodeBatch(r io.Reader) ([]*DataStruct, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch: %w", err)
	}
	return UnmarshalBatch(data)
}

// UnmarshalBatch is DecodeBatch for an in-memory buffer.
func UnmarshalBatch(data []byte) ([]*DataStruct, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrInvalidBatch)
	}

	switch trimmed[0] {
	case '[':
		var batch []*DataStruct
		if err := json.Unmarshal(trimmed, &batch); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
		}
		if batch == nil {
			batch = []*DataStruct{}
		}
		return batch, nil
	case '{':
		var node DataStruct
		if err := json.Unmarshal(trimmed, &node); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBatch, err)
		}
		return []*DataStruct{&node}, nil
	default:
		return nil, fmt.Errorf("%w: expected a JSON array or object", ErrInvalidBatch)
	}
}

// EncodeBatch writes the batch in the given format.
func EncodeBatch(w io.Writer, batch []*DataStruct, format Format) error {
	if batch == nil {
		batch = []*DataStruct{}
	}

	switch format {
	case FormatYAML:
		doc, err := yamlDocument(batch)
		if err != nil {
			return fmt.Errorf("failed to encode batch as yaml: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode batch as yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(batch); err != nil {
			return fmt.Errorf("failed to encode batch as json: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// MarshalBatch returns the compact JSON encoding of a batch.
func MarshalBatch(batch []*DataStruct) ([]byte, error) {
	if batch == nil {
		batch = []*DataStruct{}
	}
	return json.Marshal(batch)
}

// yamlDocument converts the JSON encoding of a batch into a YAML node tree,
// so both formats carry the same keys, including unmodeled ones.
func yamlDocument(batch []*DataStruct) (*yaml.Node, error) {
	data, err := json.Marshal(batch)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	blockStyle(&doc)
	return &doc, nil
}

// blockStyle drops the flow and quoting styles the JSON source left on every
// node. The encoder quotes scalars again where their tag requires it.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}
