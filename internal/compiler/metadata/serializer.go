package metadata

import (
	"encoding/json"
	"fmt"
	"os"
)

// Serialize renders the document as indented JSON with a trailing
// newline. Models and properties already sit in declaration order and
// struct tags fix the key order, so the bytes are stable for a given
// document: the build cache can fingerprint the artifact and tests can
// diff it.
func Serialize(meta *Metadata) ([]byte, error) {
	if meta == nil {
		return nil, fmt.Errorf("metadata cannot be nil")
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize metadata: %w", err)
	}

	return append(data, '\n'), nil
}

// Deserialize parses a document produced by Serialize.
func Deserialize(data []byte) (*Metadata, error) {
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return &meta, nil
}

// ReadArtifact loads the metadata file a previous generation pass left
// next to the generated sources. Callers treat any error as "no usable
// artifact" and fall back to analyzing the declarations directly, so a
// missing file and a corrupt one look the same.
func ReadArtifact(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	meta, err := Deserialize(data)
	if err != nil {
		return nil, fmt.Errorf("metadata artifact %s: %w", path, err)
	}
	return meta, nil
}
