// Package metadata provides introspection data structures for the
// notification graph derived from a Beacon program. Generation writes
// the document next to the generated sources; the introspect command
// reads it back, falling back to a live analysis when it is stale.
package metadata

// Metadata is the complete introspection payload for a Beacon program
type Metadata struct {
	Version    string          `json:"version"`
	SourceHash string          `json:"source_hash"` // Hash of declaration signatures for change detection
	Models     []ModelMetadata `json:"models"`
}

// ModelMetadata describes one declared model
type ModelMetadata struct {
	Name          string             `json:"name"`
	Documentation string             `json:"documentation,omitempty"`
	FilePath      string             `json:"file_path,omitempty"` // Source file path
	Line          int                `json:"line,omitempty"`      // Line number in source
	Sealed        bool               `json:"sealed,omitempty"`
	Bases         []string           `json:"bases,omitempty"`
	Capabilities  []string           `json:"capabilities,omitempty"` // Resolved capability names, sorted
	Fields        []FieldMetadata    `json:"fields"`
	Properties    []PropertyMetadata `json:"properties"`
}

// FieldMetadata describes a declared field and its backing slot
type FieldMetadata struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Backing string `json:"backing"` // Generated slot name
}

// PropertyMetadata describes one generated property
type PropertyMetadata struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"` // direct, proxy
	Type     string   `json:"type"`
	Field    string   `json:"field"`            // Backing field as declared
	Source   string   `json:"source,omitempty"` // Proxy path on the nested model
	Notifies []string `json:"notifies"`         // Notification names in firing order
}
