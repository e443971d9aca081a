package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
	"github.com/beacon-lang/beacon/internal/compiler/plan"
)

// Extractor builds introspection metadata from a program and its
// notification plans
type Extractor struct {
	version  string
	filePath string
	fileFor  func(model string) string
}

// NewExtractor creates a new metadata extractor
func NewExtractor(version string) *Extractor {
	return &Extractor{version: version}
}

// SetFilePath sets the fallback source path recorded for models the
// resolver cannot place
func (e *Extractor) SetFilePath(path string) {
	e.filePath = path
}

// SetFileResolver supplies the declaring file for each model, so metadata
// points at the actual file instead of the scanned directory
func (e *Extractor) SetFileResolver(fileFor func(model string) string) {
	e.fileFor = fileFor
}

// Extract generates metadata for every model in the program. Models whose
// plan was withheld by validation still appear with their declared fields
// so tooling can inspect broken programs; their property list stays empty.
func (e *Extractor) Extract(prog *ast.Program, plans map[string]*plan.NotificationPlan, caps map[string]plan.CapabilitySet) *Metadata {
	meta := &Metadata{
		Version: e.version,
		Models:  make([]ModelMetadata, 0, len(prog.Models)),
	}

	for _, model := range prog.Models {
		meta.Models = append(meta.Models, e.extractModel(model, plans[model.Name], caps[model.Name]))
	}

	meta.SourceHash = e.computeSourceHash(prog)
	return meta
}

// extractModel converts one model and its plan into metadata
func (e *Extractor) extractModel(model *ast.ModelNode, p *plan.NotificationPlan, caps plan.CapabilitySet) ModelMetadata {
	m := ModelMetadata{
		Name:          model.Name,
		Documentation: model.Documentation,
		FilePath:      e.fileOf(model.Name),
		Line:          model.Loc.Line,
		Sealed:        model.Sealed,
		Bases:         append([]string(nil), model.Bases...),
		Fields:        make([]FieldMetadata, 0, len(model.Fields)),
		Properties:    make([]PropertyMetadata, 0),
	}

	for name := range caps {
		m.Capabilities = append(m.Capabilities, name)
	}
	sort.Strings(m.Capabilities)

	for _, field := range model.Fields {
		backing := plan.BackingName(field.Name)
		if backing == "" {
			backing = field.Name
		}
		m.Fields = append(m.Fields, FieldMetadata{
			Name:    field.Name,
			Type:    formatType(field.Type),
			Backing: backing,
		})
	}

	if p != nil {
		for _, spec := range p.Specs {
			m.Properties = append(m.Properties, PropertyMetadata{
				Name:     spec.Name,
				Kind:     spec.Kind.String(),
				Type:     formatType(spec.Type),
				Field:    spec.Field.Name,
				Source:   spec.Source,
				Notifies: append([]string(nil), spec.NotifySet...),
			})
		}
	}

	return m
}

// fileOf resolves the declaring file for a model, falling back to the
// extractor-wide path when no resolver is set or the model is unknown
func (e *Extractor) fileOf(model string) string {
	if e.fileFor != nil {
		if path := e.fileFor(model); path != "" {
			return path
		}
	}
	return e.filePath
}

// computeSourceHash hashes declaration signatures in program order so any
// structural change moves the hash
func (e *Extractor) computeSourceHash(prog *ast.Program) string {
	h := sha256.New()

	for _, model := range prog.Models {
		h.Write([]byte(model.Name))
		h.Write([]byte(fmt.Sprintf("%d:%d", model.Loc.Line, model.Loc.Column)))
		if model.Sealed {
			h.Write([]byte("sealed"))
		}
		for _, base := range model.Bases {
			h.Write([]byte(base))
		}

		for _, field := range model.Fields {
			h.Write([]byte(field.Name))
			if field.Type != nil {
				h.Write([]byte(formatType(field.Type)))
			}
			for _, annotation := range field.Annotations {
				h.Write([]byte(fmt.Sprintf("%d", annotation.Tag)))
				h.Write([]byte(annotation.Source))
				h.Write([]byte(annotation.CustomName))
				h.Write([]byte(annotation.Target))
			}
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

func formatType(typ *ast.TypeNode) string {
	if typ == nil {
		return ""
	}
	return typ.Name
}
