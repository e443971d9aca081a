package tooling

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
	"github.com/beacon-lang/beacon/internal/compiler/plan"
)

// SymbolKind categorizes symbols for IDE display
type SymbolKind int

const (
	// SymbolKindModel represents a model declaration
	SymbolKindModel SymbolKind = iota
	// SymbolKindField represents a field in a model
	SymbolKindField
	// SymbolKindProperty represents a generated observable property
	SymbolKindProperty
)

// Symbol represents a named entity in a declaration file
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Range Range

	// Type information (if available)
	Type string

	// ContainerName is the declaring model for fields and properties
	ContainerName string

	// Documentation from the declaration's doc comment
	Documentation string

	// Notifies lists the names a property's setter notifies, in order
	Notifies []string

	// ProxySource is the forwarded path for proxy properties, empty
	// otherwise
	ProxySource string

	// Synthesizes lists the property names a field's annotations generate,
	// in emission order
	Synthesizes []string

	// Detail provides additional display information
	Detail string
}

// SymbolIndex is a concurrency-safe name index over every open
// document's symbols.
type SymbolIndex struct {
	mu      sync.RWMutex
	symbols map[string][]*IndexedSymbol
}

// IndexedSymbol pairs a symbol with the document it came from.
type IndexedSymbol struct {
	URI   string
	Range Range
	*Symbol
}

// NewSymbolIndex creates a new symbol index
func NewSymbolIndex() *SymbolIndex {
	return &SymbolIndex{
		symbols: make(map[string][]*IndexedSymbol),
	}
}

// Index replaces a document's symbols with the given set.
func (si *SymbolIndex) Index(uri string, symbols []*Symbol) {
	si.mu.Lock()
	defer si.mu.Unlock()

	si.removeDocumentLocked(uri)

	for _, sym := range symbols {
		si.symbols[sym.Name] = append(si.symbols[sym.Name], &IndexedSymbol{
			URI:    uri,
			Range:  sym.Range,
			Symbol: sym,
		})
	}
}

// RemoveDocument removes all symbols from a document
func (si *SymbolIndex) RemoveDocument(uri string) {
	si.mu.Lock()
	defer si.mu.Unlock()

	si.removeDocumentLocked(uri)
}

func (si *SymbolIndex) removeDocumentLocked(uri string) {
	for name, syms := range si.symbols {
		kept := slices.DeleteFunc(syms, func(s *IndexedSymbol) bool {
			return s.URI == uri
		})
		if len(kept) == 0 {
			delete(si.symbols, name)
		} else {
			si.symbols[name] = kept
		}
	}
}

// FindDefinition finds the definition of a symbol by name. Model
// declarations win over fields and properties sharing the name.
func (si *SymbolIndex) FindDefinition(name string) *IndexedSymbol {
	si.mu.RLock()
	defer si.mu.RUnlock()

	syms := si.symbols[name]
	if len(syms) == 0 {
		return nil
	}

	for _, sym := range syms {
		if sym.Kind == SymbolKindModel {
			return sym
		}
	}
	return syms[0]
}

// FindReferences finds all indexed occurrences of a symbol, ordered by
// document and position.
func (si *SymbolIndex) FindReferences(name string) []Location {
	si.mu.RLock()
	defer si.mu.RUnlock()

	syms := si.symbols[name]
	if len(syms) == 0 {
		return nil
	}

	locations := make([]Location, len(syms))
	for i, sym := range syms {
		locations[i] = Location{URI: sym.URI, Range: sym.Range}
	}
	sort.Slice(locations, func(i, j int) bool {
		if locations[i].URI != locations[j].URI {
			return locations[i].URI < locations[j].URI
		}
		return locations[i].Range.Start.Line < locations[j].Range.Start.Line
	})
	return locations
}

// SearchSymbols returns symbols whose name contains the query,
// case-insensitively; an empty query matches everything. Results are
// sorted so editors see a stable list.
func (si *SymbolIndex) SearchSymbols(query string) []*IndexedSymbol {
	si.mu.RLock()
	defer si.mu.RUnlock()

	query = strings.ToLower(query)

	var result []*IndexedSymbol
	for name, syms := range si.symbols {
		if query == "" || strings.Contains(strings.ToLower(name), query) {
			result = append(result, syms...)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].URI < result[j].URI
	})
	return result
}

// extractSymbols flattens one file's models, fields, and planned properties
// into display symbols.
func extractSymbols(program *ast.Program, analysis *Analysis) []*Symbol {
	if program == nil {
		return nil
	}

	symbols := make([]*Symbol, 0)
	for _, model := range program.Models {
		symbols = append(symbols, extractModelSymbols(model, analysis.Plans[model.Name])...)
	}
	return symbols
}

// extractModelSymbols extracts symbols from a single model
func extractModelSymbols(model *ast.ModelNode, p *plan.NotificationPlan) []*Symbol {
	if model == nil {
		return nil
	}

	symbols := make([]*Symbol, 0)

	header := "model " + model.Name
	if model.Sealed {
		header = "sealed " + header
	}
	if len(model.Bases) > 0 {
		header += ": " + strings.Join(model.Bases, ", ")
	}

	symbols = append(symbols, &Symbol{
		Name:          model.Name,
		Kind:          SymbolKindModel,
		Range:         modelNameRange(model),
		Type:          "model",
		Documentation: model.Documentation,
		Detail:        header,
	})

	for _, field := range model.Fields {
		if field == nil || field.Type == nil {
			continue
		}
		typeStr := formatType(field.Type)
		sym := &Symbol{
			Name: field.Name,
			Kind: SymbolKindField,
			Range: Range{
				Start: Position{Line: field.Loc.Line - 1, Character: field.Loc.Column - 1},
				End:   Position{Line: field.Loc.Line - 1, Character: field.Loc.Column - 1 + len(field.Name)},
			},
			Type:          typeStr,
			ContainerName: model.Name,
			Detail:        fmt.Sprintf("%s: %s%s", field.Name, typeStr, formatAnnotations(field)),
		}
		if p != nil {
			for _, spec := range p.SpecsFor(field) {
				sym.Synthesizes = append(sym.Synthesizes, spec.Name)
			}
		}
		symbols = append(symbols, sym)
	}

	if p != nil {
		for _, spec := range p.Specs {
			symbols = append(symbols, propertySymbol(model, spec))
		}
	}

	return symbols
}

func propertySymbol(model *ast.ModelNode, spec *plan.PropertySpec) *Symbol {
	typeStr := formatType(spec.Type)

	sym := &Symbol{
		Name: spec.Name,
		Kind: SymbolKindProperty,
		Range: Range{
			Start: Position{Line: spec.Loc.Line - 1, Character: spec.Loc.Column - 1},
			End:   Position{Line: spec.Loc.Line - 1, Character: spec.Loc.Column - 1 + len(spec.Name)},
		},
		Type:          typeStr,
		ContainerName: model.Name,
		Notifies:      append([]string(nil), spec.NotifySet...),
		Detail:        fmt.Sprintf("%s: %s (property of %s)", spec.Name, typeStr, spec.Field.Name),
	}

	if spec.Kind == plan.KindProxy {
		sym.ProxySource = spec.Source
		sym.Detail = fmt.Sprintf("%s: %s (proxy for %s)", spec.Name, typeStr, spec.Source)
	}

	return sym
}

// modelNameRange is the editor range of a model's name in its declaration.
// model.Loc points at the leading keyword, not the name.
func modelNameRange(model *ast.ModelNode) Range {
	offset := len("model ")
	if model.Sealed {
		offset = len("sealed model ")
	}
	nameStart := model.Loc.Column + offset - 1
	return Range{
		Start: Position{Line: model.Loc.Line - 1, Character: nameStart},
		End:   Position{Line: model.Loc.Line - 1, Character: nameStart + len(model.Name)},
	}
}

// findSymbolAtPosition finds the symbol at a given position in a document
func findSymbolAtPosition(doc *Document, pos Position) *Symbol {
	for _, sym := range doc.Symbols {
		if positionInRange(pos, sym.Range) {
			return sym
		}
	}
	return nil
}

// positionInRange checks if a position is within a range
func positionInRange(pos Position, r Range) bool {
	if pos.Line < r.Start.Line || pos.Line > r.End.Line {
		return false
	}
	if pos.Line == r.Start.Line && pos.Character < r.Start.Character {
		return false
	}
	if pos.Line == r.End.Line && pos.Character > r.End.Character {
		return false
	}
	return true
}

// formatType formats an AST type node as a string
func formatType(t *ast.TypeNode) string {
	if t == nil {
		return ""
	}
	return t.Name
}

// formatAnnotations renders a field's annotations the way they appear in
// source, each preceded by a space.
func formatAnnotations(field *ast.FieldNode) string {
	var sb strings.Builder
	for _, annotation := range field.Annotations {
		sb.WriteString(" ")
		sb.WriteString(formatAnnotation(annotation))
	}
	return sb.String()
}

func formatAnnotation(a *ast.Annotation) string {
	switch a.Tag {
	case ast.AnnotationNotify:
		return "@notify"
	case ast.AnnotationProxy:
		args := a.Source
		if a.Type != nil {
			args += ": " + a.Type.Name
		}
		if a.CustomName != "" {
			args += ", as: " + a.CustomName
		}
		return fmt.Sprintf("@proxy(%s)", args)
	case ast.AnnotationAlsoNotify:
		return fmt.Sprintf("@also_notify(%s)", a.Target)
	default:
		return ""
	}
}
