package tooling

import (
	"strings"
	"testing"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
)

func symbolsFor(t *testing.T, source string) []*Symbol {
	t.Helper()
	analysis := AnalyzeSource("test.bcn", source)
	return extractSymbols(analysis.Programs["test.bcn"], analysis)
}

func findSymbol(symbols []*Symbol, kind SymbolKind, name string) *Symbol {
	for _, sym := range symbols {
		if sym.Kind == kind && sym.Name == name {
			return sym
		}
	}
	return nil
}

func TestExtractSymbols(t *testing.T) {
	symbols := symbolsFor(t, personSource)

	model := findSymbol(symbols, SymbolKindModel, "Person")
	if model == nil {
		t.Fatal("Person model symbol not found")
	}
	if model.Detail != "model Person: Observable" {
		t.Errorf("Model detail = %q", model.Detail)
	}

	field := findSymbol(symbols, SymbolKindField, "_firstName")
	if field == nil {
		t.Fatal("_firstName field symbol not found")
	}
	if field.ContainerName != "Person" {
		t.Errorf("Field container = %q, want Person", field.ContainerName)
	}
	if field.Type != "string" {
		t.Errorf("Field type = %q, want string", field.Type)
	}

	property := findSymbol(symbols, SymbolKindProperty, "FirstName")
	if property == nil {
		t.Fatal("FirstName property symbol not found")
	}
	if len(property.Notifies) != 2 || property.Notifies[0] != "FirstName" || property.Notifies[1] != "FullName" {
		t.Errorf("Property notifies = %v, want [FirstName FullName]", property.Notifies)
	}
}

func TestModelSymbolRange(t *testing.T) {
	symbols := symbolsFor(t, "model Person: Observable {\n  _name: string @notify\n}\n")

	model := findSymbol(symbols, SymbolKindModel, "Person")
	if model == nil {
		t.Fatal("Person model symbol not found")
	}

	// "model Person" puts the name at zero-based character 6
	if model.Range.Start.Line != 0 || model.Range.Start.Character != 6 {
		t.Errorf("Range start = %d:%d, want 0:6", model.Range.Start.Line, model.Range.Start.Character)
	}
	if model.Range.End.Character != 12 {
		t.Errorf("Range end character = %d, want 12", model.Range.End.Character)
	}
}

func TestSealedModelSymbolRange(t *testing.T) {
	symbols := symbolsFor(t, "sealed model Vault: Observable {\n  _combo: string @notify\n}\n")

	model := findSymbol(symbols, SymbolKindModel, "Vault")
	if model == nil {
		t.Fatal("Vault model symbol not found")
	}
	if model.Range.Start.Character != 13 {
		t.Errorf("Range start character = %d, want 13", model.Range.Start.Character)
	}
	if !strings.HasPrefix(model.Detail, "sealed model Vault") {
		t.Errorf("Detail = %q, want sealed header", model.Detail)
	}
}

func TestFieldSymbolDetailIncludesAnnotations(t *testing.T) {
	symbols := symbolsFor(t, personSource)

	field := findSymbol(symbols, SymbolKindField, "_firstName")
	if field == nil {
		t.Fatal("_firstName field symbol not found")
	}
	if !strings.Contains(field.Detail, "@notify") {
		t.Errorf("Detail should include annotations, got %q", field.Detail)
	}
	if !strings.Contains(field.Detail, "@also_notify(FullName)") {
		t.Errorf("Detail should render the also_notify target, got %q", field.Detail)
	}
}

func TestProxySymbolDetail(t *testing.T) {
	symbols := symbolsFor(t, personSource)

	property := findSymbol(symbols, SymbolKindProperty, "City")
	if property == nil {
		t.Fatal("City property symbol not found")
	}
	if !strings.Contains(property.Detail, "proxy for City") {
		t.Errorf("Detail = %q, want proxy wording", property.Detail)
	}
}

func TestFormatAnnotation(t *testing.T) {
	tests := []struct {
		name       string
		annotation *ast.Annotation
		want       string
	}{
		{
			name:       "notify",
			annotation: &ast.Annotation{Tag: ast.AnnotationNotify},
			want:       "@notify",
		},
		{
			name:       "simple proxy",
			annotation: &ast.Annotation{Tag: ast.AnnotationProxy, Source: "City"},
			want:       "@proxy(City)",
		},
		{
			name: "proxy with type and custom name",
			annotation: &ast.Annotation{
				Tag:        ast.AnnotationProxy,
				Source:     "Engine.Serial",
				Type:       &ast.TypeNode{Kind: ast.TypePrimitive, Name: "string"},
				CustomName: "SerialNumber",
			},
			want: "@proxy(Engine.Serial: string, as: SerialNumber)",
		},
		{
			name:       "also_notify",
			annotation: &ast.Annotation{Tag: ast.AnnotationAlsoNotify, Target: "FullName"},
			want:       "@also_notify(FullName)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAnnotation(tt.annotation); got != tt.want {
				t.Errorf("formatAnnotation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSymbolIndexRemoveDocument(t *testing.T) {
	index := NewSymbolIndex()
	index.Index("a.bcn", []*Symbol{{Name: "Person", Kind: SymbolKindModel}})
	index.Index("b.bcn", []*Symbol{{Name: "Person", Kind: SymbolKindField}})

	index.RemoveDocument("a.bcn")

	refs := index.FindReferences("Person")
	if len(refs) != 1 {
		t.Fatalf("Expected 1 remaining reference, got %d", len(refs))
	}
	if refs[0].URI != "b.bcn" {
		t.Errorf("Remaining reference URI = %s, want b.bcn", refs[0].URI)
	}
}

func TestSymbolIndexReindexReplaces(t *testing.T) {
	index := NewSymbolIndex()
	index.Index("a.bcn", []*Symbol{{Name: "Person", Kind: SymbolKindModel}})
	index.Index("a.bcn", []*Symbol{{Name: "Employee", Kind: SymbolKindModel}})

	if def := index.FindDefinition("Person"); def != nil {
		t.Error("Stale symbol should be gone after reindex")
	}
	if def := index.FindDefinition("Employee"); def == nil {
		t.Error("New symbol should be indexed")
	}
}

func TestFindDefinitionPrefersModels(t *testing.T) {
	index := NewSymbolIndex()
	index.Index("a.bcn", []*Symbol{{Name: "Address", Kind: SymbolKindField}})
	index.Index("b.bcn", []*Symbol{{Name: "Address", Kind: SymbolKindModel}})

	def := index.FindDefinition("Address")
	if def == nil {
		t.Fatal("Expected a definition")
	}
	if def.Kind != SymbolKindModel {
		t.Errorf("Definition kind = %d, want model", def.Kind)
	}
}

func TestSearchSymbolsCaseInsensitive(t *testing.T) {
	index := NewSymbolIndex()
	index.Index("a.bcn", []*Symbol{
		{Name: "FirstName", Kind: SymbolKindProperty},
		{Name: "_firstName", Kind: SymbolKindField},
		{Name: "Address", Kind: SymbolKindModel},
	})

	matches := index.SearchSymbols("FIRST")
	if len(matches) != 2 {
		t.Errorf("Expected 2 matches for FIRST, got %d", len(matches))
	}

	all := index.SearchSymbols("")
	if len(all) != 3 {
		t.Errorf("Expected all 3 symbols for empty query, got %d", len(all))
	}
}

func TestSearchSymbolsStableOrder(t *testing.T) {
	index := NewSymbolIndex()
	index.Index("b.bcn", []*Symbol{
		{Name: "Zip", Kind: SymbolKindField},
		{Name: "Area", Kind: SymbolKindModel},
	})
	index.Index("a.bcn", []*Symbol{{Name: "Area", Kind: SymbolKindField}})

	all := index.SearchSymbols("")
	want := []struct{ name, uri string }{
		{"Area", "a.bcn"},
		{"Area", "b.bcn"},
		{"Zip", "b.bcn"},
	}
	if len(all) != len(want) {
		t.Fatalf("Expected %d symbols, got %d", len(want), len(all))
	}
	for i, w := range want {
		if all[i].Name != w.name || all[i].URI != w.uri {
			t.Errorf("Result %d = %s in %s, want %s in %s", i, all[i].Name, all[i].URI, w.name, w.uri)
		}
	}
}

func TestPositionInRange(t *testing.T) {
	r := Range{
		Start: Position{Line: 1, Character: 4},
		End:   Position{Line: 1, Character: 10},
	}

	tests := []struct {
		name string
		pos  Position
		want bool
	}{
		{"inside", Position{Line: 1, Character: 6}, true},
		{"at start", Position{Line: 1, Character: 4}, true},
		{"at end", Position{Line: 1, Character: 10}, true},
		{"before", Position{Line: 1, Character: 3}, false},
		{"after", Position{Line: 1, Character: 11}, false},
		{"wrong line", Position{Line: 2, Character: 6}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := positionInRange(tt.pos, r); got != tt.want {
				t.Errorf("positionInRange() = %v, want %v", got, tt.want)
			}
		})
	}
}
