package tooling

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/beacon-lang/beacon/internal/compiler/cache"
	"github.com/beacon-lang/beacon/internal/compiler/errors"
	"github.com/beacon-lang/beacon/internal/compiler/plan"
)

const personSource = `model Person: Observable {
  _firstName: string @notify @also_notify(FullName)
  _address: Address @proxy(City)
}
`

const employeeSource = `model Employee: Person {
  _badge: string @notify
}
`

func hasCode(list errors.ErrorList, code errors.ErrorCode) bool {
	for _, err := range list {
		if err.Code == code {
			return true
		}
	}
	return false
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	return path
}

func TestAnalyzeSource(t *testing.T) {
	analysis := AnalyzeSource("person.bcn", personSource)

	if len(analysis.Program.Models) != 1 {
		t.Fatalf("Expected 1 model, got %d", len(analysis.Program.Models))
	}
	if diags := analysis.AllDiagnostics(); len(diags) != 0 {
		t.Fatalf("Unexpected diagnostics: %s", diags.Error())
	}

	p := analysis.Plans["Person"]
	if p == nil {
		t.Fatal("Expected a plan for Person")
	}
	if len(p.Specs) != 2 {
		t.Errorf("Expected 2 property specs, got %d", len(p.Specs))
	}

	if !analysis.Capabilities["Person"].Has(plan.CapabilityObservable) {
		t.Error("Person should resolve the Observable capability")
	}
	if analysis.DeclaringFile("Person") != "person.bcn" {
		t.Errorf("DeclaringFile = %s, want person.bcn", analysis.DeclaringFile("Person"))
	}
}

func TestAnalyzeSourceParseErrors(t *testing.T) {
	analysis := AnalyzeSource("broken.bcn", "model {\n")

	diags := analysis.AllDiagnostics()
	if len(diags) == 0 {
		t.Fatal("Expected diagnostics for invalid syntax")
	}
	if !hasCode(diags, errors.ErrParse) {
		t.Errorf("Expected a %s diagnostic, got %s", errors.ErrParse, diags.Error())
	}
	if diags[0].File != "broken.bcn" {
		t.Errorf("Diagnostic file = %s, want broken.bcn", diags[0].File)
	}
	if !analysis.HasErrors() {
		t.Error("HasErrors() should be true")
	}
}

func TestAnalyzeSourcePlanDiagnostics(t *testing.T) {
	source := `model Widget {
  _name: string @notify
}
`
	analysis := AnalyzeSource("widget.bcn", source)

	if !hasCode(analysis.Diagnostics["widget.bcn"], errors.ErrMissingNotifyingCapability) {
		t.Errorf("Expected %s, got %s", errors.ErrMissingNotifyingCapability, analysis.AllDiagnostics().Error())
	}
	if analysis.Plans["Widget"] != nil {
		t.Error("Plan should be withheld when validation fails")
	}
}

func TestAnalyzeFiles(t *testing.T) {
	dir := t.TempDir()
	personPath := writeTestFile(t, dir, "person.bcn", "model Person: Observable {\n  _name: string @notify\n}\n")
	employeePath := writeTestFile(t, dir, "employee.bcn", employeeSource)

	analysis, err := AnalyzeFiles(cache.NewCoordinator(), []string{personPath, employeePath})
	if err != nil {
		t.Fatalf("AnalyzeFiles() error: %v", err)
	}

	if diags := analysis.AllDiagnostics(); len(diags) != 0 {
		t.Fatalf("Unexpected diagnostics: %s", diags.Error())
	}
	if len(analysis.Program.Models) != 2 {
		t.Fatalf("Expected 2 merged models, got %d", len(analysis.Program.Models))
	}

	// Employee inherits the notifying capability through Person
	if !analysis.Capabilities["Employee"].Has(plan.CapabilityObservable) {
		t.Error("Employee should inherit Observable through Person")
	}
	if analysis.Plans["Employee"] == nil {
		t.Error("Expected a plan for Employee")
	}

	if analysis.Metrics == nil || analysis.Metrics.TotalFiles != 2 {
		t.Error("Expected batch metrics covering 2 files")
	}
}

func TestAnalyzeFilesDuplicateModel(t *testing.T) {
	dir := t.TempDir()
	first := writeTestFile(t, dir, "a.bcn", "model Person: Observable {\n  _name: string @notify\n}\n")
	second := writeTestFile(t, dir, "b.bcn", "model Person: Observable {\n  _email: string @notify\n}\n")

	analysis, err := AnalyzeFiles(cache.NewCoordinator(), []string{first, second})
	if err != nil {
		t.Fatalf("AnalyzeFiles() error: %v", err)
	}

	if len(analysis.Program.Models) != 1 {
		t.Fatalf("Expected the duplicate to be dropped, got %d models", len(analysis.Program.Models))
	}
	if hasCode(analysis.Diagnostics[first], errors.ErrDuplicateModel) {
		t.Error("The first declaration should not be flagged")
	}
	if !hasCode(analysis.Diagnostics[second], errors.ErrDuplicateModel) {
		t.Fatalf("Expected %s on the later declaration, got %s",
			errors.ErrDuplicateModel, analysis.AllDiagnostics().Error())
	}
	if analysis.DeclaringFile("Person") != first {
		t.Errorf("DeclaringFile = %s, want %s", analysis.DeclaringFile("Person"), first)
	}
}

func TestAnalyzeFilesInheritanceCycle(t *testing.T) {
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.bcn", "model Alpha: Beta {\n  _x: string\n}\n")
	b := writeTestFile(t, dir, "b.bcn", "model Beta: Alpha {\n  _y: string\n}\n")

	analysis, err := AnalyzeFiles(cache.NewCoordinator(), []string{a, b})
	if err != nil {
		t.Fatalf("AnalyzeFiles() error: %v", err)
	}

	diags := analysis.AllDiagnostics()
	if !hasCode(diags, errors.ErrInheritanceCycle) {
		t.Fatalf("Expected %s, got %s", errors.ErrInheritanceCycle, diags.Error())
	}
	for _, diag := range diags {
		if diag.File == "" {
			t.Errorf("Diagnostic %s has no file attribution", diag.Code)
		}
	}
}

func TestAnalyzeDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "person.bcn", "model Person: Observable {\n  _name: string @notify\n}\n")

	analysis, err := AnalyzeDirectory(cache.NewCoordinator(), dir)
	if err != nil {
		t.Fatalf("AnalyzeDirectory() error: %v", err)
	}
	if len(analysis.Files) != 1 {
		t.Fatalf("Expected 1 analyzed file, got %d", len(analysis.Files))
	}
}

func TestAllDiagnosticsSortedByPosition(t *testing.T) {
	// The parse error on line 3 is recorded before plan validation runs,
	// but line order wins in the flattened view.
	source := `model Widget {
  _name: string @notify
  :
}
`
	analysis := AnalyzeSource("widget.bcn", source)

	diags := analysis.AllDiagnostics()
	if len(diags) < 2 {
		t.Fatalf("Expected at least 2 diagnostics, got %d", len(diags))
	}
	for i := 1; i < len(diags); i++ {
		if diags[i].Location.Line < diags[i-1].Location.Line {
			t.Errorf("Diagnostics out of order: line %d before line %d",
				diags[i-1].Location.Line, diags[i].Location.Line)
		}
	}
	if diags[0].Code != errors.ErrMissingNotifyingCapability {
		t.Errorf("First diagnostic = %s, want %s", diags[0].Code, errors.ErrMissingNotifyingCapability)
	}
}

func TestOpenDocument(t *testing.T) {
	api := NewAPI()

	doc := api.OpenDocument("person.bcn", personSource, 1)
	if doc == nil {
		t.Fatal("OpenDocument() returned nil")
	}
	if doc.Program == nil || len(doc.Program.Models) != 1 {
		t.Fatal("Document program missing")
	}
	if len(doc.Diagnostics) != 0 {
		t.Errorf("Unexpected diagnostics: %s", doc.Diagnostics.Error())
	}

	var kinds []SymbolKind
	for _, sym := range doc.Symbols {
		kinds = append(kinds, sym.Kind)
	}
	if len(doc.Symbols) != 5 {
		t.Fatalf("Expected 5 symbols (model, 2 fields, 2 properties), got %d: %v", len(doc.Symbols), kinds)
	}
}

func TestUpdateDocumentUnchangedContent(t *testing.T) {
	api := NewAPI()
	api.OpenDocument("person.bcn", personSource, 1)

	doc := api.UpdateDocument("person.bcn", personSource, 2)
	if doc.Version != 2 {
		t.Errorf("Version = %d, want 2", doc.Version)
	}
	if len(doc.Symbols) == 0 {
		t.Error("Unchanged update should keep the previous analysis")
	}
}

func TestUpdateDocumentReanalyzes(t *testing.T) {
	api := NewAPI()
	api.OpenDocument("widget.bcn", "model Widget: Observable {\n  _name: string @notify\n}\n", 1)

	broken := api.UpdateDocument("widget.bcn", "model Widget {\n  _name: string @notify\n}\n", 2)
	if !hasCode(broken.Diagnostics, errors.ErrMissingNotifyingCapability) {
		t.Fatalf("Expected %s after removing the base, got %s",
			errors.ErrMissingNotifyingCapability, broken.Diagnostics.Error())
	}

	fixed := api.UpdateDocument("widget.bcn", "model Widget: Observable {\n  _name: string @notify\n}\n", 3)
	if len(fixed.Diagnostics) != 0 {
		t.Errorf("Expected clean diagnostics after the fix, got %s", fixed.Diagnostics.Error())
	}
}

func TestCloseDocument(t *testing.T) {
	api := NewAPI()
	api.OpenDocument("person.bcn", personSource, 1)
	api.CloseDocument("person.bcn")

	if _, exists := api.GetDocument("person.bcn"); exists {
		t.Error("Document should be gone after close")
	}
	if diags := api.Diagnostics("person.bcn"); len(diags) != 0 {
		t.Errorf("Expected empty diagnostics for a closed document, got %d", len(diags))
	}
}

func TestDiagnosticsArePublishable(t *testing.T) {
	api := NewAPI()
	api.OpenDocument("person.bcn", "model Person: Observable {\n  _firstName: string @notify\n  # \n}\n", 1)

	diags := api.Diagnostics("person.bcn")
	if len(diags) == 0 {
		t.Fatal("Expected diagnostics for the stray '#'")
	}

	diag := diags[0]
	if diag.Code != string(errors.ErrLexical) {
		t.Errorf("Code = %s, want %s", diag.Code, errors.ErrLexical)
	}
	if diag.Source != "beacon" {
		t.Errorf("Source = %s, want beacon", diag.Source)
	}
	if diag.Severity != DiagnosticSeverityError {
		t.Errorf("Severity = %d, want error", diag.Severity)
	}
	// '#' sits at line 3 column 3 in the source, zero-based 2:2
	if diag.Range.Start.Line != 2 || diag.Range.Start.Character != 2 {
		t.Errorf("Range start = %d:%d, want 2:2", diag.Range.Start.Line, diag.Range.Start.Character)
	}
}

func TestCrossDocumentAnalysis(t *testing.T) {
	api := NewAPI()
	api.OpenDocument("person.bcn", "model Person: Observable {\n  _name: string @notify\n}\n", 1)
	employee := api.OpenDocument("employee.bcn", employeeSource, 1)

	if len(employee.Diagnostics) != 0 {
		t.Fatalf("Employee should inherit Observable from the open Person document, got %s",
			employee.Diagnostics.Error())
	}

	// Breaking the base in one document surfaces in its dependents
	api.UpdateDocument("person.bcn", "model Person {\n  _name: string\n}\n", 2)

	employee, _ = api.GetDocument("employee.bcn")
	if !hasCode(employee.Diagnostics, errors.ErrMissingNotifyingCapability) {
		t.Fatalf("Expected %s in employee.bcn after Person lost Observable, got %s",
			errors.ErrMissingNotifyingCapability, employee.Diagnostics.Error())
	}
}

func TestSetWorkspace(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "person.bcn", "model Person: Observable {\n  _name: string @notify\n}\n")

	api := NewAPI()
	if err := api.SetWorkspace(dir); err != nil {
		t.Fatalf("SetWorkspace() error: %v", err)
	}

	doc := api.OpenDocument("employee.bcn", employeeSource, 1)
	if len(doc.Diagnostics) != 0 {
		t.Errorf("Workspace files should provide capabilities to open buffers, got %s",
			doc.Diagnostics.Error())
	}
}

func TestHoverOnModel(t *testing.T) {
	api := NewAPI()
	api.OpenDocument("person.bcn", personSource, 1)

	// "Person" starts at zero-based character 6 on line 0
	hover, err := api.Hover("person.bcn", Position{Line: 0, Character: 7})
	if err != nil {
		t.Fatalf("Hover() error: %v", err)
	}
	if hover == nil {
		t.Fatal("Expected hover content over the model name")
	}
	if !strings.Contains(hover.Contents, "model Person: Observable") {
		t.Errorf("Hover should show the declaration header, got:\n%s", hover.Contents)
	}
}

func TestHoverOnProperty(t *testing.T) {
	api := NewAPI()
	doc := api.OpenDocument("person.bcn", personSource, 1)

	// Direct properties share their field's location, so the field symbol
	// wins a position lookup; the proxy anchors at its annotation instead.
	var proxy, direct *Symbol
	for _, sym := range doc.Symbols {
		if sym.Kind != SymbolKindProperty {
			continue
		}
		switch sym.Name {
		case "City":
			proxy = sym
		case "FirstName":
			direct = sym
		}
	}
	if proxy == nil || direct == nil {
		t.Fatal("Property symbols not found")
	}

	hover, err := api.Hover("person.bcn", proxy.Range.Start)
	if err != nil {
		t.Fatalf("Hover() error: %v", err)
	}
	if hover == nil {
		t.Fatal("Expected hover content over the proxy annotation")
	}
	if !strings.Contains(hover.Contents, "Proxy property") {
		t.Errorf("Proxy hover should name the property kind, got:\n%s", hover.Contents)
	}
	if !strings.Contains(hover.Contents, "Setter notifies") {
		t.Errorf("Proxy hover should list the notify set, got:\n%s", hover.Contents)
	}

	directHover := buildHover(direct)
	if !strings.Contains(directHover.Contents, "`FullName`") {
		t.Errorf("Direct property hover should mention FullName, got:\n%s", directHover.Contents)
	}
}

func TestHoverOnFieldListsGeneratedProperties(t *testing.T) {
	api := NewAPI()
	doc := api.OpenDocument("person.bcn", personSource, 1)

	var field *Symbol
	for _, sym := range doc.Symbols {
		if sym.Kind == SymbolKindField && sym.Name == "_firstName" {
			field = sym
			break
		}
	}
	if field == nil {
		t.Fatal("_firstName field symbol not found")
	}
	if !reflect.DeepEqual(field.Synthesizes, []string{"FirstName"}) {
		t.Errorf("field.Synthesizes = %v, want [FirstName]", field.Synthesizes)
	}

	hover := buildHover(field)
	if !strings.Contains(hover.Contents, "Generates `FirstName`") {
		t.Errorf("Field hover should list its generated property, got:\n%s", hover.Contents)
	}
}

func TestHoverOutsideAnySymbol(t *testing.T) {
	api := NewAPI()
	api.OpenDocument("person.bcn", personSource, 1)

	hover, err := api.Hover("person.bcn", Position{Line: 3, Character: 0})
	if err != nil {
		t.Fatalf("Hover() error: %v", err)
	}
	if hover != nil {
		t.Error("Expected nil hover away from any symbol")
	}
}

func completionLabels(items []CompletionItem) []string {
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}
	return labels
}

func containsLabel(items []CompletionItem, label string) bool {
	for _, item := range items {
		if item.Label == label {
			return true
		}
	}
	return false
}

func TestCompletionsAfterAt(t *testing.T) {
	api := NewAPI()
	content := "model Person: Observable {\n  _firstName: string @\n}\n"
	api.OpenDocument("person.bcn", content, 1)

	items, err := api.Completions("person.bcn", Position{Line: 1, Character: 22})
	if err != nil {
		t.Fatalf("Completions() error: %v", err)
	}
	for _, want := range []string{"@notify", "@proxy", "@also_notify"} {
		if !containsLabel(items, want) {
			t.Errorf("Expected %s in completions, got %v", want, completionLabels(items))
		}
	}
}

func TestCompletionsFieldType(t *testing.T) {
	api := NewAPI()
	content := "model Person: Observable {\n  _name: \n}\n"
	api.OpenDocument("person.bcn", content, 1)

	items, err := api.Completions("person.bcn", Position{Line: 1, Character: 10})
	if err != nil {
		t.Fatalf("Completions() error: %v", err)
	}
	if !containsLabel(items, "timestamp") {
		t.Errorf("Expected primitive types, got %v", completionLabels(items))
	}
	if !containsLabel(items, "Person") {
		t.Errorf("Expected declared models as field types, got %v", completionLabels(items))
	}
}

func TestCompletionsBaseList(t *testing.T) {
	api := NewAPI()
	content := "model Person: Observable {\n  _name: string\n}\nmodel Employee: \n"
	api.OpenDocument("models.bcn", content, 1)

	items, err := api.Completions("models.bcn", Position{Line: 3, Character: 16})
	if err != nil {
		t.Fatalf("Completions() error: %v", err)
	}
	if !containsLabel(items, "Observable") {
		t.Errorf("Expected Observable in base completions, got %v", completionLabels(items))
	}
	if !containsLabel(items, "Person") {
		t.Errorf("Expected declared models in base completions, got %v", completionLabels(items))
	}
}

func TestDefinitionFieldTypeJumpsToModel(t *testing.T) {
	api := NewAPI()
	api.OpenDocument("address.bcn", "model Address: Observable {\n  _city: string @notify\n}\n", 1)
	doc := api.OpenDocument("person.bcn", personSource, 1)

	var addressField *Symbol
	for _, sym := range doc.Symbols {
		if sym.Kind == SymbolKindField && sym.Name == "_address" {
			addressField = sym
			break
		}
	}
	if addressField == nil {
		t.Fatal("_address field symbol not found")
	}

	loc, err := api.Definition("person.bcn", addressField.Range.Start)
	if err != nil {
		t.Fatalf("Definition() error: %v", err)
	}
	if loc == nil {
		t.Fatal("Expected a definition location")
	}
	if loc.URI != "address.bcn" {
		t.Errorf("Definition URI = %s, want address.bcn", loc.URI)
	}
}

func TestDefinitionFindsUnopenedWorkspaceFile(t *testing.T) {
	tmpDir := t.TempDir()
	addressPath := writeTestFile(t, tmpDir, "address.bcn", "model Address: Observable {\n  _city: string @notify\n}\n")
	personPath := writeTestFile(t, tmpDir, "person.bcn", personSource)

	api := NewAPI()
	if err := api.SetWorkspace(tmpDir); err != nil {
		t.Fatalf("SetWorkspace() error: %v", err)
	}
	doc := api.OpenDocument(personPath, personSource, 1)

	var addressField *Symbol
	for _, sym := range doc.Symbols {
		if sym.Kind == SymbolKindField && sym.Name == "_address" {
			addressField = sym
			break
		}
	}
	if addressField == nil {
		t.Fatal("_address field symbol not found")
	}

	// address.bcn is in the workspace but not open, so only the dependency
	// graph can place the Address declaration.
	loc, err := api.Definition(personPath, addressField.Range.Start)
	if err != nil {
		t.Fatalf("Definition() error: %v", err)
	}
	if loc == nil {
		t.Fatal("Expected a definition location")
	}
	if loc.URI != addressPath {
		t.Errorf("Definition URI = %s, want %s", loc.URI, addressPath)
	}
	if loc.Range.Start.Line != 0 || loc.Range.Start.Character != len("model ") {
		t.Errorf("Definition range start = %+v, want line 0 at the model name", loc.Range.Start)
	}
}

func TestWorkspaceSymbols(t *testing.T) {
	api := NewAPI()
	api.OpenDocument("person.bcn", personSource, 1)

	matches := api.WorkspaceSymbols("first")
	if len(matches) < 2 {
		t.Errorf("Expected the field and its property to match 'first', got %d", len(matches))
	}

	none := api.WorkspaceSymbols("nonexistent")
	if len(none) != 0 {
		t.Errorf("Expected no matches, got %d", len(none))
	}
}
