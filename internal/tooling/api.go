// Package tooling sits between the compiler packages and the surfaces that
// drive them. It assembles a program from many source files, runs capability
// resolution and plan building over the merged result, and hands back
// file-attributed diagnostics ready for terminal output or LSP publishing.
// The API type adds an open-buffer overlay on top of the shared cache so
// unsaved editor content is analyzed in workspace context.
package tooling

import (
	"fmt"
	"sort"
	"sync"

	"github.com/beacon-lang/beacon/internal/compiler/ast"
	"github.com/beacon-lang/beacon/internal/compiler/cache"
	"github.com/beacon-lang/beacon/internal/compiler/errors"
	"github.com/beacon-lang/beacon/internal/compiler/plan"
)

// Analysis is the result of one pass over a set of source files: the merged
// program, its capability sets and notification plans, and every diagnostic
// grouped under the file that produced it.
type Analysis struct {
	// Files lists the analyzed paths in analysis order
	Files []string

	// Programs holds the per-file parse results
	Programs map[string]*ast.Program

	// Program is the merged program. Duplicate model declarations are
	// dropped after the first and reported as DCL108.
	Program *ast.Program

	// Capabilities maps each declared model to its resolved capability set
	Capabilities map[string]plan.CapabilitySet

	// Plans maps each model to its notification plan. Models whose plan was
	// withheld by validation map to nil.
	Plans map[string]*plan.NotificationPlan

	// Diagnostics groups diagnostics by file path
	Diagnostics map[string]errors.ErrorList

	// Metrics carries cache statistics when the analysis went through a
	// coordinator batch
	Metrics *cache.LoadMetrics

	modelFile map[string]string
}

// DeclaringFile returns the path that declares the named model, or "" when
// the model is not part of the program.
func (a *Analysis) DeclaringFile(model string) string {
	return a.modelFile[model]
}

// AllDiagnostics flattens the per-file diagnostics into one list, files in
// analysis order and each file's diagnostics sorted by source position.
func (a *Analysis) AllDiagnostics() errors.ErrorList {
	all := make(errors.ErrorList, 0)
	for _, path := range a.Files {
		list := append(errors.ErrorList(nil), a.Diagnostics[path]...)
		sort.SliceStable(list, func(i, j int) bool {
			if list[i].Location.Line != list[j].Location.Line {
				return list[i].Location.Line < list[j].Location.Line
			}
			return list[i].Location.Column < list[j].Location.Column
		})
		all = append(all, list...)
	}
	return all
}

// HasErrors reports whether any file produced an error-severity diagnostic
func (a *Analysis) HasErrors() bool {
	for _, list := range a.Diagnostics {
		if list.HasErrors() {
			return true
		}
	}
	return false
}

func (a *Analysis) addDiag(path string, diag *errors.CompilerError) {
	if diag.File == "" {
		diag.WithFile(path)
	}
	a.Diagnostics[path] = append(a.Diagnostics[path], diag)
}

// fileForLocation attributes a program-level diagnostic to the file whose
// model is declared at the given location. Capability diagnostics point at a
// model declaration, so the lookup is exact in practice; the first analyzed
// file absorbs anything unmatched.
func (a *Analysis) fileForLocation(loc ast.SourceLocation) string {
	for _, model := range a.Program.Models {
		if model.Loc == loc {
			return a.modelFile[model.Name]
		}
	}
	if len(a.Files) > 0 {
		return a.Files[0]
	}
	return ""
}

// AnalyzeFiles loads the given source files through the coordinator and
// analyzes them as one program. Unreadable files abort the analysis; syntax
// errors do not, they become diagnostics like everything else.
func AnalyzeFiles(coord *cache.Coordinator, paths []string) (*Analysis, error) {
	results, metrics := coord.LoadFiles(paths)
	for _, res := range results {
		if res.Err != nil {
			return nil, fmt.Errorf("loading %s: %w", res.Path, res.Err)
		}
	}

	a := AnalyzeResults(results)
	a.Metrics = metrics
	return a, nil
}

// AnalyzeDirectory analyzes every .bcn file under dir
func AnalyzeDirectory(coord *cache.Coordinator, dir string) (*Analysis, error) {
	paths, err := cache.ScanDirectory(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return AnalyzeFiles(coord, paths)
}

// AnalyzeSource analyzes a single in-memory buffer with no workspace
// context. Intended for scratch buffers and stdin-style checks.
func AnalyzeSource(path, source string) *Analysis {
	res := cache.NewCoordinator().LoadSource(path, source)
	return AnalyzeResults([]*cache.LoadResult{res})
}

// AnalyzeResults merges already-loaded parse results into one program, then
// resolves capabilities and builds notification plans for every model.
// Callers that load files themselves, such as a parallel generation pass,
// use this directly; results keep their slice order. Models that survived a
// partial parse take part like any other, so editors keep full diagnostics
// for the healthy parts of a broken file.
func AnalyzeResults(results []*cache.LoadResult) *Analysis {
	a := &Analysis{
		Files:       make([]string, 0, len(results)),
		Programs:    make(map[string]*ast.Program, len(results)),
		Diagnostics: make(map[string]errors.ErrorList),
		modelFile:   make(map[string]string),
	}
	sources := make(map[string]string, len(results))

	merged := &ast.Program{Models: make([]*ast.ModelNode, 0)}
	for _, res := range results {
		a.Files = append(a.Files, res.Path)
		a.Programs[res.Path] = res.Program
		sources[res.Path] = res.Source

		for _, lexErr := range res.LexErrors {
			loc := ast.SourceLocation{Line: lexErr.Line, Column: lexErr.Column}
			a.addDiag(res.Path, errors.NewLexicalError(loc, lexErr.Message, lexErr.Lexeme))
		}
		for _, parseErr := range res.ParseErrors {
			a.addDiag(res.Path, errors.NewParseError(parseErr.Location, parseErr.Message, parseErr.Near))
		}

		if res.Program == nil {
			continue
		}
		for _, model := range res.Program.Models {
			if first, dup := a.modelFile[model.Name]; dup {
				a.addDiag(res.Path, errors.NewDuplicateModel(model.Loc, model.Name, first))
				continue
			}
			a.modelFile[model.Name] = res.Path
			merged.Models = append(merged.Models, model)
		}
	}
	a.Program = merged

	caps, capDiags := plan.ResolveCapabilities(merged)
	a.Capabilities = caps
	for _, diag := range capDiags {
		a.addDiag(a.fileForLocation(diag.Location), diag)
	}

	a.Plans = make(map[string]*plan.NotificationPlan, len(merged.Models))
	for _, model := range merged.Models {
		p, diags := plan.Build(model, caps[model.Name])
		a.Plans[model.Name] = p
		for _, diag := range diags {
			a.addDiag(a.modelFile[model.Name], diag)
		}
	}

	for path, list := range a.Diagnostics {
		errors.AttachContext(list, sources[path])
	}

	return a
}

// API provides thread-safe access to analysis results for IDE integration.
// Open documents shadow their on-disk content, and every change re-analyzes
// the workspace so cross-file diagnostics stay current.
type API struct {
	coord *cache.Coordinator

	mu        sync.RWMutex
	documents map[string]*Document
	workspace []string

	index *SymbolIndex
}

// Document is an open editor buffer with its latest analysis results
type Document struct {
	// URI is the document identifier, typically a file path
	URI string

	// Content is the raw source text
	Content string

	// Version tracks document changes, incremented by the client
	Version int

	// Program is this file's parse result
	Program *ast.Program

	// Diagnostics lists this file's diagnostics from the last analysis
	Diagnostics errors.ErrorList

	// Symbols is a flattened list of the symbols declared in this file
	Symbols []*Symbol
}

// NewAPI creates a tooling API backed by a fresh cache coordinator
func NewAPI() *API {
	return &API{
		coord:     cache.NewCoordinator(),
		documents: make(map[string]*Document),
		index:     NewSymbolIndex(),
	}
}

// Coordinator exposes the underlying cache coordinator so watchers can
// invalidate files that changed on disk.
func (a *API) Coordinator() *cache.Coordinator {
	return a.coord
}

// SetWorkspace scans root for .bcn files and records them as the analysis
// context for open documents.
func (a *API) SetWorkspace(root string) error {
	paths, err := cache.ScanDirectory(root)
	if err != nil {
		return fmt.Errorf("scanning workspace %s: %w", root, err)
	}

	a.mu.Lock()
	a.workspace = paths
	a.mu.Unlock()

	a.Refresh()
	return nil
}

// OpenDocument registers an open buffer and analyzes the workspace with its
// content in place of whatever is on disk.
func (a *API) OpenDocument(uri, content string, version int) *Document {
	a.mu.Lock()
	a.documents[uri] = &Document{URI: uri, Content: content, Version: version}
	a.mu.Unlock()

	a.Refresh()
	return a.document(uri)
}

// UpdateDocument replaces an open buffer's content. Unchanged content only
// bumps the version; nothing is re-analyzed.
func (a *API) UpdateDocument(uri, content string, version int) *Document {
	a.mu.Lock()
	doc, exists := a.documents[uri]
	if exists && doc.Content == content {
		doc.Version = version
		a.mu.Unlock()
		return doc
	}
	a.documents[uri] = &Document{URI: uri, Content: content, Version: version}
	a.mu.Unlock()

	a.Refresh()
	return a.document(uri)
}

// CloseDocument drops an open buffer. Later analyses read the file from
// disk again if it is part of the workspace.
func (a *API) CloseDocument(uri string) {
	a.mu.Lock()
	delete(a.documents, uri)
	a.mu.Unlock()

	a.index.RemoveDocument(uri)
	a.Refresh()
}

// GetDocument retrieves an open document
func (a *API) GetDocument(uri string) (*Document, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	doc, exists := a.documents[uri]
	return doc, exists
}

// OpenDocuments returns the URIs of every open document in sorted order.
// A change in one file can move diagnostics in another, so publishers
// iterate this after any edit.
func (a *API) OpenDocuments() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	uris := make([]string, 0, len(a.documents))
	for uri := range a.documents {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// InvalidateFile drops a file's cached parse after an on-disk change and
// re-analyzes. It returns the paths whose results were affected.
func (a *API) InvalidateFile(path string) []string {
	affected := a.coord.InvalidateFile(path)
	a.Refresh()
	return affected
}

// Refresh re-analyzes the workspace with every open buffer shadowing its
// on-disk content, then refreshes each document's diagnostics and symbols.
func (a *API) Refresh() {
	a.mu.Lock()
	defer a.mu.Unlock()

	results := make([]*cache.LoadResult, 0, len(a.documents)+len(a.workspace))
	for _, doc := range a.documents {
		results = append(results, a.coord.LoadSource(doc.URI, doc.Content))
	}
	for _, path := range a.workspace {
		if _, open := a.documents[path]; open {
			continue
		}
		res := a.coord.LoadFile(path)
		if res.Err != nil {
			// A sibling that vanished from disk should not take editor
			// diagnostics down with it.
			continue
		}
		results = append(results, res)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	analysis := AnalyzeResults(results)

	for uri, doc := range a.documents {
		doc.Program = analysis.Programs[uri]
		doc.Diagnostics = analysis.Diagnostics[uri]
		doc.Symbols = extractSymbols(doc.Program, analysis)
		a.index.Index(uri, doc.Symbols)
	}
}

func (a *API) document(uri string) *Document {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.documents[uri]
}

// Position is a zero-based document position, matching LSP conventions
type Position struct {
	Line      int
	Character int
}

// Range is a half-open span in a document
type Range struct {
	Start Position
	End   Position
}

// Location is a source range with its document
type Location struct {
	URI   string
	Range Range
}

// Diagnostic is an LSP-shaped view of a compiler diagnostic
type Diagnostic struct {
	Range    Range
	Severity DiagnosticSeverity
	Code     string
	Message  string
	Source   string
}

// DiagnosticSeverity indicates the severity of a diagnostic
type DiagnosticSeverity int

const (
	// DiagnosticSeverityError represents an error diagnostic
	DiagnosticSeverityError DiagnosticSeverity = iota
	// DiagnosticSeverityWarning represents a warning diagnostic
	DiagnosticSeverityWarning
	// DiagnosticSeverityInfo represents an informational diagnostic
	DiagnosticSeverityInfo
	// DiagnosticSeverityHint represents a hint diagnostic
	DiagnosticSeverityHint
)

// Diagnostics returns the open document's diagnostics in publishable form.
// A closed or unknown document yields an empty list so stale squiggles get
// cleared rather than kept.
func (a *API) Diagnostics(uri string) []Diagnostic {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return []Diagnostic{}
	}

	diagnostics := make([]Diagnostic, 0, len(doc.Diagnostics))
	for _, err := range doc.Diagnostics {
		diagnostics = append(diagnostics, Diagnostic{
			Range:    rangeAt(err.Location, spanLength(err)),
			Severity: severityOf(err.Severity),
			Code:     string(err.Code),
			Message:  err.Message,
			Source:   "beacon",
		})
	}
	return diagnostics
}

// DocumentSymbols returns all symbols declared in a document
func (a *API) DocumentSymbols(uri string) ([]*Symbol, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}
	return doc.Symbols, nil
}

// WorkspaceSymbols searches symbols across all open documents
func (a *API) WorkspaceSymbols(query string) []*IndexedSymbol {
	return a.index.SearchSymbols(query)
}

// Hover returns hover information for a position in a document.
// Returns (nil, nil) if no symbol is found at the position.
func (a *API) Hover(uri string, pos Position) (*Hover, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	symbol := findSymbolAtPosition(doc, pos)
	if symbol == nil {
		return nil, nil //nolint:nilnil // nil hover is valid when no symbol at position
	}
	return buildHover(symbol), nil
}

// Completions returns completion items for a position in a document
func (a *API) Completions(uri string, pos Position) ([]CompletionItem, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	context := completionContextAt(doc, pos)
	return a.buildCompletions(context), nil
}

// Definition returns the definition location of the symbol at a position.
// Returns (nil, nil) if no symbol is found at the position.
func (a *API) Definition(uri string, pos Position) (*Location, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	symbol := findSymbolAtPosition(doc, pos)
	if symbol == nil {
		return nil, nil //nolint:nilnil // nil location is valid when no symbol at position
	}

	// A field whose type names a model jumps to that model's declaration.
	// The index covers open documents; the dependency graph covers the
	// rest of the workspace.
	if symbol.Kind == SymbolKindField && symbol.Type != "" {
		if def := a.index.FindDefinition(symbol.Type); def != nil {
			return &Location{URI: def.URI, Range: def.Range}, nil
		}
		if loc := a.workspaceDefinition(symbol.Type); loc != nil {
			return loc, nil
		}
	}

	return &Location{URI: uri, Range: symbol.Range}, nil
}

// workspaceDefinition locates a model declared in a workspace file that is
// not open in the editor. The dependency graph names the declaring file;
// its cached parse supplies the exact position.
func (a *API) workspaceDefinition(model string) *Location {
	path, ok := a.coord.Graph().DeclaringFile(model)
	if !ok {
		return nil
	}
	res := a.coord.LoadFile(path)
	if res.Program == nil {
		return nil
	}
	for _, m := range res.Program.Models {
		if m.Name == model {
			return &Location{URI: path, Range: modelNameRange(m)}
		}
	}
	return nil
}

// References returns every indexed occurrence of the symbol at a position
func (a *API) References(uri string, pos Position) ([]Location, error) {
	doc, exists := a.GetDocument(uri)
	if !exists {
		return nil, fmt.Errorf("document not found: %s", uri)
	}

	symbol := findSymbolAtPosition(doc, pos)
	if symbol == nil {
		return []Location{}, nil
	}

	refs := a.index.FindReferences(symbol.Name)
	if refs == nil {
		return []Location{}, nil
	}
	return refs, nil
}

func severityOf(severity errors.ErrorSeverity) DiagnosticSeverity {
	switch severity {
	case errors.SeverityWarning:
		return DiagnosticSeverityWarning
	case errors.SeverityInfo:
		return DiagnosticSeverityInfo
	default:
		return DiagnosticSeverityError
	}
}

// rangeAt converts a 1-based compiler location into a zero-based range of
// the given length on one line.
func rangeAt(loc ast.SourceLocation, length int) Range {
	line := loc.Line - 1
	if line < 0 {
		line = 0
	}
	char := loc.Column - 1
	if char < 0 {
		char = 0
	}
	return Range{
		Start: Position{Line: line, Character: char},
		End:   Position{Line: line, Character: char + length},
	}
}

// spanLength guesses how many characters a diagnostic covers from the
// offending lexeme recorded on it.
func spanLength(err *errors.CompilerError) int {
	// Actual is recorded as 'lexeme' when present
	if n := len(err.Actual); n > 2 {
		return n - 2
	}
	return 1
}
