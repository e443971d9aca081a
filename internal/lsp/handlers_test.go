package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"go.lsp.dev/protocol"

	"github.com/beacon-lang/beacon/internal/tooling"
)

func TestCompletionItemSnippetFormat(t *testing.T) {
	plain := completionItem(tooling.CompletionItem{
		Label:      "string",
		Kind:       tooling.CompletionKindType,
		InsertText: "string",
	})
	if plain.InsertTextFormat != protocol.InsertTextFormatPlainText {
		t.Errorf("plain insert text marked as %v", plain.InsertTextFormat)
	}

	snippet := completionItem(tooling.CompletionItem{
		Label:      "@proxy",
		Kind:       tooling.CompletionKindAnnotation,
		InsertText: "@proxy(${1:path})",
	})
	if snippet.InsertTextFormat != protocol.InsertTextFormatSnippet {
		t.Errorf("placeholder insert text marked as %v", snippet.InsertTextFormat)
	}
	if snippet.Kind != protocol.CompletionItemKindProperty {
		t.Errorf("annotation completion kind = %v", snippet.Kind)
	}
}

func TestDiagnosticsFlow(t *testing.T) {
	// Exercises the tooling side of the publish path directly. The
	// jsonrpc2 half needs a live client connection, so it stays with
	// editor integration testing.
	server := NewServer()

	docURI := "file:///test/person.bcn"
	source := "model Person {\n  _name: string @notify\n}\n"

	server.api.OpenDocument(docURI, source, 1)

	diagnostics := server.api.Diagnostics(docURI)
	if len(diagnostics) == 0 {
		t.Fatal("Expected at least one diagnostic for model without a notifying base")
	}

	found := false
	for _, d := range diagnostics {
		if d.Code == "DCL101" {
			found = true
			if d.Source != "beacon" {
				t.Errorf("Expected diagnostic source 'beacon', got %q", d.Source)
			}
		}
	}
	if !found {
		t.Error("Expected DCL101 diagnostic for missing notifying capability")
	}

	open := server.api.OpenDocuments()
	if len(open) != 1 || open[0] != docURI {
		t.Errorf("Expected open documents [%s], got %v", docURI, open)
	}

	server.api.CloseDocument(docURI)
	if diags := server.api.Diagnostics(docURI); len(diags) != 0 {
		t.Errorf("Expected no diagnostics after close, got %d", len(diags))
	}
}

func TestWatchedFileChangesFlow(t *testing.T) {
	// Drives the tooling sequence the watched-files handler performs when
	// declarations change on disk outside any open buffer.
	tmpDir := t.TempDir()
	personPath := filepath.Join(tmpDir, "person.bcn")
	employeePath := filepath.Join(tmpDir, "employee.bcn")
	employeeSource := "model Employee : Person {\n  _badge: string @notify\n}\n"

	writeFile := func(path, content string) {
		t.Helper()
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", path, err)
		}
	}
	writeFile(personPath, "model Person : Observable {\n  _name: string @notify\n}\n")
	writeFile(employeePath, employeeSource)

	server := NewServer()
	server.workspaceRoot = tmpDir
	if err := server.api.SetWorkspace(tmpDir); err != nil {
		t.Fatalf("scanning workspace: %v", err)
	}

	server.api.OpenDocument(employeePath, employeeSource, 1)
	if diags := server.api.Diagnostics(employeePath); len(diags) != 0 {
		t.Fatalf("expected a clean employee, got %v", diags)
	}

	// Person loses Observable on disk; invalidating it must surface the
	// missing capability in the open dependent.
	writeFile(personPath, "model Person {\n  _name: string\n}\n")
	server.api.InvalidateFile(personPath)

	found := false
	for _, d := range server.api.Diagnostics(employeePath) {
		if d.Code == "DCL101" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected DCL101 after the base lost its notifying capability")
	}

	// Deletion drops the declaring file from the dependency graph.
	if err := os.Remove(personPath); err != nil {
		t.Fatalf("removing person.bcn: %v", err)
	}
	server.api.Coordinator().RemoveFile(personPath)
	if err := server.api.SetWorkspace(tmpDir); err != nil {
		t.Fatalf("rescanning workspace: %v", err)
	}
	if _, ok := server.api.Coordinator().Graph().DeclaringFile("Person"); ok {
		t.Error("deleted file should leave the dependency graph")
	}
}
