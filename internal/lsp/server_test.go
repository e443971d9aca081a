package lsp

import (
	"io"
	"testing"

	"go.lsp.dev/protocol"
)

var _ io.ReadWriteCloser = stdrwc{}

func TestServerInitialization(t *testing.T) {
	server := NewServer()

	if server.api == nil {
		t.Fatal("server has no tooling API")
	}
	if server.logger == nil {
		t.Fatal("server has no logger")
	}

	caps := server.capabilities
	if caps.CompletionProvider == nil {
		t.Error("completion capability missing")
	}
	if caps.DefinitionProvider == nil {
		t.Error("definition capability missing")
	}
	for name, enabled := range map[string]interface{}{
		"hover":             caps.HoverProvider,
		"references":        caps.ReferencesProvider,
		"document symbols":  caps.DocumentSymbolProvider,
		"workspace symbols": caps.WorkspaceSymbolProvider,
	} {
		if enabled != true {
			t.Errorf("%s capability should be enabled", name)
		}
	}

	sync, ok := caps.TextDocumentSync.(protocol.TextDocumentSyncOptions)
	if !ok {
		t.Fatalf("TextDocumentSync is %T, want TextDocumentSyncOptions", caps.TextDocumentSync)
	}
	if !sync.OpenClose || sync.Change != protocol.TextDocumentSyncKindFull {
		t.Errorf("expected open/close tracking with full sync, got %+v", sync)
	}
}

func TestCompletionTriggerCharacters(t *testing.T) {
	server := NewServer()

	triggers := server.capabilities.CompletionProvider.TriggerCharacters
	if len(triggers) != 2 {
		t.Fatalf("expected 2 trigger characters, got %d", len(triggers))
	}

	// ":" opens type position, "@" opens annotation position
	if triggers[0] != ":" || triggers[1] != "@" {
		t.Errorf("expected trigger characters [: @], got %v", triggers)
	}
}

func TestRoutesCoverAdvertisedCapabilities(t *testing.T) {
	server := NewServer()
	routes := server.routes()

	for _, method := range []string{
		protocol.MethodInitialize,
		protocol.MethodShutdown,
		protocol.MethodExit,
		protocol.MethodTextDocumentDidOpen,
		protocol.MethodTextDocumentDidChange,
		protocol.MethodTextDocumentDidClose,
		protocol.MethodTextDocumentDidSave,
		protocol.MethodWorkspaceDidChangeWatchedFiles,
		protocol.MethodTextDocumentCompletion,
		protocol.MethodTextDocumentHover,
		protocol.MethodTextDocumentDefinition,
		protocol.MethodTextDocumentReferences,
		protocol.MethodTextDocumentDocumentSymbol,
		protocol.MethodWorkspaceSymbol,
	} {
		if routes[method] == nil {
			t.Errorf("no handler routed for %s", method)
		}
	}
}
