package lsp

import (
	"path/filepath"
	"strings"

	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"

	"github.com/beacon-lang/beacon/internal/tooling"
)

// Conversions between the tooling API's editor-neutral types and their
// protocol equivalents. The tooling side stays ignorant of LSP so the
// CLI commands can share it.

// documentPath resolves a client URI to the filesystem path the tooling
// layer keys everything by. Workspace files arrive as plain paths from
// directory scans, so file URIs must reduce to the same form or an open
// buffer and its on-disk copy would be analyzed as two different files.
// Non-file schemes (unsaved buffers) keep their raw form as the key.
func documentPath(docURI protocol.DocumentURI) string {
	if !strings.HasPrefix(string(docURI), "file://") {
		return string(docURI)
	}
	return docURI.Filename()
}

// clientURI converts an internal document key back to the form the
// client speaks.
func clientURI(path string) protocol.DocumentURI {
	if filepath.IsAbs(path) {
		return protocol.DocumentURI(uri.File(path))
	}
	return protocol.DocumentURI(path)
}

// positionFrom splits text-document position params into the document
// key and the tooling position.
func positionFrom(params protocol.TextDocumentPositionParams) (string, tooling.Position) {
	return documentPath(params.TextDocument.URI), tooling.Position{
		Line:      int(params.Position.Line),
		Character: int(params.Position.Character),
	}
}

func convertRange(r tooling.Range) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: uint32(r.Start.Line), Character: uint32(r.Start.Character)},
		End:   protocol.Position{Line: uint32(r.End.Line), Character: uint32(r.End.Character)},
	}
}

func convertLocation(loc tooling.Location) protocol.Location {
	return protocol.Location{
		URI:   clientURI(loc.URI),
		Range: convertRange(loc.Range),
	}
}

func convertSeverity(severity tooling.DiagnosticSeverity) protocol.DiagnosticSeverity {
	switch severity {
	case tooling.DiagnosticSeverityError:
		return protocol.DiagnosticSeverityError
	case tooling.DiagnosticSeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case tooling.DiagnosticSeverityInfo:
		return protocol.DiagnosticSeverityInformation
	case tooling.DiagnosticSeverityHint:
		return protocol.DiagnosticSeverityHint
	default:
		return protocol.DiagnosticSeverityError
	}
}

func convertCompletionKind(kind tooling.CompletionKind) protocol.CompletionItemKind {
	switch kind {
	case tooling.CompletionKindKeyword:
		return protocol.CompletionItemKindKeyword
	case tooling.CompletionKindType, tooling.CompletionKindModel:
		return protocol.CompletionItemKindClass
	case tooling.CompletionKindAnnotation:
		return protocol.CompletionItemKindProperty
	default:
		return protocol.CompletionItemKindText
	}
}

func convertSymbolKind(kind tooling.SymbolKind) protocol.SymbolKind {
	switch kind {
	case tooling.SymbolKindModel:
		return protocol.SymbolKindClass
	case tooling.SymbolKindField:
		return protocol.SymbolKindField
	case tooling.SymbolKindProperty:
		return protocol.SymbolKindProperty
	default:
		return protocol.SymbolKindObject
	}
}
