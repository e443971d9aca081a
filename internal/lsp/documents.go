package lsp

import (
	"context"
	"encoding/json"
	"strings"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// Document synchronization. The server runs in full-sync mode: every
// change delivers the complete buffer, which declaration files of this
// size handle comfortably and which keeps the analysis path identical
// to the batch compiler's.

func (s *Server) handleTextDocumentDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "malformed didOpen params")
	}

	// Keyed by filesystem path so the open buffer shadows the same file
	// the workspace scan found, instead of appearing beside it.
	docPath := documentPath(params.TextDocument.URI)
	s.logger.Printf("opened %s (version %d)", docPath, params.TextDocument.Version)

	s.api.OpenDocument(docPath, params.TextDocument.Text, int(params.TextDocument.Version))
	s.publishAllDiagnostics(ctx)

	return reply(ctx, nil, nil)
}

func (s *Server) handleTextDocumentDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "malformed didChange params")
	}
	if len(params.ContentChanges) == 0 {
		return reply(ctx, nil, nil)
	}

	docPath := documentPath(params.TextDocument.URI)
	s.logger.Printf("changed %s (version %d)", docPath, params.TextDocument.Version)

	// Full sync, so the last change carries the whole buffer.
	content := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.api.UpdateDocument(docPath, content, int(params.TextDocument.Version))
	s.publishAllDiagnostics(ctx)

	return reply(ctx, nil, nil)
}

func (s *Server) handleTextDocumentDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "malformed didClose params")
	}

	docPath := documentPath(params.TextDocument.URI)
	s.logger.Printf("closed %s", docPath)

	s.api.CloseDocument(docPath)
	// An empty publish clears the client's squiggles for the closed file.
	s.publishDiagnostics(ctx, docPath)
	s.publishAllDiagnostics(ctx)

	return reply(ctx, nil, nil)
}

func (s *Server) handleTextDocumentDidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidSaveTextDocumentParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "malformed didSave params")
	}

	s.logger.Printf("saved %s", params.TextDocument.URI)
	s.publishAllDiagnostics(ctx)

	return reply(ctx, nil, nil)
}

// handleWorkspaceDidChangeWatchedFiles reacts to declaration files changing
// outside any open buffer. Edited files are invalidated so their next
// analysis reparses; deleted files leave the cache and dependency graph so
// their models stop resolving; created or deleted files trigger a workspace
// rescan so the analysis set matches the tree again.
func (s *Server) handleWorkspaceDidChangeWatchedFiles(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeWatchedFilesParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "malformed didChangeWatchedFiles params")
	}

	rescan := false
	for _, change := range params.Changes {
		path := documentPath(protocol.DocumentURI(change.URI))
		if !strings.HasSuffix(path, ".bcn") {
			continue
		}
		s.logger.Printf("watched file %s (%v)", path, change.Type)

		switch change.Type {
		case protocol.FileChangeTypeDeleted:
			s.api.Coordinator().RemoveFile(path)
			rescan = true
		case protocol.FileChangeTypeCreated:
			rescan = true
		default:
			s.api.InvalidateFile(path)
		}
	}

	if rescan && s.workspaceRoot != "" {
		if err := s.api.SetWorkspace(s.workspaceRoot); err != nil {
			s.logger.Printf("warning: failed to rescan workspace: %v", err)
		}
	}
	s.publishAllDiagnostics(ctx)

	return reply(ctx, nil, nil)
}

// publishAllDiagnostics pushes diagnostics for every open document. A
// single edit can add or clear diagnostics in sibling files (a renamed
// base model, a new duplicate), so per-file publishing is not enough.
func (s *Server) publishAllDiagnostics(ctx context.Context) {
	for _, docPath := range s.api.OpenDocuments() {
		s.publishDiagnostics(ctx, docPath)
	}
}

func (s *Server) publishDiagnostics(ctx context.Context, docPath string) {
	diagnostics := s.api.Diagnostics(docPath)

	converted := make([]protocol.Diagnostic, 0, len(diagnostics))
	for _, d := range diagnostics {
		converted = append(converted, protocol.Diagnostic{
			Range:    convertRange(d.Range),
			Severity: convertSeverity(d.Severity),
			Code:     d.Code,
			Source:   d.Source,
			Message:  d.Message,
		})
	}

	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         clientURI(docPath),
		Diagnostics: converted,
	})
	if err != nil {
		s.logger.Printf("publishing diagnostics for %s: %v", docPath, err)
	}
}
