package lsp

import (
	"context"
	"encoding/json"
	"strings"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"

	"github.com/beacon-lang/beacon/internal/tooling"
)

// Language feature handlers. Each one decodes its params, asks the
// tooling API, and converts the answer; the analysis itself lives in
// internal/tooling where the CLI can reach it too.

func (s *Server) handleTextDocumentCompletion(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.CompletionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "malformed completion params")
	}

	docPath, pos := positionFrom(params.TextDocumentPositionParams)
	completions, err := s.api.Completions(docPath, pos)
	if err != nil {
		s.logger.Printf("completion failed: %v", err)
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "completion failed")
	}

	items := make([]protocol.CompletionItem, 0, len(completions))
	for _, c := range completions {
		items = append(items, completionItem(c))
	}

	return reply(ctx, protocol.CompletionList{Items: items}, nil)
}

// completionItem renders one suggestion. Placeholder syntax in the
// insert text marks it as a snippet so editors drop the cursor into
// the blank.
func completionItem(c tooling.CompletionItem) protocol.CompletionItem {
	item := protocol.CompletionItem{
		Label:  c.Label,
		Kind:   convertCompletionKind(c.Kind),
		Detail: c.Detail,
		Documentation: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: c.Documentation,
		},
		InsertText:       c.InsertText,
		InsertTextFormat: protocol.InsertTextFormatPlainText,
	}
	if strings.Contains(c.InsertText, "$0") || strings.Contains(c.InsertText, "${") {
		item.InsertTextFormat = protocol.InsertTextFormatSnippet
	}
	return item
}

func (s *Server) handleTextDocumentHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.HoverParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "malformed hover params")
	}

	docPath, pos := positionFrom(params.TextDocumentPositionParams)
	hover, err := s.api.Hover(docPath, pos)
	if err != nil {
		s.logger.Printf("hover failed: %v", err)
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "hover failed")
	}
	if hover == nil {
		return reply(ctx, nil, nil)
	}

	hoverRange := convertRange(hover.Range)
	return reply(ctx, protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: hover.Contents,
		},
		Range: &hoverRange,
	}, nil)
}

func (s *Server) handleTextDocumentDefinition(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DefinitionParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "malformed definition params")
	}

	docPath, pos := positionFrom(params.TextDocumentPositionParams)
	location, err := s.api.Definition(docPath, pos)
	if err != nil {
		s.logger.Printf("definition failed: %v", err)
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "definition failed")
	}
	if location == nil {
		return reply(ctx, nil, nil)
	}

	return reply(ctx, convertLocation(*location), nil)
}

func (s *Server) handleTextDocumentReferences(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.ReferenceParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "malformed references params")
	}

	docPath, pos := positionFrom(params.TextDocumentPositionParams)
	references, err := s.api.References(docPath, pos)
	if err != nil {
		s.logger.Printf("references failed: %v", err)
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "references failed")
	}

	locations := make([]protocol.Location, 0, len(references))
	for _, ref := range references {
		locations = append(locations, convertLocation(ref))
	}

	return reply(ctx, locations, nil)
}

func (s *Server) handleTextDocumentDocumentSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentSymbolParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "malformed documentSymbol params")
	}

	symbols, err := s.api.DocumentSymbols(documentPath(params.TextDocument.URI))
	if err != nil {
		s.logger.Printf("document symbols failed: %v", err)
		return s.replyWithError(ctx, reply, jsonrpc2.InternalError, "document symbols failed")
	}

	out := make([]protocol.DocumentSymbol, 0, len(symbols))
	for _, sym := range symbols {
		symRange := convertRange(sym.Range)
		out = append(out, protocol.DocumentSymbol{
			Name:           sym.Name,
			Kind:           convertSymbolKind(sym.Kind),
			Detail:         sym.Detail,
			Range:          symRange,
			SelectionRange: symRange,
		})
	}

	return reply(ctx, out, nil)
}

func (s *Server) handleWorkspaceSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.WorkspaceSymbolParams
	if err := json.Unmarshal(req.Params(), &params); err != nil {
		return s.replyWithError(ctx, reply, jsonrpc2.InvalidParams, "malformed workspaceSymbol params")
	}

	indexed := s.api.WorkspaceSymbols(params.Query)

	symbols := make([]protocol.SymbolInformation, 0, len(indexed))
	for _, sym := range indexed {
		symbols = append(symbols, protocol.SymbolInformation{
			Name:          sym.Name,
			Kind:          convertSymbolKind(sym.Kind),
			ContainerName: sym.ContainerName,
			Location: protocol.Location{
				URI:   clientURI(sym.URI),
				Range: convertRange(sym.Range),
			},
		})
	}

	return reply(ctx, symbols, nil)
}
